package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/unitnode/unitnode/internal/ctxkeys"
	"github.com/unitnode/unitnode/internal/repository"
	"github.com/unitnode/unitnode/internal/service"
)

// Auth verifies the session cookie and adds the session and user to the
// request context if valid. An invalid cookie is cleared and the request
// continues unauthenticated.
func Auth(sessions *service.SessionService, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := sessions.FromRequest(r)
			if claims == nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.ByID(claims.UserID)
			if err != nil {
				// Session outlived the user record
				sessions.ClearCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			// Keep the hash out of the request context
			user.PasswordHash = ""

			ctx := ctxkeys.WithSession(r.Context(), &ctxkeys.Session{
				UserID: claims.UserID,
				Email:  claims.Email,
				Role:   claims.Role,
			})
			ctx = ctxkeys.WithUser(ctx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects unauthenticated requests with a 401 JSON envelope.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.SessionFrom(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			if err := json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": "Unauthorized",
			}); err != nil {
				return
			}
			return
		}

		next.ServeHTTP(w, r)
	}
}
