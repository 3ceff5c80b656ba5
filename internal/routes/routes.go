package routes

import (
	"net/http"

	"github.com/unitnode/unitnode/internal/app"
	"github.com/unitnode/unitnode/internal/handler"
	"github.com/unitnode/unitnode/internal/middleware"
)

func SetupRoutes(application *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(application.AuthService, application.SessionService)
	oauth := handler.NewOAuthHandler(
		application.OAuthService,
		application.AuthService,
		application.Cfg.AppURL,
		application.Cfg.OAuthStateTTL,
		application.Cfg.IsProduction(),
	)
	property := handler.NewPropertyHandler(application.PropertyService)

	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Auth - rate limited (doubles as the server-side resend throttle)
	rateLimiter := middleware.RateLimitAuth()

	// Signup verification
	mux.HandleFunc("POST /api/auth/send-verification", rateLimiter(auth.SendSignupVerification))
	mux.HandleFunc("GET /api/auth/verify-email", auth.VerifyEmail)
	mux.HandleFunc("POST /api/auth/verify-code", rateLimiter(auth.VerifySignupCode))
	mux.HandleFunc("POST /api/auth/resend-verification", rateLimiter(auth.ResendVerification))

	// Two-step login
	mux.HandleFunc("POST /api/auth/login/send-code", rateLimiter(auth.LoginSendCode))
	mux.HandleFunc("POST /api/auth/login/verify-code", rateLimiter(auth.LoginVerifyCode))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)

	// Google OAuth
	mux.HandleFunc("GET /api/auth/google/start", rateLimiter(oauth.Start))
	mux.HandleFunc("GET /api/auth/google/callback", rateLimiter(oauth.Callback))
	mux.HandleFunc("POST /api/auth/google/complete", rateLimiter(oauth.Complete))
	mux.HandleFunc("GET /api/auth/google/login-success", oauth.LoginSuccess)

	// Properties (session required)
	mux.HandleFunc("GET /api/properties", middleware.RequireAuth(property.List))
	mux.HandleFunc("POST /api/properties", middleware.RequireAuth(property.Create))
	mux.HandleFunc("GET /api/properties/{id}", middleware.RequireAuth(property.Get))
	mux.HandleFunc("PATCH /api/properties/{id}", middleware.RequireAuth(property.Update))
	mux.HandleFunc("DELETE /api/properties/{id}", middleware.RequireAuth(property.Delete))

	// Global middleware - executed in order (top to bottom)
	h := middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.Auth(application.SessionService, application.UserRepository),
	)

	return h
}
