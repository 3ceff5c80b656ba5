package service

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/unitnode/unitnode/internal/model"
)

const sessionCookieName = "session"

var ErrSessionInvalid = errors.New("invalid session")

// SessionClaims identifies an authenticated user. The session is stateless:
// the signed cookie is the only record of it.
type SessionClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type SessionService struct {
	secret       string
	expiry       time.Duration
	isProduction bool
}

func NewSessionService(secret string, expiry time.Duration, isProduction bool) *SessionService {
	return &SessionService{
		secret:       secret,
		expiry:       expiry,
		isProduction: isProduction,
	}
}

func (s *SessionService) Create(user *model.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}

	return signed, nil
}

func (s *SessionService) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrSessionInvalid
	}

	return claims, nil
}

// FromRequest reads and verifies the session cookie. A missing or invalid
// cookie means "unauthenticated", not an error.
func (s *SessionService) FromRequest(r *http.Request) *SessionClaims {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}

	claims, err := s.Verify(cookie.Value)
	if err != nil {
		return nil
	}
	return claims
}

func (s *SessionService) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		MaxAge:   int(s.expiry.Seconds()),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *SessionService) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
