package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/unitnode/unitnode/internal/service"
)

const oauthStateCookie = "oauth_state"

// oauthProvider is the provider-facing slice of the OAuth service the
// handler needs.
type oauthProvider interface {
	Configured() bool
	AuthCodeURL(state string) string
	Profile(ctx context.Context, code string) (*service.GoogleProfile, error)
}

var _ oauthProvider = (*service.OAuthService)(nil)

type oauthHandler struct {
	oauthService oauthProvider
	authService  *service.AuthService
	appURL       string
	stateTTL     time.Duration
	isProduction bool
}

func NewOAuthHandler(oauthService oauthProvider, authService *service.AuthService, appURL string, stateTTL time.Duration, isProduction bool) *oauthHandler {
	return &oauthHandler{
		oauthService: oauthService,
		authService:  authService,
		appURL:       appURL,
		stateTTL:     stateTTL,
		isProduction: isProduction,
	}
}

// Start redirects the user to the Google consent screen. The random state
// nonce is kept in a short-lived cookie for CSRF validation on callback.
func (h *oauthHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !h.oauthService.Configured() {
		respondError(w, http.StatusInternalServerError, "Google OAuth is not configured")
		return
	}

	state := generateOAuthState()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.stateTTL.Seconds()),
	})

	http.Redirect(w, r, h.oauthService.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the provider redirect: validate state, exchange the
// code, merge the profile into the user store, and route the browser to the
// right next step. Users with a company name on file go straight to the
// login opener; everyone else completes their profile first.
func (h *oauthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		slog.Warn("google oauth state validation failed", "error", err)
		respondError(w, http.StatusBadRequest, "OAuth authentication failed. Please try again.")
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "Missing OAuth code")
		return
	}

	profile, err := h.oauthService.Profile(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOAuthNoEmail):
			respondError(w, http.StatusBadRequest, "Google did not return an email address")
		case errors.Is(err, service.ErrOAuthEmailUnverified):
			respondError(w, http.StatusBadRequest, "Google email address is not verified")
		default:
			slog.Error("google oauth exchange failed", "error", err)
			respondError(w, http.StatusInternalServerError, "OAuth authentication failed. Please try again.")
		}
		return
	}

	user, err := h.authService.AuthenticateOAuth(r.Context(), profile.Email, profile.DisplayName())
	if err != nil {
		slog.Error("oauth authentication failed", "error", err, "email", profile.Email)
		respondError(w, http.StatusInternalServerError, "Authentication failed. Please try again.")
		return
	}

	// The ts parameter lets the client reject stale prefill data
	// (5-minute validity window enforced client-side).
	ts := time.Now().UnixMilli()
	var next string
	if user.HasCompanyName() {
		next = "/?unitnode_open_login_modal=true"
	} else {
		next = fmt.Sprintf("/?unitnode_open_signup_modal=google_complete&email=%s&ts=%d",
			url.QueryEscape(user.Email), ts)
	}

	http.Redirect(w, r, h.appURL+next, http.StatusSeeOther)
}

// Complete records the company name collected after OAuth signup.
func (h *oauthHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		CompanyName string `json:"companyName"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Email == "" || req.CompanyName == "" {
		respondError(w, http.StatusBadRequest, "Email and company name are required")
		return
	}

	err := h.authService.CompleteProfile(r.Context(), req.Email, req.CompanyName)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("profile completion failed", "error", err, "email", req.Email)
		respondError(w, http.StatusInternalServerError, "An error occurred")
		return
	}

	respondSuccess(w, "", nil)
}

// LoginSuccess forwards to the client page that stores the login hint and
// navigates, preserving the query string.
func (h *oauthHandler) LoginSuccess(w http.ResponseWriter, r *http.Request) {
	redirect := h.appURL + "/auth/google/login-success"
	if r.URL.RawQuery != "" {
		redirect += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// generateOAuthState creates a cryptographically secure random state token
// for OAuth CSRF protection.
func generateOAuthState() string {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
