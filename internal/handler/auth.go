package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/unitnode/unitnode/internal/service"
	"github.com/unitnode/unitnode/internal/validation"
)

type authHandler struct {
	authService *service.AuthService
	sessions    *service.SessionService
}

func NewAuthHandler(authService *service.AuthService, sessions *service.SessionService) *authHandler {
	return &authHandler{
		authService: authService,
		sessions:    sessions,
	}
}

// SendSignupVerification starts the password signup flow: create the
// unverified user and email the verification code and link.
func (h *authHandler) SendSignupVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		Name        string `json:"name"`
		CompanyName string `json:"companyName"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}
	if req.Password == "" {
		respondError(w, http.StatusBadRequest, "Password is required")
		return
	}
	err := validation.ValidateEmail(req.Email)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Please provide a valid email address")
		return
	}
	err = validation.ValidatePassword(req.Password)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name != "" {
		err = validation.ValidateName(req.Name)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.CompanyName != "" {
		err = validation.ValidateName(req.CompanyName)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	err = h.authService.RequestSignup(r.Context(), req.Email, req.Password, req.Name, req.CompanyName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			respondError(w, http.StatusBadRequest, "An account with this email already exists")
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(w, http.StatusBadRequest, "Please provide a valid email address")
		default:
			slog.Error("signup request failed", "error", err, "email", req.Email)
			respondError(w, http.StatusInternalServerError, "Failed to send verification email")
		}
		return
	}

	respondSuccess(w, "Verification email sent successfully", nil)
}

// VerifyEmail confirms a signup through the signed email-link token.
// Expiry is reported explicitly so the client can route to the
// link-expired recovery flow instead of a generic failure.
func (h *authHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "Token is missing")
		return
	}

	user, err := h.authService.ConfirmSignupToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrTokenExpired) {
			respond(w, http.StatusBadRequest, envelope{
				"success": false,
				"message": "Verification link has expired",
				"expired": true,
			})
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid or expired token")
		return
	}

	respondSuccess(w, "Email verified successfully", envelope{"email": user.Email})
}

// VerifySignupCode confirms a signup through the 6-digit emailed code.
func (h *authHandler) VerifySignupCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "Verification code is required")
		return
	}

	user, err := h.authService.ConfirmSignupCode(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, service.ErrCodeInvalid) {
			respondError(w, http.StatusBadRequest, "Invalid or expired verification code")
			return
		}
		slog.Error("signup code confirmation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "An error occurred")
		return
	}

	respondSuccess(w, "Email verified successfully", envelope{
		"email":       user.Email,
		"name":        user.Name,
		"companyName": user.CompanyName,
	})
}

// ResendVerification re-sends the signup verification email.
func (h *authHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	err := h.authService.ResendVerification(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrAlreadyVerified):
			respondError(w, http.StatusBadRequest, "Email is already verified")
		default:
			slog.Error("resend verification failed", "error", err, "email", req.Email)
			respondError(w, http.StatusInternalServerError, "Failed to send verification email")
		}
		return
	}

	respondSuccess(w, "Verification email sent successfully", nil)
}

// LoginSendCode is login step A: validate credentials, email the code.
func (h *authHandler) LoginSendCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.authService.SendLoginCode(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		slog.Error("login code send failed", "error", err, "email", req.Email)
		respondError(w, http.StatusInternalServerError, "Failed to send verification code")
		return
	}

	respondSuccess(w, "Verification code sent successfully", envelope{
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
	})
}

// LoginVerifyCode is login step B: redeem the code and establish a session.
func (h *authHandler) LoginVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "Verification code is required")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	user, err := h.authService.VerifyLoginCode(r.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeInvalid):
			respondError(w, http.StatusBadRequest, "Invalid or expired verification code")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		default:
			slog.Error("login code verification failed", "error", err, "email", req.Email)
			respondError(w, http.StatusInternalServerError, "An error occurred")
		}
		return
	}

	token, err := h.sessions.Create(user)
	if err != nil {
		slog.Error("failed to create session", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "An error occurred")
		return
	}
	h.sessions.SetCookie(w, token)

	respondSuccess(w, "Login successful", envelope{
		"user": envelope{
			"id":          user.ID,
			"email":       user.Email,
			"name":        user.Name,
			"companyName": user.CompanyName,
			"role":        user.Role,
		},
	})
}

func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	respondSuccess(w, "Logged out", nil)
}
