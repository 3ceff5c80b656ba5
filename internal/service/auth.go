package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/unitnode/unitnode/internal/model"
	"github.com/unitnode/unitnode/internal/repository"
	"github.com/unitnode/unitnode/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrAlreadyVerified    = errors.New("email is already verified")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrUserNotFound       = repository.ErrUserNotFound
)

// EmailSender is the outbound email collaborator seen by the sequencers.
type EmailSender interface {
	SendSignupVerification(ctx context.Context, email, code, token, name string) error
	SendLoginCode(ctx context.Context, email, code, name string) error
}

var _ EmailSender = (*EmailService)(nil)

// AuthService orchestrates the signup and login sequences: credential
// validation, verification ticket issue/redeem, and user activation.
type AuthService struct {
	userRepository repository.UserRepository
	verifier       *Verifier
	emailSender    EmailSender
}

func NewAuthService(userRepository repository.UserRepository, verifier *Verifier, emailSender EmailSender) *AuthService {
	return &AuthService{
		userRepository: userRepository,
		verifier:       verifier,
		emailSender:    emailSender,
	}
}

// SendLoginCode is login step A: validate credentials, then email a one-time
// code. Missing user, inactive account and wrong password all collapse into
// ErrInvalidCredentials so callers can't probe which emails exist.
func (s *AuthService) SendLoginCode(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	code, err := s.verifier.IssueCode(ctx, user.Email, derefOrEmpty(user.Name), user.Company())
	if err != nil {
		return nil, err
	}

	err = s.emailSender.SendLoginCode(ctx, user.Email, code, user.DisplayName())
	if err != nil {
		// The issued code is useless if it never reaches the inbox
		if delErr := s.verifier.InvalidateCodes(ctx, user.Email); delErr != nil {
			slog.Warn("failed to invalidate unsent login code", "error", delErr, "email", user.Email)
		}
		return nil, fmt.Errorf("failed to send login code: %w", err)
	}

	slog.Info("login code sent", "email", user.Email)
	return user, nil
}

// VerifyLoginCode is login step B: redeem the code and return the user.
// The code's bound email is the source of truth; a caller-supplied email
// that doesn't match it is rejected as if the code were invalid.
func (s *AuthService) VerifyLoginCode(ctx context.Context, email, code string) (*model.User, error) {
	email = normalizeEmail(email)

	claims, err := s.verifier.RedeemCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if claims.Email != "" && claims.Email != email {
		slog.Warn("login code email mismatch", "bound", claims.Email, "supplied", email)
		return nil, ErrCodeInvalid
	}

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// RequestSignup creates the user record up front with is_active=false, then
// emails a verification code and link. A prior unverified signup for the
// same email is treated as a resend; a verified one is rejected.
func (s *AuthService) RequestSignup(ctx context.Context, email, password, name, companyName string) error {
	email = normalizeEmail(email)

	err := validation.ValidateEmail(email)
	if err != nil {
		return ErrInvalidEmail
	}

	existing, err := s.userRepository.ByEmail(email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	if existing != nil {
		if existing.IsVerified() {
			return ErrEmailAlreadyExists
		}
		// Unverified re-signup: keep the row, issue fresh tickets below
		slog.Info("signup re-requested for unverified user", "email", email)
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user := &model.User{
			ID:           uuid.New().String(),
			Email:        email,
			PasswordHash: string(hash),
			Name:         ptrOrNil(name),
			CompanyName:  ptrOrNil(companyName),
			Role:         model.RolePropertyManager,
			IsActive:     false,
			CreatedAt:    time.Now(),
		}

		err = s.userRepository.Create(user)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return ErrEmailAlreadyExists
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		slog.Info("unverified user created", "email", email, "user_id", user.ID)
	}

	return s.issueAndSendVerification(ctx, email, name, companyName)
}

// ResendVerification re-issues the verification email, superseding any
// outstanding code for the address.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsVerified() {
		return ErrAlreadyVerified
	}

	return s.issueAndSendVerification(ctx, user.Email, derefOrEmpty(user.Name), user.Company())
}

func (s *AuthService) issueAndSendVerification(ctx context.Context, email, name, companyName string) error {
	code, err := s.verifier.IssueCode(ctx, email, name, companyName)
	if err != nil {
		return err
	}

	token, err := s.verifier.IssueToken(email, name, companyName)
	if err != nil {
		return err
	}

	err = s.emailSender.SendSignupVerification(ctx, email, code, token, name)
	if err != nil {
		if delErr := s.verifier.InvalidateCodes(ctx, email); delErr != nil {
			slog.Warn("failed to invalidate unsent verification code", "error", delErr, "email", email)
		}
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	slog.Info("verification email sent", "email", email)
	return nil
}

// ConfirmSignupCode redeems a 6-digit signup code and activates the account.
func (s *AuthService) ConfirmSignupCode(ctx context.Context, code string) (*model.User, error) {
	claims, err := s.verifier.RedeemCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if claims.Email == "" {
		// Dev shortcut codes carry no payload; there is nothing to activate
		return nil, ErrCodeInvalid
	}

	return s.activate(ctx, claims)
}

// ConfirmSignupToken redeems a signed email-link token and activates the
// account. ErrTokenExpired propagates so the handler can route the user to
// the resend recovery flow.
func (s *AuthService) ConfirmSignupToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.verifier.RedeemToken(token)
	if err != nil {
		return nil, err
	}

	return s.activate(ctx, claims)
}

func (s *AuthService) activate(ctx context.Context, claims *VerificationClaims) (*model.User, error) {
	err := s.userRepository.MarkVerified(claims.Email, time.Now())
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to mark verified: %w", err)
		}

		// The ticket outlived the user row (or creation was deferred).
		// Recreate from the ticket payload with an unusable password;
		// password login requires a reset through support.
		user, err := s.createFromClaims(claims)
		if err != nil {
			return nil, err
		}
		slog.Info("user created on verification", "email", user.Email, "user_id", user.ID)
		return user, nil
	}

	user, err := s.userRepository.ByEmail(claims.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	slog.Info("email verified", "email", user.Email, "user_id", user.ID)
	return user, nil
}

// AuthenticateOAuth merges a provider callback into the local user store:
// an existing user is idempotently marked verified and active, a new one is
// created with a random unusable password.
func (s *AuthService) AuthenticateOAuth(ctx context.Context, email, name string) (*model.User, error) {
	email = normalizeEmail(email)

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to lookup user: %w", err)
		}

		user, err = s.createFromClaims(&VerificationClaims{Email: email, Name: name})
		if err != nil {
			return nil, err
		}

		slog.Info("new OAuth user created", "email", email, "user_id", user.ID)
		return user, nil
	}

	now := time.Now()
	changed := false
	if user.EmailVerifiedAt == nil {
		user.EmailVerifiedAt = &now
		changed = true
	}
	if !user.IsActive {
		user.IsActive = true
		changed = true
	}
	if user.Name == nil && name != "" {
		user.Name = &name
		changed = true
	}
	if changed {
		err = s.userRepository.Update(user)
		if err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	slog.Info("user authenticated via OAuth", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// CompleteProfile records the company name collected after OAuth signup.
func (s *AuthService) CompleteProfile(ctx context.Context, email, companyName string) error {
	email = normalizeEmail(email)
	companyName = strings.TrimSpace(companyName)

	if companyName == "" {
		return errors.New("company name is required")
	}

	err := s.userRepository.SetCompanyName(email, companyName)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to set company name: %w", err)
	}

	slog.Info("profile completed", "email", email)
	return nil
}

// createFromClaims builds an active, verified user carrying a random
// bcrypt-hashed placeholder password that can never be used to log in.
func (s *AuthService) createFromClaims(claims *VerificationClaims) (*model.User, error) {
	placeholder, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash placeholder password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:              uuid.New().String(),
		Email:           claims.Email,
		PasswordHash:    string(placeholder),
		Name:            ptrOrNil(claims.Name),
		CompanyName:     ptrOrNil(claims.CompanyName),
		Role:            model.RolePropertyManager,
		IsActive:        true,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
	}

	err = s.userRepository.Create(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func ptrOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
