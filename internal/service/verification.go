package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/unitnode/unitnode/internal/codestore"
)

var (
	ErrCodeInvalid  = errors.New("invalid or expired verification code")
	ErrTokenExpired = errors.New("verification token has expired")
	ErrTokenInvalid = errors.New("invalid verification token")
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// VerificationClaims is the payload carried by a verification ticket,
// whether it travels as a stored 6-digit code or a signed email-link token.
type VerificationClaims struct {
	Email       string
	Name        string
	CompanyName string
}

type tokenClaims struct {
	Name        string `json:"name,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	jwt.RegisteredClaims
}

// Verifier issues and redeems verification tickets. Numeric codes are held
// in the injected store; link tokens are self-contained HS256 JWTs and need
// no server-side state.
type Verifier struct {
	store        codestore.Store
	tokenSecret  string
	tokenExpiry  time.Duration
	codeTTL      time.Duration
	acceptAny    bool
	isProduction bool
}

func NewVerifier(store codestore.Store, tokenSecret string, tokenExpiry, codeTTL time.Duration, acceptAny, isProduction bool) *Verifier {
	if acceptAny && isProduction {
		// Config.Load refuses this combination; belt and suspenders here.
		acceptAny = false
	}
	return &Verifier{
		store:        store,
		tokenSecret:  tokenSecret,
		tokenExpiry:  tokenExpiry,
		codeTTL:      codeTTL,
		acceptAny:    acceptAny,
		isProduction: isProduction,
	}
}

// IssueCode generates a random 6-digit code for email and stores it. Any
// prior live code for the same email becomes permanently unredeemable.
func (v *Verifier) IssueCode(ctx context.Context, email, name, companyName string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	entry := codestore.Entry{
		Email:       email,
		Name:        name,
		CompanyName: companyName,
	}
	err = v.store.Put(ctx, code, entry, v.codeTTL)
	if err != nil {
		return "", fmt.Errorf("failed to store code: %w", err)
	}

	return code, nil
}

// RedeemCode consumes a code and returns its payload. A code is redeemable
// exactly once; of concurrent redemptions only one can win the atomic
// consume. An expired code is consumed and rejected.
func (v *Verifier) RedeemCode(ctx context.Context, code string) (*VerificationClaims, error) {
	if !codePattern.MatchString(code) {
		return nil, ErrCodeInvalid
	}

	entry, err := v.store.Consume(ctx, code)
	if err != nil {
		if errors.Is(err, codestore.ErrNotFound) {
			if v.acceptAny && !v.isProduction {
				// Development shortcut: any well-formed code passes.
				// The returned claims carry no email, so callers that
				// need one fall back to their own input.
				slog.Warn("accepting unknown verification code (AUTH_CODE_ACCEPT_ANY)", "code", code)
				return &VerificationClaims{}, nil
			}
			return nil, ErrCodeInvalid
		}
		return nil, fmt.Errorf("failed to consume code: %w", err)
	}

	if entry.Expired(time.Now()) {
		return nil, ErrCodeInvalid
	}

	return &VerificationClaims{
		Email:       entry.Email,
		Name:        entry.Name,
		CompanyName: entry.CompanyName,
	}, nil
}

// InvalidateCodes removes all outstanding codes for email.
func (v *Verifier) InvalidateCodes(ctx context.Context, email string) error {
	return v.store.DeleteByEmail(ctx, email)
}

// IssueToken produces a signed, self-contained verification token for email
// links. No server-side state is kept.
func (v *Verifier) IssueToken(email, name, companyName string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Name:        name,
		CompanyName: companyName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.tokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(v.tokenSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// RedeemToken verifies signature and expiry and returns the payload.
// ErrTokenExpired is reported separately so callers can route expired links
// to the resend recovery flow instead of a generic failure.
func (v *Verifier) RedeemToken(tokenString string) (*VerificationClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.tokenSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return &VerificationClaims{
		Email:       claims.Subject,
		Name:        claims.Name,
		CompanyName: claims.CompanyName,
	}, nil
}

// generateCode returns a random 6-digit decimal string, leading zeros kept.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
