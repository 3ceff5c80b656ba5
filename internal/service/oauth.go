package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

var (
	ErrOAuthNotConfigured   = errors.New("google oauth is not configured")
	ErrOAuthNoEmail         = errors.New("provider did not return an email address")
	ErrOAuthEmailUnverified = errors.New("provider email is not verified")
)

// GoogleProfile is the subset of the OIDC userinfo response the signup
// sequencer needs.
type GoogleProfile struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
}

func (p *GoogleProfile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.GivenName
}

// OAuthService wraps the Google authorization-code flow: consent URL
// construction, code-for-token exchange and profile fetch.
type OAuthService struct {
	config      *oauth2.Config
	userinfoURL string
}

func NewOAuthService(clientID, clientSecret, redirectURL string) *OAuthService {
	return &OAuthService{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userinfoURL: googleUserinfoURL,
	}
}

func (s *OAuthService) Configured() bool {
	return s.config.ClientID != "" && s.config.ClientSecret != ""
}

// AuthCodeURL builds the consent-screen redirect carrying the CSRF state.
func (s *OAuthService) AuthCodeURL(state string) string {
	return s.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Profile exchanges the callback code and fetches the user's profile.
// The email must be present and provider-verified.
func (s *OAuthService) Profile(ctx context.Context, code string) (*GoogleProfile, error) {
	if !s.Configured() {
		return nil, ErrOAuthNotConfigured
	}

	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	client := s.config.Client(ctx, token)
	resp, err := client.Get(s.userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo fetch failed: %w", err)
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close userinfo response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Error("google userinfo fetch failed", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("userinfo fetch failed: status %d", resp.StatusCode)
	}

	var profile GoogleProfile
	err = json.NewDecoder(resp.Body).Decode(&profile)
	if err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}

	if profile.Email == "" {
		return nil, ErrOAuthNoEmail
	}
	if !profile.EmailVerified {
		return nil, ErrOAuthEmailUnverified
	}

	return &profile, nil
}
