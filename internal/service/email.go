package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client       *resend.Client
	fromEmail    string
	appURL       string
	appName      string
	supportEmail string
	isDev        bool
}

func NewEmailService(apiKey, fromEmail, appURL, appName, supportEmail string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:       client,
		fromEmail:    fromEmail,
		appURL:       appURL,
		appName:      appName,
		supportEmail: supportEmail,
		isDev:        isDev,
	}
}

// SendSignupVerification delivers the signup email carrying both the 6-digit
// code and the signed verification link.
func (s *EmailService) SendSignupVerification(ctx context.Context, email, code, token, name string) error {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.appURL, token)
	subject, html := signupVerificationTemplate(code, verifyURL, s.appName, s.supportEmail)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "signup_verification", "to", email, "code", code, "url", verifyURL)
		return nil
	}

	return s.send(ctx, "signup_verification", email, subject, html)
}

// SendLoginCode delivers the second-factor code for the two-step login.
func (s *EmailService) SendLoginCode(ctx context.Context, email, code, name string) error {
	subject, html := loginCodeTemplate(code, name, s.appName, s.supportEmail)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "login_code", "to", email, "code", code)
		return nil
	}

	return s.send(ctx, "login_code", email, subject, html)
}

func (s *EmailService) send(ctx context.Context, emailType, to, subject, html string) error {
	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    stripHTML(html),
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", emailType, "to", to)
	}
	return err
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML produces the plain-text alternative for HTML emails.
func stripHTML(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	return strings.Join(strings.Fields(text), " ")
}
