package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/unitnode/unitnode/internal/codestore"
	"github.com/unitnode/unitnode/internal/model"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	auth   *AuthService
	repo   *fakeUserRepo
	mailer *captureMailer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	store := codestore.NewMemory()
	t.Cleanup(func() { _ = store.Close() })

	repo := newFakeUserRepo()
	mailer := &captureMailer{}
	verifier := NewVerifier(store, "test-secret", 24*time.Hour, 5*time.Minute, false, false)

	return &authFixture{
		auth:   NewAuthService(repo, verifier, mailer),
		repo:   repo,
		mailer: mailer,
	}
}

func (f *authFixture) addVerifiedUser(t *testing.T, email, password, name, company string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	user := &model.User{
		ID:              "user-" + email,
		Email:           email,
		PasswordHash:    string(hash),
		Name:            ptrOrNil(name),
		CompanyName:     ptrOrNil(company),
		Role:            model.RolePropertyManager,
		IsActive:        true,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
	}
	require.NoError(t, f.repo.Create(user))
	return user
}

func TestSignupThenConfirmCode(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	err := f.auth.RequestSignup(ctx, "jane@example.com", "Abcd1234", "Jane", "Oakwood Rentals")
	require.NoError(t, err)

	// User exists immediately but can't log in yet
	user, err := f.repo.ByEmail("jane@example.com")
	require.NoError(t, err)
	require.False(t, user.IsActive)
	require.False(t, user.IsVerified())

	mail := f.mailer.last()
	require.Equal(t, "signup", mail.Kind)
	require.Equal(t, "jane@example.com", mail.Email)
	require.Regexp(t, `^\d{6}$`, mail.Code)
	require.NotEmpty(t, mail.Token)
	require.Equal(t, "Jane", mail.Name)

	// A wrong guess consumes nothing it shouldn't and fails
	wrong := "000000"
	if wrong == mail.Code {
		wrong = "000001"
	}
	_, err = f.auth.ConfirmSignupCode(ctx, wrong)
	require.ErrorIs(t, err, ErrCodeInvalid)

	activated, err := f.auth.ConfirmSignupCode(ctx, mail.Code)
	require.NoError(t, err)
	require.True(t, activated.IsActive)
	require.True(t, activated.IsVerified())
	require.Equal(t, "jane@example.com", activated.Email)

	// Single use
	_, err = f.auth.ConfirmSignupCode(ctx, mail.Code)
	require.ErrorIs(t, err, ErrCodeInvalid)
}

func TestSignupThenConfirmToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	require.NoError(t, f.auth.RequestSignup(ctx, "jane@example.com", "Abcd1234", "Jane", ""))

	activated, err := f.auth.ConfirmSignupToken(ctx, f.mailer.last().Token)
	require.NoError(t, err)
	require.True(t, activated.IsVerified())
}

func TestSignupRejectsVerifiedDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.addVerifiedUser(t, "jane@example.com", "Abcd1234", "Jane", "")

	err := f.auth.RequestSignup(ctx, "jane@example.com", "Other123", "Jane", "")
	require.ErrorIs(t, err, ErrEmailAlreadyExists)
	require.Zero(t, f.mailer.count())
}

func TestSignupUnverifiedDuplicateResends(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	require.NoError(t, f.auth.RequestSignup(ctx, "jane@example.com", "Abcd1234", "Jane", ""))
	first := f.mailer.last().Code

	require.NoError(t, f.auth.RequestSignup(ctx, "jane@example.com", "Abcd1234", "Jane", ""))
	second := f.mailer.last().Code
	require.Equal(t, 2, f.mailer.count())

	// The first code was superseded
	if first != second {
		_, err := f.auth.ConfirmSignupCode(ctx, first)
		require.ErrorIs(t, err, ErrCodeInvalid)
	}

	_, err := f.auth.ConfirmSignupCode(ctx, second)
	require.NoError(t, err)
}

func TestSignupRejectsInvalidEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	err := f.auth.RequestSignup(ctx, "not-an-email", "Abcd1234", "", "")
	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestSignupInvalidatesCodeWhenEmailFails(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.mailer.fail = errors.New("smtp down")

	err := f.auth.RequestSignup(ctx, "jane@example.com", "Abcd1234", "", "")
	require.Error(t, err)

	// No live code remains for the address
	f.mailer.fail = nil
	require.NoError(t, f.auth.ResendVerification(ctx, "jane@example.com"))
	_, err = f.auth.ConfirmSignupCode(ctx, f.mailer.last().Code)
	require.NoError(t, err)
}

func TestResendVerification(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	require.NoError(t, f.auth.RequestSignup(ctx, "jane@example.com", "Abcd1234", "Jane", ""))
	require.NoError(t, f.auth.ResendVerification(ctx, "jane@example.com"))
	require.Equal(t, 2, f.mailer.count())
}

func TestResendVerificationUnknownEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	err := f.auth.ResendVerification(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestResendVerificationAlreadyVerified(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.addVerifiedUser(t, "jane@example.com", "Abcd1234", "Jane", "")

	err := f.auth.ResendVerification(ctx, "jane@example.com")
	require.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestConfirmTokenRecreatesMissingUser(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	require.NoError(t, f.auth.RequestSignup(ctx, "jane@example.com", "Abcd1234", "Jane", "Oakwood"))
	token := f.mailer.last().Token

	// Simulate the row disappearing before the link is clicked
	delete(f.repo.users, "jane@example.com")

	user, err := f.auth.ConfirmSignupToken(ctx, token)
	require.NoError(t, err)
	require.True(t, user.IsActive)
	require.True(t, user.IsVerified())
	require.Equal(t, "Oakwood", user.Company())
}

func TestLoginTwoStep(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.addVerifiedUser(t, "jane@example.com", "Abcd1234", "Jane", "Oakwood")

	user, err := f.auth.SendLoginCode(ctx, "Jane@Example.com", "Abcd1234")
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", user.Email)

	mail := f.mailer.last()
	require.Equal(t, "login", mail.Kind)
	require.Regexp(t, `^\d{6}$`, mail.Code)

	loggedIn, err := f.auth.VerifyLoginCode(ctx, "jane@example.com", mail.Code)
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)

	// Code is spent
	_, err = f.auth.VerifyLoginCode(ctx, "jane@example.com", mail.Code)
	require.ErrorIs(t, err, ErrCodeInvalid)
}

func TestLoginWrongPasswordIssuesNoCode(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.addVerifiedUser(t, "jane@example.com", "Abcd1234", "Jane", "")

	_, err := f.auth.SendLoginCode(ctx, "jane@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.Zero(t, f.mailer.count())
}

func TestLoginUnknownEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.auth.SendLoginCode(ctx, "nobody@example.com", "Abcd1234")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveAccountRejected(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	// Signed up but never verified
	require.NoError(t, f.auth.RequestSignup(ctx, "jane@example.com", "Abcd1234", "Jane", ""))

	_, err := f.auth.SendLoginCode(ctx, "jane@example.com", "Abcd1234")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginCodeBoundToEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.addVerifiedUser(t, "jane@example.com", "Abcd1234", "Jane", "")
	f.addVerifiedUser(t, "mallory@example.com", "Abcd1234", "Mallory", "")

	_, err := f.auth.SendLoginCode(ctx, "jane@example.com", "Abcd1234")
	require.NoError(t, err)
	code := f.mailer.last().Code

	// Jane's code can't log Mallory in
	_, err = f.auth.VerifyLoginCode(ctx, "mallory@example.com", code)
	require.ErrorIs(t, err, ErrCodeInvalid)
}

func TestLoginCodeWithoutStepA(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.addVerifiedUser(t, "jane@example.com", "Abcd1234", "Jane", "")

	_, err := f.auth.VerifyLoginCode(ctx, "jane@example.com", "123456")
	require.ErrorIs(t, err, ErrCodeInvalid)
}

func TestOAuthCreatesNewUser(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	user, err := f.auth.AuthenticateOAuth(ctx, "jane@example.com", "Jane Doe")
	require.NoError(t, err)
	require.True(t, user.IsActive)
	require.True(t, user.IsVerified())
	require.Equal(t, "Jane Doe", user.DisplayName())
	require.False(t, user.HasCompanyName())
	require.NotEmpty(t, user.PasswordHash)

	// The placeholder password never matches anything a user could type
	_, err = f.auth.SendLoginCode(ctx, "jane@example.com", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestOAuthMergesExistingUnverifiedUser(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	require.NoError(t, f.auth.RequestSignup(ctx, "jane@example.com", "Abcd1234", "", "Oakwood"))

	user, err := f.auth.AuthenticateOAuth(ctx, "jane@example.com", "Jane Doe")
	require.NoError(t, err)
	require.True(t, user.IsActive)
	require.True(t, user.IsVerified())
	require.Equal(t, "Oakwood", user.Company())

	// Password login still works with the original password
	_, err = f.auth.SendLoginCode(ctx, "jane@example.com", "Abcd1234")
	require.NoError(t, err)
}

func TestOAuthKeepsExistingName(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.addVerifiedUser(t, "jane@example.com", "Abcd1234", "Jane", "")

	user, err := f.auth.AuthenticateOAuth(ctx, "jane@example.com", "Different Name")
	require.NoError(t, err)
	require.Equal(t, "Jane", user.DisplayName())
}

func TestCompleteProfile(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.auth.AuthenticateOAuth(ctx, "jane@example.com", "Jane")
	require.NoError(t, err)

	require.NoError(t, f.auth.CompleteProfile(ctx, "jane@example.com", "Oakwood Rentals"))

	user, err := f.repo.ByEmail("jane@example.com")
	require.NoError(t, err)
	require.Equal(t, "Oakwood Rentals", user.Company())
}

func TestCompleteProfileUnknownUser(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	err := f.auth.CompleteProfile(ctx, "nobody@example.com", "Oakwood")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestCompleteProfileRequiresCompany(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	err := f.auth.CompleteProfile(ctx, "jane@example.com", "   ")
	require.Error(t, err)
}
