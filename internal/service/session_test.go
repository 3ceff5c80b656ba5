package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/unitnode/unitnode/internal/model"
)

func testUser() *model.User {
	name := "Alice"
	return &model.User{
		ID:    "user-1",
		Email: "a@x.com",
		Name:  &name,
		Role:  model.RolePropertyManager,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	sessions := NewSessionService("test-secret", 7*24*time.Hour, false)

	token, err := sessions.Create(testUser())
	require.NoError(t, err)

	claims, err := sessions.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "a@x.com", claims.Email)
	require.Equal(t, model.RolePropertyManager, claims.Role)
}

func TestSessionExpiryRejected(t *testing.T) {
	sessions := NewSessionService("test-secret", -time.Minute, false)

	token, err := sessions.Create(testUser())
	require.NoError(t, err)

	_, err = sessions.Verify(token)
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSessionWrongSecretRejected(t *testing.T) {
	issuer := NewSessionService("secret-one", time.Hour, false)
	verifier := NewSessionService("secret-two", time.Hour, false)

	token, err := issuer.Create(testUser())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSessionFromRequest(t *testing.T) {
	sessions := NewSessionService("test-secret", time.Hour, false)

	token, err := sessions.Create(testUser())
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: token})

	claims := sessions.FromRequest(r)
	require.NotNil(t, claims)
	require.Equal(t, "user-1", claims.UserID)
}

func TestSessionFromRequestMissingCookie(t *testing.T) {
	sessions := NewSessionService("test-secret", time.Hour, false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Nil(t, sessions.FromRequest(r))
}

func TestSessionFromRequestGarbageCookie(t *testing.T) {
	sessions := NewSessionService("test-secret", time.Hour, false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "garbage"})
	require.Nil(t, sessions.FromRequest(r))
}

func TestSetCookieAttributes(t *testing.T) {
	sessions := NewSessionService("test-secret", time.Hour, true)

	w := httptest.NewRecorder()
	sessions.SetCookie(w, "tok")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	cookie := cookies[0]
	require.Equal(t, "session", cookie.Name)
	require.Equal(t, "tok", cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.Equal(t, "/", cookie.Path)
	require.Equal(t, 3600, cookie.MaxAge)
}

func TestClearCookie(t *testing.T) {
	sessions := NewSessionService("test-secret", time.Hour, false)

	w := httptest.NewRecorder()
	sessions.ClearCookie(w)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "session", cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.True(t, cookies[0].Expires.Before(time.Now()))
}
