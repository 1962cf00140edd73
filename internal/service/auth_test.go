package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/betterme/internal/model"
)

func TestJWT_RoundTrip(t *testing.T) {
	auth := NewAuthService("test-secret", time.Hour, false)
	identity := &model.ExternalIdentity{
		ID:         "github|7",
		Email:      "ada@example.com",
		GivenName:  "Ada",
		FamilyName: "Lovelace",
		Picture:    "https://avatars.githubusercontent.com/u/7",
	}

	token, err := auth.GenerateJWT(identity)
	require.NoError(t, err)

	got, err := auth.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, identity, got)
	assert.Equal(t, "github", got.Provider())
}

func TestJWT_Rejects(t *testing.T) {
	auth := NewAuthService("test-secret", time.Hour, false)

	other, err := NewAuthService("other-secret", time.Hour, false).GenerateJWT(&model.ExternalIdentity{ID: "google|1"})
	require.NoError(t, err)
	_, err = auth.VerifyJWT(other)
	assert.Error(t, err)

	expired, err := NewAuthService("test-secret", -time.Minute, false).GenerateJWT(&model.ExternalIdentity{ID: "google|1"})
	require.NoError(t, err)
	_, err = auth.VerifyJWT(expired)
	assert.Error(t, err)

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	signed, err := noSubject.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = auth.VerifyJWT(signed)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = auth.VerifyJWT("garbage")
	assert.Error(t, err)
}

func TestJWTCookie(t *testing.T) {
	auth := NewAuthService("test-secret", time.Hour, true)

	rec := httptest.NewRecorder()
	auth.SetJWTCookie(rec, "token-value")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, "token-value", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	rec = httptest.NewRecorder()
	auth.ClearJWTCookie(rec)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
