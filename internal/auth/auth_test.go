package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"tasky/internal/cache"
)

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	pic := "https://img/ada.png"

	token, claims, err := svc.IssueSessionToken(Identity{ID: "42", Email: "ada@example.com", Name: "Ada", Picture: &pic})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, claims.ID)

	parsed, err := svc.ValidateToken(token)
	require.NoError(t, err)

	session := parsed.Session()
	assert.Equal(t, "42", session.ID)
	assert.Equal(t, "ada@example.com", session.Email)
	assert.Equal(t, "Ada", session.Name)
	require.NotNil(t, session.Picture)
	assert.Equal(t, pic, *session.Picture)
	assert.Equal(t, claims.ID, session.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.Expires, 5*time.Second)
}

func TestJWTService_OptionalFieldsDefault(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	token, _, err := svc.IssueSessionToken(Identity{ID: "1", Email: "x@example.com"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	session := claims.Session()
	assert.Equal(t, "", session.Name)
	assert.Nil(t, session.Picture)
}

func TestJWTService_RejectsBadTokens(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	other := NewJWTService("other-secret", time.Hour)

	foreign, _, err := other.IssueSessionToken(Identity{ID: "1", Email: "x@example.com"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewJWTService("test-secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, err := expired.IssueSessionToken(Identity{ID: "1", Email: "x@example.com"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTService_DefaultTTL(t *testing.T) {
	_, claims, err := NewJWTService("s", 0).IssueSessionToken(Identity{ID: "1", Email: "x@example.com"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultSessionTTL), claims.Session().Expires, time.Minute)
}

func TestTokenStore_Revocation(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store := NewTokenStore(cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil))

	revoked, err := store.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.RevokeToken(ctx, "jti-1", time.Minute))
	revoked, err = store.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, _ = store.IsTokenRevoked(ctx, "jti-1")
	assert.False(t, revoked)
}

func newGoogleTestServer(t *testing.T, userInfo string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(userInfo))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGoogleProvider(srv *httptest.Server) *GoogleProvider {
	return NewGoogleProvider(GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost/api/auth/callback/google",
		Endpoint: &oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		UserInfoURL: srv.URL + "/userinfo",
	})
}

func TestGoogleProvider_Exchange(t *testing.T) {
	srv := newGoogleTestServer(t, `{"sub":"g-1","email":"ada@example.com","name":"Ada","picture":"https://img/ada.png"}`)
	p := newTestGoogleProvider(srv)

	claims, err := p.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, &OAuthClaims{
		Provider: "google",
		Subject:  "g-1",
		Email:    "ada@example.com",
		Name:     "Ada",
		Picture:  "https://img/ada.png",
	}, claims)

	_, err = p.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestGoogleProvider_ExchangeRejectsMissingSubject(t *testing.T) {
	srv := newGoogleTestServer(t, `{"email":"ada@example.com"}`)
	_, err := newTestGoogleProvider(srv).Exchange(context.Background(), "good-code")
	assert.ErrorContains(t, err, "no subject")
}

func TestGoogleProvider_AuthCodeURL(t *testing.T) {
	srv := newGoogleTestServer(t, `{}`)
	raw := newTestGoogleProvider(srv).AuthCodeURL("state-xyz")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, srv.URL+"/auth"))
	assert.Equal(t, "state-xyz", u.Query().Get("state"))
	assert.Equal(t, "client-id", u.Query().Get("client_id"))
	assert.Equal(t, "openid email profile", u.Query().Get("scope"))
}
