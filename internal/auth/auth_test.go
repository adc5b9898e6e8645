package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewToken(secret, "user-1", "ann@example.com", time.Hour)
	require.NoError(t, err)

	p, err := Verify(secret, token)
	require.NoError(t, err)
	require.Equal(t, "user-1", p.UserID)
	require.Equal(t, "ann@example.com", p.Email)
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	token, err := NewToken([]byte("other-secret"), "user-1", "ann@example.com", time.Hour)
	require.NoError(t, err)

	_, err = Verify(secret, token)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	token, err := NewToken(secret, "user-1", "ann@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = Verify(secret, token)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerify_RejectsGarbage(t *testing.T) {
	_, err := Verify(secret, "not-a-token")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestFromContext_MissingPrincipal(t *testing.T) {
	_, err := FromContext(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestMiddleware(t *testing.T) {
	var got Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := FromContext(r.Context())
		require.NoError(t, err)
		got = p
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(secret)(next)

	// No header.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Malformed header.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token.
	token, err := NewToken(secret, "user-1", "ann@example.com", time.Hour)
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-1", got.UserID)
}
