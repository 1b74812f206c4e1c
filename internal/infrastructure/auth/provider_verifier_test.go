package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"retentionos/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" || r.Header.Get("apikey") != "anon-key" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"user-1","email":"owner@example.com"}`))
		case "Bearer broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProviderVerifier_Verify(t *testing.T) {
	srv := newProvider(t)
	v := NewProviderVerifier(srv.URL+"/", "anon-key", srv.Client(), zerolog.Nop())

	session, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "owner@example.com", session.Email)

	_, err = v.Verify(context.Background(), "expired")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = v.Verify(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
}
