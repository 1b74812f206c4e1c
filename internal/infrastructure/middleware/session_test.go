package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"retentionos/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type stubIntegrations map[string]string

func (s stubIntegrations) Resolve(_ context.Context, key string) (*domain.Integration, error) {
	if owner, ok := s[key]; ok {
		return &domain.Integration{Key: key, OwnerID: owner}, nil
	}
	return nil, nil
}

type stubVerifier map[string]string

func (s stubVerifier) Verify(_ context.Context, token string) (*domain.Session, error) {
	if owner, ok := s[token]; ok {
		return &domain.Session{UserID: owner}, nil
	}
	return nil, domain.ErrUnauthorized
}

func serveWithSession(r *http.Request) *httptest.ResponseRecorder {
	mw := SessionMiddleware(
		stubIntegrations{"int-key": "owner-int"},
		stubVerifier{"tok": "owner-tok"},
		zerolog.Nop(),
	)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(domain.GetOwnerIDFromContext(r.Context())))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestSessionMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no credentials",
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Unauthorized"}`,
		},
		{
			name:       "bearer token",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer tok") },
			wantStatus: http.StatusOK,
			wantBody:   "owner-tok",
		},
		{
			name: "cookie token",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "tok"})
			},
			wantStatus: http.StatusOK,
			wantBody:   "owner-tok",
		},
		{
			name:       "integration key",
			setup:      func(r *http.Request) { r.Header.Set("X-Integration-Key", "int-key") },
			wantStatus: http.StatusOK,
			wantBody:   "owner-int",
		},
		{
			name:       "unknown integration key",
			setup:      func(r *http.Request) { r.Header.Set("X-Integration-Key", "nope") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "rejected token",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer stale") },
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/metrics/overview", nil)
			tt.setup(r)
			rec := serveWithSession(r)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				if tt.wantStatus == http.StatusOK {
					assert.Equal(t, tt.wantBody, rec.Body.String())
				} else {
					assert.JSONEq(t, tt.wantBody, rec.Body.String())
				}
			}
		})
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	h := SecurityHeadersMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
