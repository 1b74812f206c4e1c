package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

const (
	oauthStateCookie = "shopify_oauth_state"
	oauthUserCookie  = "shopify_oauth_user"
	oauthCookieAge   = 10 * time.Minute
)

// CookieSigner signs cookie values with HMAC-SHA256 so the callback can
// trust what the auth step stored.
type CookieSigner struct {
	secret []byte
	secure bool
}

// NewCookieSigner creates a signer. secure marks cookies Secure, for HTTPS deployments.
func NewCookieSigner(secret string, secure bool) *CookieSigner {
	return &CookieSigner{secret: []byte(secret), secure: secure}
}

// Sign returns value with its signature appended
func (s *CookieSigner) Sign(value string) string {
	return value + "." + s.mac(value)
}

// Verify returns the original value if signed carries a valid signature
func (s *CookieSigner) Verify(signed string) (string, bool) {
	i := strings.LastIndexByte(signed, '.')
	if i <= 0 {
		return "", false
	}
	value, sig := signed[:i], signed[i+1:]
	if !hmac.Equal([]byte(sig), []byte(s.mac(value))) {
		return "", false
	}
	return value, true
}

func (s *CookieSigner) mac(value string) string {
	m := hmac.New(sha256.New, s.secret)
	m.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(m.Sum(nil))
}

// SetSigned stores a signed, short-lived OAuth cookie
func (s *CookieSigner) SetSigned(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    s.Sign(value),
		Path:     "/",
		MaxAge:   int(oauthCookieAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadSigned returns the verified value of cookie name
func (s *CookieSigner) ReadSigned(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return s.Verify(c.Value)
}

// Clear expires cookie name
func (s *CookieSigner) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
