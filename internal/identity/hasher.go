// Package identity turns customer emails into account-scoped pseudonyms.
package identity

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// SaltSize is the length in bytes of a generated account salt
const SaltSize = 32

// EmailHash is a pseudonymised email and the salt that produced it
type EmailHash struct {
	Hash string
	Salt string
}

// NewSalt generates a fresh random account salt
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// HashEmail hashes the normalized email with HMAC-SHA256 keyed by salt.
// The same email and salt always give the same hash. An empty email
// yields an empty hash.
func HashEmail(rawEmail string, salt []byte) EmailHash {
	out := EmailHash{Salt: base64.RawStdEncoding.EncodeToString(salt)}
	email := NormalizeEmail(rawEmail)
	if email == "" {
		return out
	}
	mac := hmac.New(sha256.New, salt)
	mac.Write([]byte(email))
	out.Hash = hex.EncodeToString(mac.Sum(nil))
	return out
}

// NormalizeEmail trims and lowercases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
