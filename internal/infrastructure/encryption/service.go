package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"retentionos/internal/ports"

	"golang.org/x/crypto/argon2"
)

// keySalt domain-separates the derived key from other uses of the secret
var keySalt = []byte("retentionos/access-token/v1")

type service struct {
	gcm cipher.AEAD
}

// NewService derives an AES-256 key from secret with Argon2id and returns an
// AES-GCM EncryptionService. Ciphertexts are base64url(nonce|ciphertext).
func NewService(secret string) (ports.EncryptionService, error) {
	if len(secret) < 16 {
		return nil, errors.New("encryption key must be at least 16 characters")
	}
	key := argon2.IDKey([]byte(secret), keySalt, 1, 64*1024, 4, 32)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &service{gcm: gcm}, nil
}

func (s *service) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("plaintext cannot be empty")
	}
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	out := s.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *service) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	ns := s.gcm.NonceSize()
	if len(raw) < ns {
		return "", errors.New("ciphertext too short")
	}
	pt, err := s.gcm.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(pt), nil
}
