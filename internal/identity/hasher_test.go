package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmail(t *testing.T) {
	salt := []byte("0123456789abcdef0123456789abcdef")

	tests := []struct {
		name  string
		a, b  string
		equal bool
	}{
		{"same address", "jane@example.com", "jane@example.com", true},
		{"case and whitespace", " Jane@Example.COM ", "jane@example.com", true},
		{"different address", "jane@example.com", "john@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ha := HashEmail(tt.a, salt)
			hb := HashEmail(tt.b, salt)
			assert.Equal(t, tt.equal, ha.Hash == hb.Hash)
			assert.Len(t, ha.Hash, 64)
			assert.Equal(t, ha.Salt, hb.Salt)
		})
	}
}

func TestHashEmail_SaltScopesHash(t *testing.T) {
	a := HashEmail("jane@example.com", []byte("account-a"))
	b := HashEmail("jane@example.com", []byte("account-b"))
	assert.NotEqual(t, a.Hash, b.Hash)
}

func TestHashEmail_Empty(t *testing.T) {
	h := HashEmail("   ", []byte("salt"))
	assert.Empty(t, h.Hash)
	assert.NotEmpty(t, h.Salt)
}

func TestNewSalt(t *testing.T) {
	s1, err := NewSalt()
	require.NoError(t, err)
	s2, err := NewSalt()
	require.NoError(t, err)

	assert.Len(t, s1, SaltSize)
	assert.NotEqual(t, s1, s2)
}
