package encryption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RoundTrip(t *testing.T) {
	svc, err := NewService("a-sufficiently-long-secret")
	require.NoError(t, err)

	ct1, err := svc.Encrypt("shpat_123")
	require.NoError(t, err)
	ct2, err := svc.Encrypt("shpat_123")
	require.NoError(t, err)
	assert.NotEqual(t, ct1, ct2, "nonce must differ per call")

	pt, err := svc.Decrypt(ct1)
	require.NoError(t, err)
	assert.Equal(t, "shpat_123", pt)
}

func TestService_WrongKey(t *testing.T) {
	a, err := NewService("a-sufficiently-long-secret")
	require.NoError(t, err)
	b, err := NewService("another-sufficiently-long-secret")
	require.NoError(t, err)

	ct, err := a.Encrypt("shpat_123")
	require.NoError(t, err)

	_, err = b.Decrypt(ct)
	assert.Error(t, err)
}

func TestService_Invalid(t *testing.T) {
	_, err := NewService("short")
	assert.Error(t, err)

	svc, err := NewService("a-sufficiently-long-secret")
	require.NoError(t, err)

	_, err = svc.Encrypt("")
	assert.Error(t, err)
	_, err = svc.Decrypt("!!!")
	assert.Error(t, err)
	_, err = svc.Decrypt("YWJj")
	assert.Error(t, err)
}
