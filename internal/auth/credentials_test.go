package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	creds := NewCredentials(bcrypt.MinCost)

	for _, pw := range []string{"pw1", "correct horse battery staple", "ünïcødé", " "} {
		hashed, err := creds.Hash(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hashed)
		assert.True(t, creds.Verify(pw, hashed), pw)
		assert.False(t, creds.Verify(pw+"x", hashed), pw)
	}
}

func TestHashIsSalted(t *testing.T) {
	creds := NewCredentials(bcrypt.MinCost)

	a, err := creds.Hash("pw1")
	require.NoError(t, err)
	b, err := creds.Hash("pw1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, creds.Verify("pw1", a))
	assert.True(t, creds.Verify("pw1", b))
}

func TestVerifyMalformedHash(t *testing.T) {
	creds := NewCredentials(bcrypt.MinCost)

	assert.False(t, creds.Verify("pw1", ""))
	assert.False(t, creds.Verify("pw1", "not-a-bcrypt-hash"))
	assert.False(t, creds.Verify("pw1", "$2a$04$short"))
}

func TestNewCredentialsClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewCredentials(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewCredentials(bcrypt.MaxCost+1).cost)
	assert.Equal(t, bcrypt.MinCost, NewCredentials(bcrypt.MinCost).cost)
}
