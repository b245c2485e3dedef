package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewHasherCost(t *testing.T) {
	assert.Equal(t, DefaultCost, NewHasher(0).Cost())
	assert.Equal(t, DefaultCost, NewHasher(bcrypt.MaxCost+1).Cost())
	assert.Equal(t, bcrypt.MinCost, NewHasher(bcrypt.MinCost).Cost())
}

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	passwords := []string{"Secret@123", "Zz9!abcdefgh", "Aa1@aaaaaaaaaaaaaaaaaaaaaaaaaa"}

	for _, pw := range passwords {
		t.Run(pw, func(t *testing.T) {
			digest, err := h.Hash(pw)
			require.NoError(t, err)
			assert.NotEqual(t, pw, digest)
			assert.True(t, h.Verify(pw, digest))

			// every single character mutation must fail verification
			for i := range pw {
				mutated := []byte(pw)
				mutated[i] ^= 0x01
				assert.False(t, h.Verify(string(mutated), digest), "mutation at %d verified", i)
			}
		})
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	a, err := h.Hash("Secret@123")
	require.NoError(t, err)
	b, err := h.Hash("Secret@123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("Secret@123", a))
	assert.True(t, h.Verify("Secret@123", b))
}

func TestVerifyRejectsGarbageDigest(t *testing.T) {
	assert.False(t, NewHasher(bcrypt.MinCost).Verify("Secret@123", "not-a-digest"))
}
