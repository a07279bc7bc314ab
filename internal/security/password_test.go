package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	hash := HashPassword("toto1234!")

	assert.NotEqual(t, "toto1234!", hash)
	assert.Len(t, hash, 40)

	// Deterministic: the same input always produces the same digest.
	assert.Equal(t, hash, HashPassword("toto1234!"))
	assert.NotEqual(t, hash, HashPassword("toto1234"))
}

func TestVerifyPassword(t *testing.T) {
	stored := HashPassword("secret")

	assert.True(t, VerifyPassword("secret", stored))
	assert.False(t, VerifyPassword("Secret", stored))
	assert.False(t, VerifyPassword("", stored))
	assert.False(t, VerifyPassword("secret", "not-a-digest"))
}
