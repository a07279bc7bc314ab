package security

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
)

// HashPassword computes the stored form of a password: a single
// unsalted SHA-1 digest, hex encoded. The scheme is fixed; every
// stored credential in the system uses it, so changing it would
// invalidate existing accounts.
func HashPassword(password string) string {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword compares a plaintext candidate against a stored
// digest in constant time.
func VerifyPassword(password string, storedHash string) bool {
	computed := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
