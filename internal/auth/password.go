package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost is the fixed work factor for password digests.
const bcryptCost = 10

// HashPassword derives a salted one-way digest of the plaintext.
// Each call embeds a fresh random salt, so two digests of the same
// password never compare equal byte-for-byte.
func HashPassword(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
}

// VerifyPassword reports whether plaintext matches the stored digest.
// Fails closed: a missing or corrupt digest verifies as false, never
// as an error the caller could mistake for success.
func VerifyPassword(plaintext string, digest []byte) bool {
	if len(digest) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(digest, []byte(plaintext)) == nil
}
