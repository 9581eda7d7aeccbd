package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// Configuration for scrypt key derivation.
const (
	scryptN    = 32768 // CPU/memory cost parameter
	scryptR    = 8     // block size
	scryptP    = 1     // parallelism
	keyLength  = 64    // length of the derived key
	saltLength = 16    // length of the salt
)

const algorithmTag = "scrypt"

// HashPassword derives a salted scrypt key from the password and encodes it
// as "scrypt$<salt hex>$<key hex>". The plaintext is not retained.
// It only fails if the entropy source fails, which is not recoverable.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}

	return fmt.Sprintf("%s$%s$%s",
		algorithmTag,
		hex.EncodeToString(salt),
		hex.EncodeToString(key),
	), nil
}

// VerifyPassword re-derives the key using the salt embedded in the stored
// encoding and compares it in constant time. A malformed or unrecognised
// encoding verifies as false rather than erroring: the stored value may be
// attacker-influenced and a mismatch must never panic the caller.
func VerifyPassword(password, stored string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 3 {
		return false
	}
	if parts[0] != algorithmTag {
		return false
	}

	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(parts[2])
	if err != nil {
		return false
	}

	derived, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return false
	}

	// Equal-length check before the constant-time compare so truncated
	// stored keys fail the same way as wrong passwords.
	if len(expected) != len(derived) {
		return false
	}
	return subtle.ConstantTimeCompare(expected, derived) == 1
}
