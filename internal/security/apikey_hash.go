package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/hex"
)

// APIKeyPrefix marks platform-issued API key values.
const APIKeyPrefix = "pk_"

// GenerateAPIKey returns a new random API key value (pk_ + 26 base32 chars,
// 128 bits of entropy). The plaintext is shown to the caller once; only its
// hash is stored.
func GenerateAPIKey() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return APIKeyPrefix + enc.EncodeToString(b), nil
}

// HashAPIKey returns a SHA-256 hash of the API key value, hex-encoded.
// Used for storing and looking up keys without persisting the raw value.
func HashAPIKey(value string) string {
	h := sha256.Sum256([]byte(value))
	return hex.EncodeToString(h[:])
}

// APIKeyHashEqual performs constant-time comparison of the presented value's
// hash with the stored hash. Returns true only if they match.
func APIKeyHashEqual(presentedValue, storedHash string) bool {
	presentedHash := HashAPIKey(presentedValue)
	return subtle.ConstantTimeCompare([]byte(presentedHash), []byte(storedHash)) == 1
}
