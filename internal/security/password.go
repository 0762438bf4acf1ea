package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

const saltBytes = 16

// HashPassword derives a salted SHA-256 credential encoded as "salt$digest",
// both hex. A fresh salt is drawn per call, so hashing the same password
// twice never yields the same stored value.
func HashPassword(plain string) (string, error) {
	raw := make([]byte, saltBytes)

	_, err := rand.Read(raw)

	if err != nil {
		return "", err
	}

	salt := hex.EncodeToString(raw)
	digest := sha256.Sum256([]byte(plain + salt))

	return salt + "$" + hex.EncodeToString(digest[:]), nil
}

// VerifyPassword recomputes the digest for the stored salt and compares in
// constant time. Malformed stored values (no delimiter, empty segments,
// extra delimiters) fail closed.
func VerifyPassword(plain, stored string) bool {
	salt, want, ok := strings.Cut(stored, "$")

	if !ok || salt == "" || want == "" {
		return false
	}

	if strings.Contains(want, "$") {
		return false
	}

	digest := sha256.Sum256([]byte(plain + salt))
	got := hex.EncodeToString(digest[:])

	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
