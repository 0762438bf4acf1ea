package security

import (
	"strings"
	"testing"
)

func TestHashPassword_SaltedAndNonDeterministic(t *testing.T) {
	first, err := HashPassword("secret1")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	second, err := HashPassword("secret1")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if first == second {
		t.Fatalf("two hashes of the same password must differ, both were %q", first)
	}

	salt, digest, ok := strings.Cut(first, "$")

	if !ok {
		t.Fatalf("encoded hash missing delimiter: %q", first)
	}

	if len(salt) != 32 {
		t.Fatalf("salt should be 32 hex chars, got %d", len(salt))
	}

	if len(digest) != 64 {
		t.Fatalf("digest should be 64 hex chars, got %d", len(digest))
	}
}

func TestVerifyPassword_RoundTrip(t *testing.T) {
	cases := []string{
		"secret1",
		"",
		"pa$$word$with$delimiters",
		"паролька",
		strings.Repeat("x", 500),
	}

	for _, plain := range cases {
		encoded, err := HashPassword(plain)

		if err != nil {
			t.Fatalf("hash %q failed: %v", plain, err)
		}

		if !VerifyPassword(plain, encoded) {
			t.Errorf("verify failed for %q", plain)
		}

		if VerifyPassword(plain+"x", encoded) {
			t.Errorf("verify accepted wrong password for %q", plain)
		}
	}
}

func TestVerifyPassword_MalformedStoredHashFailsClosed(t *testing.T) {
	malformed := []string{
		"",
		"nodelimiter",
		"$",
		"$digestonly",
		"saltonly$",
		"salt$digest$extra",
	}

	for _, stored := range malformed {
		if VerifyPassword("secret1", stored) {
			t.Errorf("verify must fail for malformed stored hash %q", stored)
		}
	}
}
