package auth

import (
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"strings"
)

const tokenRandomBytes = 32

// IssueToken mints a bearer token for the given user: a URL-safe random
// string joined to the decimal user id by an underscore. The token is
// stateless; nothing is persisted and nothing expires.
func IssueToken(userID int64) (string, error) {
	raw := make([]byte, tokenRandomBytes)

	_, err := rand.Read(raw)

	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(raw) + "_" + strconv.FormatInt(userID, 10), nil
}

// ResolveUserID decodes the user id from a token by parsing the segment
// after the last underscore; with no underscore the whole token is that
// segment, so a bare decimal string decodes too. This is decoding, not
// verification: the random prefix is never checked against anything, so any
// "<junk>_<int>" string resolves. Callers must confirm the id against the
// user store.
func ResolveUserID(token string) (int64, bool) {
	segment := token

	if idx := strings.LastIndex(token, "_"); idx >= 0 {
		segment = token[idx+1:]
	}

	id, err := strconv.ParseInt(segment, 10, 64)

	if err != nil {
		return 0, false
	}

	return id, true
}
