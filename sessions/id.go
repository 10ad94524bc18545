package sessions

import (
	"crypto/sha256"
	"encoding/base64"
)

// DeriveID returns base64(SHA-256(salt + "-" + subject)). The id is stable
// for a user and salt, and cannot be linked to the subject without the salt.
func DeriveID(salt, subject string) string {
	digest := sha256.Sum256([]byte(salt + "-" + subject))
	return base64.StdEncoding.EncodeToString(digest[:])
}
