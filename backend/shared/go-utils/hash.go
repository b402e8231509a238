// go-utils/hash.go

package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

func HashToken(raw string) string {
	hasher := sha256.New()
	hasher.Write([]byte(raw))
	return base64.URLEncoding.EncodeToString(hasher.Sum(nil))
}

// SecureCompare compares two secrets in constant time.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
