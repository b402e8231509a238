// go-utils/random.go

package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// MinTokenBytes is the smallest entropy accepted for one-shot credentials (128 bits).
const MinTokenBytes = 16

func RandomString(length int) string {
	bytes := make([]byte, length)
	_, err := rand.Read(bytes)
	if err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)[:length]
}

// RandomToken returns nBytes of crypto/rand output, hex encoded.
func RandomToken(nBytes int) (string, error) {
	if nBytes < MinTokenBytes {
		return "", fmt.Errorf("token too short: %d bytes, need at least %d", nBytes, MinTokenBytes)
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
