package common

import (
	"crypto/rand"
	"encoding/hex"
)

// RandHexString generates a random hexadecimal string from size random bytes.
// The resulting string is twice as long as size (two hex characters per byte).
// Used for OAuth state values and temporary object keys.
func RandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
