package utils

import (
	"crypto/rand"

	"github.com/cristalhq/base64"
)

// GenerateNonce returns a fresh base64 value suitable for a CSP script nonce.
func GenerateNonce() (string, error) {
	b := make([]byte, 16) // 128 bits
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
