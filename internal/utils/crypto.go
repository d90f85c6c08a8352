// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateTokenCode returns a random hex string of the requested length,
// used for email-verification and password-reset codes.
func GenerateTokenCode(length int) (string, error) {
	b := make([]byte, (length+1)/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b)[:length], nil
}

func GenerateVerificationCode() (string, error) {
	return GenerateTokenCode(32)
}

func GeneratePasswordResetCode() (string, error) {
	return GenerateTokenCode(20)
}
