package services

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const confirmationCodeLength = 8

var confirmationCodeAlphabet = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// generateConfirmationCode returns an uppercase alphanumeric code drawn from crypto/rand.
// Uniqueness is enforced by the store; callers retry on ErrDuplicateConfirmationCode.
func generateConfirmationCode() (string, error) {
	b := make([]rune, confirmationCodeLength)
	max := big.NewInt(int64(len(confirmationCodeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = confirmationCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// normalizeConfirmationCode makes lookups case-insensitive.
func normalizeConfirmationCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validConfirmationCode(code string) bool {
	if len(code) != confirmationCodeLength {
		return false
	}
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
