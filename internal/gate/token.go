package gate

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// newAccessCode generates the 12-character upper-cased hex access code
// issued at enrollment.
func newAccessCode() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// newSessionID generates a 32-character hex access session identifier.
func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
