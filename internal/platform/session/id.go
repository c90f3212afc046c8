package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewSessionID generates a random browser session identifier
// (64-character hex string) for the pending verification cookie.
func NewSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
