/*
Package randx provides functions for generating cryptographically secure random
identifiers used across the application.
*/
package randx

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// MessageID generates a standard UUID v4 string to serve as a unique identifier
// for a conversation message.
func MessageID() string {
	return uuid.New().String()
}

// DeviceID generates a UUID v4 string identifying a registered device.
func DeviceID() string {
	return uuid.New().String()
}

// HexToken returns n random bytes encoded as a lowercase hex string.
// Used for upload object keys and one-off nonces.
func HexToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
