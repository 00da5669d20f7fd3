package crm

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// trackingTokenBytes gives 256 bits of entropy
const trackingTokenBytes = 32

// NewTrackingToken returns an unguessable, URL-safe lead tracking token
func NewTrackingToken() (string, error) {
	b := make([]byte, trackingTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate tracking token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// IsWellFormedToken rejects obviously bogus tokens before they reach the database
func IsWellFormedToken(token string) bool {
	if len(token) != trackingTokenBytes*2 {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}
