package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
)

// SecretBytes is the entropy of a capability-link secret.
const SecretBytes = 32

// NewSecret returns a random hex token used in place of a login session
// for email links (confirm, unsubscribe, digest switch).
func NewSecret() (string, error) {
	b := make([]byte, SecretBytes)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("rand secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SecretsEqual compares a presented secret with the stored one in constant time.
// An empty stored secret never matches.
func SecretsEqual(stored, presented string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
