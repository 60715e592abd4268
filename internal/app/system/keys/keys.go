// Package keys turns configured secrets into fixed-size keys.
package keys

import (
	"crypto/sha256"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// MinSecretLen is the shortest secret accepted in production.
const MinSecretLen = 32

// ErrEmptySecret is returned for an empty secret.
var ErrEmptySecret = errors.New("keys: secret is empty")

// Derive expands secret into a size-byte key bound to purpose. Different
// purposes yield independent keys from the same secret.
func Derive(secret, purpose string, size int) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	key := make([]byte, size)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("stratastock/"+purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// IsWeak reports whether secret is too short or looks like a placeholder.
func IsWeak(secret string) bool {
	return len(secret) < MinSecretLen || IsDefault(secret)
}

// IsDefault checks if the secret appears to be a default/placeholder value.
func IsDefault(secret string) bool {
	lower := strings.ToLower(secret)
	patterns := []string{
		"dev-only",
		"change-me",
		"placeholder",
		"default",
		"example",
		"insecure",
		"test-key",
		"secret123",
		"password",
	}
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
