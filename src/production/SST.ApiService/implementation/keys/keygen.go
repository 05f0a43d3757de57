package keys

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Key format prefixes. These distinguish ordinary and admin issuance at a
// glance but carry no authorization weight; scope is decided by which store
// namespace holds the key.
const (
	KeyFormatPrefix      = "sk-sigstash-"
	AdminKeyFormatPrefix = "sk-sigstash-admin-"
)

const randomKeyBytes = 48 // 384 bits of entropy

// Generate produces an unguessable API key: the given prefix followed by the
// URL-safe, unpadded base64 encoding of 48 bytes from a cryptographically
// secure random source.
func Generate(prefix string) (string, error) {
	random := make([]byte, randomKeyBytes)
	if _, err := rand.Read(random); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return prefix + base64.RawURLEncoding.EncodeToString(random), nil
}
