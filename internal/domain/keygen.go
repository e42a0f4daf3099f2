package domain

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// KeyPrefix brands every minted license key string.
const KeyPrefix = "SKYLINE"

func randomHex(bytes int) string {
	buf := make([]byte, bytes)
	// rand.Read only fails when the OS entropy source is broken; there is
	// no sensible recovery at this level, so treat it as fatal.
	if _, err := rand.Read(buf); err != nil {
		panic("domain: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

// MintKeyString produces a candidate license key: the brand prefix followed
// by three groups of eight uppercase hex characters. Uniqueness is enforced
// by the store, not here.
func MintKeyString() string {
	groups := []string{
		KeyPrefix,
		strings.ToUpper(randomHex(4)),
		strings.ToUpper(randomHex(4)),
		strings.ToUpper(randomHex(4)),
	}
	return strings.Join(groups, "-")
}

// NewAppSecret mints a per-application signing secret. 32 random bytes in
// hex keeps it copy-pasteable into client SDK config.
func NewAppSecret() string {
	return randomHex(32)
}

// NewSessionID mints an opaque client session identifier.
func NewSessionID() string {
	return randomHex(16)
}

// RandomPassword generates a short shareable password for provisioned keys
// when the operator does not supply one.
func RandomPassword() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic("domain: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
