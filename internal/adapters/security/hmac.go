package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSigner authenticates client protocol response bodies. The tag is an
// HMAC-SHA256 over the exact serialized bytes, hex encoded; clients verify
// against the same bytes they received, so the body must never be
// re-serialized after signing.
type HMACSigner struct{}

func NewHMACSigner() *HMACSigner {
	return &HMACSigner{}
}

func (HMACSigner) Sign(body, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s HMACSigner) Verify(body, key []byte, signature string) bool {
	expected, err := hex.DecodeString(s.Sign(body, key))
	if err != nil {
		return false
	}
	presented, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, presented)
}

// DerivedSessionKey builds the per-session signing key for every call after
// init: the key string the client sent at init joined to the application
// secret with a dash. Init itself signs with the bare secret.
func DerivedSessionKey(sentKey, appSecret string) []byte {
	return []byte(sentKey + "-" + appSecret)
}
