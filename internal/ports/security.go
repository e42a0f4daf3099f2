package ports

import (
	"time"

	"github.com/google/uuid"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// OperatorClaims are the dashboard API token claims. Client protocol
// sessions never use these; they authenticate via the HMAC envelope.
type OperatorClaims struct {
	AccountID uuid.UUID `json:"account_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	KeyID     string    `json:"kid"`
}

type TokenSigner interface {
	Sign(claims OperatorClaims) (string, error)
	ParseAndValidate(token string) (OperatorClaims, error)
	PublicJWKs() ([]map[string]any, error)
}

// ResponseSigner computes the client protocol response authentication tag
// over the exact serialized body bytes.
type ResponseSigner interface {
	Sign(body, key []byte) string
	Verify(body, key []byte, signature string) bool
}
