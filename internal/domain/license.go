package domain

import (
	"time"

	"github.com/google/uuid"
)

// Application is a tenant boundary. Every key, package, variable and client
// session is scoped to exactly one application; its secret doubles as the
// HMAC signing key for the client wire protocol.
type Application struct {
	AppID     uuid.UUID
	Name      string
	Secret    string
	OwnerID   uuid.UUID
	Version   string
	IsActive  bool
	CreatedAt time.Time
}

// Package is a named subscription duration template within an application.
type Package struct {
	PackageID    uuid.UUID
	Name         string
	DurationDays int
	AppID        uuid.UUID
	CreatedBy    uuid.UUID
	CreatedAt    time.Time
}

// HardwareBinding carries the per-key machine lock. The lock flag is fixed
// at provisioning time; the identifier is bound on the first login that
// presents one and immutable afterwards until an operator resets it.
type HardwareBinding struct {
	LockEnabled bool
	ID          string
}

// Bound reports whether a machine identifier has been captured.
func (b HardwareBinding) Bound() bool {
	return b.LockEnabled && b.ID != ""
}

// Accepts decides whether a presented identifier may log in. An empty
// presented value never trips the lock; only a bound, different, non-empty
// identifier is a mismatch.
func (b HardwareBinding) Accepts(presented string) bool {
	if !b.LockEnabled || b.ID == "" || presented == "" {
		return true
	}
	return b.ID == presented
}

// EndUserKey is a license unit: the credential an end user presents to
// client software. Username and password hash are set either at
// provisioning or when a distributed key is redeemed.
type EndUserKey struct {
	KeyID        uuid.UUID
	Key          string
	Username     string
	PasswordHash string
	AppID        uuid.UUID
	PackageID    uuid.UUID
	CreatedBy    uuid.UUID
	Binding      HardwareBinding
	Expiry       time.Time
	IsActive     bool
	CreatedAt    time.Time
	RedeemedAt   *time.Time
	LastLoginAt  *time.Time
	LastLoginIP  string
}

func (k EndUserKey) Expired(now time.Time) bool {
	return !k.Expiry.After(now)
}

// Redeemed reports whether the key has been claimed by an end user.
func (k EndUserKey) Redeemed() bool {
	return k.Username != "" || k.RedeemedAt != nil
}

// Session is an ephemeral client protocol session minted by init. It lives
// in the cache tier only; expiry is enforced by store TTL, not a field here.
type Session struct {
	SessionID string
	AppID     uuid.UUID
	SentKey   string
	CreatedAt time.Time
}
