package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials hides whether the key/username or the password failed.
	// The reason is to prevent account-enumeration side channels toward client software.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidApplication is returned when no active application matches the
	// presented secret or name/owner pair. Disabled applications are reported
	// identically to unknown ones.
	ErrInvalidApplication = errors.New("invalid application")
	// ErrSubscriptionExpired signals a structurally valid key whose expiry has passed.
	ErrSubscriptionExpired = errors.New("subscription expired")
	// ErrHardwareMismatch is returned when a hardware-locked key is presented
	// from a machine other than the one it was bound to on first use.
	ErrHardwareMismatch = errors.New("hardware id mismatch")
	// ErrInsufficientCredits is a normal ledger outcome, not a fault.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrSessionNotFound covers missing, expired and malformed session identifiers alike.
	ErrSessionNotFound = errors.New("session not found")

	ErrKeyExists      = errors.New("license key already exists")
	ErrKeyAlreadyUsed = errors.New("license key already used")
	ErrInvalidKey     = errors.New("invalid license key")
	ErrUsernameTaken  = errors.New("username already taken")

	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrTokenExpired = errors.New("token expired")
)
