package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/domain"
)

// AccountCreateParams captures operator account creation inputs.
type AccountCreateParams struct {
	Username     string
	PasswordHash string
	Email        string
	Role         domain.Role
	Credits      int64
	CreatedBy    *uuid.UUID
	CreatedAt    time.Time
}

// AccountRepository defines persistence for operator identities and their
// credit balances. Debit is part of this contract because the balance lives
// on the account row and must be decremented with a store-level floor guard.
type AccountRepository interface {
	Create(ctx context.Context, params AccountCreateParams) (domain.OperatorAccount, error)
	GetByID(ctx context.Context, accountID uuid.UUID) (domain.OperatorAccount, error)
	GetByUsername(ctx context.Context, username string) (domain.OperatorAccount, error)
	List(ctx context.Context, role domain.Role) ([]domain.OperatorAccount, error)
	Count(ctx context.Context) (int64, error)
	SetActive(ctx context.Context, accountID uuid.UUID, active bool) error
	RecordLogin(ctx context.Context, accountID uuid.UUID, ip string, at time.Time) error
	Delete(ctx context.Context, accountID uuid.UUID) error

	// AddCredits increments the balance atomically.
	AddCredits(ctx context.Context, accountID uuid.UUID, amount int64) error
	// DebitCredits decrements the balance only when it covers the amount.
	// A balance below the amount yields domain.ErrInsufficientCredits; the
	// update and the check are a single statement so concurrent debits can
	// never drive the balance negative.
	DebitCredits(ctx context.Context, accountID uuid.UUID, amount int64) error

	AssignPackage(ctx context.Context, accountID, packageID uuid.UUID) error
	UnassignPackage(ctx context.Context, accountID, packageID uuid.UUID) error
}

// ApplicationCreateParams captures tenant application creation inputs.
type ApplicationCreateParams struct {
	Name      string
	Secret    string
	OwnerID   uuid.UUID
	Version   string
	CreatedAt time.Time
}

type ApplicationRepository interface {
	Create(ctx context.Context, params ApplicationCreateParams) (domain.Application, error)
	GetByID(ctx context.Context, appID uuid.UUID) (domain.Application, error)
	// GetBySecret resolves the tenant for a signed client request. Only the
	// secret is trusted for this; names are not unique across owners.
	GetBySecret(ctx context.Context, secret string) (domain.Application, error)
	GetByNameOwner(ctx context.Context, name string, ownerID uuid.UUID) (domain.Application, error)
	List(ctx context.Context, ownerID *uuid.UUID) ([]domain.Application, error)
	SetActive(ctx context.Context, appID uuid.UUID, active bool) error
	// Delete removes the application and cascades to its packages, keys and
	// variables.
	Delete(ctx context.Context, appID uuid.UUID) error
}

type PackageCreateParams struct {
	Name         string
	DurationDays int
	AppID        uuid.UUID
	CreatedBy    uuid.UUID
	CreatedAt    time.Time
}

type PackageRepository interface {
	Create(ctx context.Context, params PackageCreateParams) (domain.Package, error)
	GetByID(ctx context.Context, packageID uuid.UUID) (domain.Package, error)
	List(ctx context.Context, appID uuid.UUID) ([]domain.Package, error)
	Delete(ctx context.Context, packageID uuid.UUID) error
}

// KeyFilter narrows key listings; nil fields match everything.
type KeyFilter struct {
	AppID     *uuid.UUID
	CreatedBy *uuid.UUID
}

// KeyRepository defines persistence for license keys. The conditional
// mutations (Claim, BindHardware) report whether this caller won the update
// so races resolve at the store rather than in application code.
type KeyRepository interface {
	// Insert persists a freshly minted key. A duplicate key string yields
	// domain.ErrKeyExists from the store's unique index.
	Insert(ctx context.Context, key domain.EndUserKey) error
	GetByID(ctx context.Context, keyID uuid.UUID) (domain.EndUserKey, error)
	GetByKeyString(ctx context.Context, key string) (domain.EndUserKey, error)
	// GetByLogin resolves a login identifier against either the key string
	// or the bound username, scoped to one application.
	GetByLogin(ctx context.Context, appID uuid.UUID, login string) (domain.EndUserKey, error)
	List(ctx context.Context, filter KeyFilter) ([]domain.EndUserKey, error)
	Count(ctx context.Context, filter KeyFilter) (int64, error)
	CountRedeemed(ctx context.Context, appID uuid.UUID) (int64, error)
	// UsernameTaken checks the per-application username namespace, which
	// includes key strings so a username can never shadow a key.
	UsernameTaken(ctx context.Context, appID uuid.UUID, username string) (bool, error)

	// Claim atomically binds username/password to an unredeemed key.
	// Returns false when another redemption got there first.
	Claim(ctx context.Context, keyID uuid.UUID, username, passwordHash, hardwareID string, at time.Time) (bool, error)
	// BindHardware captures the machine identifier on first locked login.
	// Returns false when the key was already bound, possibly by a
	// concurrent login; the caller re-reads and compares.
	BindHardware(ctx context.Context, keyID uuid.UUID, hardwareID string) (bool, error)
	ResetHardware(ctx context.Context, keyID uuid.UUID) error

	SetExpiry(ctx context.Context, keyID uuid.UUID, expiry time.Time) error
	SetActive(ctx context.Context, keyID uuid.UUID, active bool) error
	RecordLogin(ctx context.Context, keyID uuid.UUID, ip string, at time.Time) error
	Delete(ctx context.Context, keyID uuid.UUID) error
}

// VarRepository stores per-application server-side variables served to
// authenticated clients.
type VarRepository interface {
	Upsert(ctx context.Context, appID uuid.UUID, varID, data string) error
	Get(ctx context.Context, appID uuid.UUID, varID string) (string, error)
	List(ctx context.Context, appID uuid.UUID) (map[string]string, error)
	Delete(ctx context.Context, appID uuid.UUID, varID string) error
}

// OutboxEvent is the write-side event payload prior to storage.
// It is adapter-neutral to keep application code independent of broker specifics.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord represents durable outbox state, including retry/error metadata.
type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	PartitionKey   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	PublishedAt    *time.Time
	LastErrorAt    *time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

// OutboxRepository controls publish-retry workflow for audit events.
// This explicit contract enables transactional outbox patterns without leaking DB details.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}
