package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/domain"
)

// SessionStore holds client protocol sessions in the cache tier. Sessions
// are write-once; expiry is the store's TTL, so a lookup after expiry is
// indistinguishable from a lookup of a session that never existed.
type SessionStore interface {
	Put(ctx context.Context, session domain.Session, ttl time.Duration) error
	// Get returns (nil, nil) for missing or expired sessions.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// PresenceStore tracks live sessions per application so init can report an
// online-user count without scanning the session keyspace.
type PresenceStore interface {
	Track(ctx context.Context, appID uuid.UUID, sessionID string, expiresAt time.Time) error
	CountOnline(ctx context.Context, appID uuid.UUID, now time.Time) (int64, error)
}
