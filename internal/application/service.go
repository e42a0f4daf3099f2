package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/ports"
)

// Service implements the entitlement backend use-cases: the operator
// dashboard surface and the signed client protocol surface share one
// service so both see the same ledger and key lifecycle rules.
type Service struct {
	cfg         Config
	accounts    ports.AccountRepository
	apps        ports.ApplicationRepository
	packages    ports.PackageRepository
	keys        ports.KeyRepository
	vars        ports.VarRepository
	outbox      ports.OutboxRepository
	sessions    ports.SessionStore
	presence    ports.PresenceStore
	hasher      ports.PasswordHasher
	tokenSigner ports.TokenSigner
	nowFn       func() time.Time
}

type Dependencies struct {
	Config       Config
	Accounts     ports.AccountRepository
	Applications ports.ApplicationRepository
	Packages     ports.PackageRepository
	Keys         ports.KeyRepository
	Vars         ports.VarRepository
	Outbox       ports.OutboxRepository
	Sessions     ports.SessionStore
	Presence     ports.PresenceStore
	Hasher       ports.PasswordHasher
	TokenSigner  ports.TokenSigner
}

func NewService(deps Dependencies) *Service {
	return &Service{
		cfg:         deps.Config,
		accounts:    deps.Accounts,
		apps:        deps.Applications,
		packages:    deps.Packages,
		keys:        deps.Keys,
		vars:        deps.Vars,
		outbox:      deps.Outbox,
		sessions:    deps.Sessions,
		presence:    deps.Presence,
		hasher:      deps.Hasher,
		tokenSigner: deps.TokenSigner,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
}

// enqueueAudit records an audit event on the transactional outbox.
// Delivery is best-effort from the caller's point of view; a failed enqueue
// must never fail the business operation it describes.
func (s *Service) enqueueAudit(ctx context.Context, eventType, partitionKey string, fields map[string]any) {
	if s.outbox == nil {
		return
	}
	if fields == nil {
		fields = map[string]any{}
	}
	now := s.nowFn()
	fields["occurred_at"] = now.Format(time.RFC3339)
	payload, err := json.Marshal(fields)
	if err != nil {
		return
	}
	_ = s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: partitionKey,
		Payload:      payload,
		OccurredAt:   now,
	})
}
