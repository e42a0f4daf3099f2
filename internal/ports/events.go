package ports

import "context"

// EventPublisher delivers audit events claimed from the outbox to whatever
// sink the deployment wires in.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte) error
}
