package events

import (
	"context"
	"log/slog"
)

// LoggingPublisher emits audit events to the structured log. Deployments
// without a broker run this; the worker contract stays identical either way.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType string, payload []byte) error {
	p.logger.InfoContext(ctx, "audit event published", "event_type", eventType, "payload", string(payload))
	return nil
}
