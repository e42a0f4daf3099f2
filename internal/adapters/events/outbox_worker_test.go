package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/ports"
)

type memOutbox struct {
	mu      sync.Mutex
	records []ports.OutboxRecord
}

func (m *memOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, ports.OutboxRecord{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      event.Payload,
		CreatedAt:    event.OccurredAt,
	})
	return nil
}

func (m *memOutbox) ClaimUnpublished(_ context.Context, limit int, claimToken string, claimUntil time.Time) ([]ports.OutboxRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.OutboxRecord, 0, limit)
	for i := range m.records {
		if len(out) == limit {
			break
		}
		r := &m.records[i]
		if r.PublishedAt != nil || r.DeadLetteredAt != nil || r.ClaimToken != nil {
			continue
		}
		token := claimToken
		until := claimUntil
		r.ClaimToken = &token
		r.ClaimUntil = &until
		out = append(out, *r)
	}
	return out, nil
}

func (m *memOutbox) MarkPublished(_ context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error {
	return m.mark(outboxID, claimToken, func(r *ports.OutboxRecord) {
		r.PublishedAt = &at
		r.ClaimToken = nil
		r.ClaimUntil = nil
	})
}

func (m *memOutbox) MarkFailed(_ context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return m.mark(outboxID, claimToken, func(r *ports.OutboxRecord) {
		r.RetryCount++
		r.LastError = &errMsg
		r.LastErrorAt = &at
		r.ClaimToken = nil
		r.ClaimUntil = nil
	})
}

func (m *memOutbox) MarkDeadLettered(_ context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return m.mark(outboxID, claimToken, func(r *ports.OutboxRecord) {
		r.LastError = &errMsg
		r.DeadLetteredAt = &at
		r.ClaimToken = nil
		r.ClaimUntil = nil
	})
}

func (m *memOutbox) mark(outboxID uuid.UUID, claimToken string, apply func(*ports.OutboxRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		r := &m.records[i]
		if r.OutboxID != outboxID {
			continue
		}
		if r.ClaimToken == nil || *r.ClaimToken != claimToken {
			return errors.New("claim token mismatch")
		}
		apply(r)
		return nil
	}
	return errors.New("record not found")
}

func (m *memOutbox) record(i int) ports.OutboxRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[i]
}

type scriptedPublisher struct {
	mu        sync.Mutex
	failures  int
	published []string
}

func (p *scriptedPublisher) Publish(_ context.Context, eventType string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, eventType)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func enqueue(t *testing.T, outbox *memOutbox, eventType string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	if err := outbox.Enqueue(context.Background(), ports.OutboxEvent{
		EventID:      id,
		EventType:    eventType,
		PartitionKey: "app-1",
		Payload:      []byte(`{"app_id":"app-1"}`),
		OccurredAt:   time.Now().UTC(),
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return id
}

func TestProcessOncePublishesAndMarks(t *testing.T) {
	t.Parallel()

	outbox := &memOutbox{}
	publisher := &scriptedPublisher{}
	worker := NewOutboxWorker(testLogger(), outbox, publisher, time.Second, 10, time.Minute, 3)

	enqueue(t, outbox, "key.provisioned")
	enqueue(t, outbox, "key.redeemed")

	if err := worker.drainOnce(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("published %d events, want 2", len(publisher.published))
	}
	for i := 0; i < 2; i++ {
		rec := outbox.record(i)
		if rec.PublishedAt == nil || rec.ClaimToken != nil {
			t.Fatalf("record %d not settled after publish: %+v", i, rec)
		}
	}

	// A second pass finds nothing left to claim.
	if err := worker.drainOnce(context.Background()); err != nil {
		t.Fatalf("idle process: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("settled records were republished")
	}
}

func TestProcessOnceRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	outbox := &memOutbox{}
	publisher := &scriptedPublisher{failures: 1}
	worker := NewOutboxWorker(testLogger(), outbox, publisher, time.Second, 10, time.Minute, 3)

	enqueue(t, outbox, "credits.issued")

	if err := worker.drainOnce(context.Background()); err != nil {
		t.Fatalf("failing pass: %v", err)
	}
	rec := outbox.record(0)
	if rec.RetryCount != 1 || rec.PublishedAt != nil || rec.LastError == nil {
		t.Fatalf("failure not recorded: %+v", rec)
	}
	if rec.ClaimToken != nil {
		t.Fatalf("failed record must be released for the next claim")
	}

	if err := worker.drainOnce(context.Background()); err != nil {
		t.Fatalf("retry pass: %v", err)
	}
	rec = outbox.record(0)
	if rec.PublishedAt == nil {
		t.Fatalf("retried record never published: %+v", rec)
	}
	if len(publisher.published) != 1 || publisher.published[0] != "credits.issued" {
		t.Fatalf("published = %v", publisher.published)
	}
}

func TestProcessOnceDeadLettersAfterMaxRetries(t *testing.T) {
	t.Parallel()

	outbox := &memOutbox{}
	publisher := &scriptedPublisher{failures: 100}
	worker := NewOutboxWorker(testLogger(), outbox, publisher, time.Second, 10, time.Minute, 2)

	enqueue(t, outbox, "key.banned")

	for i := 0; i < 3; i++ {
		if err := worker.drainOnce(context.Background()); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
	}
	rec := outbox.record(0)
	if rec.DeadLetteredAt == nil {
		t.Fatalf("record never dead-lettered: %+v", rec)
	}
	if rec.PublishedAt != nil {
		t.Fatalf("dead-lettered record marked published")
	}
	if len(publisher.published) != 0 {
		t.Fatalf("dead-lettered event reached the publisher log: %v", publisher.published)
	}

	// Dead-lettered records are never claimed again.
	publisher.failures = 0
	if err := worker.drainOnce(context.Background()); err != nil {
		t.Fatalf("post-dlq pass: %v", err)
	}
	if len(publisher.published) != 0 {
		t.Fatalf("dead-lettered record republished")
	}
}
