package ports

import (
	"context"
	"time"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/outbox"
)

// OutboxRepository persists events waiting for delivery.
type OutboxRepository interface {
	// Add stores new entries in the current transaction.
	Add(ctx context.Context, entries ...*outbox.Entry) error

	// Claim locks up to limit deliverable entries (pending, or failed and due
	// at now), skipping rows locked by other dispatchers, and marks them
	// PROCESSING.
	Claim(ctx context.Context, now time.Time, limit int) ([]*outbox.Entry, error)

	// Update writes back the delivery outcome of an entry.
	Update(ctx context.Context, entry *outbox.Entry) error

	// Get loads a single entry.
	Get(ctx context.Context, id kernel.UUID) (*outbox.Entry, error)
}
