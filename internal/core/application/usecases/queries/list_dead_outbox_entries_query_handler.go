package queries

import (
	"context"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/outbox"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListDeadOutboxEntriesQueryHandler struct {
	db *gorm.DB
}

func NewListDeadOutboxEntriesQueryHandler(db *gorm.DB) ListDeadOutboxEntriesQueryHandler {
	return ListDeadOutboxEntriesQueryHandler{db: db}
}

func (h ListDeadOutboxEntriesQueryHandler) Handle(
	ctx context.Context,
	query ListDeadOutboxEntriesQuery,
) ([]ListDeadOutboxEntriesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	entries := make([]ListDeadOutboxEntriesQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			event_id,
			event_type,
			aggregate_id,
			retry_count,
			last_error,
			updated_at
		FROM outbox_entries
		WHERE status = ?
		ORDER BY updated_at DESC, id
		LIMIT ?
	`, int(outbox.StatusDead), query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var entry ListDeadOutboxEntriesQueryResponse
		var id, eventID, aggregateID uuid.UUID

		err = rows.Scan(
			&id,
			&eventID,
			&entry.EventType,
			&aggregateID,
			&entry.RetryCount,
			&entry.LastError,
			&entry.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if entry.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if entry.EventID, err = kernel.UUIDFromBytes(eventID[:]); err != nil {
			return nil, err
		}
		if entry.AggregateID, err = kernel.UUIDFromBytes(aggregateID[:]); err != nil {
			return nil, err
		}
		entry.UpdatedAt = entry.UpdatedAt.UTC()

		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
