// Package outboxrepo stores domain events waiting for delivery in the
// outbox_entries table.
package outboxrepo

import (
	"time"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/outbox"

	"github.com/google/uuid"
)

// EntryDTO represents one row of the outbox_entries table.
type EntryDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EventID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	EventType   string     `gorm:"type:varchar(64);not null"`
	AggregateID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Payload     []byte     `gorm:"type:jsonb;not null"`
	Status      int        `gorm:"type:smallint;not null;index:idx_outbox_entries_status_next_retry_at,priority:1"`
	RetryCount  int        `gorm:"not null;default:0"`
	MaxRetries  int        `gorm:"not null"`
	LastError   string     `gorm:"type:text;not null;default:''"`
	NextRetryAt *time.Time `gorm:"type:timestamptz;index:idx_outbox_entries_status_next_retry_at,priority:2"`
	ProcessedAt *time.Time `gorm:"type:timestamptz"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;not null"`
	UpdatedAt   time.Time  `gorm:"type:timestamptz;not null"`
}

func (EntryDTO) TableName() string {
	return "outbox_entries"
}

func fromDomain(e *outbox.Entry) EntryDTO {
	return EntryDTO{
		ID:          e.ID().Bytes(),
		EventID:     e.EventID().Bytes(),
		EventType:   e.EventType(),
		AggregateID: e.AggregateID().Bytes(),
		Payload:     e.Payload(),
		Status:      int(e.Status()),
		RetryCount:  e.RetryCount(),
		MaxRetries:  e.MaxRetries(),
		LastError:   e.LastError(),
		NextRetryAt: e.NextRetryAt(),
		ProcessedAt: e.ProcessedAt(),
		CreatedAt:   e.CreatedAt(),
		UpdatedAt:   e.UpdatedAt(),
	}
}

func toDomain(dto EntryDTO) (*outbox.Entry, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	eventID, err := kernel.UUIDFromBytes(dto.EventID[:])
	if err != nil {
		return nil, err
	}
	aggregateID, err := kernel.UUIDFromBytes(dto.AggregateID[:])
	if err != nil {
		return nil, err
	}

	return outbox.RestoreEntry(outbox.Snapshot{
		ID:          id,
		EventID:     eventID,
		EventType:   dto.EventType,
		AggregateID: aggregateID,
		Payload:     dto.Payload,
		Status:      outbox.Status(dto.Status),
		RetryCount:  dto.RetryCount,
		MaxRetries:  dto.MaxRetries,
		LastError:   dto.LastError,
		NextRetryAt: utc(dto.NextRetryAt),
		ProcessedAt: utc(dto.ProcessedAt),
		CreatedAt:   dto.CreatedAt.UTC(),
		UpdatedAt:   dto.UpdatedAt.UTC(),
	})
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
