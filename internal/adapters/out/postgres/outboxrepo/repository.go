package outboxrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/outbox"
	"flowerstand/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultProcessingLease is how long a claimed entry stays invisible to other
// dispatchers. An entry still PROCESSING after that is assumed abandoned.
const DefaultProcessingLease = 5 * time.Minute

// GormOutboxRepository implements OutboxRepository using GORM.
type GormOutboxRepository struct {
	db    *gorm.DB
	lease time.Duration
}

func NewGormOutboxRepository(db *gorm.DB, lease time.Duration) *GormOutboxRepository {
	if lease <= 0 {
		lease = DefaultProcessingLease
	}
	return &GormOutboxRepository{db: db, lease: lease}
}

func (r *GormOutboxRepository) Add(ctx context.Context, entries ...*outbox.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
		dtos = append(dtos, fromDomain(e))
	}

	return r.db.WithContext(ctx).Create(&dtos).Error
}

// claimLockKey names the transaction-scoped advisory lock that serializes
// claims across dispatchers.
const claimLockKey int64 = 0x666c6f7773

// Claim must run inside a transaction: the row locks are what keep two
// dispatchers from picking the same entry.
//
// Entries of one aggregate are handed out in creation order. An entry is held
// back while an earlier entry of the same aggregate is FAILED or PROCESSING,
// so a later event is never delivered ahead of one still being retried.
// DEAD entries no longer block their successors.
func (r *GormOutboxRepository) Claim(ctx context.Context, now time.Time, limit int) ([]*outbox.Entry, error) {
	if limit <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("limit", fmt.Errorf("%d is not greater than 0", limit))
	}

	db := r.db.WithContext(ctx)
	if err := db.Exec("SELECT pg_advisory_xact_lock(?)", claimLockKey).Error; err != nil {
		return nil, fmt.Errorf("acquire claim lock: %w", err)
	}

	due := r.db.Session(&gorm.Session{NewDB: true}).
		Where("status = ?", int(outbox.StatusPending)).
		Or("status = ? AND next_retry_at <= ?", int(outbox.StatusFailed), now).
		Or("status = ? AND updated_at <= ?", int(outbox.StatusProcessing), now.Add(-r.lease))

	var dtos []EntryDTO
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where(due).
		Where(`NOT EXISTS (
			SELECT 1 FROM outbox_entries earlier
			WHERE earlier.aggregate_id = outbox_entries.aggregate_id
			  AND (earlier.created_at, earlier.id) < (outbox_entries.created_at, outbox_entries.id)
			  AND earlier.status IN (?, ?))`,
			int(outbox.StatusFailed), int(outbox.StatusProcessing)).
		Order("created_at, id").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*outbox.Entry, 0, len(dtos))
	for _, dto := range dtos {
		e, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		if err = e.MarkProcessing(now); err != nil {
			return nil, err
		}
		if err = r.Update(ctx, e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func (r *GormOutboxRepository) Update(ctx context.Context, entry *outbox.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	dto := fromDomain(entry)
	result := r.db.WithContext(ctx).
		Model(&EntryDTO{}).
		Where("id = ?", dto.ID).
		Select("status", "retry_count", "last_error", "next_retry_at", "processed_at", "updated_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("outbox entry", entry.ID().String())
	}

	return nil
}

func (r *GormOutboxRepository) Get(ctx context.Context, id kernel.UUID) (*outbox.Entry, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto EntryDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("outbox entry", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}
