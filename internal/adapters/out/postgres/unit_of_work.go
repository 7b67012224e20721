// Package postgres provides the GORM-based Unit of Work that binds the
// project, pledge and outbox repositories to one transaction.
//
// Aggregates written through a repository are tracked. On Commit their
// recorded domain events are appended to the outbox inside the same
// transaction, so a state change and the events it caused are stored
// together or not at all.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() {
//	    _ = uow.Rollback(ctx)
//	}()
//
//	p, err := uow.ProjectRepository().GetForUpdate(ctx, id)
//	if err != nil {
//	    return err
//	}
//	// ... mutate p
//	if err := uow.ProjectRepository().Update(ctx, p); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Each UnitOfWork instance belongs to one goroutine.
package postgres

import (
	"context"
	"fmt"
	"time"

	"flowerstand/internal/adapters/out/postgres/outboxrepo"
	"flowerstand/internal/adapters/out/postgres/pledgerepo"
	"flowerstand/internal/adapters/out/postgres/projectrepo"
	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/outbox"
	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate represents an aggregate modified during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// eventSource is implemented by aggregates that record domain events.
type eventSource interface {
	DomainEvents() []project.DomainEvent
	ClearDomainEvents()
}

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool.
type GormUnitOfWorkFactory struct {
	db    *gorm.DB
	lease time.Duration
}

// NewGormUnitOfWorkFactory creates a factory. outboxLease is how long a claimed
// outbox entry stays invisible to other dispatchers; zero selects
// outboxrepo.DefaultProcessingLease.
func NewGormUnitOfWorkFactory(db *gorm.DB, outboxLease time.Duration) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db, lease: outboxLease}
}

// Create produces a new UnitOfWork with its own transaction state and
// aggregate tracking.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		lease:             f.lease,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and the outbox writes
// that belong to it.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	lease             time.Duration
	trackedAggregates []trackedAggregate
}

// Begin starts the transaction. Calling it twice on the same instance is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit writes the events of every tracked aggregate to the outbox and then
// commits. Events are cleared from the aggregates only after a successful
// commit. If writing the outbox fails the transaction stays open and the
// caller is expected to roll back.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	sources, entries, err := uow.pendingEvents()
	if err != nil {
		return err
	}

	if len(entries) > 0 {
		if err = uow.OutboxRepository().Add(ctx, entries...); err != nil {
			return fmt.Errorf("write outbox: %w", err)
		}
	}

	err = uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		uow.trackedAggregates = uow.trackedAggregates[:0]
		return err
	}

	for _, source := range sources {
		source.ClearDomainEvents()
	}
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return nil
}

// Rollback discards the transaction and forgets tracked aggregates. Their
// events stay on the aggregates, which are stale after a rollback anyway.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

// ProjectRepository returns a project repository bound to the current
// transaction, or to the pool when no transaction is open.
func (uow *GormUnitOfWork) ProjectRepository() ports.ProjectRepository {
	return projectrepo.NewGormProjectRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) PledgeRepository() ports.PledgeRepository {
	return pledgerepo.NewGormPledgeRepository(uow.conn())
}

func (uow *GormUnitOfWork) OutboxRepository() ports.OutboxRepository {
	return outboxrepo.NewGormOutboxRepository(uow.conn(), uow.lease)
}

// TrackAggregate registers an aggregate written during this unit of work.
// Repositories call it after every successful Add or Update.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// pendingEvents turns the events of each distinct tracked aggregate into
// outbox entries, in recording order.
func (uow *GormUnitOfWork) pendingEvents() ([]eventSource, []*outbox.Entry, error) {
	seen := make(map[eventSource]struct{}, len(uow.trackedAggregates))
	sources := make([]eventSource, 0, len(uow.trackedAggregates))
	entries := make([]*outbox.Entry, 0)

	for _, tracked := range uow.trackedAggregates {
		source, ok := tracked.Aggregate.(eventSource)
		if !ok {
			continue
		}
		if _, dup := seen[source]; dup {
			continue
		}
		seen[source] = struct{}{}
		sources = append(sources, source)

		for _, event := range source.DomainEvents() {
			entry, err := outbox.NewEntry(event, event.OccurredAt())
			if err != nil {
				return nil, nil, fmt.Errorf("build outbox entry for %s: %w", event.EventType(), err)
			}
			entries = append(entries, entry)
		}
	}

	return sources, entries, nil
}
