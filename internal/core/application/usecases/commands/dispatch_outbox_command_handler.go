package commands

import (
	"context"
	"fmt"
	"errors"
	"sync"
	"time"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/outbox"
	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/core/ports"

	"github.com/panjf2000/ants/v2"
)

// Collaborators are the outbound ports outbox events are delivered to.
type Collaborators struct {
	Notifier ports.Notifier
	Payments ports.Payments
	Chat     ports.ChatChannels
}

// errBlocked marks an entry that was not attempted because an earlier entry of
// the same aggregate failed in this batch.
var errBlocked = errors.New("blocked by an earlier undelivered event")

// DispatchOptions tune delivery.
type DispatchOptions struct {
	// IdempotencyTTL is how long a delivered event ID is remembered.
	IdempotencyTTL time.Duration
	// BaseBackoff is the first retry delay; it doubles on every failure.
	BaseBackoff time.Duration
}

// DispatchOutboxResult summarizes one batch.
type DispatchOutboxResult struct {
	Claimed int
	Sent    int
	Failed  int
	Dead    int
	// Deferred counts entries released unattempted behind a failed
	// predecessor of the same aggregate.
	Deferred int
	// Errors holds one error per entry that was not delivered.
	Errors []error
}

// DispatchOutboxCommandHandler delivers outbox entries at least once.
//
// A batch is claimed and marked PROCESSING in a short transaction, delivered
// on the worker pool with no transaction open, and the outcomes are written
// back in a second transaction. Aggregates are delivered concurrently, but the
// entries of one aggregate go out one at a time in claim order. An event ID
// already present in the idempotency store is not delivered again.
type DispatchOutboxCommandHandler struct {
	uowFactory    OutboxUoWFactory
	pool          *ants.Pool
	collaborators Collaborators
	idempotency   ports.IdempotencyStore
	clock         ports.Clock
	options       DispatchOptions
}

func NewDispatchOutboxCommandHandler(
	uowFactory OutboxUoWFactory,
	pool *ants.Pool,
	collaborators Collaborators,
	idempotency ports.IdempotencyStore,
	clock ports.Clock,
	options DispatchOptions,
) DispatchOutboxCommandHandler {
	return DispatchOutboxCommandHandler{
		uowFactory:    uowFactory,
		pool:          pool,
		collaborators: collaborators,
		idempotency:   idempotency,
		clock:         clock,
		options:       options,
	}
}

func (h DispatchOutboxCommandHandler) Handle(ctx context.Context, command DispatchOutboxCommand) (DispatchOutboxResult, error) {
	if err := command.Validate(); err != nil {
		return DispatchOutboxResult{}, err
	}

	entries, err := h.claim(ctx, command.BatchSize())
	if err != nil {
		return DispatchOutboxResult{}, err
	}
	if len(entries) == 0 {
		return DispatchOutboxResult{}, nil
	}

	outcomes := make([]error, len(entries))
	var wg sync.WaitGroup
	for _, indexes := range groupByAggregate(entries) {
		wg.Add(1)
		submitErr := h.pool.Submit(func() {
			defer wg.Done()
			h.deliverInOrder(ctx, entries, indexes, outcomes)
		})
		if submitErr != nil {
			wg.Done()
			for _, i := range indexes {
				outcomes[i] = fmt.Errorf("submit to worker pool: %w", submitErr)
			}
		}
	}
	wg.Wait()

	return h.record(ctx, entries, outcomes)
}

// groupByAggregate returns the positions of each aggregate's entries, keeping
// claim order within a group.
func groupByAggregate(entries []*outbox.Entry) [][]int {
	positions := make(map[kernel.UUID]int)
	groups := make([][]int, 0)
	for i, entry := range entries {
		g, ok := positions[entry.AggregateID()]
		if !ok {
			g = len(groups)
			positions[entry.AggregateID()] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

// deliverInOrder delivers one aggregate's entries one after another. After the
// first failure the remaining entries are not attempted; they are released and
// wait for the failed one.
func (h DispatchOutboxCommandHandler) deliverInOrder(ctx context.Context, entries []*outbox.Entry, indexes []int, outcomes []error) {
	for n, i := range indexes {
		outcomes[i] = h.deliver(ctx, entries[i])
		if outcomes[i] == nil {
			continue
		}
		for _, j := range indexes[n+1:] {
			outcomes[j] = errBlocked
		}
		return
	}
}

func (h DispatchOutboxCommandHandler) claim(ctx context.Context, limit int) ([]*outbox.Entry, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	entries, err := uow.OutboxRepository().Claim(ctx, h.clock.Now(), limit)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return entries, nil
}

func (h DispatchOutboxCommandHandler) record(
	ctx context.Context,
	entries []*outbox.Entry,
	outcomes []error,
) (DispatchOutboxResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return DispatchOutboxResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OutboxRepository()
	now := h.clock.Now()
	result := DispatchOutboxResult{Claimed: len(entries)}

	for i, entry := range entries {
		switch {
		case outcomes[i] == nil:
			entry.MarkSent(now)
			result.Sent++
		case errors.Is(outcomes[i], errBlocked):
			if err := entry.Release(now); err != nil {
				return DispatchOutboxResult{}, err
			}
			result.Deferred++
		default:
			entry.MarkFailed(outcomes[i], now, h.options.BaseBackoff)
			if entry.IsDead() {
				result.Dead++
			} else {
				result.Failed++
			}
			result.Errors = append(result.Errors,
				fmt.Errorf("deliver %s %s: %w", entry.EventType(), entry.EventID(), outcomes[i]))
		}

		if err := repo.Update(ctx, entry); err != nil {
			return DispatchOutboxResult{}, err
		}
	}

	if err := uow.Commit(ctx); err != nil {
		return DispatchOutboxResult{}, err
	}

	return result, nil
}

func (h DispatchOutboxCommandHandler) deliver(ctx context.Context, entry *outbox.Entry) error {
	key := "outbox:" + entry.EventID().String()

	processed, err := h.idempotency.IsProcessed(ctx, key)
	if err != nil {
		return fmt.Errorf("check idempotency: %w", err)
	}
	if processed {
		return nil
	}

	event, err := project.DecodeEvent(entry.EventType(), entry.Payload())
	if err != nil {
		return err
	}

	if err = h.route(ctx, event); err != nil {
		return err
	}

	if _, err = h.idempotency.MarkProcessed(ctx, key, h.options.IdempotencyTTL); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}

	return nil
}

func (h DispatchOutboxCommandHandler) route(ctx context.Context, event project.DomainEvent) error {
	switch e := event.(type) {
	case project.ProductionStatusChanged:
		return h.collaborators.Notifier.StatusChanged(ctx, e.ProjectID, e.Old, e.New)
	case project.ProjectCancelled:
		return h.collaborators.Notifier.ProjectCancelled(ctx, e.ProjectID, e.RefundAmount, e.TotalFee)
	case project.MaterialCostDeclared:
		return h.collaborators.Notifier.MaterialCostDeclared(ctx, e.ProjectID, e.Old, e.New)
	case project.RefundRequested:
		return h.collaborators.Payments.IssueRefund(ctx, ports.RefundRequest{
			RequestID: e.ID,
			ProjectID: e.ProjectID,
			Amount:    e.Amount,
			Shares:    e.Shares,
		})
	case project.ChatModeChanged:
		return h.collaborators.Chat.SetMode(ctx, e.ProjectID, e.Mode)
	default:
		return fmt.Errorf("no collaborator for %s", event.EventType())
	}
}
