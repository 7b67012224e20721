package commands

import (
	"context"

	"flowerstand/internal/core/ports"
)

type RetryDeadOutboxEntryCommandHandler struct {
	uowFactory OutboxUoWFactory
	clock      ports.Clock
}

func NewRetryDeadOutboxEntryCommandHandler(uowFactory OutboxUoWFactory, clock ports.Clock) RetryDeadOutboxEntryCommandHandler {
	return RetryDeadOutboxEntryCommandHandler{uowFactory: uowFactory, clock: clock}
}

// Handle resets the entry to PENDING with a fresh retry budget. Entries that
// are not dead are rejected with outbox.ErrInvalidStatusChange.
func (h RetryDeadOutboxEntryCommandHandler) Handle(ctx context.Context, command RetryDeadOutboxEntryCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OutboxRepository()

	entry, err := repo.Get(ctx, command.EntryID())
	if err != nil {
		return err
	}

	if err = entry.ResetForRetry(h.clock.Now()); err != nil {
		return err
	}

	if err = repo.Update(ctx, entry); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
