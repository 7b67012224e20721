package commands

import (
	"errors"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/pkg/errs"
	"flowerstand/internal/pkg/guard"
)

var ErrRetryDeadOutboxEntryCommandIsNotConstructed = errors.New(
	"RetryDeadOutboxEntryCommand must be created via NewRetryDeadOutboxEntryCommand constructor",
)

// RetryDeadOutboxEntryCommand revives a dead outbox entry for another round of delivery.
type RetryDeadOutboxEntryCommand struct {
	entryID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRetryDeadOutboxEntryCommand(entryID kernel.UUID) (RetryDeadOutboxEntryCommand, error) {
	if err := entryID.Validate(); err != nil {
		return RetryDeadOutboxEntryCommand{}, errs.NewValueIsInvalidErrorWithCause("entryID", err)
	}
	return RetryDeadOutboxEntryCommand{entryID: entryID, guard: guard.NewConstructorGuard()}, nil
}

func (c RetryDeadOutboxEntryCommand) Validate() error {
	return c.guard.Validate(ErrRetryDeadOutboxEntryCommandIsNotConstructed)
}

func (c RetryDeadOutboxEntryCommand) EntryID() kernel.UUID {
	return c.entryID
}
