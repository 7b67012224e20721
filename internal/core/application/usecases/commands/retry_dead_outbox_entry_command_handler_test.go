package commands_test

import (
	"errors"
	"testing"

	"flowerstand/internal/core/application/usecases/commands"
	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/outbox"
	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func deadEntry(t *testing.T) *outbox.Entry {
	t.Helper()
	a := newActors(t)
	p := fundraisingProject(t, a, project.ProductionUnset)
	require.NoError(t, p.Advance(a.florist, project.ProductionAccepted, now))
	entry, err := outbox.NewEntry(p.DomainEvents()[0], now)
	require.NoError(t, err)
	for !entry.IsDead() {
		require.NoError(t, entry.MarkProcessing(now))
		entry.MarkFailed(errors.New("unreachable"), now, 0)
	}
	return entry
}

func TestRetryDeadOutboxEntryCommandHandler_Handle(t *testing.T) {
	t.Run("should reset a dead entry to pending", func(t *testing.T) {
		ctx := t.Context()
		entry := deadEntry(t)
		cmd, err := commands.NewRetryDeadOutboxEntryCommand(entry.ID())
		require.NoError(t, err)

		repo := new(MockOutboxRepository)
		uow := new(MockUoW)
		mock.InOrder(
			uow.On("Begin", ctx).Return(nil).Once(),
			uow.On("OutboxRepository").Return(repo).Once(),
			repo.On("Get", ctx, entry.ID()).Return(entry, nil).Once(),
			repo.On("Update", ctx, entry).Return(nil).Once(),
			uow.On("Commit", ctx).Return(nil).Once(),
			uow.On("Rollback", ctx).Return(nil).Once(),
		)
		factory := new(MockOutboxUoWFactory)
		factory.On("Create").Return(uow).Once()

		err = commands.NewRetryDeadOutboxEntryCommandHandler(factory, fixedClock{at: now}).Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, outbox.StatusPending, entry.Status())
		assert.Equal(t, 0, entry.RetryCount())
		uow.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("should refuse an entry that is not dead", func(t *testing.T) {
		ctx := t.Context()
		a := newActors(t)
		p := fundraisingProject(t, a, project.ProductionUnset)
		require.NoError(t, p.Advance(a.florist, project.ProductionAccepted, now))
		entry, err := outbox.NewEntry(p.DomainEvents()[0], now)
		require.NoError(t, err)
		cmd, _ := commands.NewRetryDeadOutboxEntryCommand(entry.ID())

		repo := new(MockOutboxRepository)
		uow := new(MockUoW)
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("OutboxRepository").Return(repo).Once()
		repo.On("Get", ctx, entry.ID()).Return(entry, nil).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		factory := new(MockOutboxUoWFactory)
		factory.On("Create").Return(uow).Once()

		err = commands.NewRetryDeadOutboxEntryCommandHandler(factory, fixedClock{at: now}).Handle(ctx, cmd)

		require.ErrorIs(t, err, outbox.ErrInvalidStatusChange)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("should report a missing entry", func(t *testing.T) {
		ctx := t.Context()
		id := kernel.NewUUID()
		cmd, _ := commands.NewRetryDeadOutboxEntryCommand(id)

		repo := new(MockOutboxRepository)
		uow := new(MockUoW)
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("OutboxRepository").Return(repo).Once()
		repo.On("Get", ctx, id).Return(nil, errs.NewObjectNotFoundError("entryID", id)).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		factory := new(MockOutboxUoWFactory)
		factory.On("Create").Return(uow).Once()

		err := commands.NewRetryDeadOutboxEntryCommandHandler(factory, fixedClock{at: now}).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should reject an empty entry id", func(t *testing.T) {
		_, err := commands.NewRetryDeadOutboxEntryCommand(kernel.UUID{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "entryID")
	})
}
