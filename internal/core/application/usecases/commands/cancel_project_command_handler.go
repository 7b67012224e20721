package commands

import (
	"context"

	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/core/domain/services"
	"flowerstand/internal/core/ports"
)

// CancelProjectCommandHandler cancels a project and freezes its settlement.
//
// The project row is locked for the whole transaction, so an advance racing
// this cancel either commits first (and the cancel settles the advanced
// project) or waits and then fails with AlreadyTerminal.
//
// The refund request, supporter notification and chat mode switch are
// recorded as events and reach the collaborators through the outbox.
type CancelProjectCommandHandler struct {
	uowFactory SettlementUoWFactory
	settler    services.CancellationSettler
	clock      ports.Clock
}

func NewCancelProjectCommandHandler(
	uowFactory SettlementUoWFactory,
	settler services.CancellationSettler,
	clock ports.Clock,
) CancelProjectCommandHandler {
	return CancelProjectCommandHandler{
		uowFactory: uowFactory,
		settler:    settler,
		clock:      clock,
	}
}

// Handle returns the frozen settlement on success.
func (h CancelProjectCommandHandler) Handle(ctx context.Context, command CancelProjectCommand) (services.Settlement, error) {
	if err := command.Validate(); err != nil {
		return services.Settlement{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return services.Settlement{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	projectRepo := uow.ProjectRepository()

	p, err := projectRepo.GetForUpdate(ctx, command.ProjectID())
	if err != nil {
		return services.Settlement{}, err
	}

	// fail fast before touching the ledger
	if err = p.CanCancel(command.Actor()); err != nil {
		return services.Settlement{}, err
	}

	pledges, err := uow.PledgeRepository().ListByProject(ctx, command.ProjectID())
	if err != nil {
		return services.Settlement{}, err
	}

	result, err := h.settler.Settle(p, command.Actor(), pledges, h.clock.Now())
	if err != nil {
		return services.Settlement{}, err
	}

	if err = projectRepo.Update(ctx, p); err != nil {
		return services.Settlement{}, resolveConflict(ctx, projectRepo, command.ProjectID(), project.ActionCancel, err)
	}

	if err = uow.Commit(ctx); err != nil {
		return services.Settlement{}, err
	}

	return result, nil
}
