package commands

import (
	"context"

	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/core/ports"
)

// AdvanceProductionCommandHandler applies a production transition under a row
// lock. The status change and its ProductionStatusChanged event are committed
// together: the unit of work writes the event to the outbox inside the same
// transaction.
//
// Example:
//
//	handler := NewAdvanceProductionCommandHandler(uowFactory, clock)
//	err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, project.ErrInvalidTransition):
//	case errors.Is(err, project.ErrAlreadyTerminal):
//	}
type AdvanceProductionCommandHandler struct {
	uowFactory ProjectUoWFactory
	clock      ports.Clock
}

func NewAdvanceProductionCommandHandler(uowFactory ProjectUoWFactory, clock ports.Clock) AdvanceProductionCommandHandler {
	return AdvanceProductionCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h AdvanceProductionCommandHandler) Handle(ctx context.Context, command AdvanceProductionCommand) error {
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

	projectRepo := uow.ProjectRepository()

	p, err := projectRepo.GetForUpdate(ctx, command.ProjectID())
	if err != nil {
		return err
	}

	if err = p.Advance(command.Actor(), command.Requested(), h.clock.Now()); err != nil {
		return err
	}

	if err = projectRepo.Update(ctx, p); err != nil {
		return resolveConflict(ctx, projectRepo, command.ProjectID(), project.ActionAdvance, err)
	}

	return uow.Commit(ctx)
}
