package commands

import (
	"context"

	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/core/ports"
)

// DeclareMaterialCostCommandHandler raises a project's material cost.
type DeclareMaterialCostCommandHandler struct {
	uowFactory ProjectUoWFactory
	clock      ports.Clock
}

func NewDeclareMaterialCostCommandHandler(uowFactory ProjectUoWFactory, clock ports.Clock) DeclareMaterialCostCommandHandler {
	return DeclareMaterialCostCommandHandler{uowFactory: uowFactory, clock: clock}
}

func (h DeclareMaterialCostCommandHandler) Handle(ctx context.Context, command DeclareMaterialCostCommand) error {
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

	err = p.DeclareMaterialCost(command.Actor(), command.Amount(), command.Description(), h.clock.Now())
	if err != nil {
		return err
	}

	if err = projectRepo.Update(ctx, p); err != nil {
		return resolveConflict(ctx, projectRepo, command.ProjectID(), project.ActionDeclareMaterialCost, err)
	}

	return uow.Commit(ctx)
}
