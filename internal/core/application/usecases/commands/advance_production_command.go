package commands

import (
	"errors"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/pkg/errs"
	"flowerstand/internal/pkg/guard"
)

var ErrAdvanceProductionCommandIsNotConstructed = errors.New(
	"AdvanceProductionCommand must be created via NewAdvanceProductionCommand constructor",
)

// AdvanceProductionCommand asks to move a project's production to the next stage.
// The actor comes from verified credentials, never from the request body.
//
// Example:
//
//	cmd, err := NewAdvanceProductionCommand(projectID, project.ProductionProcessing, actor)
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
type AdvanceProductionCommand struct {
	projectID kernel.UUID
	requested project.ProductionStatus
	actor     kernel.Actor

	guard guard.ConstructorGuard
}

func NewAdvanceProductionCommand(
	projectID kernel.UUID,
	requested project.ProductionStatus,
	actor kernel.Actor,
) (AdvanceProductionCommand, error) {
	cmd := AdvanceProductionCommand{
		projectID: projectID,
		requested: requested,
		actor:     actor,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		validateProjectID(projectID),
		requested.Validate(),
		validateActor(actor),
	); err != nil {
		return AdvanceProductionCommand{}, err
	}

	return cmd, nil
}

func (c AdvanceProductionCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceProductionCommandIsNotConstructed)
}

func (c AdvanceProductionCommand) ProjectID() kernel.UUID {
	return c.projectID
}

func (c AdvanceProductionCommand) Requested() project.ProductionStatus {
	return c.requested
}

func (c AdvanceProductionCommand) Actor() kernel.Actor {
	return c.actor
}

func validateProjectID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("projectID", err)
	}
	return nil
}

func validateActor(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return errs.NewValueIsRequiredError("actor")
	}
	return nil
}
