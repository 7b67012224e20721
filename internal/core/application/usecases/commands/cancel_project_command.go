package commands

import (
	"errors"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/pkg/guard"
)

var ErrCancelProjectCommandIsNotConstructed = errors.New(
	"CancelProjectCommand must be created via NewCancelProjectCommand constructor",
)

// CancelProjectCommand asks to cancel a project and settle it. The actor must
// be the planner or an operator.
type CancelProjectCommand struct {
	projectID kernel.UUID
	actor     kernel.Actor

	guard guard.ConstructorGuard
}

func NewCancelProjectCommand(projectID kernel.UUID, actor kernel.Actor) (CancelProjectCommand, error) {
	if err := errors.Join(
		validateProjectID(projectID),
		validateActor(actor),
	); err != nil {
		return CancelProjectCommand{}, err
	}

	return CancelProjectCommand{
		projectID: projectID,
		actor:     actor,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CancelProjectCommand) Validate() error {
	return c.guard.Validate(ErrCancelProjectCommandIsNotConstructed)
}

func (c CancelProjectCommand) ProjectID() kernel.UUID {
	return c.projectID
}

func (c CancelProjectCommand) Actor() kernel.Actor {
	return c.actor
}
