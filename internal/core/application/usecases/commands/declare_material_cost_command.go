package commands

import (
	"errors"
	"fmt"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/pkg/errs"
	"flowerstand/internal/pkg/guard"
)

var ErrDeclareMaterialCostCommandIsNotConstructed = errors.New(
	"DeclareMaterialCostCommand must be created via NewDeclareMaterialCostCommand constructor",
)

// DeclareMaterialCostCommand records the florist's committed material spend.
type DeclareMaterialCostCommand struct {
	projectID   kernel.UUID
	actor       kernel.Actor
	amount      int64
	description string

	guard guard.ConstructorGuard
}

func NewDeclareMaterialCostCommand(
	projectID kernel.UUID,
	actor kernel.Actor,
	amount int64,
	description string,
) (DeclareMaterialCostCommand, error) {
	var amountErr error
	if amount < 0 {
		amountErr = errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%d is negative", amount))
	}

	if err := errors.Join(
		validateProjectID(projectID),
		validateActor(actor),
		amountErr,
	); err != nil {
		return DeclareMaterialCostCommand{}, err
	}

	return DeclareMaterialCostCommand{
		projectID:   projectID,
		actor:       actor,
		amount:      amount,
		description: description,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c DeclareMaterialCostCommand) Validate() error {
	return c.guard.Validate(ErrDeclareMaterialCostCommandIsNotConstructed)
}

func (c DeclareMaterialCostCommand) ProjectID() kernel.UUID { return c.projectID }
func (c DeclareMaterialCostCommand) Actor() kernel.Actor { return c.actor }
func (c DeclareMaterialCostCommand) Amount() int64 { return c.amount }
func (c DeclareMaterialCostCommand) Description() string { return c.description }
