package project

import (
	"errors"
	"fmt"

	"flowerstand/internal/core/domain/model/kernel"
)

var (
	ErrInvalidTransition   = errors.New("invalid production transition")
	ErrUnauthorized        = errors.New("actor is not authorized")
	ErrAlreadyTerminal     = errors.New("project is already terminal")
	ErrInvalidProjectState = errors.New("invalid project state")
	ErrNotFundraising      = errors.New("project is not fundraising")
)

// Action names the operation a rejection was raised for, for audit logs.
type Action string

const (
	ActionAdvance             Action = "advance"
	ActionCancel              Action = "cancel"
	ActionPreview             Action = "preview cancellation"
	ActionDeclareMaterialCost Action = "declare material cost"
	ActionAssignFlorist       Action = "assign florist"
	ActionChangeFunding       Action = "change funding status of"
)

type InvalidTransitionError struct {
	ProjectID kernel.UUID
	Current   ProductionStatus
	Requested ProductionStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: project %s cannot move from %s to %s",
		ErrInvalidTransition, e.ProjectID, e.Current, e.Requested)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

type UnauthorizedError struct {
	ProjectID kernel.UUID
	ActorID   kernel.UUID
	Action    Action
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("%s: actor %s may not %s project %s",
		ErrUnauthorized, e.ActorID, e.Action, e.ProjectID)
}

func (e *UnauthorizedError) Unwrap() error {
	return ErrUnauthorized
}

type AlreadyTerminalError struct {
	ProjectID     kernel.UUID
	FundingStatus FundingStatus
	Action        Action
}

func (e *AlreadyTerminalError) Error() string {
	return fmt.Sprintf("%s: cannot %s project %s in status %s",
		ErrAlreadyTerminal, e.Action, e.ProjectID, e.FundingStatus)
}

func (e *AlreadyTerminalError) Unwrap() error {
	return ErrAlreadyTerminal
}

// NotFundraisingError rejects florist work on a project whose funding has not
// reached FUNDRAISING yet.
type NotFundraisingError struct {
	ProjectID     kernel.UUID
	FundingStatus FundingStatus
	Action        Action
}

func (e *NotFundraisingError) Error() string {
	return fmt.Sprintf("%s: cannot %s project %s while funding is %s",
		ErrNotFundraising, e.Action, e.ProjectID, e.FundingStatus)
}

func (e *NotFundraisingError) Unwrap() error {
	return ErrNotFundraising
}

// InvalidProjectStateError signals a data-integrity fault rather than a user
// decision. Cause keeps the underlying validation error reachable.
type InvalidProjectStateError struct {
	ProjectID kernel.UUID
	Cause     error
}

func NewInvalidProjectStateError(projectID kernel.UUID, cause error) *InvalidProjectStateError {
	return &InvalidProjectStateError{ProjectID: projectID, Cause: cause}
}

func (e *InvalidProjectStateError) Error() string {
	return fmt.Sprintf("%s: project %s: %v", ErrInvalidProjectState, e.ProjectID, e.Cause)
}

func (e *InvalidProjectStateError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrInvalidProjectState}
	}
	return []error{ErrInvalidProjectState, e.Cause}
}
