// Package project contains the Project aggregate: the unit of fulfillment of a
// crowdfunded flower stand.
//
// A project moves through two status axes. FundingStatus tracks the money
// (DRAFT → PENDING_APPROVAL → FUNDRAISING, then CANCELLED or COMPLETED), and
// ProductionStatus tracks the florist's work (ACCEPTED → PROCESSING →
// DELIVERING → DELIVERED → COMPLETED). The production order is defined once,
// in ProductionSteps, and both the state machine and the progress helpers
// read it from there.
//
// Every mutation records a DomainEvent. Events are drained by the unit of work
// into the outbox in the same transaction as the project row.
//
// Rejections are classified by sentinel:
//
//	errors.Is(err, project.ErrInvalidTransition)
//	errors.Is(err, project.ErrUnauthorized)
//	errors.Is(err, project.ErrAlreadyTerminal)
//	errors.Is(err, project.ErrNotFundraising)
//	errors.Is(err, project.ErrInvalidProjectState)
package project
