// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"flowerstand/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Each handler depends only on the repositories it touches.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// ProjectRepoFactory provides access to the project repository within a transaction.
	ProjectRepoFactory interface {
		ProjectRepository() ports.ProjectRepository
	}

	// PledgeRepoFactory provides access to the pledge ledger within a transaction.
	PledgeRepoFactory interface {
		PledgeRepository() ports.PledgeRepository
	}

	// OutboxRepoFactory provides access to the outbox within a transaction.
	OutboxRepoFactory interface {
		OutboxRepository() ports.OutboxRepository
	}

	// ProjectUoW manages transactions for commands that only touch the project row.
	ProjectUoW interface {
		TxManager
		ProjectRepoFactory
	}

	ProjectUoWFactory interface {
		Create() ProjectUoW
	}

	// SettlementUoW reads the pledge ledger and writes the project in one
	// transaction.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   p, err := uow.ProjectRepository().GetForUpdate(ctx, id)
	//   pledges, err := uow.PledgeRepository().ListByProject(ctx, id)
	//   // ... settle
	//
	//   err = uow.Commit(ctx)
	SettlementUoW interface {
		TxManager
		ProjectRepoFactory
		PledgeRepoFactory
	}

	SettlementUoWFactory interface {
		Create() SettlementUoW
	}

	// OutboxUoW manages transactions for the outbox dispatcher.
	OutboxUoW interface {
		TxManager
		OutboxRepoFactory
	}

	OutboxUoWFactory interface {
		Create() OutboxUoW
	}
)
