// Package ports defines the contracts between the core and its adapters:
// repositories bound to a unit of work and the outbound collaborators that
// receive the effects of fulfillment and cancellation.
package ports

import (
	"context"
	"errors"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/project"
)

// ErrConcurrentModification is returned by ProjectRepository.Update when the
// stored version no longer matches the one the aggregate was loaded with.
var ErrConcurrentModification = errors.New("project was modified concurrently")

// ProjectRepository defines the persistence contract for project aggregates.
type ProjectRepository interface {
	// Add persists a new project.
	Add(ctx context.Context, aggregate *project.Project) error

	// Update writes the aggregate back guarded by its version and bumps the
	// version on success. A stale version yields ErrConcurrentModification.
	// Events recorded on the aggregate are handed to the unit of work.
	Update(ctx context.Context, aggregate *project.Project) error

	// Get loads a project without locking it. Use it for reads.
	Get(ctx context.Context, id kernel.UUID) (*project.Project, error)

	// GetForUpdate loads a project and locks its row until the surrounding
	// transaction ends. Every mutating command goes through it, which is what
	// serializes a racing advance behind a cancel.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*project.Project, error)
}
