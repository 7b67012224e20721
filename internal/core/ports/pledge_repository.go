package ports

import (
	"context"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/pledge"
)

// PledgeRepository reads the pledge ledger of a project.
type PledgeRepository interface {
	// Add records a pledge. The ledger is owned by the fundraising side;
	// this is used when importing it.
	Add(ctx context.Context, p *pledge.Pledge) error

	// ListByProject returns the pledges of a project ordered by pledge time.
	ListByProject(ctx context.Context, projectID kernel.UUID) ([]*pledge.Pledge, error)
}
