package services

import (
	"fmt"
	"time"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/pledge"
	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/core/domain/model/settlement"
)

// Settlement is an estimate together with the refund split it implies.
type Settlement struct {
	Estimate settlement.CancellationEstimate
	Shares   []settlement.RefundShare
}

// CancellationSettler combines the project's cancellation rules with the
// pledge ledger.
//
// Business rules:
//   - the pledge ledger must add up to the project's collected amount when it
//     is not empty; a mismatch is a data-integrity fault
//   - an empty ledger settles without per-supporter shares
//   - a cancelled project returns its frozen estimate, never a recomputed one
type CancellationSettler struct {
	allocator RefundAllocator
}

func NewCancellationSettler(allocator RefundAllocator) CancellationSettler {
	return CancellationSettler{allocator: allocator}
}

// Preview computes what cancelling at asOf would do without touching the project.
func (s CancellationSettler) Preview(p *project.Project, pledges []*pledge.Pledge, asOf time.Time) (Settlement, error) {
	if err := p.Validate(); err != nil {
		return Settlement{}, err
	}

	estimate, err := p.CancellationEstimate(asOf)
	if err != nil {
		return Settlement{}, err
	}

	shares, err := s.shares(p, estimate, pledges)
	if err != nil {
		return Settlement{}, err
	}

	return Settlement{Estimate: estimate, Shares: shares}, nil
}

// Settle cancels the project on behalf of actor and returns the frozen
// settlement.
func (s CancellationSettler) Settle(
	p *project.Project,
	actor kernel.Actor,
	pledges []*pledge.Pledge,
	asOf time.Time,
) (Settlement, error) {
	if err := p.Validate(); err != nil {
		return Settlement{}, err
	}

	if err := p.CanCancel(actor); err != nil {
		return Settlement{}, err
	}

	preview, err := s.Preview(p, pledges, asOf)
	if err != nil {
		return Settlement{}, err
	}

	estimate, err := p.Cancel(actor, asOf, preview.Shares)
	if err != nil {
		return Settlement{}, err
	}

	return Settlement{Estimate: estimate, Shares: preview.Shares}, nil
}

func (s CancellationSettler) shares(
	p *project.Project,
	estimate settlement.CancellationEstimate,
	pledges []*pledge.Pledge,
) ([]settlement.RefundShare, error) {
	if len(pledges) == 0 {
		return nil, nil
	}

	for _, pl := range pledges {
		if err := pl.Validate(); err != nil {
			return nil, project.NewInvalidProjectStateError(p.ID(), err)
		}
		if !pl.ProjectID().IsEqual(p.ID()) {
			return nil, project.NewInvalidProjectStateError(p.ID(),
				fmt.Errorf("pledge %s belongs to project %s", pl.ID(), pl.ProjectID()))
		}
	}

	if total := pledge.Total(pledges); total != estimate.CollectedAmount() {
		return nil, project.NewInvalidProjectStateError(p.ID(),
			fmt.Errorf("pledges add up to %d, collected amount is %d", total, estimate.CollectedAmount()))
	}

	return s.allocator.Allocate(estimate.RefundAmount(), pledges), nil
}
