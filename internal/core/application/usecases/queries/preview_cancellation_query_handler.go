package queries

import (
	"context"

	"flowerstand/internal/core/domain/services"
	"flowerstand/internal/core/ports"
)

type (
	// PreviewUoW reads a project and its pledge ledger in one transaction. It
	// never commits.
	PreviewUoW interface {
		Begin(ctx context.Context) error
		Rollback(ctx context.Context) error
		ProjectRepository() ports.ProjectRepository
		PledgeRepository() ports.PledgeRepository
	}

	PreviewUoWFactory interface {
		Create() PreviewUoW
	}
)

// PreviewCancellationQueryHandler computes a cancellation estimate without
// changing anything. Repeating the query at the same instant gives the same
// answer.
type PreviewCancellationQueryHandler struct {
	uowFactory PreviewUoWFactory
	settler    services.CancellationSettler
	clock      ports.Clock
}

func NewPreviewCancellationQueryHandler(
	uowFactory PreviewUoWFactory,
	settler services.CancellationSettler,
	clock ports.Clock,
) PreviewCancellationQueryHandler {
	return PreviewCancellationQueryHandler{
		uowFactory: uowFactory,
		settler:    settler,
		clock:      clock,
	}
}

// Handle returns the frozen settlement for a cancelled project and
// project.ErrAlreadyTerminal for a completed one.
func (h PreviewCancellationQueryHandler) Handle(
	ctx context.Context,
	query PreviewCancellationQuery,
) (PreviewCancellationQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return PreviewCancellationQueryResponse{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return PreviewCancellationQueryResponse{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	p, err := uow.ProjectRepository().Get(ctx, query.ProjectID())
	if err != nil {
		return PreviewCancellationQueryResponse{}, err
	}

	pledges, err := uow.PledgeRepository().ListByProject(ctx, query.ProjectID())
	if err != nil {
		return PreviewCancellationQueryResponse{}, err
	}

	preview, err := h.settler.Preview(p, pledges, h.clock.Now())
	if err != nil {
		return PreviewCancellationQueryResponse{}, err
	}

	e := preview.Estimate
	return PreviewCancellationQueryResponse{
		ProjectID:       p.ID(),
		AsOf:            e.AsOf(),
		DaysRemaining:   e.DaysRemaining(),
		Tier:            e.Tier(),
		CollectedAmount: e.CollectedAmount(),
		BaseFee:         e.BaseFee(),
		MaterialFee:     e.MaterialFee(),
		TotalFee:        e.TotalFee(),
		RefundAmount:    e.RefundAmount(),
		Shares:          preview.Shares,
		Frozen:          p.Settlement() != nil,
	}, nil
}
