package queries

import (
	"errors"
	"time"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/settlement"
	"flowerstand/internal/pkg/errs"
	"flowerstand/internal/pkg/guard"
)

var ErrPreviewCancellationQueryIsNotConstructed = errors.New(
	"PreviewCancellationQuery must be created via NewPreviewCancellationQuery constructor",
)

// PreviewCancellationQuery asks what cancelling a project now would cost.
//
// Example:
//
//	query, err := NewPreviewCancellationQuery(projectID)
//	if err != nil {
//	    return err
//	}
//
//	preview, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("refund %d, fee %d (%s)\n", preview.RefundAmount, preview.TotalFee, preview.Tier)
type PreviewCancellationQuery struct {
	projectID kernel.UUID

	guard guard.ConstructorGuard
}

func NewPreviewCancellationQuery(projectID kernel.UUID) (PreviewCancellationQuery, error) {
	if err := projectID.Validate(); err != nil {
		return PreviewCancellationQuery{}, errs.NewValueIsInvalidErrorWithCause("projectID", err)
	}
	return PreviewCancellationQuery{projectID: projectID, guard: guard.NewConstructorGuard()}, nil
}

func (q PreviewCancellationQuery) Validate() error {
	return q.guard.Validate(ErrPreviewCancellationQueryIsNotConstructed)
}

func (q PreviewCancellationQuery) ProjectID() kernel.UUID {
	return q.projectID
}

// PreviewCancellationQueryResponse is a cancellation estimate with its
// per-supporter refund split. Frozen is true for a project that is already
// cancelled; the figures are then the ones recorded at cancellation.
type PreviewCancellationQueryResponse struct {
	ProjectID       kernel.UUID
	AsOf            time.Time
	DaysRemaining   int
	Tier            settlement.Tier
	CollectedAmount int64
	BaseFee         int64
	MaterialFee     int64
	TotalFee        int64
	RefundAmount    int64
	Shares          []settlement.RefundShare
	Frozen          bool
}
