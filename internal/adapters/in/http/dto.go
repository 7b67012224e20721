package http

import (
	"time"

	"flowerstand/internal/core/application/usecases/queries"
	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/settlement"
	"flowerstand/internal/core/domain/services"
)

// AdvanceProductionRequest is the body of PATCH .../production-status.
type AdvanceProductionRequest struct {
	Status string `json:"status" validate:"required,oneof=UNSET ACCEPTED PROCESSING DELIVERING DELIVERED COMPLETED"`
}

// DeclareMaterialCostRequest is the body of PATCH .../materials.
type DeclareMaterialCostRequest struct {
	MaterialCost        *int64 `json:"materialCost" validate:"required,min=0"`
	MaterialDescription string `json:"materialDescription" validate:"max=1000"`
}

type RefundShare struct {
	PledgeID    string `json:"pledgeId"`
	SupporterID string `json:"supporterId"`
	Amount      int64  `json:"amount"`
}

type Settlement struct {
	ProjectID        string        `json:"projectId"`
	AsOf             time.Time     `json:"asOf"`
	DaysRemaining    int           `json:"daysRemaining"`
	Tier             string        `json:"tier"`
	CancellationRate string        `json:"cancellationRate"`
	CollectedAmount  int64         `json:"collectedAmount"`
	BaseFee          int64         `json:"baseFee"`
	MaterialFee      int64         `json:"materialFee"`
	TotalFee         int64         `json:"totalFee"`
	RefundAmount     int64         `json:"refundAmount"`
	Shares           []RefundShare `json:"shares"`
	Frozen           bool          `json:"frozen"`
}

type Progress struct {
	ProjectID     string `json:"projectId"`
	Status        string `json:"status"`
	FundingStatus string `json:"fundingStatus"`
	Step          int    `json:"step"`
	TotalSteps    int    `json:"totalSteps"`
	Percent       int    `json:"percent"`
	Label         string `json:"label"`
}

type Error struct {
	Code            int    `json:"code"`
	Error           string `json:"error"`
	Message         string `json:"message"`
	CurrentStatus   string `json:"currentStatus,omitempty"`
	RequestedStatus string `json:"requestedStatus,omitempty"`
	FundingStatus   string `json:"fundingStatus,omitempty"`
}

func newSettlement(projectID kernel.UUID, e settlement.CancellationEstimate, shares []settlement.RefundShare, frozen bool) Settlement {
	return Settlement{
		ProjectID:        projectID.String(),
		AsOf:             e.AsOf(),
		DaysRemaining:    e.DaysRemaining(),
		Tier:             e.Tier().String(),
		CancellationRate: e.CancellationRate().String(),
		CollectedAmount:  e.CollectedAmount(),
		BaseFee:          e.BaseFee(),
		MaterialFee:      e.MaterialFee(),
		TotalFee:         e.TotalFee(),
		RefundAmount:     e.RefundAmount(),
		Shares:           newRefundShares(shares),
		Frozen:           frozen,
	}
}

func settlementFromPreview(r queries.PreviewCancellationQueryResponse) Settlement {
	return Settlement{
		ProjectID:        r.ProjectID.String(),
		AsOf:             r.AsOf,
		DaysRemaining:    r.DaysRemaining,
		Tier:             r.Tier.String(),
		CancellationRate: r.Tier.Rate().String(),
		CollectedAmount:  r.CollectedAmount,
		BaseFee:          r.BaseFee,
		MaterialFee:      r.MaterialFee,
		TotalFee:         r.TotalFee,
		RefundAmount:     r.RefundAmount,
		Shares:           newRefundShares(r.Shares),
		Frozen:           r.Frozen,
	}
}

func settlementFromCancel(projectID kernel.UUID, s services.Settlement) Settlement {
	return newSettlement(projectID, s.Estimate, s.Shares, true)
}

func newRefundShares(shares []settlement.RefundShare) []RefundShare {
	out := make([]RefundShare, 0, len(shares))
	for _, s := range shares {
		out = append(out, RefundShare{
			PledgeID:    s.PledgeID.String(),
			SupporterID: s.SupporterID.String(),
			Amount:      s.Amount,
		})
	}
	return out
}

func progressFromQuery(r queries.GetProjectProgressQueryResponse) Progress {
	return Progress{
		ProjectID:     r.ProjectID.String(),
		Status:        r.Status.String(),
		FundingStatus: r.FundingStatus.String(),
		Step:          r.Step,
		TotalSteps:    r.TotalSteps,
		Percent:       r.Percent,
		Label:         r.Label,
	}
}
