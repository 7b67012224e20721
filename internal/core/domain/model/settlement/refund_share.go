package settlement

import "flowerstand/internal/core/domain/model/kernel"

// RefundShare is one supporter's part of a project refund.
type RefundShare struct {
	PledgeID    kernel.UUID `json:"pledgeId"`
	SupporterID kernel.UUID `json:"supporterId"`
	Amount      int64       `json:"amount"`
}

// SumShares adds up the share amounts.
func SumShares(shares []RefundShare) int64 {
	var total int64
	for _, s := range shares {
		total += s.Amount
	}
	return total
}
