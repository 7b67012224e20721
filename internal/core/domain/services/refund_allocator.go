package services

import (
	"sort"

	"flowerstand/internal/core/domain/model/pledge"
	"flowerstand/internal/core/domain/model/settlement"

	"github.com/shopspring/decimal"
)

// RefundAllocator splits a refund across supporters in proportion to their
// pledges.
//
// Each pledge first receives floor(refund * amount / total). The units left
// over are handed out one by one to the pledges with the largest fractional
// remainder; ties go to the earlier pledge, then to the smaller pledge ID.
// The shares therefore always add up to the refund exactly.
//
// Example:
//
//	shares := services.NewRefundAllocator().Allocate(45000, pledges)
type RefundAllocator struct{}

func NewRefundAllocator() RefundAllocator {
	return RefundAllocator{}
}

type allocation struct {
	pledge    *pledge.Pledge
	amount    int64
	remainder decimal.Decimal
}

// Allocate returns one share per pledge that receives a non-zero amount. No
// pledges or a zero refund yield no shares.
func (RefundAllocator) Allocate(refund int64, pledges []*pledge.Pledge) []settlement.RefundShare {
	total := pledge.Total(pledges)
	if refund <= 0 || total <= 0 {
		return nil
	}

	refundDec := decimal.NewFromInt(refund)
	totalDec := decimal.NewFromInt(total)

	allocations := make([]allocation, 0, len(pledges))
	var assigned int64
	for _, p := range pledges {
		q, r := refundDec.Mul(decimal.NewFromInt(p.Amount())).QuoRem(totalDec, 0)
		amount := q.IntPart()
		assigned += amount
		allocations = append(allocations, allocation{pledge: p, amount: amount, remainder: r})
	}

	order := make([]int, len(allocations))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		x, y := allocations[order[a]], allocations[order[b]]
		if c := x.remainder.Cmp(y.remainder); c != 0 {
			return c > 0
		}
		if !x.pledge.PledgedAt().Equal(y.pledge.PledgedAt()) {
			return x.pledge.PledgedAt().Before(y.pledge.PledgedAt())
		}
		return x.pledge.ID().String() < y.pledge.ID().String()
	})

	for i := int64(0); i < refund-assigned; i++ {
		allocations[order[i]].amount++
	}

	shares := make([]settlement.RefundShare, 0, len(allocations))
	for _, a := range allocations {
		if a.amount == 0 {
			continue
		}
		shares = append(shares, settlement.RefundShare{
			PledgeID:    a.pledge.ID(),
			SupporterID: a.pledge.SupporterID(),
			Amount:      a.amount,
		})
	}
	return shares
}
