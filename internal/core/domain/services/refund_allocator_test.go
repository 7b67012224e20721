package services_test

import (
	"testing"
	"time"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/pledge"
	"flowerstand/internal/core/domain/model/settlement"
	"flowerstand/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pledgedAt = time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

func newPledges(t *testing.T, projectID kernel.UUID, amounts ...int64) []*pledge.Pledge {
	t.Helper()
	pledges := make([]*pledge.Pledge, 0, len(amounts))
	for i, amount := range amounts {
		p, err := pledge.NewPledge(kernel.NewUUID(), projectID, kernel.NewUUID(), amount,
			pledgedAt.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		pledges = append(pledges, p)
	}
	return pledges
}

func TestRefundAllocator_Allocate(t *testing.T) {
	allocator := services.NewRefundAllocator()
	projectID := kernel.NewUUID()

	t.Run("should split proportionally when it divides evenly", func(t *testing.T) {
		pledges := newPledges(t, projectID, 60000, 40000)

		shares := allocator.Allocate(45000, pledges)

		require.Len(t, shares, 2)
		assert.Equal(t, int64(27000), shares[0].Amount)
		assert.Equal(t, int64(18000), shares[1].Amount)
		assert.True(t, shares[0].PledgeID.IsEqual(pledges[0].ID()))
		assert.True(t, shares[1].SupporterID.IsEqual(pledges[1].SupporterID()))
	})

	t.Run("should hand leftover units to the largest remainders", func(t *testing.T) {
		pledges := newPledges(t, projectID, 1, 1, 1)

		shares := allocator.Allocate(2, pledges)

		require.Len(t, shares, 2)
		assert.Equal(t, int64(2), settlement.SumShares(shares))
		// equal remainders: the two earliest pledges win
		assert.True(t, shares[0].PledgeID.IsEqual(pledges[0].ID()))
		assert.True(t, shares[1].PledgeID.IsEqual(pledges[1].ID()))
	})

	t.Run("should always add up to the refund", func(t *testing.T) {
		pledges := newPledges(t, projectID, 3333, 1234, 999, 7, 50000, 1)
		total := pledge.Total(pledges)

		for refund := int64(0); refund <= total; refund += 997 {
			shares := allocator.Allocate(refund, pledges)
			assert.Equal(t, refund, settlement.SumShares(shares))
			for i, share := range shares {
				assert.Positive(t, share.Amount, "share %d", i)
			}
		}
		assert.Equal(t, total, settlement.SumShares(allocator.Allocate(total, pledges)))
	})

	t.Run("should never give a supporter more than pledged", func(t *testing.T) {
		pledges := newPledges(t, projectID, 5, 10, 85)

		shares := allocator.Allocate(100, pledges)

		require.Len(t, shares, 3)
		for i, share := range shares {
			assert.Equal(t, pledges[i].Amount(), share.Amount)
		}
	})

	t.Run("should return nothing without pledges or refund", func(t *testing.T) {
		assert.Nil(t, allocator.Allocate(1000, nil))
		assert.Nil(t, allocator.Allocate(0, newPledges(t, projectID, 100)))
	})
}
