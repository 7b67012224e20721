package settlement_test

import (
	"testing"
	"time"

	"flowerstand/internal/core/domain/model/settlement"
	"flowerstand/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func deliveryIn(days int) time.Time {
	return asOf.Add(time.Duration(days) * 24 * time.Hour)
}

func mustEstimate(t *testing.T, collected, material int64, days int) settlement.CancellationEstimate {
	t.Helper()
	e, err := settlement.Estimate(settlement.Inputs{
		CollectedAmount:  collected,
		MaterialCost:     material,
		DeliveryDateTime: deliveryIn(days),
	}, asOf)
	require.NoError(t, err)
	return e
}

func TestEstimate_Scenarios(t *testing.T) {
	t.Run("early cancellation refunds everything", func(t *testing.T) {
		e := mustEstimate(t, 100000, 0, 10)

		assert.Equal(t, 10, e.DaysRemaining())
		assert.True(t, decimal.Zero.Equal(e.CancellationRate()))
		assert.Equal(t, int64(0), e.BaseFee())
		assert.Equal(t, int64(0), e.TotalFee())
		assert.Equal(t, int64(100000), e.RefundAmount())
	})

	t.Run("preparation window keeps half plus materials", func(t *testing.T) {
		e := mustEstimate(t, 100000, 5000, 5)

		assert.Equal(t, settlement.TierPreparation, e.Tier())
		assert.Equal(t, int64(50000), e.BaseFee())
		assert.Equal(t, int64(5000), e.MaterialFee())
		assert.Equal(t, int64(55000), e.TotalFee())
		assert.Equal(t, int64(45000), e.RefundAmount())
	})

	t.Run("material cost beyond collected is capped", func(t *testing.T) {
		e := mustEstimate(t, 20000, 25000, 1)

		assert.Equal(t, int64(20000), e.BaseFee())
		assert.Equal(t, int64(25000), e.MaterialFee())
		assert.Equal(t, int64(20000), e.TotalFee())
		assert.Equal(t, int64(0), e.RefundAmount())
	})

	t.Run("nothing collected refunds nothing", func(t *testing.T) {
		e := mustEstimate(t, 0, 3000, 2)

		assert.Equal(t, int64(0), e.TotalFee())
		assert.Equal(t, int64(0), e.RefundAmount())
	})

	t.Run("material alone above collected in early tier", func(t *testing.T) {
		e := mustEstimate(t, 10000, 12000, 30)

		assert.Equal(t, int64(0), e.BaseFee())
		assert.Equal(t, int64(10000), e.TotalFee())
		assert.Equal(t, int64(0), e.RefundAmount())
	})

	t.Run("odd amounts floor the base fee", func(t *testing.T) {
		e := mustEstimate(t, 10001, 0, 6)

		assert.Equal(t, int64(5000), e.BaseFee())
		assert.Equal(t, int64(5001), e.RefundAmount())
	})

	t.Run("past delivery is the most severe tier", func(t *testing.T) {
		e := mustEstimate(t, 8000, 0, -2)

		assert.Equal(t, settlement.TierLastMinute, e.Tier())
		assert.Equal(t, int64(8000), e.TotalFee())
	})
}

func TestEstimate_BoundariesBelongToSevereTier(t *testing.T) {
	assert.Equal(t, settlement.TierLastMinute, mustEstimate(t, 1000, 0, 3).Tier())
	assert.Equal(t, settlement.TierPreparation, mustEstimate(t, 1000, 0, 4).Tier())
	assert.Equal(t, settlement.TierPreparation, mustEstimate(t, 1000, 0, 7).Tier())
	assert.Equal(t, settlement.TierEarly, mustEstimate(t, 1000, 0, 8).Tier())
}

func TestEstimate_Properties(t *testing.T) {
	collectedValues := []int64{0, 1, 999, 10001, 100000, 7_654_321}
	materialValues := []int64{0, 1, 500, 5000, 100000, 9_000_000}

	for _, collected := range collectedValues {
		for _, material := range materialValues {
			var previousFee int64 = -1
			for days := 15; days >= -2; days-- {
				e := mustEstimate(t, collected, material, days)

				assert.GreaterOrEqual(t, e.RefundAmount(), int64(0))
				assert.LessOrEqual(t, e.RefundAmount(), collected)
				assert.Equal(t, collected, e.TotalFee()+e.RefundAmount())
				assert.GreaterOrEqual(t, e.TotalFee(), previousFee, "fee dropped closer to delivery")
				previousFee = e.TotalFee()
			}
		}
	}
}

func TestEstimate_FeeMonotonicInMaterialCost(t *testing.T) {
	for _, days := range []int{1, 5, 10} {
		var previous int64 = -1
		for material := int64(0); material <= 150000; material += 7500 {
			e := mustEstimate(t, 100000, material, days)
			assert.GreaterOrEqual(t, e.TotalFee(), previous)
			previous = e.TotalFee()
		}
	}
}

func TestEstimate_IsIdempotent(t *testing.T) {
	first := mustEstimate(t, 123456, 7890, 6)
	second := mustEstimate(t, 123456, 7890, 6)

	assert.True(t, first.Equal(second))
	assert.Equal(t, first, second)
}

func TestEstimate_RejectsInvalidInputs(t *testing.T) {
	t.Run("should reject negative amounts", func(t *testing.T) {
		_, err := settlement.Estimate(settlement.Inputs{
			CollectedAmount:  -1,
			MaterialCost:     -5,
			DeliveryDateTime: deliveryIn(3),
		}, asOf)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "collectedAmount")
		assert.Contains(t, err.Error(), "materialCost")
	})

	t.Run("should require a delivery date", func(t *testing.T) {
		_, err := settlement.Estimate(settlement.Inputs{CollectedAmount: 10}, asOf)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestRestoreCancellationEstimate(t *testing.T) {
	original := mustEstimate(t, 100000, 5000, 5)

	t.Run("should restore a consistent snapshot", func(t *testing.T) {
		restored, err := settlement.RestoreCancellationEstimate(
			original.AsOf(), original.DaysRemaining(), original.Tier(),
			original.CollectedAmount(), original.BaseFee(), original.MaterialFee(),
			original.TotalFee(), original.RefundAmount(),
		)

		require.NoError(t, err)
		require.NoError(t, restored.Validate())
		assert.True(t, original.Equal(restored))
	})

	t.Run("should reject a refund that does not add up", func(t *testing.T) {
		_, err := settlement.RestoreCancellationEstimate(
			asOf, 5, settlement.TierPreparation, 100000, 50000, 5000, 55000, 46000,
		)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject a tier that contradicts the day count", func(t *testing.T) {
		_, err := settlement.RestoreCancellationEstimate(
			asOf, 10, settlement.TierLastMinute, 100000, 100000, 0, 100000, 0,
		)

		require.Error(t, err)
	})

	t.Run("should reject an uncapped fee", func(t *testing.T) {
		_, err := settlement.RestoreCancellationEstimate(
			asOf, 1, settlement.TierLastMinute, 20000, 20000, 25000, 10000, 10000,
		)

		require.Error(t, err)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var e settlement.CancellationEstimate

		require.ErrorIs(t, e.Validate(), settlement.ErrCancellationEstimateIsNotConstructed)
	})
}

func TestSumShares(t *testing.T) {
	shares := []settlement.RefundShare{{Amount: 100}, {Amount: 250}, {Amount: 0}}

	assert.Equal(t, int64(350), settlement.SumShares(shares))
	assert.Equal(t, int64(0), settlement.SumShares(nil))
}
