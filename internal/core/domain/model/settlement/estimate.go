package settlement

import (
	"errors"
	"fmt"
	"time"

	"flowerstand/internal/pkg/errs"
	"flowerstand/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrCancellationEstimateIsNotConstructed = errors.New(
	"CancellationEstimate must be created via Estimate or RestoreCancellationEstimate",
)

// Inputs are the project figures the calculation depends on.
type Inputs struct {
	CollectedAmount  int64
	MaterialCost     int64
	DeliveryDateTime time.Time
}

// CancellationEstimate is the derived fee/refund split for cancelling at AsOf.
//
// Invariants:
//   - TotalFee + RefundAmount == CollectedAmount
//   - 0 <= RefundAmount <= CollectedAmount
//   - TotalFee == min(BaseFee + MaterialFee, CollectedAmount)
type CancellationEstimate struct {
	asOf            time.Time
	daysRemaining   int
	tier            Tier
	collectedAmount int64
	baseFee         int64
	materialFee     int64
	totalFee        int64
	refundAmount    int64

	guard guard.ConstructorGuard
}

// Estimate computes the cancellation split. It has no side effects and may be
// called any number of times for previews.
func Estimate(in Inputs, asOf time.Time) (CancellationEstimate, error) {
	if err := in.validate(); err != nil {
		return CancellationEstimate{}, err
	}

	days := DaysRemaining(in.DeliveryDateTime, asOf)
	tier := TierFor(days)

	baseFee := decimal.NewFromInt(in.CollectedAmount).Mul(tier.Rate()).Floor().IntPart()

	totalFee := cappedFee(in.CollectedAmount, baseFee, in.MaterialCost)

	return CancellationEstimate{
		asOf:            asOf,
		daysRemaining:   days,
		tier:            tier,
		collectedAmount: in.CollectedAmount,
		baseFee:         baseFee,
		materialFee:     in.MaterialCost,
		totalFee:        totalFee,
		refundAmount:    in.CollectedAmount - totalFee,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

// RestoreCancellationEstimate rebuilds a frozen estimate from persistence and
// re-checks its arithmetic, so a tampered row cannot be replayed.
func RestoreCancellationEstimate(
	asOf time.Time,
	daysRemaining int,
	tier Tier,
	collectedAmount, baseFee, materialFee, totalFee, refundAmount int64,
) (CancellationEstimate, error) {
	e := CancellationEstimate{
		asOf:            asOf,
		daysRemaining:   daysRemaining,
		tier:            tier,
		collectedAmount: collectedAmount,
		baseFee:         baseFee,
		materialFee:     materialFee,
		totalFee:        totalFee,
		refundAmount:    refundAmount,
		guard:           guard.NewConstructorGuard(),
	}
	if err := e.checkArithmetic(); err != nil {
		return CancellationEstimate{}, err
	}
	return e, nil
}

func (e CancellationEstimate) Validate() error {
	return e.guard.Validate(ErrCancellationEstimateIsNotConstructed)
}

func (e CancellationEstimate) AsOf() time.Time { return e.asOf }
func (e CancellationEstimate) DaysRemaining() int { return e.daysRemaining }
func (e CancellationEstimate) Tier() Tier { return e.tier }
func (e CancellationEstimate) CollectedAmount() int64 { return e.collectedAmount }
func (e CancellationEstimate) BaseFee() int64 { return e.baseFee }
func (e CancellationEstimate) MaterialFee() int64 { return e.materialFee }
func (e CancellationEstimate) TotalFee() int64 { return e.totalFee }
func (e CancellationEstimate) RefundAmount() int64 { return e.refundAmount }

// CancellationRate is the tier rate: 0, 0.5 or 1.
func (e CancellationEstimate) CancellationRate() decimal.Decimal {
	return e.tier.Rate()
}

// Equal compares every figure and the instant the estimate was taken at.
func (e CancellationEstimate) Equal(other CancellationEstimate) bool {
	return e.asOf.Equal(other.asOf) &&
		e.daysRemaining == other.daysRemaining &&
		e.tier == other.tier &&
		e.collectedAmount == other.collectedAmount &&
		e.baseFee == other.baseFee &&
		e.materialFee == other.materialFee &&
		e.totalFee == other.totalFee &&
		e.refundAmount == other.refundAmount
}

func (e CancellationEstimate) checkArithmetic() error {
	if err := e.tier.Validate(); err != nil {
		return err
	}
	if e.tier != TierFor(e.daysRemaining) {
		return errs.NewValueIsInvalidErrorWithCause("tier",
			fmt.Errorf("%s does not match %d days remaining", e.tier, e.daysRemaining))
	}
	for name, v := range map[string]int64{
		"collectedAmount": e.collectedAmount,
		"baseFee":         e.baseFee,
		"materialFee":     e.materialFee,
		"totalFee":        e.totalFee,
		"refundAmount":    e.refundAmount,
	} {
		if v < 0 {
			return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%d is negative", v))
		}
	}
	if e.totalFee+e.refundAmount != e.collectedAmount {
		return errs.NewValueIsInvalidErrorWithCause("refundAmount",
			fmt.Errorf("fee %d and refund %d do not add up to %d", e.totalFee, e.refundAmount, e.collectedAmount))
	}
	if e.totalFee > e.collectedAmount {
		return errs.NewValueIsOutOfRangeError("totalFee", e.totalFee, 0, e.collectedAmount)
	}
	if want := decimal.NewFromInt(e.collectedAmount).Mul(e.tier.Rate()).Floor().IntPart(); e.baseFee != want {
		return errs.NewValueIsInvalidErrorWithCause("baseFee", fmt.Errorf("%d, expected %d", e.baseFee, want))
	}
	if want := cappedFee(e.collectedAmount, e.baseFee, e.materialFee); e.totalFee != want {
		return errs.NewValueIsInvalidErrorWithCause("totalFee", fmt.Errorf("%d, expected %d", e.totalFee, want))
	}
	return nil
}

func (in Inputs) validate() error {
	var result error
	if in.CollectedAmount < 0 {
		result = errors.Join(result, errs.NewValueIsInvalidErrorWithCause(
			"collectedAmount", fmt.Errorf("%d is negative", in.CollectedAmount)))
	}
	if in.MaterialCost < 0 {
		result = errors.Join(result, errs.NewValueIsInvalidErrorWithCause(
			"materialCost", fmt.Errorf("%d is negative", in.MaterialCost)))
	}
	if in.DeliveryDateTime.IsZero() {
		result = errors.Join(result, errs.NewValueIsRequiredError("deliveryDateTime"))
	}
	return result
}

// cappedFee is min(baseFee + materialFee, collected) without overflowing.
func cappedFee(collected, baseFee, materialFee int64) int64 {
	if materialFee > collected-baseFee {
		return collected
	}
	return baseFee + materialFee
}
