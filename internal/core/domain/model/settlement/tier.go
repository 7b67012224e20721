package settlement

import (
	"fmt"
	"time"

	"flowerstand/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const (
	// LastMinuteMaxDays is the inclusive upper bound of the 100% tier.
	LastMinuteMaxDays = 3
	// PreparationMaxDays is the inclusive upper bound of the 50% tier.
	PreparationMaxDays = 7
)

const day = 24 * time.Hour

// Tier is a day-count band that fixes the cancellation rate.
type Tier int

const (
	TierUnknown Tier = iota
	TierEarly
	TierPreparation
	TierLastMinute
)

var tierNames = map[Tier]string{
	TierEarly:       "EARLY",
	TierPreparation: "PREPARATION",
	TierLastMinute:  "LAST_MINUTE",
}

var tierRates = map[Tier]decimal.Decimal{
	TierEarly:       decimal.Zero,
	TierPreparation: decimal.New(5, -1),
	TierLastMinute:  decimal.NewFromInt(1),
}

// Tiers lists the bands from the least to the most severe.
func Tiers() []Tier {
	return []Tier{TierEarly, TierPreparation, TierLastMinute}
}

// TierFor selects the band for a day count. Boundaries belong to the more
// severe band, and zero or negative counts are last minute.
func TierFor(daysRemaining int) Tier {
	switch {
	case daysRemaining <= LastMinuteMaxDays:
		return TierLastMinute
	case daysRemaining <= PreparationMaxDays:
		return TierPreparation
	default:
		return TierEarly
	}
}

func ParseTier(s string) (Tier, error) {
	for t, name := range tierNames {
		if name == s {
			return t, nil
		}
	}
	return TierUnknown, errs.NewValueIsInvalidErrorWithCause("tier", fmt.Errorf("%q is not a known tier", s))
}

func (t Tier) Validate() error {
	if _, ok := tierNames[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("tier", fmt.Errorf("%d is not a valid tier", t))
	}
	return nil
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Rate returns the share of the collected amount retained as base fee.
func (t Tier) Rate() decimal.Decimal {
	if rate, ok := tierRates[t]; ok {
		return rate
	}
	return decimal.Zero
}

// Describe renders the band for operator-facing output, e.g. "50% (4-7 days)".
func (t Tier) Describe() string {
	pct := t.Rate().Shift(2).String() + "%"
	switch t {
	case TierLastMinute:
		return fmt.Sprintf("%s (%d days or fewer)", pct, LastMinuteMaxDays)
	case TierPreparation:
		return fmt.Sprintf("%s (%d-%d days)", pct, LastMinuteMaxDays+1, PreparationMaxDays)
	case TierEarly:
		return fmt.Sprintf("%s (more than %d days)", pct, PreparationMaxDays)
	case TierUnknown:
	}
	return "unknown"
}

// DaysRemaining is ceil((delivery - asOf) / 24h). A delivery later today
// counts as one day; a delivery in the past yields zero or less.
func DaysRemaining(delivery, asOf time.Time) int {
	diff := delivery.Sub(asOf)
	days := diff / day
	if diff%day > 0 {
		days++
	}
	return int(days)
}
