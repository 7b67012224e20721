package project

import (
	"fmt"
	"slices"

	"flowerstand/internal/pkg/errs"
)

// ProductionStatus is the florist-controlled fulfillment stage.
// ProductionUnset means the florist has not accepted the work yet.
type ProductionStatus int

const (
	ProductionUnknown ProductionStatus = iota
	ProductionUnset
	ProductionAccepted
	ProductionProcessing
	ProductionDelivering
	ProductionDelivered
	ProductionCompleted
)

// productionSteps is the single ordered definition of the fulfillment flow.
var productionSteps = []ProductionStatus{
	ProductionAccepted,
	ProductionProcessing,
	ProductionDelivering,
	ProductionDelivered,
	ProductionCompleted,
}

// nextProductionStatus maps each status to its only legal successor.
var nextProductionStatus = func() map[ProductionStatus]ProductionStatus {
	next := map[ProductionStatus]ProductionStatus{ProductionUnset: productionSteps[0]}
	for i := 0; i+1 < len(productionSteps); i++ {
		next[productionSteps[i]] = productionSteps[i+1]
	}
	return next
}()

var productionStatusNames = map[ProductionStatus]string{
	ProductionUnset:      "UNSET",
	ProductionAccepted:   "ACCEPTED",
	ProductionProcessing: "PROCESSING",
	ProductionDelivering: "DELIVERING",
	ProductionDelivered:  "DELIVERED",
	ProductionCompleted:  "COMPLETED",
}

var productionStatusLabels = map[ProductionStatus]string{
	ProductionUnset:      "Waiting for florist",
	ProductionAccepted:   "Order accepted",
	ProductionProcessing: "In production",
	ProductionDelivering: "Out for delivery",
	ProductionDelivered:  "Installed at venue",
	ProductionCompleted:  "Completed",
}

// ProductionSteps returns the ordered fulfillment flow.
func ProductionSteps() []ProductionStatus {
	return slices.Clone(productionSteps)
}

func ParseProductionStatus(s string) (ProductionStatus, error) {
	for status, name := range productionStatusNames {
		if name == s {
			return status, nil
		}
	}
	return ProductionUnknown, errs.NewValueIsInvalidErrorWithCause(
		"productionStatus", fmt.Errorf("%q is not a valid production status", s))
}

func (s ProductionStatus) Validate() error {
	if _, ok := productionStatusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"productionStatus", fmt.Errorf("%d is not a valid production status", s))
	}
	return nil
}

func (s ProductionStatus) String() string {
	if name, ok := productionStatusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Label is the supporter-facing caption of the stage.
func (s ProductionStatus) Label() string {
	return productionStatusLabels[s]
}

// Next returns the only status that may follow s. The final step and
// invalid values have no successor.
func (s ProductionStatus) Next() (ProductionStatus, bool) {
	next, ok := nextProductionStatus[s]
	return next, ok
}

// IsNext reports whether requested is exactly one step ahead of s.
func (s ProductionStatus) IsNext(requested ProductionStatus) bool {
	next, ok := s.Next()
	return ok && next == requested
}

// Step is the zero-based index of s in ProductionSteps, -1 for UNSET.
func (s ProductionStatus) Step() int {
	return slices.Index(productionSteps, s)
}

// Progress is the tracker percentage: 0 for UNSET and ACCEPTED, 100 for COMPLETED.
func (s ProductionStatus) Progress() int {
	step := s.Step()
	if step <= 0 {
		return 0
	}
	return step * 100 / (len(productionSteps) - 1)
}

func (s ProductionStatus) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

func (s *ProductionStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseProductionStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
