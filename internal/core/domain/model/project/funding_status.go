package project

import (
	"fmt"

	"flowerstand/internal/pkg/errs"
)

// FundingStatus is the money side of the project lifecycle.
//
//	DRAFT ──> PENDING_APPROVAL ──┬──> FUNDRAISING ──┬──> COMPLETED
//	                             │                  └──> CANCELLED
//	                             └──> REJECTED
//
// CANCELLED and COMPLETED are terminal.
type FundingStatus int

const (
	FundingUnknown FundingStatus = iota
	FundingDraft
	FundingPendingApproval
	FundingFundraising
	FundingRejected
	FundingCancelled
	FundingCompleted
)

var fundingStatusNames = map[FundingStatus]string{
	FundingDraft:           "DRAFT",
	FundingPendingApproval: "PENDING_APPROVAL",
	FundingFundraising:     "FUNDRAISING",
	FundingRejected:        "REJECTED",
	FundingCancelled:       "CANCELLED",
	FundingCompleted:       "COMPLETED",
}

func ParseFundingStatus(s string) (FundingStatus, error) {
	for status, name := range fundingStatusNames {
		if name == s {
			return status, nil
		}
	}
	return FundingUnknown, errs.NewValueIsInvalidErrorWithCause(
		"fundingStatus", fmt.Errorf("%q is not a valid funding status", s))
}

func (s FundingStatus) Validate() error {
	if _, ok := fundingStatusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"fundingStatus", fmt.Errorf("%d is not a valid funding status", s))
	}
	return nil
}

func (s FundingStatus) String() string {
	if name, ok := fundingStatusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsTerminal reports whether the project accepts no further mutation.
func (s FundingStatus) IsTerminal() bool {
	return s == FundingCancelled || s == FundingCompleted
}

// HasStartedFundraising reports whether the project has been approved for
// pledges. It stays true after the project has completed or been cancelled.
func (s FundingStatus) HasStartedFundraising() bool {
	return s == FundingFundraising || s == FundingCompleted || s == FundingCancelled
}

func (s FundingStatus) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

func (s *FundingStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseFundingStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
