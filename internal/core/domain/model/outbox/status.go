package outbox

import (
	"fmt"

	"flowerstand/internal/pkg/errs"
)

type Status int

const (
	StatusUnknown Status = iota
	StatusPending
	StatusProcessing
	StatusSent
	StatusFailed
	StatusDead
)

var statusNames = map[Status]string{
	StatusPending:    "PENDING",
	StatusProcessing: "PROCESSING",
	StatusSent:       "SENT",
	StatusFailed:     "FAILED",
	StatusDead:       "DEAD",
}

func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid outbox status", s))
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid outbox status", s))
	}
	return nil
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}
