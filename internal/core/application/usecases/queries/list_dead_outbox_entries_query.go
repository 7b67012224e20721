package queries

import (
	"errors"
	"fmt"
	"time"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/pkg/errs"
	"flowerstand/internal/pkg/guard"
)

const DefaultDeadEntriesLimit = 100

var ErrListDeadOutboxEntriesQueryIsNotConstructed = errors.New(
	"ListDeadOutboxEntriesQuery must be created via NewListDeadOutboxEntriesQuery constructor",
)

// ListDeadOutboxEntriesQuery lists events that exhausted their delivery
// attempts, most recently failed first.
type ListDeadOutboxEntriesQuery struct {
	limit int

	guard guard.ConstructorGuard
}

// NewListDeadOutboxEntriesQuery uses DefaultDeadEntriesLimit when limit is 0.
func NewListDeadOutboxEntriesQuery(limit int) (ListDeadOutboxEntriesQuery, error) {
	if limit < 0 {
		return ListDeadOutboxEntriesQuery{}, errs.NewValueIsInvalidErrorWithCause("limit", fmt.Errorf("%d is negative", limit))
	}
	if limit == 0 {
		limit = DefaultDeadEntriesLimit
	}
	return ListDeadOutboxEntriesQuery{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q ListDeadOutboxEntriesQuery) Validate() error {
	return q.guard.Validate(ErrListDeadOutboxEntriesQueryIsNotConstructed)
}

func (q ListDeadOutboxEntriesQuery) Limit() int {
	return q.limit
}

type ListDeadOutboxEntriesQueryResponse struct {
	ID          kernel.UUID
	EventID     kernel.UUID
	EventType   string
	AggregateID kernel.UUID
	RetryCount  int
	LastError   string
	UpdatedAt   time.Time
}
