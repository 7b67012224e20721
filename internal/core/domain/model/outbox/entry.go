package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/pkg/errs"
	"flowerstand/internal/pkg/guard"
)

const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = time.Second
)

var (
	ErrEntryIsNotConstructed = errors.New("Entry must be created via NewEntry or RestoreEntry")
	ErrInvalidStatusChange   = errors.New("invalid outbox status change")
)

// Event is what an aggregate hands to the outbox.
type Event interface {
	EventID() kernel.UUID
	AggregateID() kernel.UUID
	EventType() string
}

// Entry is one event awaiting delivery.
type Entry struct {
	id          kernel.UUID
	eventID     kernel.UUID
	eventType   string
	aggregateID kernel.UUID
	payload     []byte
	status      Status
	retryCount  int
	maxRetries  int
	lastError   string
	nextRetryAt *time.Time
	processedAt *time.Time
	createdAt   time.Time
	updatedAt   time.Time

	guard guard.ConstructorGuard
}

// NewEntry serializes event as JSON and wraps it in a PENDING entry.
func NewEntry(event Event, at time.Time) (*Entry, error) {
	if event == nil {
		return nil, errs.NewValueIsRequiredError("event")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", event.EventType(), err)
	}

	e := &Entry{
		id:          kernel.NewUUID(),
		eventID:     event.EventID(),
		eventType:   event.EventType(),
		aggregateID: event.AggregateID(),
		payload:     payload,
		status:      StatusPending,
		maxRetries:  DefaultMaxRetries,
		createdAt:   at.UTC(),
		updatedAt:   at.UTC(),
		guard:       guard.NewConstructorGuard(),
	}
	if err := e.validateFields(); err != nil {
		return nil, err
	}
	return e, nil
}

// Snapshot is the persisted state of an entry.
type Snapshot struct {
	ID          kernel.UUID
	EventID     kernel.UUID
	EventType   string
	AggregateID kernel.UUID
	Payload     []byte
	Status      Status
	RetryCount  int
	MaxRetries  int
	LastError   string
	NextRetryAt *time.Time
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func RestoreEntry(s Snapshot) (*Entry, error) {
	e := &Entry{
		id:          s.ID,
		eventID:     s.EventID,
		eventType:   s.EventType,
		aggregateID: s.AggregateID,
		payload:     s.Payload,
		status:      s.Status,
		retryCount:  s.RetryCount,
		maxRetries:  s.MaxRetries,
		lastError:   s.LastError,
		nextRetryAt: s.NextRetryAt,
		processedAt: s.ProcessedAt,
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
		guard:       guard.NewConstructorGuard(),
	}
	if err := e.validateFields(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Entry) Validate() error {
	if e == nil {
		return ErrEntryIsNotConstructed
	}
	return e.guard.Validate(ErrEntryIsNotConstructed)
}

func (e *Entry) ID() kernel.UUID { return e.id }
func (e *Entry) EventID() kernel.UUID { return e.eventID }
func (e *Entry) EventType() string { return e.eventType }
func (e *Entry) AggregateID() kernel.UUID { return e.aggregateID }
func (e *Entry) Payload() []byte { return e.payload }
func (e *Entry) Status() Status { return e.status }
func (e *Entry) RetryCount() int { return e.retryCount }
func (e *Entry) MaxRetries() int { return e.maxRetries }
func (e *Entry) LastError() string { return e.lastError }
func (e *Entry) NextRetryAt() *time.Time { return e.nextRetryAt }
func (e *Entry) ProcessedAt() *time.Time { return e.processedAt }
func (e *Entry) CreatedAt() time.Time { return e.createdAt }
func (e *Entry) UpdatedAt() time.Time { return e.updatedAt }

// CanRetry reports whether a failed entry still has attempts left.
func (e *Entry) CanRetry() bool {
	return e.status == StatusFailed && e.retryCount < e.maxRetries
}

func (e *Entry) IsDead() bool {
	return e.status == StatusDead
}

// MarkProcessing claims an entry for delivery. Pending and failed entries can
// be claimed, and so can a PROCESSING entry whose previous claim was abandoned
// (the repository only hands those out once their lease has expired).
func (e *Entry) MarkProcessing(at time.Time) error {
	if e.status != StatusPending && e.status != StatusFailed && e.status != StatusProcessing {
		return fmt.Errorf("%w: cannot process a %s entry", ErrInvalidStatusChange, e.status)
	}
	e.status = StatusProcessing
	e.updatedAt = at.UTC()
	return nil
}

func (e *Entry) MarkSent(at time.Time) {
	processed := at.UTC()
	e.status = StatusSent
	e.processedAt = &processed
	e.nextRetryAt = nil
	e.updatedAt = processed
}

// MarkFailed records a delivery failure. Retries back off exponentially
// (base, 2*base, 4*base, ...); the entry is dead once MaxRetries is reached.
func (e *Entry) MarkFailed(cause error, at time.Time, baseBackoff time.Duration) {
	e.retryCount++
	if cause != nil {
		e.lastError = cause.Error()
	}
	e.updatedAt = at.UTC()

	if e.retryCount >= e.maxRetries {
		e.status = StatusDead
		e.nextRetryAt = nil
		return
	}

	e.status = StatusFailed
	next := at.UTC().Add(baseBackoff * time.Duration(1<<uint(e.retryCount-1)))
	e.nextRetryAt = &next
}

// Release hands a claimed entry back as PENDING without spending an attempt.
// The dispatcher uses it for entries queued behind an undelivered event of the
// same aggregate.
func (e *Entry) Release(at time.Time) error {
	if e.status != StatusProcessing {
		return fmt.Errorf("%w: only processing entries can be released, entry is %s", ErrInvalidStatusChange, e.status)
	}
	e.status = StatusPending
	e.updatedAt = at.UTC()
	return nil
}

// ResetForRetry revives a dead entry with a fresh retry budget.
func (e *Entry) ResetForRetry(at time.Time) error {
	if e.status != StatusDead {
		return fmt.Errorf("%w: only dead entries can be retried, entry is %s", ErrInvalidStatusChange, e.status)
	}
	e.status = StatusPending
	e.retryCount = 0
	e.lastError = ""
	e.nextRetryAt = nil
	e.updatedAt = at.UTC()
	return nil
}

func (e *Entry) validateFields() error {
	var result error
	if err := e.id.Validate(); err != nil {
		result = errors.Join(result, err)
	}
	if err := e.eventID.Validate(); err != nil {
		result = errors.Join(result, errs.NewValueIsInvalidErrorWithCause("eventID", err))
	}
	if err := e.aggregateID.Validate(); err != nil {
		result = errors.Join(result, errs.NewValueIsInvalidErrorWithCause("aggregateID", err))
	}
	if e.eventType == "" {
		result = errors.Join(result, errs.NewValueIsRequiredError("eventType"))
	}
	if len(e.payload) == 0 {
		result = errors.Join(result, errs.NewValueIsRequiredError("payload"))
	}
	if e.maxRetries <= 0 {
		result = errors.Join(result, errs.NewValueIsInvalidErrorWithCause(
			"maxRetries", fmt.Errorf("%d is not greater than 0", e.maxRetries)))
	}
	if err := e.status.Validate(); err != nil {
		result = errors.Join(result, err)
	}
	return result
}
