package project

import (
	"encoding/json"
	"fmt"
	"time"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/settlement"
)

const (
	EventProductionStatusChanged = "project.production_status_changed"
	EventProjectCancelled        = "project.cancelled"
	EventRefundRequested         = "project.refund_requested"
	EventChatModeChanged         = "project.chat_mode_changed"
	EventMaterialCostDeclared    = "project.material_cost_declared"
)

// ChatMode is the availability flag of the project chat channel.
type ChatMode string

const (
	ChatModeOpen             ChatMode = "open"
	ChatModePostCancellation ChatMode = "post_cancellation"
)

// DomainEvent is a fact recorded by the aggregate and delivered to
// collaborators through the outbox.
type DomainEvent interface {
	EventID() kernel.UUID
	AggregateID() kernel.UUID
	OccurredAt() time.Time
	EventType() string
}

// EventHeader carries the fields every project event shares.
type EventHeader struct {
	ID        kernel.UUID `json:"eventId"`
	ProjectID kernel.UUID `json:"projectId"`
	Timestamp time.Time   `json:"occurredAt"`
}

func newEventHeader(projectID kernel.UUID, at time.Time) EventHeader {
	return EventHeader{ID: kernel.NewUUID(), ProjectID: projectID, Timestamp: at.UTC()}
}

func (h EventHeader) EventID() kernel.UUID { return h.ID }
func (h EventHeader) AggregateID() kernel.UUID { return h.ProjectID }
func (h EventHeader) OccurredAt() time.Time { return h.Timestamp }

type ProductionStatusChanged struct {
	EventHeader
	Old       ProductionStatus `json:"oldStatus"`
	New       ProductionStatus `json:"newStatus"`
	FloristID kernel.UUID      `json:"floristId"`
}

func (ProductionStatusChanged) EventType() string { return EventProductionStatusChanged }

type ProjectCancelled struct {
	EventHeader
	RefundAmount int64       `json:"refundAmount"`
	TotalFee     int64       `json:"totalFee"`
	Tier         string      `json:"tier"`
	CancelledBy  kernel.UUID `json:"cancelledBy"`
}

func (ProjectCancelled) EventType() string { return EventProjectCancelled }

type RefundRequested struct {
	EventHeader
	Amount int64                    `json:"amount"`
	Shares []settlement.RefundShare `json:"shares"`
}

func (RefundRequested) EventType() string { return EventRefundRequested }

type ChatModeChanged struct {
	EventHeader
	Mode ChatMode `json:"mode"`
}

func (ChatModeChanged) EventType() string { return EventChatModeChanged }

type MaterialCostDeclared struct {
	EventHeader
	Old         int64       `json:"oldCost"`
	New         int64       `json:"newCost"`
	Description string      `json:"description"`
	FloristID   kernel.UUID `json:"floristId"`
}

func (MaterialCostDeclared) EventType() string { return EventMaterialCostDeclared }

// DecodeEvent rebuilds an event from its outbox representation.
func DecodeEvent(eventType string, payload []byte) (DomainEvent, error) {
	var (
		event DomainEvent
		err   error
	)
	switch eventType {
	case EventProductionStatusChanged:
		event, err = decode[ProductionStatusChanged](payload)
	case EventProjectCancelled:
		event, err = decode[ProjectCancelled](payload)
	case EventRefundRequested:
		event, err = decode[RefundRequested](payload)
	case EventChatModeChanged:
		event, err = decode[ChatModeChanged](payload)
	case EventMaterialCostDeclared:
		event, err = decode[MaterialCostDeclared](payload)
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", eventType, err)
	}
	return event, nil
}

func decode[T DomainEvent](payload []byte) (DomainEvent, error) {
	var event T
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return event, nil
}
