package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/project"

	goredis "github.com/redis/go-redis/v9"
)

const (
	NotificationStatusChanged        = "status_changed"
	NotificationProjectCancelled     = "project_cancelled"
	NotificationMaterialCostDeclared = "material_cost_declared"
)

// Notification is the JSON message published to a project's events channel.
// Fields that do not apply to Type are omitted.
type Notification struct {
	Type         string      `json:"type"`
	ProjectID    kernel.UUID `json:"projectId"`
	OldStatus    string      `json:"oldStatus,omitempty"`
	NewStatus    string      `json:"newStatus,omitempty"`
	Label        string      `json:"label,omitempty"`
	Progress     *int        `json:"progress,omitempty"`
	RefundAmount *int64      `json:"refundAmount,omitempty"`
	TotalFee     *int64      `json:"totalFee,omitempty"`
	OldCost      *int64      `json:"oldCost,omitempty"`
	NewCost      *int64      `json:"newCost,omitempty"`
}

// EventsChannel is where supporters and the planner of a project listen.
func EventsChannel(projectID kernel.UUID) string {
	return "project:" + projectID.String() + ":events"
}

// Notifier publishes project notifications over Redis Pub/Sub. Delivery to
// subscribers is best effort; the outbox only guarantees the publish.
type Notifier struct {
	client goredis.UniversalClient
}

func NewNotifier(client goredis.UniversalClient) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) StatusChanged(ctx context.Context, projectID kernel.UUID, oldStatus, newStatus project.ProductionStatus) error {
	progress := newStatus.Progress()
	return n.publish(ctx, Notification{
		Type:      NotificationStatusChanged,
		ProjectID: projectID,
		OldStatus: oldStatus.String(),
		NewStatus: newStatus.String(),
		Label:     newStatus.Label(),
		Progress:  &progress,
	})
}

func (n *Notifier) ProjectCancelled(ctx context.Context, projectID kernel.UUID, refundAmount, totalFee int64) error {
	return n.publish(ctx, Notification{
		Type:         NotificationProjectCancelled,
		ProjectID:    projectID,
		RefundAmount: &refundAmount,
		TotalFee:     &totalFee,
	})
}

func (n *Notifier) MaterialCostDeclared(ctx context.Context, projectID kernel.UUID, oldCost, newCost int64) error {
	return n.publish(ctx, Notification{
		Type:      NotificationMaterialCostDeclared,
		ProjectID: projectID,
		OldCost:   &oldCost,
		NewCost:   &newCost,
	})
}

func (n *Notifier) publish(ctx context.Context, msg Notification) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s notification: %w", msg.Type, err)
	}
	if err = n.client.Publish(ctx, EventsChannel(msg.ProjectID), payload).Err(); err != nil {
		return fmt.Errorf("publish %s notification: %w", msg.Type, err)
	}
	return nil
}
