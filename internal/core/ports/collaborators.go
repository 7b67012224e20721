package ports

import (
	"context"
	"time"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/core/domain/model/settlement"
)

// Notifier informs supporters and the planner about project changes.
type Notifier interface {
	StatusChanged(ctx context.Context, projectID kernel.UUID, oldStatus, newStatus project.ProductionStatus) error
	ProjectCancelled(ctx context.Context, projectID kernel.UUID, refundAmount, totalFee int64) error
	MaterialCostDeclared(ctx context.Context, projectID kernel.UUID, oldCost, newCost int64) error
}

// RefundRequest asks the payments rail to return money to supporters.
// RequestID is stable across redeliveries.
type RefundRequest struct {
	RequestID kernel.UUID
	ProjectID kernel.UUID
	Amount    int64
	Shares    []settlement.RefundShare
}

// Payments issues refunds. IssueRefund is idempotent per project and
// eventually consistent; callers do not wait for the money to move.
type Payments interface {
	IssueRefund(ctx context.Context, request RefundRequest) error
}

// ChatChannels switches the availability mode of a project's chat.
type ChatChannels interface {
	SetMode(ctx context.Context, projectID kernel.UUID, mode project.ChatMode) error
}

// IdempotencyStore remembers which outbox events were already delivered.
type IdempotencyStore interface {
	IsProcessed(ctx context.Context, key string) (bool, error)
	// MarkProcessed returns false if the key was already marked.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Clock supplies the asOf instant of every command.
type Clock interface {
	Now() time.Time
}
