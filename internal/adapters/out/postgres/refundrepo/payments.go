// Package refundrepo hands refunds to the payout rail by recording them in the
// refund_requests table, which the payout worker consumes.
package refundrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flowerstand/internal/core/domain/model/settlement"
	"flowerstand/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const StatusRequested = "REQUESTED"

// RefundRequestDTO is one refund waiting for payout. A project is refunded at
// most once: project_id is unique.
type RefundRequestDTO struct {
	RequestID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Amount    int64     `gorm:"not null"`
	Shares    []byte    `gorm:"type:jsonb;not null"`
	Status    string    `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;autoCreateTime"`
}

func (RefundRequestDTO) TableName() string {
	return "refund_requests"
}

// Payments implements ports.Payments on top of the refund_requests table.
type Payments struct {
	db *gorm.DB
}

func NewPayments(db *gorm.DB) *Payments {
	return &Payments{db: db}
}

// IssueRefund records the request. Redelivering the same request, or a second
// request for an already refunded project, is a no-op.
func (p *Payments) IssueRefund(ctx context.Context, request ports.RefundRequest) error {
	if err := request.ProjectID.Validate(); err != nil {
		return err
	}
	if err := request.RequestID.Validate(); err != nil {
		return err
	}

	sharesList := request.Shares
	if sharesList == nil {
		sharesList = []settlement.RefundShare{}
	}
	shares, err := json.Marshal(sharesList)
	if err != nil {
		return fmt.Errorf("encode refund shares: %w", err)
	}

	dto := RefundRequestDTO{
		RequestID: request.RequestID.Bytes(),
		ProjectID: request.ProjectID.Bytes(),
		Amount:    request.Amount,
		Shares:    shares,
		Status:    StatusRequested,
	}

	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dto).Error
}
