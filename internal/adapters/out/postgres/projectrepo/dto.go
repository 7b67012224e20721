// Package projectrepo maps the project aggregate to the projects table.
// The frozen cancellation settlement is stored inline in settlement_* columns
// that stay NULL until the project is cancelled.
package projectrepo

import (
	"errors"
	"time"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/core/domain/model/settlement"

	"github.com/google/uuid"
)

// ProjectDTO represents the database structure for persisting project aggregates.
type ProjectDTO struct {
	ID                  uuid.UUID     `gorm:"type:uuid;primaryKey"`
	PlannerID           uuid.UUID     `gorm:"type:uuid;not null;index"`
	FloristID           *uuid.UUID    `gorm:"type:uuid;index"`
	FundingStatus       int           `gorm:"type:smallint;not null"`
	ProductionStatus    int           `gorm:"type:smallint;not null"`
	CollectedAmount     int64         `gorm:"not null"`
	TargetAmount        int64         `gorm:"not null"`
	MaterialCost        int64         `gorm:"not null"`
	MaterialDescription string        `gorm:"type:text;not null;default:''"`
	DeliveryDateTime    time.Time     `gorm:"type:timestamptz;not null"`
	Settlement          SettlementDTO `gorm:"embedded;embeddedPrefix:settlement_"`
	CancelledAt         *time.Time    `gorm:"type:timestamptz"`
	Version             int64         `gorm:"not null;default:1"`
}

func (ProjectDTO) TableName() string {
	return "projects"
}

// SettlementDTO is the frozen CancellationEstimate. All columns are NULL for
// projects that were never cancelled.
type SettlementDTO struct {
	AsOf            *time.Time `gorm:"type:timestamptz"`
	DaysRemaining   *int
	Tier            *string `gorm:"type:varchar(16)"`
	CollectedAmount *int64
	BaseFee         *int64
	MaterialFee     *int64
	TotalFee        *int64
	RefundAmount    *int64
}

func fromDomain(p *project.Project) ProjectDTO {
	var floristID *uuid.UUID
	if id := p.FloristID(); id != nil {
		raw := id.Bytes()
		floristID = &raw
	}

	return ProjectDTO{
		ID:                  p.ID().Bytes(),
		PlannerID:           p.PlannerID().Bytes(),
		FloristID:           floristID,
		FundingStatus:       int(p.FundingStatus()),
		ProductionStatus:    int(p.ProductionStatus()),
		CollectedAmount:     p.CollectedAmount(),
		TargetAmount:        p.TargetAmount(),
		MaterialCost:        p.MaterialCost(),
		MaterialDescription: p.MaterialDescription(),
		DeliveryDateTime:    p.DeliveryDateTime(),
		Settlement:          settlementFromDomain(p.Settlement()),
		CancelledAt:         p.CancelledAt(),
		Version:             p.Version(),
	}
}

func settlementFromDomain(e *settlement.CancellationEstimate) SettlementDTO {
	if e == nil {
		return SettlementDTO{}
	}
	asOf := e.AsOf()
	days := e.DaysRemaining()
	tier := e.Tier().String()
	collected := e.CollectedAmount()
	baseFee := e.BaseFee()
	materialFee := e.MaterialFee()
	totalFee := e.TotalFee()
	refund := e.RefundAmount()
	return SettlementDTO{
		AsOf:            &asOf,
		DaysRemaining:   &days,
		Tier:            &tier,
		CollectedAmount: &collected,
		BaseFee:         &baseFee,
		MaterialFee:     &materialFee,
		TotalFee:        &totalFee,
		RefundAmount:    &refund,
	}
}

// toDomain rebuilds the aggregate. A row that fails the aggregate's
// consistency checks comes back as an InvalidProjectStateError.
func toDomain(dto ProjectDTO) (*project.Project, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	plannerID, err := kernel.UUIDFromBytes(dto.PlannerID[:])
	if err != nil {
		return nil, project.NewInvalidProjectStateError(id, err)
	}

	var floristID *kernel.UUID
	if dto.FloristID != nil {
		fID, floristErr := kernel.UUIDFromBytes((*dto.FloristID)[:])
		if floristErr != nil {
			return nil, project.NewInvalidProjectStateError(id, floristErr)
		}
		floristID = &fID
	}

	estimate, err := settlementToDomain(dto.Settlement)
	if err != nil {
		return nil, project.NewInvalidProjectStateError(id, err)
	}

	var cancelledAt *time.Time
	if dto.CancelledAt != nil {
		at := dto.CancelledAt.UTC()
		cancelledAt = &at
	}

	return project.RestoreProject(project.Snapshot{
		ID:                  id,
		PlannerID:           plannerID,
		FloristID:           floristID,
		FundingStatus:       project.FundingStatus(dto.FundingStatus),
		ProductionStatus:    project.ProductionStatus(dto.ProductionStatus),
		CollectedAmount:     dto.CollectedAmount,
		TargetAmount:        dto.TargetAmount,
		MaterialCost:        dto.MaterialCost,
		MaterialDescription: dto.MaterialDescription,
		DeliveryDateTime:    dto.DeliveryDateTime.UTC(),
		Settlement:          estimate,
		CancelledAt:         cancelledAt,
		Version:             dto.Version,
	})
}

var errPartialSettlement = errors.New("settlement columns are partially set")

func settlementToDomain(dto SettlementDTO) (*settlement.CancellationEstimate, error) {
	set := []bool{
		dto.AsOf != nil, dto.DaysRemaining != nil, dto.Tier != nil, dto.CollectedAmount != nil,
		dto.BaseFee != nil, dto.MaterialFee != nil, dto.TotalFee != nil, dto.RefundAmount != nil,
	}
	count := 0
	for _, s := range set {
		if s {
			count++
		}
	}
	switch count {
	case 0:
		return nil, nil
	case len(set):
	default:
		return nil, errPartialSettlement
	}

	tier, err := settlement.ParseTier(*dto.Tier)
	if err != nil {
		return nil, err
	}

	estimate, err := settlement.RestoreCancellationEstimate(
		dto.AsOf.UTC(),
		*dto.DaysRemaining,
		tier,
		*dto.CollectedAmount,
		*dto.BaseFee,
		*dto.MaterialFee,
		*dto.TotalFee,
		*dto.RefundAmount,
	)
	if err != nil {
		return nil, err
	}
	return &estimate, nil
}
