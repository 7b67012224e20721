// Package pledgerepo reads and imports the pledge ledger of a project.
package pledgerepo

import (
	"time"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/pledge"

	"github.com/google/uuid"
)

// PledgeDTO represents one row of the pledges table.
type PledgeDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index:idx_pledges_project_pledged_at,priority:1"`
	SupporterID uuid.UUID `gorm:"type:uuid;not null"`
	Amount      int64     `gorm:"not null"`
	PledgedAt   time.Time `gorm:"type:timestamptz;not null;index:idx_pledges_project_pledged_at,priority:2"`
}

func (PledgeDTO) TableName() string {
	return "pledges"
}

func fromDomain(p *pledge.Pledge) PledgeDTO {
	return PledgeDTO{
		ID:          p.ID().Bytes(),
		ProjectID:   p.ProjectID().Bytes(),
		SupporterID: p.SupporterID().Bytes(),
		Amount:      p.Amount(),
		PledgedAt:   p.PledgedAt(),
	}
}

func toDomain(dto PledgeDTO) (*pledge.Pledge, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	projectID, err := kernel.UUIDFromBytes(dto.ProjectID[:])
	if err != nil {
		return nil, err
	}
	supporterID, err := kernel.UUIDFromBytes(dto.SupporterID[:])
	if err != nil {
		return nil, err
	}
	return pledge.RestorePledge(id, projectID, supporterID, dto.Amount, dto.PledgedAt.UTC())
}
