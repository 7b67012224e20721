package pledgerepo

import (
	"context"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/pledge"

	"gorm.io/gorm"
)

// GormPledgeRepository implements PledgeRepository using GORM.
type GormPledgeRepository struct {
	db *gorm.DB
}

func NewGormPledgeRepository(db *gorm.DB) *GormPledgeRepository {
	return &GormPledgeRepository{db: db}
}

func (r *GormPledgeRepository) Add(ctx context.Context, p *pledge.Pledge) error {
	if err := p.Validate(); err != nil {
		return err
	}

	dto := fromDomain(p)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// ListByProject returns the ledger oldest pledge first; ties are broken by ID
// so the order is stable across reads.
func (r *GormPledgeRepository) ListByProject(ctx context.Context, projectID kernel.UUID) ([]*pledge.Pledge, error) {
	if err := projectID.Validate(); err != nil {
		return nil, err
	}

	var dtos []PledgeDTO
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID.Bytes()).
		Order("pledged_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	pledges := make([]*pledge.Pledge, 0, len(dtos))
	for _, dto := range dtos {
		p, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		pledges = append(pledges, p)
	}

	return pledges, nil
}
