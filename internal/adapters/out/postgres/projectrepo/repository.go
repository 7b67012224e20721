package projectrepo

import (
	"context"
	"errors"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/core/ports"
	"flowerstand/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository implements ProjectRepository using GORM.
type GormProjectRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker receives every aggregate written through the repository so
// the unit of work can flush its events on commit.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormProjectRepository(db *gorm.DB, tracker aggregateTracker) *GormProjectRepository {
	return &GormProjectRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new project to the database.
func (r *GormProjectRepository) Add(ctx context.Context, aggregate *project.Project) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes every column back where id and version match, then bumps the
// aggregate's version.
func (r *GormProjectRepository) Update(ctx context.Context, aggregate *project.Project) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1

	result := r.db.WithContext(ctx).
		Model(&ProjectDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").
		Omit("id").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&ProjectDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("project", aggregate.ID().String())
		}
		return ports.ErrConcurrentModification
	}

	aggregate.IncrementVersion()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a project by ID.
func (r *GormProjectRepository) Get(ctx context.Context, id kernel.UUID) (*project.Project, error) {
	return r.get(ctx, r.db, id)
}

// GetForUpdate retrieves a project by ID and holds FOR UPDATE on its row.
func (r *GormProjectRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*project.Project, error) {
	return r.get(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormProjectRepository) get(ctx context.Context, db *gorm.DB, id kernel.UUID) (*project.Project, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ProjectDTO
	if err := db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("project", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}
