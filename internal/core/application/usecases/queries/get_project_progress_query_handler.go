package queries

import (
	"context"

	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/pkg/errs"

	"gorm.io/gorm"
)

type GetProjectProgressQueryHandler struct {
	db *gorm.DB
}

func NewGetProjectProgressQueryHandler(db *gorm.DB) GetProjectProgressQueryHandler {
	return GetProjectProgressQueryHandler{db: db}
}

// Handle derives step, percentage and label from the stored production status.
func (h GetProjectProgressQueryHandler) Handle(
	ctx context.Context,
	query GetProjectProgressQuery,
) (GetProjectProgressQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetProjectProgressQueryResponse{}, err
	}

	var row struct {
		ProductionStatus int
		FundingStatus    int
	}
	result := h.db.WithContext(ctx).Raw(`
		SELECT
			production_status,
			funding_status
		FROM projects
		WHERE id = ?
	`, query.ProjectID().Bytes()).Scan(&row)
	if result.Error != nil {
		return GetProjectProgressQueryResponse{}, result.Error
	}
	if result.RowsAffected == 0 {
		return GetProjectProgressQueryResponse{}, errs.NewObjectNotFoundError("project", query.ProjectID().String())
	}

	status := project.ProductionStatus(row.ProductionStatus)
	if err := status.Validate(); err != nil {
		return GetProjectProgressQueryResponse{}, project.NewInvalidProjectStateError(query.ProjectID(), err)
	}
	funding := project.FundingStatus(row.FundingStatus)
	if err := funding.Validate(); err != nil {
		return GetProjectProgressQueryResponse{}, project.NewInvalidProjectStateError(query.ProjectID(), err)
	}

	return GetProjectProgressQueryResponse{
		ProjectID:     query.ProjectID(),
		Status:        status,
		FundingStatus: funding,
		Step:          status.Step(),
		TotalSteps:    len(project.ProductionSteps()),
		Percent:       status.Progress(),
		Label:         status.Label(),
	}, nil
}
