package queries

import (
	"errors"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/pkg/errs"
	"flowerstand/internal/pkg/guard"
)

var ErrGetProjectProgressQueryIsNotConstructed = errors.New(
	"GetProjectProgressQuery must be created via NewGetProjectProgressQuery constructor",
)

// GetProjectProgressQuery reads where a project is in the fulfillment flow,
// for the supporter-facing delivery tracker.
type GetProjectProgressQuery struct {
	projectID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetProjectProgressQuery(projectID kernel.UUID) (GetProjectProgressQuery, error) {
	if err := projectID.Validate(); err != nil {
		return GetProjectProgressQuery{}, errs.NewValueIsInvalidErrorWithCause("projectID", err)
	}
	return GetProjectProgressQuery{projectID: projectID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetProjectProgressQuery) Validate() error {
	return q.guard.Validate(ErrGetProjectProgressQueryIsNotConstructed)
}

func (q GetProjectProgressQuery) ProjectID() kernel.UUID {
	return q.projectID
}

// GetProjectProgressQueryResponse describes one point of the tracker.
// Step is -1 before the florist accepts; TotalSteps is the length of the flow.
type GetProjectProgressQueryResponse struct {
	ProjectID     kernel.UUID
	Status        project.ProductionStatus
	FundingStatus project.FundingStatus
	Step          int
	TotalSteps    int
	Percent       int
	Label         string
}
