package commands

import (
	"context"
	"errors"

	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/core/ports"
)

// resolveConflict turns a lost version race into the error the caller should
// see. If the winner made the project terminal the loser gets AlreadyTerminal,
// so a cancel that committed first is reported as such; otherwise the
// concurrent modification is surfaced as is. Nothing is retried.
func resolveConflict(
	ctx context.Context,
	repo ports.ProjectRepository,
	projectID kernel.UUID,
	action project.Action,
	err error,
) error {
	if !errors.Is(err, ports.ErrConcurrentModification) {
		return err
	}

	fresh, getErr := repo.Get(ctx, projectID)
	if getErr != nil {
		return errors.Join(err, getErr)
	}

	if fresh.IsTerminal() {
		return &project.AlreadyTerminalError{
			ProjectID:     projectID,
			FundingStatus: fresh.FundingStatus(),
			Action:        action,
		}
	}

	return err
}
