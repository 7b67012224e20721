package commands_test

import (
	"errors"
	"testing"
	"time"

	"flowerstand/internal/core/application/usecases/commands"
	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/pledge"
	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/core/domain/model/settlement"
	"flowerstand/internal/core/domain/services"
	"flowerstand/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCancelHandler(factory commands.SettlementUoWFactory) commands.CancelProjectCommandHandler {
	return commands.NewCancelProjectCommandHandler(
		factory,
		services.NewCancellationSettler(services.NewRefundAllocator()),
		fixedClock{at: now},
	)
}

func ledger(t *testing.T, projectID kernel.UUID, amounts ...int64) []*pledge.Pledge {
	t.Helper()
	pledges := make([]*pledge.Pledge, 0, len(amounts))
	for i, amount := range amounts {
		p, err := pledge.NewPledge(kernel.NewUUID(), projectID, kernel.NewUUID(), amount,
			now.Add(-time.Duration(len(amounts)-i)*time.Hour))
		require.NoError(t, err)
		pledges = append(pledges, p)
	}
	return pledges
}

func TestNewCancelProjectCommand(t *testing.T) {
	a := newActors(t)

	t.Run("should create a valid command", func(t *testing.T) {
		cmd, err := commands.NewCancelProjectCommand(kernel.NewUUID(), a.planner)

		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
	})

	t.Run("should reject missing actor", func(t *testing.T) {
		_, err := commands.NewCancelProjectCommand(kernel.NewUUID(), kernel.Actor{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "actor")
	})
}

func TestCancelProjectCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	p := fundraisingProject(t, a, project.ProductionProcessing)
	pledges := ledger(t, p.ID(), 60000, 40000)
	cmd, err := commands.NewCancelProjectCommand(p.ID(), a.planner)
	require.NoError(t, err)

	projectRepo := new(MockProjectRepository)
	pledgeRepo := new(MockPledgeRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("ProjectRepository").Return(projectRepo).Once(),
		projectRepo.On("GetForUpdate", ctx, p.ID()).Return(p, nil).Once(),
		uow.On("PledgeRepository").Return(pledgeRepo).Once(),
		pledgeRepo.On("ListByProject", ctx, p.ID()).Return(pledges, nil).Once(),
		projectRepo.On("Update", ctx, p).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockSettlementUoWFactory)
	factory.On("Create").Return(uow).Once()

	result, err := newCancelHandler(factory).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, settlement.TierPreparation, result.Estimate.Tier())
	assert.Equal(t, int64(55000), result.Estimate.TotalFee())
	assert.Equal(t, int64(45000), result.Estimate.RefundAmount())
	require.Len(t, result.Shares, 2)
	assert.Equal(t, int64(27000), result.Shares[0].Amount)
	assert.Equal(t, int64(18000), result.Shares[1].Amount)

	assert.Equal(t, project.FundingCancelled, p.FundingStatus())
	assert.Equal(t, project.ProductionProcessing, p.ProductionStatus())
	require.NotNil(t, p.Settlement())
	assert.True(t, p.Settlement().Equal(result.Estimate))

	types := make([]string, 0, len(p.DomainEvents()))
	for _, e := range p.DomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{
		project.EventProjectCancelled,
		project.EventRefundRequested,
		project.EventChatModeChanged,
	}, types)

	projectRepo.AssertExpectations(t)
	pledgeRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestCancelProjectCommandHandler_Handle_OperatorMayCancel(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	p := fundraisingProject(t, a, project.ProductionUnset)
	cmd, _ := commands.NewCancelProjectCommand(p.ID(), a.operator)

	projectRepo := new(MockProjectRepository)
	pledgeRepo := new(MockPledgeRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ProjectRepository").Return(projectRepo).Once()
	projectRepo.On("GetForUpdate", ctx, p.ID()).Return(p, nil).Once()
	uow.On("PledgeRepository").Return(pledgeRepo).Once()
	pledgeRepo.On("ListByProject", ctx, p.ID()).Return([]*pledge.Pledge{}, nil).Once()
	projectRepo.On("Update", ctx, p).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockSettlementUoWFactory)
	factory.On("Create").Return(uow).Once()

	result, err := newCancelHandler(factory).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Empty(t, result.Shares)
	assert.Equal(t, project.FundingCancelled, p.FundingStatus())
}

func TestCancelProjectCommandHandler_Handle_Rejections(t *testing.T) {
	a := newActors(t)

	t.Run("should reject a stranger before reading the ledger", func(t *testing.T) {
		ctx := t.Context()
		p := fundraisingProject(t, a, project.ProductionAccepted)
		cmd, _ := commands.NewCancelProjectCommand(p.ID(), a.stranger)

		projectRepo := new(MockProjectRepository)
		uow := new(MockUoW)
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("ProjectRepository").Return(projectRepo).Once()
		projectRepo.On("GetForUpdate", ctx, p.ID()).Return(p, nil).Once()
		uow.On("Rollback", ctx).Return(nil).Once()

		factory := new(MockSettlementUoWFactory)
		factory.On("Create").Return(uow).Once()

		_, err := newCancelHandler(factory).Handle(ctx, cmd)

		require.ErrorIs(t, err, project.ErrUnauthorized)
		uow.AssertNotCalled(t, "PledgeRepository")
		assert.Equal(t, project.FundingFundraising, p.FundingStatus())
	})

	t.Run("should reject a completed project", func(t *testing.T) {
		ctx := t.Context()
		p := fundraisingProject(t, a, project.ProductionCompleted, func(s *project.Snapshot) {
			s.FundingStatus = project.FundingCompleted
		})
		cmd, _ := commands.NewCancelProjectCommand(p.ID(), a.planner)

		projectRepo := new(MockProjectRepository)
		uow := new(MockUoW)
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("ProjectRepository").Return(projectRepo).Once()
		projectRepo.On("GetForUpdate", ctx, p.ID()).Return(p, nil).Once()
		uow.On("Rollback", ctx).Return(nil).Once()

		factory := new(MockSettlementUoWFactory)
		factory.On("Create").Return(uow).Once()

		_, err := newCancelHandler(factory).Handle(ctx, cmd)

		require.ErrorIs(t, err, project.ErrAlreadyTerminal)
		uow.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("should reject a ledger that does not match the collected amount", func(t *testing.T) {
		ctx := t.Context()
		p := fundraisingProject(t, a, project.ProductionAccepted)
		cmd, _ := commands.NewCancelProjectCommand(p.ID(), a.planner)

		projectRepo := new(MockProjectRepository)
		pledgeRepo := new(MockPledgeRepository)
		uow := new(MockUoW)
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("ProjectRepository").Return(projectRepo).Once()
		projectRepo.On("GetForUpdate", ctx, p.ID()).Return(p, nil).Once()
		uow.On("PledgeRepository").Return(pledgeRepo).Once()
		pledgeRepo.On("ListByProject", ctx, p.ID()).Return(ledger(t, p.ID(), 1000), nil).Once()
		uow.On("Rollback", ctx).Return(nil).Once()

		factory := new(MockSettlementUoWFactory)
		factory.On("Create").Return(uow).Once()

		_, err := newCancelHandler(factory).Handle(ctx, cmd)

		require.ErrorIs(t, err, project.ErrInvalidProjectState)
		assert.Equal(t, project.FundingFundraising, p.FundingStatus())
		projectRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("should surface the ledger read error", func(t *testing.T) {
		ctx := t.Context()
		p := fundraisingProject(t, a, project.ProductionAccepted)
		cmd, _ := commands.NewCancelProjectCommand(p.ID(), a.planner)

		projectRepo := new(MockProjectRepository)
		pledgeRepo := new(MockPledgeRepository)
		uow := new(MockUoW)
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("ProjectRepository").Return(projectRepo).Once()
		projectRepo.On("GetForUpdate", ctx, p.ID()).Return(p, nil).Once()
		uow.On("PledgeRepository").Return(pledgeRepo).Once()
		pledgeRepo.On("ListByProject", ctx, p.ID()).Return(nil, errors.New("ledger unavailable")).Once()
		uow.On("Rollback", ctx).Return(nil).Once()

		factory := new(MockSettlementUoWFactory)
		factory.On("Create").Return(uow).Once()

		_, err := newCancelHandler(factory).Handle(ctx, cmd)

		require.EqualError(t, err, "ledger unavailable")
	})
}

func TestCancelProjectCommandHandler_Handle_DoubleCancelRace(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	stale := fundraisingProject(t, a, project.ProductionAccepted)
	cmd, _ := commands.NewCancelProjectCommand(stale.ID(), a.operator)

	winner := fundraisingProject(t, a, project.ProductionAccepted, func(s *project.Snapshot) { s.ID = stale.ID() })
	_, err := winner.Cancel(a.planner, now, nil)
	require.NoError(t, err)

	projectRepo := new(MockProjectRepository)
	pledgeRepo := new(MockPledgeRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ProjectRepository").Return(projectRepo).Once()
	projectRepo.On("GetForUpdate", ctx, stale.ID()).Return(stale, nil).Once()
	uow.On("PledgeRepository").Return(pledgeRepo).Once()
	pledgeRepo.On("ListByProject", ctx, stale.ID()).Return([]*pledge.Pledge{}, nil).Once()
	projectRepo.On("Update", ctx, stale).Return(ports.ErrConcurrentModification).Once()
	projectRepo.On("Get", ctx, stale.ID()).Return(winner, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockSettlementUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err = newCancelHandler(factory).Handle(ctx, cmd)

	var terminal *project.AlreadyTerminalError
	require.ErrorAs(t, err, &terminal)
	assert.Equal(t, project.ActionCancel, terminal.Action)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestCancelProjectCommandHandler_Handle_CommitError(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	p := fundraisingProject(t, a, project.ProductionAccepted)
	cmd, _ := commands.NewCancelProjectCommand(p.ID(), a.planner)

	projectRepo := new(MockProjectRepository)
	pledgeRepo := new(MockPledgeRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ProjectRepository").Return(projectRepo).Once()
	projectRepo.On("GetForUpdate", ctx, p.ID()).Return(p, nil).Once()
	uow.On("PledgeRepository").Return(pledgeRepo).Once()
	pledgeRepo.On("ListByProject", ctx, p.ID()).Return([]*pledge.Pledge{}, nil).Once()
	projectRepo.On("Update", ctx, p).Return(nil).Once()
	uow.On("Commit", ctx).Return(errors.New("commit error")).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockSettlementUoWFactory)
	factory.On("Create").Return(uow).Once()

	result, err := newCancelHandler(factory).Handle(ctx, cmd)

	require.EqualError(t, err, "commit error")
	assert.Equal(t, services.Settlement{}, result)
}
