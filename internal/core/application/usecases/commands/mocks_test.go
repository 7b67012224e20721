package commands_test

import (
	"context"
	"testing"
	"time"

	"flowerstand/internal/core/application/usecases/commands"
	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/outbox"
	"flowerstand/internal/core/domain/model/pledge"
	"flowerstand/internal/core/domain/model/project"
	"flowerstand/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

type MockProjectRepository struct{ mock.Mock }

func (m *MockProjectRepository) Add(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepository) Update(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepository) Get(ctx context.Context, id kernel.UUID) (*project.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*project.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

type MockPledgeRepository struct{ mock.Mock }

func (m *MockPledgeRepository) Add(ctx context.Context, p *pledge.Pledge) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPledgeRepository) ListByProject(ctx context.Context, id kernel.UUID) ([]*pledge.Pledge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pledge.Pledge), args.Error(1)
}

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Add(ctx context.Context, entries ...*outbox.Entry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockOutboxRepository) Claim(ctx context.Context, at time.Time, limit int) ([]*outbox.Entry, error) {
	args := m.Called(ctx, at, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Entry), args.Error(1)
}

func (m *MockOutboxRepository) Update(ctx context.Context, entry *outbox.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockOutboxRepository) Get(ctx context.Context, id kernel.UUID) (*outbox.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Entry), args.Error(1)
}

// MockUoW implements every handler-level unit of work interface.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) ProjectRepository() ports.ProjectRepository {
	args := m.Called()
	return args.Get(0).(ports.ProjectRepository)
}

func (m *MockUoW) PledgeRepository() ports.PledgeRepository {
	args := m.Called()
	return args.Get(0).(ports.PledgeRepository)
}

func (m *MockUoW) OutboxRepository() ports.OutboxRepository {
	args := m.Called()
	return args.Get(0).(ports.OutboxRepository)
}

type MockProjectUoWFactory struct{ mock.Mock }

func (m *MockProjectUoWFactory) Create() commands.ProjectUoW {
	args := m.Called()
	return args.Get(0).(commands.ProjectUoW)
}

type MockSettlementUoWFactory struct{ mock.Mock }

func (m *MockSettlementUoWFactory) Create() commands.SettlementUoW {
	args := m.Called()
	return args.Get(0).(commands.SettlementUoW)
}

type MockOutboxUoWFactory struct{ mock.Mock }

func (m *MockOutboxUoWFactory) Create() commands.OutboxUoW {
	args := m.Called()
	return args.Get(0).(commands.OutboxUoW)
}

type actors struct {
	planner  kernel.Actor
	florist  kernel.Actor
	operator kernel.Actor
	stranger kernel.Actor
}

func newActors(t *testing.T) actors {
	t.Helper()
	mk := func(roles ...string) kernel.Actor {
		a, err := kernel.NewActor(kernel.NewUUID(), roles...)
		require.NoError(t, err)
		return a
	}
	return actors{planner: mk(), florist: mk(), operator: mk(kernel.RoleOperator), stranger: mk()}
}

func fundraisingProject(
	t *testing.T,
	a actors,
	production project.ProductionStatus,
	mutate ...func(*project.Snapshot),
) *project.Project {
	t.Helper()
	floristID := a.florist.ID()
	s := project.Snapshot{
		ID:               kernel.NewUUID(),
		PlannerID:        a.planner.ID(),
		FloristID:        &floristID,
		FundingStatus:    project.FundingFundraising,
		ProductionStatus: production,
		CollectedAmount:  100000,
		TargetAmount:     150000,
		MaterialCost:     5000,
		DeliveryDateTime: now.Add(5 * 24 * time.Hour),
		Version:          1,
	}
	for _, m := range mutate {
		m(&s)
	}
	p, err := project.RestoreProject(s)
	require.NoError(t, err)
	return p
}
