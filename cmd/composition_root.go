package cmd

import (
	"time"

	httpapi "flowerstand/internal/adapters/in/http"
	"flowerstand/internal/adapters/out/postgres"
	"flowerstand/internal/adapters/out/postgres/refundrepo"
	"flowerstand/internal/adapters/out/redis"
	"flowerstand/internal/core/application/usecases/commands"
	"flowerstand/internal/core/application/usecases/queries"
	"flowerstand/internal/core/domain/services"
	"flowerstand/internal/core/ports"
	"flowerstand/internal/jobs"

	"github.com/panjf2000/ants/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	configs     Config
	gormDB      *gorm.DB
	redisClient goredis.UniversalClient
	pool        *ants.Pool
	uowFactory  *postgres.GormUnitOfWorkFactory
	settler     services.CancellationSettler
	clock       ports.Clock
	logger      *zap.Logger
}

func NewCompositionRoot(
	configs Config,
	gormDB *gorm.DB,
	redisClient goredis.UniversalClient,
	pool *ants.Pool,
	logger *zap.Logger,
) CompositionRoot {
	return CompositionRoot{
		configs:     configs,
		gormDB:      gormDB,
		redisClient: redisClient,
		pool:        pool,
		uowFactory:  postgres.NewGormUnitOfWorkFactory(gormDB, configs.OutboxLease),
		settler:     services.NewCancellationSettler(services.NewRefundAllocator()),
		clock:       SystemClock{},
		logger:      logger,
	}
}

func (c *CompositionRoot) CreateAdvanceProductionCommandHandler() commands.AdvanceProductionCommandHandler {
	var f commands.ProjectUoWFactory = FuncProjectUoWFactory(func() commands.ProjectUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAdvanceProductionCommandHandler(f, c.clock)
}

func (c *CompositionRoot) CreateDeclareMaterialCostCommandHandler() commands.DeclareMaterialCostCommandHandler {
	var f commands.ProjectUoWFactory = FuncProjectUoWFactory(func() commands.ProjectUoW {
		return c.uowFactory.Create()
	})
	return commands.NewDeclareMaterialCostCommandHandler(f, c.clock)
}

func (c *CompositionRoot) CreateCancelProjectCommandHandler() commands.CancelProjectCommandHandler {
	var f commands.SettlementUoWFactory = FuncSettlementUoWFactory(func() commands.SettlementUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelProjectCommandHandler(f, c.settler, c.clock)
}

func (c *CompositionRoot) CreateDispatchOutboxCommandHandler() commands.DispatchOutboxCommandHandler {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	return commands.NewDispatchOutboxCommandHandler(
		f,
		c.pool,
		commands.Collaborators{
			Notifier: redis.NewNotifier(c.redisClient),
			Payments: refundrepo.NewPayments(c.gormDB),
			Chat:     redis.NewChatChannels(c.redisClient),
		},
		redis.NewIdempotencyStore(c.redisClient, c.configs.RedisKeyPrefix),
		c.clock,
		commands.DispatchOptions{
			IdempotencyTTL: c.configs.OutboxIdempotencyTTL,
			BaseBackoff:    c.configs.OutboxBaseBackoff,
		},
	)
}

func (c *CompositionRoot) CreateRetryDeadOutboxEntryCommandHandler() commands.RetryDeadOutboxEntryCommandHandler {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRetryDeadOutboxEntryCommandHandler(f, c.clock)
}

func (c *CompositionRoot) CreatePreviewCancellationQueryHandler() queries.PreviewCancellationQueryHandler {
	var f queries.PreviewUoWFactory = FuncPreviewUoWFactory(func() queries.PreviewUoW {
		return c.uowFactory.Create()
	})
	return queries.NewPreviewCancellationQueryHandler(f, c.settler, c.clock)
}

func (c *CompositionRoot) CreateGetProjectProgressQueryHandler() queries.GetProjectProgressQueryHandler {
	return queries.NewGetProjectProgressQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListDeadOutboxEntriesQueryHandler() queries.ListDeadOutboxEntriesQueryHandler {
	return queries.NewListDeadOutboxEntriesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *httpapi.Server {
	return httpapi.NewServer(httpapi.Handlers{
		AdvanceProduction:   c.CreateAdvanceProductionCommandHandler(),
		CancelProject:       c.CreateCancelProjectCommandHandler(),
		DeclareMaterialCost: c.CreateDeclareMaterialCostCommandHandler(),
		PreviewCancellation: c.CreatePreviewCancellationQueryHandler(),
		GetProjectProgress:  c.CreateGetProjectProgressQueryHandler(),
	}, c.logger)
}

func (c *CompositionRoot) CreateAuthConfig() httpapi.AuthConfig {
	return httpapi.AuthConfig{Secret: []byte(c.configs.JWTSecret), Issuer: c.configs.JWTIssuer}
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateDispatchOutboxCommandHandler(),
		c.CreateListDeadOutboxEntriesQueryHandler(),
		jobs.Schedule{
			DispatchSpec:    c.configs.OutboxDispatchSpec,
			DispatchBatch:   c.configs.OutboxBatchSize,
			DispatchTimeout: c.configs.OutboxDispatchTimeout,
			DeadLetterSpec:  c.configs.DeadLetterSpec,
		},
		c.logger,
	)
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type FuncProjectUoWFactory func() commands.ProjectUoW

func (f FuncProjectUoWFactory) Create() commands.ProjectUoW {
	return f()
}

type FuncSettlementUoWFactory func() commands.SettlementUoW

func (f FuncSettlementUoWFactory) Create() commands.SettlementUoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}

type FuncPreviewUoWFactory func() queries.PreviewUoW

func (f FuncPreviewUoWFactory) Create() queries.PreviewUoW {
	return f()
}
