package jobs

import (
	"context"
	"time"

	"flowerstand/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type outboxDispatcher interface {
	Handle(ctx context.Context, command commands.DispatchOutboxCommand) (commands.DispatchOutboxResult, error)
}

// OutboxDispatchJob delivers one outbox batch per tick.
type OutboxDispatchJob struct {
	handler   outboxDispatcher
	spec      string
	batchSize int
	timeout   time.Duration
	cron      *cron.Cron
	logger    *zap.Logger
}

// NewOutboxDispatchJob runs handler on spec. Each tick gets timeout to finish
// its batch; zero means no deadline.
func NewOutboxDispatchJob(
	handler outboxDispatcher,
	spec string,
	batchSize int,
	timeout time.Duration,
	logger *zap.Logger,
) *OutboxDispatchJob {
	logger = logger.With(zap.String("component", "outbox_dispatch_job"))
	return &OutboxDispatchJob{
		handler:   handler,
		spec:      spec,
		batchSize: batchSize,
		timeout:   timeout,
		cron:      newCron(logger),
		logger:    logger,
	}
}

func (j *OutboxDispatchJob) Start() error {
	cmd, err := commands.NewDispatchOutboxCommand(j.batchSize)
	if err != nil {
		return err
	}

	if _, err = j.cron.AddFunc(j.spec, func() { j.RunOnce(cmd) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("outbox dispatch job started", zap.String("schedule", j.spec), zap.Int("batch_size", j.batchSize))
	return nil
}

// RunOnce dispatches a single batch and logs the outcome.
func (j *OutboxDispatchJob) RunOnce(cmd commands.DispatchOutboxCommand) {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.Error("outbox dispatch failed", zap.Error(err))
		return
	}
	if result.Claimed == 0 {
		return
	}

	fields := []zap.Field{
		zap.Int("claimed", result.Claimed),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Int("dead", result.Dead),
		zap.Int("deferred", result.Deferred),
	}
	if len(result.Errors) > 0 {
		fields = append(fields, zap.Errors("errors", result.Errors))
	}

	switch {
	case result.Dead > 0:
		j.logger.Error("outbox entries exhausted their retries", fields...)
	case result.Failed > 0:
		j.logger.Warn("outbox batch partially delivered", fields...)
	default:
		j.logger.Debug("outbox batch delivered", fields...)
	}
}

// Stop waits for a running batch to finish.
func (j *OutboxDispatchJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("outbox dispatch job stopped")
}
