package jobs

import (
	"context"

	"flowerstand/internal/core/application/usecases/queries"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type deadEntriesLister interface {
	Handle(ctx context.Context, query queries.ListDeadOutboxEntriesQuery) ([]queries.ListDeadOutboxEntriesQueryResponse, error)
}

// DeadLetterMonitorJob warns while dead outbox entries are waiting for an
// operator. It never retries them itself.
type DeadLetterMonitorJob struct {
	handler deadEntriesLister
	spec    string
	cron    *cron.Cron
	logger  *zap.Logger
}

func NewDeadLetterMonitorJob(handler deadEntriesLister, spec string, logger *zap.Logger) *DeadLetterMonitorJob {
	logger = logger.With(zap.String("component", "dead_letter_monitor_job"))
	return &DeadLetterMonitorJob{
		handler: handler,
		spec:    spec,
		cron:    newCron(logger),
		logger:  logger,
	}
}

func (j *DeadLetterMonitorJob) Start() error {
	query, err := queries.NewListDeadOutboxEntriesQuery(0)
	if err != nil {
		return err
	}

	if _, err = j.cron.AddFunc(j.spec, func() { j.RunOnce(query) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("dead letter monitor started", zap.String("schedule", j.spec))
	return nil
}

func (j *DeadLetterMonitorJob) RunOnce(query queries.ListDeadOutboxEntriesQuery) {
	entries, err := j.handler.Handle(context.Background(), query)
	if err != nil {
		j.logger.Error("listing dead outbox entries failed", zap.Error(err))
		return
	}
	if len(entries) == 0 {
		return
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID.String())
	}
	j.logger.Warn("dead outbox entries need a retry",
		zap.Int("count", len(entries)),
		zap.Strings("entry_ids", ids),
		zap.String("oldest_error", entries[len(entries)-1].LastError),
	)
}

func (j *DeadLetterMonitorJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("dead letter monitor stopped")
}
