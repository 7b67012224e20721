package jobs

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Schedule configures the jobs. Specs use the six-field cron syntax.
type Schedule struct {
	DispatchSpec    string
	DispatchBatch   int
	DispatchTimeout time.Duration
	DeadLetterSpec  string
}

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	outboxDispatchJob    *OutboxDispatchJob
	deadLetterMonitorJob *DeadLetterMonitorJob
}

func NewJobManager(
	dispatchHandler outboxDispatcher,
	deadEntriesHandler deadEntriesLister,
	schedule Schedule,
	logger *zap.Logger,
) *JobManager {
	return &JobManager{
		outboxDispatchJob: NewOutboxDispatchJob(
			dispatchHandler, schedule.DispatchSpec, schedule.DispatchBatch, schedule.DispatchTimeout, logger),
		deadLetterMonitorJob: NewDeadLetterMonitorJob(deadEntriesHandler, schedule.DeadLetterSpec, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.outboxDispatchJob.Start(); err != nil {
		return fmt.Errorf("failed to start outbox dispatch job: %w", err)
	}

	if err := jm.deadLetterMonitorJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.outboxDispatchJob.Stop()
		return fmt.Errorf("failed to start dead letter monitor job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.deadLetterMonitorJob.Stop()
	jm.outboxDispatchJob.Stop()
}
