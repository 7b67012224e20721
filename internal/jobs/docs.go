// Package jobs provides scheduled background tasks of the flower-stand service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
// Nothing in the domain runs in the background; the jobs only move work that
// commands already committed.
//
// # Available Jobs
//
// 1. OutboxDispatchJob - delivers committed domain events to notifications,
// the refund rail and chat, one batch per tick
// 2. DeadLetterMonitorJob - warns while outbox entries sit in DEAD and need an
// operator to retry them
//
// # Usage
//
//	jobManager := jobs.NewJobManager(dispatchHandler, deadEntriesHandler, jobs.Schedule{...}, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		logger.Fatal("failed to start jobs", zap.Error(err))
//	}
//
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules use the six-field cron syntax (with seconds). A tick that is still
// running when the next one fires is skipped, so batches never overlap within
// one process. Several processes may dispatch at once: claims use
// SKIP LOCKED and never hand out the same entry twice.
package jobs
