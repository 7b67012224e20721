// Package outbox models domain events waiting to be delivered to external
// collaborators. Entries are written in the same transaction as the aggregate
// that raised them and are delivered at least once by the dispatch job.
//
// Lifecycle:
//
//	PENDING ──> PROCESSING ──┬──> SENT
//	   ^                     └──> FAILED ──> PROCESSING ...
//	   │                              └──> DEAD (after MaxRetries)
//	   └──────── ResetForRetry ───────────────┘
//
// A PROCESSING entry whose claim lease expired may be claimed again.
package outbox
