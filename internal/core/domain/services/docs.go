// Package services provides domain services that work across the Project
// aggregate and the pledge ledger.
//
// The package includes:
//   - RefundAllocator: splits a refund across pledges by largest remainder
//   - CancellationSettler: previews and applies a cancellation together with
//     its per-supporter refund split
package services
