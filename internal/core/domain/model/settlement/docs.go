// Package settlement computes what a cancelled flower-stand project forfeits
// and what it returns to its supporters.
//
// The calculation is pure: every input, including the instant of cancellation,
// is passed in explicitly, so the same inputs always produce the same estimate.
//
// Policy, by whole days remaining until delivery (fractions round up):
//
//	daysRemaining <= 3   100% base fee (last minute, includes past deliveries)
//	daysRemaining <= 7    50% base fee (delivery preparation window)
//	otherwise              0% base fee (early cancellation)
//
// Declared material cost is always retained on top of the base fee, and the
// total fee never exceeds the collected amount.
package settlement
