package receipt

import "context"

// CounterKey is the well-known key of the receipt number counter in the
// generic system_counters table. Its value always equals the highest
// document number across all non-voided receipts.
const CounterKey = "lastReceiptNumber"

// CounterRepository is the source of truth for receipt numbering. Every
// method must run inside the same store transaction as the receipt
// write it serves; Next acquires an exclusive row lock so concurrent
// issuers serialize on the counter row.
type CounterRepository interface {
	// Next locks the counter row, increments it and returns the new value.
	// A concurrent caller blocks until the owning transaction commits or
	// rolls back, which is what makes numbers gapless and unique.
	Next(ctx context.Context) (int64, error)

	// Current reads the counter value under the same exclusive lock.
	Current(ctx context.Context) (int64, error)

	// Decrement releases the most recently issued number after a void.
	Decrement(ctx context.Context) error
}
