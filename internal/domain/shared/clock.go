package shared

import "time"

// Clock supplies the current instant and the current business date.
// The production implementation is pinned to the practice's timezone
// (Argentina, UTC-3) so "today" never depends on the host timezone.
type Clock interface {
	// Now returns the current instant in the business timezone.
	Now() time.Time

	// Today returns midnight of the current date in the business timezone.
	Today() time.Time

	// Location returns the business timezone.
	Location() *time.Location
}
