package clock

import (
	"time"
)

// fallbackOffset is UTC-3, used when the IANA database is unavailable
const fallbackOffsetSeconds = -3 * 60 * 60

// BusinessClock is pinned to the practice's timezone so the business
// date rolls over at local midnight, not at the server's midnight.
type BusinessClock struct {
	loc *time.Location
}

// New creates a BusinessClock for the given IANA timezone name. If the
// zone cannot be loaded a fixed UTC-3 offset is used instead, which
// matches Argentina year-round (no DST since 2009).
func New(timezone string) *BusinessClock {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.FixedZone("-03", fallbackOffsetSeconds)
	}
	return &BusinessClock{loc: loc}
}

// Now returns the current instant in the business timezone
func (c *BusinessClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Today returns midnight of the current date in the business timezone
func (c *BusinessClock) Today() time.Time {
	now := c.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Location returns the business timezone
func (c *BusinessClock) Location() *time.Location {
	return c.loc
}
