package models

import "time"

// DefaultCreatedAtOffset is added to the wall clock when stamping new posts
// and comments.
const DefaultCreatedAtOffset = 2 * time.Hour

// Clock produces creation timestamps.
type Clock struct {
	Now    func() time.Time
	Offset time.Duration
}

// NewClock returns a wall clock shifted by offset.
func NewClock(offset time.Duration) Clock {
	return Clock{Now: time.Now, Offset: offset}
}

// Stamp returns the current time plus the configured offset.
func (c Clock) Stamp() time.Time {
	now := c.Now
	if now == nil {
		now = time.Now
	}
	return now().Add(c.Offset)
}
