package engine

import "time"

// Clock supplies the wall time that sampled transaction timestamps are
// offset from.
type Clock interface {
	Now() time.Time
}

// WallClock reads the system clock.
type WallClock struct{}

// Now returns time.Now().
func (WallClock) Now() time.Time {
	return time.Now()
}
