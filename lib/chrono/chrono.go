package chrono

import "time"

// Clock is the interface anything that needs to observe or wait on wall
// time should depend on, so tests can drive time deterministically.
type Clock interface {
	Now() time.Time
	// After behaves like time.After.
	After(d time.Duration) <-chan time.Time
}

// StandardClock implements Clock using the time package.
type StandardClock struct{}

func (StandardClock) Now() time.Time {
	return time.Now()
}

func (StandardClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
