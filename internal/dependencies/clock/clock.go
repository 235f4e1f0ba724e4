package clock

import "time"

// Clock abstracts the wall clock so timestamps can be pinned in tests
type Clock interface {
	Now() time.Time
}

// System reads the real wall clock
type System struct{}

// New returns the system clock
func New() System {
	return System{}
}

// Now returns the current local time
func (System) Now() time.Time {
	return time.Now()
}
