// internal/core/ports/clock.go
package ports

import "time"

// Timer is a pending callback that can be cancelled before it fires
type Timer interface {
	// Stop prevents the callback from firing. It reports false when the
	// timer already fired or was stopped.
	Stop() bool
}

// Clock schedules callbacks. Production code uses the wall clock; tests
// substitute a manually advanced one.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}
