// internal/core/services/clock.go
package services

import (
	"time"

	"github.com/ammerola/poultry-storefront/internal/core/ports"
)

// SystemClock schedules callbacks on the wall clock
type SystemClock struct{}

var _ ports.Clock = SystemClock{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) AfterFunc(d time.Duration, f func()) ports.Timer {
	return time.AfterFunc(d, f)
}
