package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock provides time operations that can be mocked for testing
// In production this is clockwork's real clock; tests use a fake clock
type Clock interface {
	Now() time.Time

	// NewTicker delivers the current time on its channel once per period
	NewTicker(d time.Duration) clockwork.Ticker

	// AfterFunc runs f in its own goroutine once d has elapsed
	AfterFunc(d time.Duration, f func()) clockwork.Timer
}

// New creates a Clock backed by the system clock
func New() Clock {
	return clockwork.NewRealClock()
}
