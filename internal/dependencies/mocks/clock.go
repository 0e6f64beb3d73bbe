package mocks

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcoot/turntimer/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing
// Time only moves when the test calls Advance
type MockClock struct {
	*clockwork.FakeClock
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{FakeClock: clockwork.NewFakeClockAt(t)}
}

// WaitForWaiters blocks until n tickers or timers are registered with the clock
func (c *MockClock) WaitForWaiters(ctx context.Context, n int) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return c.BlockUntilContext(ctx, n)
}
