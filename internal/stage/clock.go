package stage

import (
	"sync"
	"time"
)

// Ticker is an interface for time.Ticker to allow mocking.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TimeProvider provides time-related functionality for dependency injection.
type TimeProvider interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// RealTimeProvider implements TimeProvider using real time functions.
type RealTimeProvider struct{}

// Now returns the current time.
func (r *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// NewTicker creates a new ticker.
func (r *RealTimeProvider) NewTicker(d time.Duration) Ticker {
	return &RealTicker{ticker: time.NewTicker(d)}
}

// RealTicker wraps time.Ticker to implement the Ticker interface.
type RealTicker struct {
	ticker *time.Ticker
}

// C returns the ticker's channel.
func (r *RealTicker) C() <-chan time.Time {
	return r.ticker.C
}

// Stop stops the ticker.
func (r *RealTicker) Stop() {
	r.ticker.Stop()
}

// MockTicker is a mock implementation of Ticker for testing.
type MockTicker struct {
	TickChan chan time.Time
}

// C returns the ticker's channel.
func (m *MockTicker) C() <-chan time.Time {
	return m.TickChan
}

// Stop stops the ticker.
func (m *MockTicker) Stop() {
	if m.TickChan != nil {
		close(m.TickChan)
		m.TickChan = nil
	}
}

// MockClock is a controllable TimeProvider for testing time-derived values.
type MockClock struct {
	mu     sync.Mutex
	now    time.Time
	Ticker *MockTicker
}

// NewMockClock creates a MockClock frozen at the given instant.
func NewMockClock(now time.Time) *MockClock {
	return &MockClock{
		now:    now,
		Ticker: &MockTicker{TickChan: make(chan time.Time, 1)},
	}
}

// Now returns the clock's current instant.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Advance moves the clock forward.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// NewTicker returns the clock's mock ticker regardless of interval.
func (c *MockClock) NewTicker(_ time.Duration) Ticker {
	return c.Ticker
}
