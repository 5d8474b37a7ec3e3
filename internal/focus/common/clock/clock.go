package clock

import "time"

// Clock abstracts wall time and the single blocking wait a session performs.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type RealClock struct{}

func (c RealClock) Now() time.Time {
	return time.Now()
}

// Sleep blocks the calling goroutine for d. Non-positive durations return immediately.
func (c RealClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	time.Sleep(d)
}

// MockClock never blocks. Sleep advances CurrentTime and records the
// requested duration so tests can assert on hold lengths.
type MockClock struct {
	CurrentTime time.Time
	Sleeps      []time.Duration
}

func (c *MockClock) Now() time.Time {
	return c.CurrentTime
}

func (c *MockClock) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}

func (c *MockClock) Sleep(d time.Duration) {
	c.Sleeps = append(c.Sleeps, d)
	if d > 0 {
		c.Advance(d)
	}
}
