package timer

import (
	"sync"
	"time"
)

// Clock abstracts the time source and the tick scheduling of the machine.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers ticks on a channel until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock is the wall clock.
var RealClock Clock = realClock{}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

func (realClock) NewTicker(d time.Duration) Ticker { return realTicker{t: time.NewTicker(d)} }

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// ManualClock is a clock that only moves and ticks when told to, used to
// drive the machine deterministically.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers map[*manualTicker]struct{}
}

// NewManualClock returns a new manual clock set at now.
func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{
		now:     now,
		tickers: map[*manualTicker]struct{}{},
	}
}

// Now returns the manual clock time.
func (m *ManualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward.
func (m *ManualClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// NewTicker returns a ticker that fires only on Fire calls.
func (m *ManualClock) NewTicker(d time.Duration) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTicker{clock: m, c: make(chan time.Time)}
	m.tickers[t] = struct{}{}
	return t
}

// ActiveTickers returns the number of tickers that have not been stopped.
func (m *ManualClock) ActiveTickers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickers)
}

// Fire sends a tick to every active ticker. It returns the number of tickers
// that received the tick. It doesn't block on tickers whose consumer is gone.
func (m *ManualClock) Fire() int {
	m.mu.Lock()
	now := m.now
	tickers := make([]*manualTicker, 0, len(m.tickers))
	for t := range m.tickers {
		tickers = append(tickers, t)
	}
	m.mu.Unlock()

	fired := 0
	for _, t := range tickers {
		select {
		case t.c <- now:
			fired++
		case <-time.After(time.Second):
		}
	}
	return fired
}

type manualTicker struct {
	clock *ManualClock
	c     chan time.Time
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	delete(t.clock.tickers, t)
}
