package batch

import (
	"sync"
	"time"
)

// Progresser drives progress updates for an item while its remote call
// is in flight. Start begins reporting through advance and returns a
// stop function; stop must be safe to call more than once and must be
// called on both the success and the failure path so no orphaned
// reporter keeps mutating a terminal item. The simulated ticker is the
// default strategy; a backend that reports real progress can implement
// the same interface.
type Progresser interface {
	Start(advance func()) (stop func())
}

type tickerProgress struct {
	interval time.Duration
}

// NewTickerProgress returns the simulated strategy: advance fires at a
// fixed interval until stopped.
func NewTickerProgress(interval time.Duration) Progresser {
	if interval <= 0 {
		interval = 300 * time.Millisecond
	}
	return tickerProgress{interval: interval}
}

func (p tickerProgress) Start(advance func()) func() {
	ticker := time.NewTicker(p.interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				advance()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

// NoProgress is a Progresser that never reports; used in tests and for
// operations too fast to animate.
type NoProgress struct{}

func (NoProgress) Start(func()) func() {
	return func() {}
}
