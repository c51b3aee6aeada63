package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the reminder check period.
const DefaultInterval = 30 * time.Second

// Engine emits tick times on a fixed period. It owns no task state:
// the consumer runs the sweep against its working snapshot, so ticks
// and user mutations stay serialized on one event loop. Sends are
// non-blocking; a tick that finds the consumer busy is dropped and
// counted, the next one covers for it.
type Engine struct {
	mu       sync.Mutex
	interval time.Duration
	out      chan time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	dropped  uint64
}

func NewEngine(interval time.Duration) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{
		interval: interval,
		out:      make(chan time.Time, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (e *Engine) C() <-chan time.Time {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	go e.loop()
}

// Stop cancels the periodic timer and waits for the loop to exit. No
// tick is delivered after Stop returns; the output channel is closed.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case at := <-ticker.C:
			select {
			case e.out <- at:
			default:
				atomic.AddUint64(&e.dropped, 1)
			}
		case <-e.stopCh:
			return
		}
	}
}
