// Package scheduler coalesces bursts of chain mutations into single
// hardware flushes. Every change notification arms (or re-arms) a quiescence
// timer; only when changes stop arriving for a full window does one flush
// run. The hardware frame always carries all eight channels, so flushing
// once per burst instead of once per mutation is what keeps a script that
// touches every channel from retransmitting the chain eight times.
package scheduler

import (
	"sync"
	"time"
)

// DefaultQuiescence is the debounce window used when the caller does not
// configure one.
const DefaultQuiescence = 100 * time.Millisecond

// Scheduler debounces flush requests. At most one timer is pending and at
// most one flush is in flight at any time.
type Scheduler struct {
	delay time.Duration
	flush func() error
	onErr func(error)

	mu     sync.Mutex // guards timer, gen and closed
	timer  *time.Timer
	gen    uint64 // bumped per Notify; stale timer fires yield
	closed bool

	flushMu sync.Mutex // serializes flush invocations
}

// New returns a Scheduler that calls flush once per quiescent burst. Flush
// errors are handed to onErr (may be nil) and never retried.
func New(delay time.Duration, flush func() error, onErr func(error)) *Scheduler {
	if delay <= 0 {
		delay = DefaultQuiescence
	}
	return &Scheduler{delay: delay, flush: flush, onErr: onErr}
}

// Notify records that the chain changed. The pending window, if any, slides:
// the flush fires one full quiescence window after the last Notify.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	// Arm a fresh timer per notification instead of resetting the old one:
	// Reset on a timer whose expiry is already in flight would leave that
	// stale expiry racing the re-armed window. Stopping the old timer and
	// bumping the generation makes any such expiry yield in fire.
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		// A newer window was armed after this timer was scheduled.
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	// A Notify arriving from here on starts a fresh window; it will see the
	// chain state this flush snapshots or newer, never miss an update.
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	if err := s.flush(); err != nil && s.onErr != nil {
		s.onErr(err)
	}
}

// Close cancels any pending window and refuses further notifications. It
// waits for an in-flight flush to finish so the caller can safely release
// the lines afterwards.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.flushMu.Lock()
	s.flushMu.Unlock()
}
