package output

import (
	"sync"

	"github.com/example/blinkd/internal/chain"
)

// Sim records flushes instead of touching hardware. Fallback sink and the
// workhorse of the tests.
type Sim struct {
	mu      sync.Mutex
	flushes int
	last    chain.Snapshot
}

func NewSim() *Sim {
	return &Sim{}
}

func (s *Sim) Flush(snap chain.Snapshot) error {
	s.mu.Lock()
	s.flushes++
	s.last = snap
	s.mu.Unlock()
	return nil
}

func (s *Sim) Close() error { return nil }

// Flushes returns how many snapshots have been flushed so far.
func (s *Sim) Flushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}

// Last returns the most recently flushed snapshot.
func (s *Sim) Last() chain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
