// Package app wires the chain state, the update scheduler and an output
// sink into one explicitly constructed driver object.
package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/example/blinkd/internal/chain"
	"github.com/example/blinkd/internal/output"
	"github.com/example/blinkd/internal/scheduler"
)

// Host is the capability surface of whatever framework hosts this driver.
// The core only calls it; it never registers with or subclasses anything.
type Host interface {
	// ChannelChanged fires once per distinct value change.
	ChannelChanged(index int)
	// Fault reports that a flush failed and the physical chain may no
	// longer reflect the driver state.
	Fault(err error)
}

// Options configures InitCore. Zero values fall back to package defaults.
type Options struct {
	Quiescence time.Duration
	// DefaultLevel is the level every channel starts with. 0 means
	// chain.DefaultLevel; a negative value requests an explicit level
	// of 0.
	DefaultLevel int
	ClearOnExit  bool
	Host         Host // optional
}

// Core owns the chain state and its flush pipeline for one physical chain.
// Construct with InitCore, release with Close.
type Core struct {
	State *chain.State

	out   output.Output
	sched *scheduler.Scheduler
	host  Host
	clear bool

	mu        sync.Mutex
	lastFault error
}

// InitCore builds the driver and performs the initial flush reflecting the
// default chain state, exactly once. A failed initial flush fails
// construction: the hardware state would be unknown otherwise.
func InitCore(out output.Output, opts Options) (*Core, error) {
	level := opts.DefaultLevel
	switch {
	case level == 0:
		level = chain.DefaultLevel
	case level < 0:
		level = 0
	}
	c := &Core{
		State: chain.New(level),
		out:   out,
		host:  opts.Host,
		clear: opts.ClearOnExit,
	}
	c.sched = scheduler.New(opts.Quiescence, c.flush, c.fault)
	c.State.OnChange(func(i int) {
		c.sched.Notify()
		if c.host != nil {
			c.host.ChannelChanged(i)
		}
	})
	if err := c.flush(); err != nil {
		return nil, fmt.Errorf("app: initial flush: %w", err)
	}
	return c, nil
}

// LastFault returns the most recent flush error, nil when the hardware is
// believed to be in sync with the chain state.
func (c *Core) LastFault() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFault
}

// Close stops the scheduler, optionally blanks the chain, and closes the
// output.
func (c *Core) Close() error {
	c.sched.Close()
	if c.clear {
		if err := c.out.Flush(chain.Snapshot{}); err != nil {
			log.Error().Err(err).Msg("blanking chain on shutdown failed")
		}
	}
	return c.out.Close()
}

func (c *Core) flush() error {
	err := c.out.Flush(c.State.Snapshot())
	c.mu.Lock()
	c.lastFault = err
	c.mu.Unlock()
	return err
}

func (c *Core) fault(err error) {
	log.Error().Err(err).Msg("chain flush failed; hardware may be stale")
	if c.host != nil {
		c.host.Fault(err)
	}
}
