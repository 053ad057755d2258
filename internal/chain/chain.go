// Package chain holds the authoritative in-memory model of the LED chain:
// eight channels, each with an on/off switch, an RGB color and a brightness
// level. Mutations go through the setters; every distinct value change is
// reported through the registered change callback so the scheduler (and the
// host, if any) can react.
package chain

import (
	"errors"
	"fmt"
	"sync"
)

// NumChannels is the physical chain length. Channel 0 is the module closest
// to the controller.
const NumChannels = 8

const (
	DefaultLevel = 50
	MaxLevel     = 100
)

var (
	ErrChannelIndex = errors.New("chain: channel index out of range")
	ErrColorFormat  = errors.New("chain: malformed color")
)

// RGB is one 24-bit color triple.
type RGB struct {
	R, G, B uint8
}

// Channel is the logical state of one LED module.
type Channel struct {
	On    bool
	Color RGB
	Level int // 0..100, perceptual brightness request, independent of On
}

// EffectiveLevel is the brightness that actually reaches the wire: an "off"
// channel always encodes as zero brightness while keeping its color.
func (c Channel) EffectiveLevel() int {
	if !c.On {
		return 0
	}
	return c.Level
}

// Snapshot is a value copy of the full chain, safe to encode without holding
// any lock.
type Snapshot [NumChannels]Channel

// State owns the eight channels. The zero value is not usable; construct
// with New.
type State struct {
	mu       sync.Mutex
	channels Snapshot
	onChange func(index int)
}

// New returns a State with all channels off, white and at defaultLevel
// (clamped to [0,100]; pass chain.DefaultLevel for the stock default).
func New(defaultLevel int) *State {
	s := &State{}
	for i := range s.channels {
		s.channels[i] = Channel{
			Color: RGB{R: 255, G: 255, B: 255},
			Level: clampLevel(defaultLevel),
		}
	}
	return s
}

// OnChange registers the callback invoked (synchronously, outside the state
// lock) once per distinct value change with the channel index. Only one
// callback is held; later calls replace earlier ones.
func (s *State) OnChange(fn func(index int)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Channel returns a copy of channel i.
func (s *State) Channel(i int) (Channel, error) {
	if i < 0 || i >= NumChannels {
		return Channel{}, fmt.Errorf("%w: %d", ErrChannelIndex, i)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels[i], nil
}

// Snapshot returns a value copy of all eight channels.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels
}

// SetOn switches channel i on or off. Color and level are untouched.
func (s *State) SetOn(i int, on bool) error {
	return s.mutate(i, func(c *Channel) bool {
		if c.On == on {
			return false
		}
		c.On = on
		return true
	})
}

// SetColor sets channel i's color.
func (s *State) SetColor(i int, col RGB) error {
	return s.mutate(i, func(c *Channel) bool {
		if c.Color == col {
			return false
		}
		c.Color = col
		return true
	})
}

// SetColorHex sets channel i's color from a "#rrggbb" string. A malformed
// string rejects before any mutation.
func (s *State) SetColorHex(i int, hex string) error {
	col, err := ParseHexColor(hex)
	if err != nil {
		return err
	}
	return s.SetColor(i, col)
}

// SetLevel sets channel i's brightness request. Out-of-range values are
// clamped to [0,100].
func (s *State) SetLevel(i int, level int) error {
	level = clampLevel(level)
	return s.mutate(i, func(c *Channel) bool {
		if c.Level == level {
			return false
		}
		c.Level = level
		return true
	})
}

// mutate applies fn to channel i under the lock and fires the change
// callback when fn reports a value change.
func (s *State) mutate(i int, fn func(*Channel) bool) error {
	if i < 0 || i >= NumChannels {
		return fmt.Errorf("%w: %d", ErrChannelIndex, i)
	}
	s.mu.Lock()
	changed := fn(&s.channels[i])
	notify := s.onChange
	s.mu.Unlock()
	if changed && notify != nil {
		notify(i)
	}
	return nil
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// ParseHexColor parses the standard 6-hex-digit "#rrggbb" form.
func ParseHexColor(s string) (RGB, error) {
	if len(s) != 7 || s[0] != '#' {
		return RGB{}, fmt.Errorf("%w: %q", ErrColorFormat, s)
	}
	var v [6]uint8
	for i := 0; i < 6; i++ {
		d, ok := hexDigit(s[i+1])
		if !ok {
			return RGB{}, fmt.Errorf("%w: %q", ErrColorFormat, s)
		}
		v[i] = d
	}
	return RGB{
		R: v[0]<<4 | v[1],
		G: v[2]<<4 | v[3],
		B: v[4]<<4 | v[5],
	}, nil
}

func hexDigit(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
