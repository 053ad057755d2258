// Package encoder serializes a chain snapshot into the APA102-style
// two-wire bit sequence and drives it onto the data/clock lines.
package encoder

import (
	"fmt"

	"github.com/example/blinkd/internal/chain"
)

// Line is one GPIO output line, already configured as an output.
type Line interface {
	// Set drives the line high or low.
	Set(high bool) error
}

const (
	// startPulses resets every shift register on the chain: data low,
	// 32 clock edges.
	startPulses = 32

	// endPulses propagates the last channel's data through all downstream
	// registers. 36 with data low is sufficient for the 8-channel chain.
	endPulses = 36

	// brightnessHeader is OR'd into every brightness byte; the receiving
	// register requires the top 3 bits set.
	brightnessHeader = 0xE0

	// brightnessScale maps the 0..100 level into the low 5-bit brightness
	// field. The upstream hardware contract uses 0..15, half the nominal
	// field; kept as-is for frame parity with existing chains.
	brightnessScale = 15
)

// Encoder drives one chain through a data and a clock line. It owns both
// lines exclusively for the duration of a Flush.
type Encoder struct {
	data  Line
	clock Line
}

func New(data, clock Line) *Encoder {
	return &Encoder{data: data, clock: clock}
}

// Flush transmits the full snapshot as one frame. Any line-write failure
// aborts immediately and propagates; a partially written frame leaves the
// hardware inconsistent, so the caller must treat an error as a fault, not
// retry silently.
func (e *Encoder) Flush(snap chain.Snapshot) error {
	if err := e.idlePulses(startPulses); err != nil {
		return fmt.Errorf("encoder: start frame: %w", err)
	}
	for i := range snap {
		ch := snap[i]
		frame := [4]byte{
			brightnessHeader | Quantize(ch.EffectiveLevel()),
			ch.Color.B,
			ch.Color.G,
			ch.Color.R,
		}
		for _, b := range frame {
			if err := e.writeByte(b); err != nil {
				return fmt.Errorf("encoder: channel %d: %w", i, err)
			}
		}
	}
	if err := e.idlePulses(endPulses); err != nil {
		return fmt.Errorf("encoder: end frame: %w", err)
	}
	return nil
}

// Quantize maps a 0..100 level onto the wire brightness field, rounding to
// nearest. Monotonic; 0 maps to 0 and 100 to brightnessScale.
func Quantize(level int) byte {
	if level < 0 {
		level = 0
	}
	if level > chain.MaxLevel {
		level = chain.MaxLevel
	}
	return byte((level*brightnessScale + chain.MaxLevel/2) / chain.MaxLevel)
}

// writeByte shifts one byte out MSB-first, clocking each bit.
func (e *Encoder) writeByte(b byte) error {
	for i := 7; i >= 0; i-- {
		if err := e.data.Set(b>>uint(i)&1 == 1); err != nil {
			return fmt.Errorf("data line: %w", err)
		}
		if err := e.pulseClock(); err != nil {
			return err
		}
	}
	return nil
}

// idlePulses holds data low and clocks n edges.
func (e *Encoder) idlePulses(n int) error {
	if err := e.data.Set(false); err != nil {
		return fmt.Errorf("data line: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := e.pulseClock(); err != nil {
			return err
		}
	}
	return nil
}

// pulseClock registers the current data bit: clock high, then low.
func (e *Encoder) pulseClock() error {
	if err := e.clock.Set(true); err != nil {
		return fmt.Errorf("clock line: %w", err)
	}
	if err := e.clock.Set(false); err != nil {
		return fmt.Errorf("clock line: %w", err)
	}
	return nil
}
