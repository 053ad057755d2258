package output

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/example/blinkd/internal/chain"
	"github.com/example/blinkd/internal/encoder"
)

// GPIO bit-bangs the chain protocol over two GPIO lines. This is the
// default transport; host.Init must have run before NewGPIO.
type GPIO struct {
	data  gpio.PinIO
	clock gpio.PinIO
	enc   *encoder.Encoder
}

// NewGPIO looks up the two pins by name (e.g. "GPIO23", "GPIO24"),
// configures them as outputs driven low and wires the encoder to them.
func NewGPIO(dataPin, clockPin string) (*GPIO, error) {
	data := gpioreg.ByName(dataPin)
	if data == nil {
		return nil, fmt.Errorf("output: no such pin %q", dataPin)
	}
	clock := gpioreg.ByName(clockPin)
	if clock == nil {
		return nil, fmt.Errorf("output: no such pin %q", clockPin)
	}
	if err := data.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("output: configure data pin %q: %w", dataPin, err)
	}
	if err := clock.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("output: configure clock pin %q: %w", clockPin, err)
	}
	return &GPIO{
		data:  data,
		clock: clock,
		enc:   encoder.New(pinLine{data}, pinLine{clock}),
	}, nil
}

func (g *GPIO) Flush(snap chain.Snapshot) error {
	return g.enc.Flush(snap)
}

func (g *GPIO) Close() error {
	if err := g.data.Halt(); err != nil {
		return err
	}
	return g.clock.Halt()
}

// pinLine adapts a periph pin to the encoder's line port.
type pinLine struct {
	pin gpio.PinOut
}

func (l pinLine) Set(high bool) error {
	return l.pin.Out(gpio.Level(high))
}
