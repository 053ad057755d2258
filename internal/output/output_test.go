package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/example/blinkd/internal/chain"
)

func TestPinLineDrivesLevels(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO23"}
	l := pinLine{pin}

	assert.NoError(t, l.Set(true))
	assert.Equal(t, gpio.High, pin.L)
	assert.NoError(t, l.Set(false))
	assert.Equal(t, gpio.Low, pin.L)
}

func TestScaledColor(t *testing.T) {
	on := chain.Channel{On: true, Color: chain.RGB{R: 200, G: 100, B: 50}, Level: 50}
	assert.Equal(t, chain.RGB{R: 100, G: 50, B: 25}, scaledColor(on))

	full := chain.Channel{On: true, Color: chain.RGB{R: 255, G: 255, B: 255}, Level: 100}
	assert.Equal(t, chain.RGB{R: 255, G: 255, B: 255}, scaledColor(full))

	// Off always scales to black, whatever the stored level and color.
	off := chain.Channel{On: false, Color: chain.RGB{R: 255, G: 255, B: 255}, Level: 100}
	assert.Equal(t, chain.RGB{}, scaledColor(off))
}

func TestSimRecordsFlushes(t *testing.T) {
	s := NewSim()
	assert.Zero(t, s.Flushes())

	snap := chain.New(chain.DefaultLevel).Snapshot()
	snap[2].On = true
	assert.NoError(t, s.Flush(snap))
	assert.Equal(t, 1, s.Flushes())
	assert.True(t, s.Last()[2].On)
	assert.NoError(t, s.Close())
}
