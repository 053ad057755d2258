package encoder_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/blinkd/internal/chain"
	"github.com/example/blinkd/internal/encoder"
)

// wire records the data level at every rising clock edge, the same way the
// chain's shift registers sample it.
type wire struct {
	dataHigh bool
	bits     []bool
}

type dataLine struct{ w *wire }

func (l dataLine) Set(high bool) error {
	l.w.dataHigh = high
	return nil
}

type clockLine struct{ w *wire }

func (l clockLine) Set(high bool) error {
	if high {
		l.w.bits = append(l.w.bits, l.w.dataHigh)
	}
	return nil
}

func record(t *testing.T, snap chain.Snapshot) []bool {
	t.Helper()
	w := &wire{}
	e := encoder.New(dataLine{w}, clockLine{w})
	assert.NoError(t, e.Flush(snap))
	return w.bits
}

// channelBytes decodes the four bytes clocked out for channel i.
func channelBytes(bits []bool, i int) [4]byte {
	var out [4]byte
	off := 32 + i*32
	for b := 0; b < 4; b++ {
		var v byte
		for j := 0; j < 8; j++ {
			v <<= 1
			if bits[off+b*8+j] {
				v |= 1
			}
		}
		out[b] = v
	}
	return out
}

func TestFrameShape(t *testing.T) {
	s := chain.New(chain.DefaultLevel)
	bits := record(t, s.Snapshot())

	// 32 start bits + 8 channels * 32 bits + 36 end bits.
	assert.Len(t, bits, 32+chain.NumChannels*32+36)
	for i := 0; i < 32; i++ {
		assert.False(t, bits[i], "start frame bit %d must be 0", i)
	}
	for i := len(bits) - 36; i < len(bits); i++ {
		assert.False(t, bits[i], "end frame bit %d must be 0", i)
	}
}

func TestDefaultStateEncodesDark(t *testing.T) {
	s := chain.New(chain.DefaultLevel)
	bits := record(t, s.Snapshot())
	for i := 0; i < chain.NumChannels; i++ {
		// Off channels keep their color bytes but force zero brightness.
		assert.Equal(t, [4]byte{0xE0, 0xFF, 0xFF, 0xFF}, channelBytes(bits, i), "channel %d", i)
	}
}

func TestChannelByteOrder(t *testing.T) {
	s := chain.New(chain.DefaultLevel)
	assert.NoError(t, s.SetOn(3, true))
	assert.NoError(t, s.SetColorHex(3, "#00ff00"))
	assert.NoError(t, s.SetLevel(3, 100))
	bits := record(t, s.Snapshot())

	// Brightness|0xE0, then B, G, R.
	assert.Equal(t, [4]byte{0xEF, 0x00, 0xFF, 0x00}, channelBytes(bits, 3))
	// Neighbors stay at their defaults.
	assert.Equal(t, [4]byte{0xE0, 0xFF, 0xFF, 0xFF}, channelBytes(bits, 2))
	assert.Equal(t, [4]byte{0xE0, 0xFF, 0xFF, 0xFF}, channelBytes(bits, 4))
}

func TestOffChannelKeepsColor(t *testing.T) {
	s := chain.New(chain.DefaultLevel)
	assert.NoError(t, s.SetColorHex(0, "#ffffff"))
	assert.NoError(t, s.SetLevel(0, 50))
	assert.NoError(t, s.SetOn(0, false))
	bits := record(t, s.Snapshot())
	assert.Equal(t, [4]byte{0xE0, 0xFF, 0xFF, 0xFF}, channelBytes(bits, 0))
}

func TestQuantize(t *testing.T) {
	assert.Equal(t, byte(0), encoder.Quantize(0))
	assert.Equal(t, byte(15), encoder.Quantize(100))
	assert.Equal(t, byte(8), encoder.Quantize(50)) // round(7.5) up

	prev := byte(0)
	for level := 0; level <= 100; level++ {
		q := encoder.Quantize(level)
		assert.GreaterOrEqual(t, q, prev, "quantize must be monotonic at level %d", level)
		assert.LessOrEqual(t, q, byte(15))
		prev = q
	}

	// Out-of-range inputs clamp rather than wrap.
	assert.Equal(t, byte(0), encoder.Quantize(-10))
	assert.Equal(t, byte(15), encoder.Quantize(250))
}

type failingLine struct {
	after int
	sets  int
}

func (l *failingLine) Set(bool) error {
	l.sets++
	if l.sets > l.after {
		return errors.New("line write refused")
	}
	return nil
}

func TestLineFailureAbortsFlush(t *testing.T) {
	s := chain.New(chain.DefaultLevel)

	// Fail on the very first data write.
	e := encoder.New(&failingLine{after: 0}, &failingLine{after: 1 << 30})
	assert.Error(t, e.Flush(s.Snapshot()))

	// Fail mid start-frame on the clock: the flush must abort before any
	// channel data reaches the data line.
	data := &failingLine{after: 1 << 30}
	clock := &failingLine{after: 40}
	e = encoder.New(data, clock)
	assert.Error(t, e.Flush(s.Snapshot()))
	assert.Equal(t, 1, data.sets, "only the start-frame data-low write may happen before the abort")
}
