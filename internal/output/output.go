// Package output abstracts the sinks a chain snapshot can be flushed to:
// the real two-wire GPIO chain, the same chain on the hardware SPI pins,
// a terminal preview, or an in-memory sim for tests.
package output

import "github.com/example/blinkd/internal/chain"

// Output consumes full-chain snapshots.
type Output interface {
	// Flush transmits one complete snapshot.
	Flush(snap chain.Snapshot) error
	// Close releases resources and halts the sink.
	Close() error
}

// scaledColor folds a channel's effective brightness into its color, for
// sinks without a separate brightness field per pixel.
func scaledColor(c chain.Channel) chain.RGB {
	eff := c.EffectiveLevel()
	return chain.RGB{
		R: uint8(int(c.Color.R) * eff / chain.MaxLevel),
		G: uint8(int(c.Color.G) * eff / chain.MaxLevel),
		B: uint8(int(c.Color.B) * eff / chain.MaxLevel),
	}
}
