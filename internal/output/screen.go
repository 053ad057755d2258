package output

import (
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"
	"periph.io/x/extra/devices/screen"

	"github.com/example/blinkd/internal/chain"
)

// Screen previews the chain in the terminal, one colored block per channel.
// Useful when developing without hardware attached.
type Screen struct {
	drawer display.Drawer
}

func NewScreen() *Screen {
	return &Screen{drawer: screen.New(chain.NumChannels)}
}

func (s *Screen) Flush(snap chain.Snapshot) error {
	img := image.NewNRGBA(image.Rect(0, 0, chain.NumChannels, 1))
	for i := range snap {
		col := scaledColor(snap[i])
		img.SetNRGBA(i, 0, color.NRGBA{R: col.R, G: col.G, B: col.B, A: 255})
	}
	return s.drawer.Draw(s.drawer.Bounds(), img, image.Point{})
}

func (s *Screen) Close() error {
	return s.drawer.Halt()
}
