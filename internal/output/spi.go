package output

import (
	"fmt"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/apa102"

	"github.com/example/blinkd/internal/chain"
)

// SPI drives a chain wired to the hardware SPI pins through the periph
// apa102 device instead of bit-banging. That device carries a single global
// intensity, so per-channel brightness is folded into the color bytes.
type SPI struct {
	port spi.PortCloser
	dev  *apa102.Dev
	buf  []byte
}

// NewSPI opens the named SPI port (e.g. "/dev/spidev0.0" or "SPI0.0") and
// prepares an 8-pixel apa102 device on it.
func NewSPI(portName string) (*SPI, error) {
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("output: open SPI port %q: %w", portName, err)
	}
	opts := apa102.DefaultOpts
	opts.NumPixels = chain.NumChannels
	opts.Intensity = 255
	dev, err := apa102.New(port, &opts)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("output: apa102 on %q: %w", portName, err)
	}
	return &SPI{
		port: port,
		dev:  dev,
		buf:  make([]byte, chain.NumChannels*3),
	}, nil
}

func (s *SPI) Flush(snap chain.Snapshot) error {
	for i := range snap {
		col := scaledColor(snap[i])
		s.buf[i*3+0] = col.R
		s.buf[i*3+1] = col.G
		s.buf[i*3+2] = col.B
	}
	if _, err := s.dev.Write(s.buf); err != nil {
		return fmt.Errorf("output: spi write: %w", err)
	}
	return nil
}

func (s *SPI) Close() error {
	if err := s.dev.Halt(); err != nil {
		_ = s.port.Close()
		return err
	}
	return s.port.Close()
}
