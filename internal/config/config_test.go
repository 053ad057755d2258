package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/blinkd/internal/config"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	want := &config.Config{
		Output:       "gpio",
		QuiescenceMs: 100,
		DefaultLevel: 50,
		ClearOnExit:  true,
		GPIO:         config.GPIO{Data: "GPIO23", Clock: "GPIO24"},
		SPI:          config.SPI{Port: "SPI0.0"},
	}

	assert.NoError(t, config.Save(path, want))
	got, err := config.Load(path)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
