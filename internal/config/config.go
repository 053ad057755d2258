package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type GPIO struct {
	Data  string `yaml:"data"`  // e.g. GPIO23
	Clock string `yaml:"clock"` // e.g. GPIO24
}

type SPI struct {
	Port string `yaml:"port"` // e.g. /dev/spidev0.0 or SPI0.0
}

type Config struct {
	Output       string `yaml:"output"` // "gpio" | "spi" | "screen" | "sim"
	QuiescenceMs int    `yaml:"quiescence_ms"`
	DefaultLevel int    `yaml:"default_level"`
	ClearOnExit  bool   `yaml:"clear_on_exit"`

	GPIO GPIO `yaml:"gpio,omitempty"`
	SPI  SPI  `yaml:"spi,omitempty"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
