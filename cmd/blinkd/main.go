package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/host/v3"

	"github.com/example/blinkd/internal/app"
	"github.com/example/blinkd/internal/chain"
	"github.com/example/blinkd/internal/config"
	"github.com/example/blinkd/internal/output"
)

func main() {
	// ---- Flags (remain usable; config.yaml can override most) ----
	var (
		configPath  = flag.String("config", "config.yaml", "path to config.yaml")
		out         = flag.String("output", "gpio", "output: gpio | spi | screen | sim")
		dataPin     = flag.String("data", "GPIO23", "data line pin name")
		clockPin    = flag.String("clock", "GPIO24", "clock line pin name")
		spiPort     = flag.String("spiport", "SPI0.0", "SPI port name for -output spi")
		quiescence  = flag.Int("quiescence-ms", 100, "debounce window before a flush (ms)")
		level       = flag.Int("level", chain.DefaultLevel, "default brightness level 0..100")
		clearOnExit = flag.Bool("clear-on-exit", false, "blank the chain on shutdown")
		demo        = flag.Bool("demo", false, "cycle colors across the chain")
		writeConfig = flag.String("write-config", "", "write the effective config to this path and exit")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Load config.yaml (optional) ----
	var cfg *config.Config
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		cfg = c
	}

	// ---- Effective params (config overrides flags where available) ----
	selected := *out
	eData, eClock := *dataPin, *clockPin
	eSPI := *spiPort
	eQuiescence := *quiescence
	eLevel := *level
	eClear := *clearOnExit
	if cfg != nil {
		if cfg.Output != "" {
			selected = cfg.Output
		}
		if cfg.GPIO.Data != "" {
			eData = cfg.GPIO.Data
		}
		if cfg.GPIO.Clock != "" {
			eClock = cfg.GPIO.Clock
		}
		if cfg.SPI.Port != "" {
			eSPI = cfg.SPI.Port
		}
		if cfg.QuiescenceMs > 0 {
			eQuiescence = cfg.QuiescenceMs
		}
		if cfg.DefaultLevel > 0 {
			eLevel = cfg.DefaultLevel
		}
		if cfg.ClearOnExit {
			eClear = true
		}
	}

	// ---- Persist the effective config instead of running, if asked ----
	if *writeConfig != "" {
		eff := &config.Config{
			Output:       selected,
			QuiescenceMs: eQuiescence,
			DefaultLevel: eLevel,
			ClearOnExit:  eClear,
			GPIO:         config.GPIO{Data: eData, Clock: eClock},
			SPI:          config.SPI{Port: eSPI},
		}
		if err := config.Save(*writeConfig, eff); err != nil {
			log.Fatal().Err(err).Str("path", *writeConfig).Msg("writing config failed")
		}
		log.Info().Str("path", *writeConfig).Msg("config written")
		return
	}

	// ---- Hardware host init (needed for gpio/spi pin registries) ----
	if selected == "gpio" || selected == "spi" {
		if _, err := host.Init(); err != nil {
			log.Warn().Err(err).Msg("periph host init failed; falling back to SIM")
			selected = "sim"
		}
	}

	// ---- Output selection ----
	var sink output.Output
	switch selected {
	case "gpio":
		o, err := output.NewGPIO(eData, eClock)
		if err != nil {
			log.Warn().Err(err).
				Str("data", eData).
				Str("clock", eClock).
				Msg("GPIO init failed; falling back to SIM")
			sink = output.NewSim()
		} else {
			sink = o
		}
	case "spi":
		o, err := output.NewSPI(eSPI)
		if err != nil {
			log.Warn().Err(err).Str("port", eSPI).Msg("SPI init failed; falling back to SIM")
			sink = output.NewSim()
		} else {
			sink = o
		}
	case "screen":
		sink = output.NewScreen()
	case "sim":
		sink = output.NewSim()
	default:
		log.Warn().Str("output", selected).Msg("unknown output; using SIM")
		sink = output.NewSim()
	}

	optLevel := eLevel
	if optLevel == 0 {
		optLevel = -1 // explicit 0, not "use the stock default"
	}
	core, err := app.InitCore(sink, app.Options{
		Quiescence:   time.Duration(eQuiescence) * time.Millisecond,
		DefaultLevel: optLevel,
		ClearOnExit:  eClear,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("driver init failed")
	}
	log.Info().
		Str("output", selected).
		Int("quiescence_ms", eQuiescence).
		Int("channels", chain.NumChannels).
		Msg("chain driver running")

	stop := make(chan struct{})
	if *demo {
		go runDemo(core, stop)
	}

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")
	close(stop)

	if err := core.Close(); err != nil {
		log.Error().Err(err).Msg("closing output failed")
	}
}

var demoPalette = []chain.RGB{
	{R: 255},
	{R: 255, G: 128},
	{R: 255, G: 255},
	{G: 255},
	{G: 255, B: 255},
	{B: 255},
	{R: 128, B: 255},
	{R: 255, G: 255, B: 255},
}

// runDemo walks a rotating palette along the chain until stop closes.
func runDemo(core *app.Core, stop <-chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	step := 0
	for {
		select {
		case <-ticker.C:
			for i := 0; i < chain.NumChannels; i++ {
				col := demoPalette[(i+step)%len(demoPalette)]
				if err := core.State.SetColor(i, col); err != nil {
					log.Error().Err(err).Int("channel", i).Msg("demo set failed")
				}
				_ = core.State.SetOn(i, true)
				_ = core.State.SetLevel(i, 100)
			}
			step++
		case <-stop:
			return
		}
	}
}
