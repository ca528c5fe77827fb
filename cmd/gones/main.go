// Package main implements the gones NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gones/internal/bus"
	"gones/internal/cartridge"
	"gones/internal/clock"
	"gones/internal/config"
	"gones/internal/graphics"
	"gones/internal/version"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a JSON configuration file")
		scale      = flag.Int("scale", 0, "window scale factor, overriding the config file (0 = use config)")
		nogui      = flag.Bool("nogui", false, "run headless, without opening a window")
		showVer    = flag.Bool("version", false, "print build information and exit")
	)
	flag.Usage = printUsage
	flag.Parse()

	if *showVer {
		version.PrintBuildInfo()
		return
	}

	romPath := flag.Arg(0)
	if romPath == "" {
		fmt.Fprintln(os.Stderr, "gones: a ROM path is required")
		printUsage()
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "gones: ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration: %v", err)
	}
	if *scale > 0 {
		cfg.Window.Scale = *scale
	}
	if *nogui {
		cfg.Video.Backend = string(graphics.BackendHeadless)
	}

	cart, err := cartridge.LoadFile(romPath)
	if err != nil {
		logger.Fatalf("failed to load cartridge %s: %v", romPath, err)
	}

	systemBus := bus.New(cart, logger)
	systemBus.Reset()
	driver := clock.New(systemBus)

	backend, err := graphics.New(graphics.BackendKind(cfg.Video.Backend), "gones", cfg.Window.Scale)
	if err != nil {
		logger.Fatalf("failed to start %s graphics backend: %v", cfg.Video.Backend, err)
	}
	defer backend.Close()

	logger.Printf("loaded %s: mapper %d, mirroring %s", romPath, cart.MapperID(), cart.Mirroring())
	runLoop(systemBus, driver, backend, logger)
}

// runLoop drives one frame at a time, presenting the PPU's framebuffer
// and polling host input after each, until the backend reports the
// window should close.
func runLoop(systemBus *bus.Bus, driver *clock.Driver, backend graphics.Backend, logger *log.Logger) {
	for !backend.ShouldClose() {
		driver.RunFrame()
		if err := backend.Present(systemBus.PPU.Framebuffer); err != nil {
			logger.Printf("present failed: %v", err)
			return
		}
		backend.PollInput(systemBus.Controller1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "gones - a Go NES emulator core with an Ebitengine-driven host")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "USAGE:")
	fmt.Fprintln(os.Stderr, "  gones [options] <rom-path>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "OPTIONS:")
	flag.PrintDefaults()
}
