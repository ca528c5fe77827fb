// Package config loads the host-side emulator configuration: window
// scale, graphics backend selection and keyboard bindings. None of this
// feeds into the core (cartridge/cpu/ppu/bus/clock) — it only shapes
// how cmd/gones drives internal/graphics.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the top-level host configuration, loaded from a JSON file.
type Config struct {
	Window WindowConfig `json:"window"`
	Video  VideoConfig  `json:"video"`
	Input  InputConfig  `json:"input"`
}

// WindowConfig controls the host window's size relative to the NES's
// native 256x240 framebuffer.
type WindowConfig struct {
	Scale      int  `json:"scale"`
	Fullscreen bool `json:"fullscreen"`
}

// VideoConfig selects the rendering backend under internal/graphics.
type VideoConfig struct {
	Backend string `json:"backend"` // "ebitengine" or "headless"
	VSync   bool   `json:"vsync"`
}

// InputConfig carries the player-one key bindings as plain key names.
// The graphics backends do not read them: the ebitengine backend polls a
// fixed key table whose keys match the defaults below.
type InputConfig struct {
	Player1Keys KeyMapping `json:"player1_keys"`
}

// KeyMapping names one key per NES controller button.
type KeyMapping struct {
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	A      string `json:"a"`
	B      string `json:"b"`
	Start  string `json:"start"`
	Select string `json:"select"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Window: WindowConfig{Scale: 3, Fullscreen: false},
		Video:  VideoConfig{Backend: "ebitengine", VSync: true},
		Input: InputConfig{Player1Keys: KeyMapping{
			Up: "Up", Down: "Down", Left: "Left", Right: "Right",
			A: "X", B: "Z", Start: "Enter", Select: "ShiftRight",
		}},
	}
}

// Load reads a JSON configuration file, falling back to Default() for
// any field the file omits by starting from the default and decoding
// over it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// WindowResolution returns the host window's pixel dimensions for the
// configured scale factor.
func (c *Config) WindowResolution() (width, height int) {
	return 256 * c.Window.Scale, 240 * c.Window.Scale
}
