// Package graphics abstracts the host-side presentation layer: turning
// a completed PPU framebuffer into pixels on screen and turning host key
// events into NES controller button state. The core (cartridge/cpu/ppu/
// bus/clock) never imports this package.
package graphics

import "gones/internal/input"

// Backend presents frames and reports host input/lifecycle events for
// cmd/gones's run loop.
type Backend interface {
	// Present draws one completed frame. rgb is 256*240*3 bytes,
	// row-major RGB, as produced by ppu.PPU.Framebuffer.
	Present(rgb []uint8) error

	// PollInput updates the given controller's live button latch from
	// the host's current key state.
	PollInput(controller *input.Controller)

	// ShouldClose reports whether the host window has requested exit.
	ShouldClose() bool

	// Close releases backend resources.
	Close() error
}

// BackendKind names a selectable Backend implementation, matching the
// config package's video.backend string.
type BackendKind string

const (
	BackendEbitengine BackendKind = "ebitengine"
	BackendHeadless   BackendKind = "headless"
)

// New constructs the named backend. title/scale only matter for the
// windowed (ebitengine) backend.
func New(kind BackendKind, title string, scale int) (Backend, error) {
	switch kind {
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	default:
		return NewEbitengineBackend(title, scale)
	}
}
