package graphics

import (
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gones/internal/input"
)

// EbitengineBackend presents frames through a real OS window via
// Ebitengine, polling the keyboard for the player-one key bindings.
type EbitengineBackend struct {
	game *ebitengineGame
}

// NewEbitengineBackend opens a window sized for scale-x the native NES
// resolution and starts the Ebitengine run loop in a background
// goroutine, since ebiten.RunGame blocks its caller.
func NewEbitengineBackend(title string, scale int) (*EbitengineBackend, error) {
	width, height := 256*scale, 240*scale
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	game := &ebitengineGame{
		image:  ebiten.NewImage(256, 240),
		buffer: image.NewRGBA(image.Rect(0, 0, 256, 240)),
	}

	started := make(chan struct{})
	go func() {
		close(started)
		// RunGame owns the OS event loop for the process lifetime;
		// Present/PollInput/ShouldClose all operate through game's
		// synchronized frame buffer instead of calling back into it.
		_ = ebiten.RunGame(game)
		game.requestClose() // RunGame returns once the window is closed
	}()
	<-started

	return &EbitengineBackend{game: game}, nil
}

// Present hands the backend's shared game object the next frame to draw
// on its next Ebitengine-driven Draw call.
func (b *EbitengineBackend) Present(rgb []uint8) error {
	b.game.setFrame(rgb)
	return nil
}

// PollInput reads the current keyboard state into controller's live
// button latch, using the fixed bindings in defaultKeyBindings.
func (b *EbitengineBackend) PollInput(controller *input.Controller) {
	var live uint8
	for key, btn := range defaultKeyBindings {
		if ebiten.IsKeyPressed(key) {
			live |= uint8(btn)
		}
	}
	controller.SetButtons(live)
}

// ShouldClose reports whether the window's close button (or Ebitengine's
// own termination condition) has fired.
func (b *EbitengineBackend) ShouldClose() bool {
	return b.game.closeRequested()
}

// Close requests that the Ebitengine run loop terminate.
func (b *EbitengineBackend) Close() error {
	b.game.requestClose()
	return nil
}

var defaultKeyBindings = map[ebiten.Key]input.Button{
	ebiten.KeyArrowUp:    input.Up,
	ebiten.KeyArrowDown:  input.Down,
	ebiten.KeyArrowLeft:  input.Left,
	ebiten.KeyArrowRight: input.Right,
	ebiten.KeyX:          input.A,
	ebiten.KeyZ:          input.B,
	ebiten.KeyEnter:      input.Start,
	ebiten.KeyShiftRight: input.Select,
}

// ebitengineGame implements ebiten.Game; its only jobs are drawing the
// most recently presented frame and noticing the escape key / window
// close so ShouldClose can report it back to the host run loop.
type ebitengineGame struct {
	mu     sync.Mutex
	image  *ebiten.Image
	buffer *image.RGBA
	closed bool
}

// setFrame runs on the host's run-loop goroutine while Draw runs on
// Ebitengine's own; both touch buffer/image, so they share mu.
func (g *ebitengineGame) setFrame(rgb []uint8) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := 0; i < 256*240; i++ {
		g.buffer.Pix[i*4+0] = rgb[i*3+0]
		g.buffer.Pix[i*4+1] = rgb[i*3+1]
		g.buffer.Pix[i*4+2] = rgb[i*3+2]
		g.buffer.Pix[i*4+3] = 0xFF
	}
	g.image.WritePixels(g.buffer.Pix)
}

func (g *ebitengineGame) closeRequested() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

func (g *ebitengineGame) requestClose() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
}

func (g *ebitengineGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.mu.Lock()
		g.closed = true
		g.mu.Unlock()
	}
	return nil
}

func (g *ebitengineGame) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	defer g.mu.Unlock()
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(w)/256, float64(h)/240)
	screen.DrawImage(g.image, opts)
}

func (g *ebitengineGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
