package render

import (
	"errors"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/blockworks/engine"
	"go.uber.org/zap"
)

// Overlay is drawn over the game. Its frame brackets each simulation step so
// components can submit immediate-mode UI during Update.
type Overlay interface {
	BeginFrame()
	EndFrame()
	Draw(screen *ebiten.Image)
	Layout(outsideWidth, outsideHeight int)
}

// Options configures a Driver.
type Options struct {
	Title  string
	Width  int
	Height int
	TPS    int

	// MaxFrameTime clamps the delta passed to Step. Zero disables clamping.
	MaxFrameTime time.Duration
	Background   color.Color

	// Engine is passed to engine.New on the first Update.
	Engine engine.Options
	// Setup populates the game right after it is created.
	Setup func(g *engine.Game) error
	// Overlay is optional.
	Overlay Overlay
	// Quit is polled at the start of every Update. It defaults to Q or
	// Escape being held.
	Quit func() bool
	// Now defaults to time.Now.
	Now func() time.Time

	Logger *zap.Logger
}

// Driver implements ebiten.Game. Ebiten calls Update and Draw from its own
// goroutine, so the engine.Game is created inside the first Update and that
// goroutine becomes its main goroutine.
type Driver struct {
	opts   Options
	log    *zap.Logger
	game   *engine.Game
	device *Device

	last     time.Time
	drawErr  error
	desyncs  int
	finished bool
}

func NewDriver(opts Options) *Driver {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	if opts.TPS <= 0 {
		opts.TPS = ebiten.DefaultTPS
	}
	if opts.Background == nil {
		opts.Background = color.RGBA{0x87, 0xce, 0xeb, 0xff}
	}
	if opts.Quit == nil {
		opts.Quit = quitKeys
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Driver{
		opts:   opts,
		log:    opts.Logger,
		device: NewDevice(nil),
	}
}

func quitKeys() bool {
	return ebiten.IsKeyPressed(ebiten.KeyQ) || ebiten.IsKeyPressed(ebiten.KeyEscape)
}

// Game returns the engine game, or nil before the first Update.
func (d *Driver) Game() *engine.Game { return d.game }

// Desyncs counts the frames that reported a *engine.DesyncError.
func (d *Driver) Desyncs() int { return d.desyncs }

func (d *Driver) start() error {
	opts := d.opts.Engine
	if opts.Logger == nil {
		opts.Logger = d.log
	}
	opts.Device = d.device

	d.game = engine.New(opts)
	d.last = d.opts.Now()
	if d.opts.Setup != nil {
		if err := d.opts.Setup(d.game); err != nil {
			return err
		}
	}
	d.log.Info("game started", zap.Stringer("session", d.game.ID()), zap.Int("actors", d.game.ActorCount()))
	return nil
}

// delta returns the clamped wall time since the previous step.
func (d *Driver) delta() float64 {
	now := d.opts.Now()
	dt := now.Sub(d.last)
	d.last = now
	if dt <= 0 {
		dt = time.Second / time.Duration(d.opts.TPS)
	}
	if limit := d.opts.MaxFrameTime; limit > 0 && dt > limit {
		dt = limit
	}
	return dt.Seconds()
}

func (d *Driver) Update() error {
	if d.finished {
		return ebiten.Termination
	}
	if d.opts.Quit() {
		d.finished = true
		return ebiten.Termination
	}
	if d.game == nil {
		if err := d.start(); err != nil {
			return err
		}
	}
	if err := d.drawErr; err != nil {
		d.drawErr = nil
		return err
	}

	if d.opts.Overlay != nil {
		d.opts.Overlay.BeginFrame()
	}
	err := d.game.Step(d.delta())
	if d.opts.Overlay != nil {
		d.opts.Overlay.EndFrame()
	}
	return d.check("step", err)
}

// check logs desyncs and keeps running; any other error stops the loop.
func (d *Driver) check(op string, err error) error {
	var desync *engine.DesyncError
	if errors.As(err, &desync) {
		d.desyncs++
		d.log.Error("frame desync", zap.String("op", op), zap.Error(err))
		return nil
	}
	return err
}

func (d *Driver) Draw(screen *ebiten.Image) {
	if d.game == nil || d.game.Closed() {
		return
	}
	d.device.SetTarget(screen)
	d.device.Clear(d.opts.Background)
	if err := d.check("present", d.game.Present()); err != nil {
		d.drawErr = err
	}
	if d.opts.Overlay != nil {
		d.opts.Overlay.Draw(screen)
	}
}

func (d *Driver) Layout(outsideWidth, outsideHeight int) (int, int) {
	if d.opts.Overlay != nil {
		d.opts.Overlay.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Close shuts the game down. It must run on the goroutine that created the
// game; Run arranges that by closing from the last Update.
func (d *Driver) Close() error {
	if d.game == nil || d.game.Closed() {
		return nil
	}
	return d.game.Close()
}

// Run opens the window and blocks until the game terminates.
func Run(d *Driver) error {
	ebiten.SetWindowSize(d.opts.Width, d.opts.Height)
	ebiten.SetWindowTitle(d.opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(d.opts.TPS)

	err := ebiten.RunGame(&closer{d})
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	return err
}

// closer closes the game from the loop goroutine once Update reports the end
// of the run.
type closer struct {
	*Driver
}

func (c *closer) Update() error {
	err := c.Driver.Update()
	if err != nil {
		if cerr := c.Driver.Close(); cerr != nil {
			c.log.Warn("close game", zap.Error(cerr))
		}
	}
	return err
}
