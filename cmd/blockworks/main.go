// Command blockworks opens a window and runs a scene file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/blockworks/components"
	"github.com/plus3/blockworks/config"
	"github.com/plus3/blockworks/debugui"
	debugui_ebiten "github.com/plus3/blockworks/debugui/ebiten"
	"github.com/plus3/blockworks/dispatch"
	"github.com/plus3/blockworks/engine"
	"github.com/plus3/blockworks/logging"
	"github.com/plus3/blockworks/physics"
	"github.com/plus3/blockworks/render"
	"github.com/plus3/blockworks/scene"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "config/blockworks.toml"
	if p := os.Getenv("BLOCKWORKS_CONFIG"); p != "" {
		cfgPath = p
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "configuration file")
	scenePath := flag.String("scene", "", "scene file, overrides engine.scene")
	flag.Parse()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *scenePath != "" {
		cfg.Engine.Scene = *scenePath
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	file, err := scene.Load(cfg.Engine.Scene)
	if err != nil {
		return err
	}
	registry := scene.NewRegistry()
	if err := scene.RegisterBuiltins(registry, scene.BuiltinOptions{
		ScriptDir:   cfg.Engine.ScriptDir,
		WorldRadius: cfg.World.Radius,
	}); err != nil {
		return err
	}

	opts := render.Options{
		Title:        cfg.Window.Title,
		Width:        cfg.Window.Width,
		Height:       cfg.Window.Height,
		TPS:          cfg.Window.TPS,
		MaxFrameTime: cfg.Engine.MaxFrameTime,
		Engine:       engineOptions(cfg, log),
		Logger:       log,
		Setup: func(g *engine.Game) error {
			return setup(g, cfg, file, registry)
		},
	}
	if cfg.Debug.Inspector {
		opts.Overlay = debugui_ebiten.New(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
	}

	log.Info("starting",
		zap.String("scene", cfg.Engine.Scene),
		zap.Int("actors", len(file.Actors)),
		zap.Int("workers", cfg.Dispatch.Workers),
	)
	driver := render.NewDriver(opts)
	if err := render.Run(driver); err != nil {
		return err
	}
	log.Info("stopped", zap.Int("desyncs", driver.Desyncs()))
	return nil
}

// loadConfig falls back to the defaults when path does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func engineOptions(cfg *config.Config, log *zap.Logger) engine.Options {
	return engine.Options{
		Scene: physics.NewSpace(physics.Options{
			Gravity:   mgl32.Vec3(cfg.Physics.Gravity),
			Floor:     cfg.Physics.Floor,
			Damping:   cfg.Physics.Damping,
			FixedStep: cfg.Physics.FixedStep.Seconds(),
			MaxSteps:  cfg.Physics.MaxSteps,
		}),
		Queue: dispatch.New(dispatch.Options{
			Name:     "background",
			Workers:  cfg.Dispatch.Workers,
			Capacity: cfg.Dispatch.Capacity,
			Logger:   log,
		}),
		ActorCapacity: cfg.Engine.ActorCapacity,
		Logger:        log,
	}
}

func setup(g *engine.Game, cfg *config.Config, file *scene.File, registry *scene.Registry) error {
	if _, err := scene.Instantiate(context.Background(), g, file, registry); err != nil {
		return fmt.Errorf("instantiate %s: %w", cfg.Engine.Scene, err)
	}

	if cfg.Debug.HUD {
		a, err := g.CreateActor(engine.ActorOptions{Name: "hud"})
		if err != nil {
			return err
		}
		if _, err := a.AddComponent(components.NewHUD()); err != nil {
			return err
		}
	}
	if cfg.Debug.Inspector {
		if _, err := debugui.Spawn(g); err != nil {
			return err
		}
	}
	return nil
}
