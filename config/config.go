// Package config loads the TOML configuration shared by the binaries.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Engine   EngineConfig   `toml:"engine"`
	Dispatch DispatchConfig `toml:"dispatch"`
	Physics  PhysicsConfig  `toml:"physics"`
	World    WorldConfig    `toml:"world"`
	Logging  LoggingConfig  `toml:"logging"`
	Debug    DebugConfig    `toml:"debug"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	TPS    int    `toml:"tps"` // simulation steps per second
}

type EngineConfig struct {
	Scene         string        `toml:"scene"`      // scene file loaded at startup
	ScriptDir     string        `toml:"script_dir"` // base for relative script paths
	ActorCapacity int           `toml:"actor_capacity"`
	MaxFrameTime  time.Duration `toml:"max_frame_time"` // delta times are clamped to this
}

type DispatchConfig struct {
	Workers  int `toml:"workers"`
	Capacity int `toml:"capacity"` // negative = unbounded
}

type PhysicsConfig struct {
	Gravity   [3]float32    `toml:"gravity"`
	Floor     float32       `toml:"floor"`
	Damping   float32       `toml:"damping"`
	FixedStep time.Duration `toml:"fixed_step"`
	MaxSteps  int           `toml:"max_steps"`
}

type WorldConfig struct {
	Radius int `toml:"radius"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DebugConfig struct {
	Inspector bool `toml:"inspector"` // Dear ImGui inspector overlay
	HUD       bool `toml:"hud"`
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	case c.Window.TPS <= 0:
		return fmt.Errorf("window.tps must be positive")
	case c.Dispatch.Workers <= 0:
		return fmt.Errorf("dispatch.workers must be positive")
	case c.Physics.FixedStep <= 0:
		return fmt.Errorf("physics.fixed_step must be positive")
	case c.World.Radius < 0:
		return fmt.Errorf("world.radius must not be negative")
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "blockworks",
			Width:  1280,
			Height: 720,
			TPS:    60,
		},
		Engine: EngineConfig{
			Scene:         "scenes/demo.yaml",
			ScriptDir:     "scripts",
			ActorCapacity: 256,
			MaxFrameTime:  100 * time.Millisecond,
		},
		Dispatch: DispatchConfig{
			Workers:  2,
			Capacity: 1024,
		},
		Physics: PhysicsConfig{
			Gravity:   [3]float32{0, -9.81, 0},
			Floor:     0,
			Damping:   0.05,
			FixedStep: time.Second / 60,
			MaxSteps:  8,
		},
		World: WorldConfig{
			Radius: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Debug: DebugConfig{
			Inspector: true,
			HUD:       true,
		},
	}
}
