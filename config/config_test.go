package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/blockworks/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := config.Parse([]byte(`
[window]
title = "test"
tps = 30

[dispatch]
workers = 4
capacity = -1

[physics]
gravity = [0.0, -1.62, 0.0]
fixed_step = "10ms"

[logging]
format = "json"
level = "debug"
`))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Window.Title)
	assert.Equal(t, 30, cfg.Window.TPS)
	assert.Equal(t, 1280, cfg.Window.Width, "unset keys keep defaults")
	assert.Equal(t, 4, cfg.Dispatch.Workers)
	assert.Equal(t, -1, cfg.Dispatch.Capacity)
	assert.Equal(t, [3]float32{0, -1.62, 0}, cfg.Physics.Gravity)
	assert.Equal(t, 10*time.Millisecond, cfg.Physics.FixedStep)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 2, cfg.World.Radius)
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"width":   "[window]\nwidth = 0",
		"tps":     "[window]\ntps = -1",
		"workers": "[dispatch]\nworkers = 0",
		"step":    "[physics]\nfixed_step = \"0s\"",
		"radius":  "[world]\nradius = -3",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(src))
			assert.Error(t, err)
		})
	}

	_, err := config.Parse([]byte("[window"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockworks.toml")
	require.NoError(t, os.WriteFile(path, []byte("[world]\nradius = 5\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.World.Radius)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestShippedConfig(t *testing.T) {
	cfg, err := config.Load("blockworks.toml")
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, cfg.Engine.MaxFrameTime)
	assert.Equal(t, 16*time.Millisecond, cfg.Physics.FixedStep)
	assert.Equal(t, [3]float32{0, -9.81, 0}, cfg.Physics.Gravity)
	assert.True(t, cfg.Debug.Inspector)
}
