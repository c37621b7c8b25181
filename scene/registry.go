package scene

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/blockworks/components"
	"github.com/plus3/blockworks/engine"
	"github.com/plus3/blockworks/voxel"
)

// Factory builds a component from its scene parameters.
type Factory func(params Params) (engine.Component, error)

// Registry maps component type names to factories. Names are matched
// case-insensitively.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Registering a name twice is an error.
func (r *Registry) Register(name string, f Factory) error {
	key := strings.ToLower(name)
	if key == "" || f == nil {
		return fmt.Errorf("scene: invalid registration %q", name)
	}
	if _, ok := r.factories[key]; ok {
		return fmt.Errorf("scene: component type %q already registered", name)
	}
	r.factories[key] = f
	return nil
}

func (r *Registry) Lookup(name string) (Factory, bool) {
	f, ok := r.factories[strings.ToLower(name)]
	return f, ok
}

// Build creates a component of the named type.
func (r *Registry) Build(name string, params Params) (engine.Component, error) {
	f, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("scene: unknown component type %q", name)
	}
	c, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("scene: %s: %w", name, err)
	}
	return c, nil
}

// Names returns the registered type names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// BuiltinOptions configures RegisterBuiltins.
type BuiltinOptions struct {
	ScriptDir   string // relative script paths resolve against it
	WorldRadius int    // default world radius when a scene does not set one
}

// RegisterBuiltins registers renderer, spinner, impulse, hud, script, chunk
// and world.
func RegisterBuiltins(r *Registry, opts BuiltinOptions) error {
	builtins := map[string]Factory{
		"renderer": newRenderer,
		"spinner":  newSpinner,
		"impulse":  newImpulse,
		"hud": func(Params) (engine.Component, error) {
			return components.NewHUD(), nil
		},
		"script": func(p Params) (engine.Component, error) {
			return newScript(p, opts.ScriptDir)
		},
		"chunk": newChunk,
		"world": func(p Params) (engine.Component, error) {
			return newWorld(p, opts.WorldRadius)
		},
	}
	for name, f := range builtins {
		if err := r.Register(name, f); err != nil {
			return err
		}
	}
	return nil
}

func newRenderer(p Params) (engine.Component, error) {
	size, err := p.Float("size", 1)
	if err != nil {
		return nil, err
	}
	clr, err := p.Color("color", voxel.Stone.Color())
	if err != nil {
		return nil, err
	}
	return components.NewRenderer(float32(size), clr), nil
}

func newSpinner(p Params) (engine.Component, error) {
	axis, err := p.Vec3("axis", mgl32.Vec3{0, 1, 0})
	if err != nil {
		return nil, err
	}
	speed, err := p.Float("speed", 45)
	if err != nil {
		return nil, err
	}
	return components.NewSpinner(axis, float32(speed)), nil
}

func newImpulse(p Params) (engine.Component, error) {
	kick, err := p.Vec3("kick", mgl32.Vec3{0, 5, 0})
	if err != nil {
		return nil, err
	}
	interval, err := p.Float("interval", 1)
	if err != nil {
		return nil, err
	}
	return components.NewImpulse(kick, interval), nil
}

func newScript(p Params, dir string) (engine.Component, error) {
	args, err := p.Map("args")
	if err != nil {
		return nil, err
	}
	if src, err := p.String("source", ""); err != nil {
		return nil, err
	} else if src != "" {
		name, err := p.String("name", "inline")
		if err != nil {
			return nil, err
		}
		return components.NewScript(name, src, args)
	}

	path, err := p.String("path", "")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("script needs a path or source")
	}
	if !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}
	return components.LoadScript(path, args)
}

func parseLayers(p Params) ([]voxel.Layer, error) {
	list, err := p.List("layers")
	if err != nil || list == nil {
		return nil, err
	}
	layers := make([]voxel.Layer, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("layers[%d]: want mapping", i)
		}
		lp := Params(m)
		name, err := lp.String("block", "")
		if err != nil {
			return nil, err
		}
		block, err := voxel.ParseBlock(name)
		if err != nil {
			return nil, fmt.Errorf("layers[%d]: %w", i, err)
		}
		height, err := lp.Int("height", 1)
		if err != nil {
			return nil, err
		}
		layers = append(layers, voxel.Layer{Block: block, Height: height})
	}
	return layers, nil
}

func newChunk(p Params) (engine.Component, error) {
	coord, err := p.Vec3("coord", mgl32.Vec3{})
	if err != nil {
		return nil, err
	}
	layers, err := parseLayers(p)
	if err != nil {
		return nil, err
	}
	if layers == nil {
		layers = voxel.DefaultLayers
	}
	chunk := voxel.NewChunk(voxel.Coord{X: int32(coord.X()), Y: int32(coord.Y()), Z: int32(coord.Z())})
	chunk.FillLayers(layers)
	return voxel.NewChunkComponent(chunk), nil
}

func newWorld(p Params, defaultRadius int) (engine.Component, error) {
	radius, err := p.Int("radius", defaultRadius)
	if err != nil {
		return nil, err
	}
	layers, err := parseLayers(p)
	if err != nil {
		return nil, err
	}
	return voxel.NewWorldComponent(voxel.WorldOptions{Radius: radius, Layers: layers}), nil
}
