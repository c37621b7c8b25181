package voxel

import (
	"fmt"
	"math"

	"github.com/plus3/blockworks/engine"
	"go.uber.org/zap"
)

// WorldOptions configures a WorldComponent.
type WorldOptions struct {
	Radius int     // chunks loaded on each side of the centre chunk
	Layers []Layer // terrain fill for new chunks
}

// WorldComponent streams chunk actors around its own actor. Each chunk is a
// separate actor carrying a ChunkComponent; the world keeps only their
// handles and re-validates them on every lookup.
type WorldComponent struct {
	engine.ComponentBase

	opts   WorldOptions
	log    *zap.Logger
	chunks map[Coord]engine.Entity
	center Coord
	loaded bool
}

func NewWorldComponent(opts WorldOptions) *WorldComponent {
	if opts.Radius < 0 {
		opts.Radius = 0
	}
	if opts.Layers == nil {
		opts.Layers = DefaultLayers
	}
	return &WorldComponent{
		ComponentBase: engine.NewComponentBase(engine.EventUpdate),
		opts:          opts,
		log:           zap.NewNop(),
		chunks:        make(map[Coord]engine.Entity),
	}
}

func (w *WorldComponent) Start(f *engine.Frame) {
	w.log = f.Game.Logger().Named("world")
	a, ok := w.Actor()
	if !ok {
		return
	}
	w.center = w.centerOf(a)
	w.stream(f.Game)
	w.loaded = true
}

// Update follows the actor: when it crosses into another chunk column the
// ring of loaded chunks is moved with it.
func (w *WorldComponent) Update(f *engine.Frame) {
	a, ok := w.Actor()
	if !ok || !w.loaded {
		return
	}
	if c := w.centerOf(a); c != w.center {
		w.center = c
		w.stream(f.Game)
	}
}

// Stop destroys every chunk actor the world spawned.
func (w *WorldComponent) Stop() {
	a, ok := w.Actor()
	if !ok {
		return
	}
	g, ok := a.Game()
	if !ok {
		return
	}
	for coord, e := range w.chunks {
		g.DestroyActor(e)
		delete(w.chunks, coord)
	}
	w.loaded = false
}

func (w *WorldComponent) centerOf(a *engine.Actor) Coord {
	c := CoordOf(a.Transform().Position())
	c.Y = 0
	return c
}

func (w *WorldComponent) inRange(c Coord) bool {
	dx := math.Abs(float64(c.X - w.center.X))
	dz := math.Abs(float64(c.Z - w.center.Z))
	return int(dx) <= w.opts.Radius && int(dz) <= w.opts.Radius
}

func (w *WorldComponent) stream(g *engine.Game) {
	for coord, e := range w.chunks {
		if !w.inRange(coord) {
			g.DestroyActor(e)
			delete(w.chunks, coord)
		}
	}

	r := int32(w.opts.Radius)
	spawned := 0
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			coord := w.center.Add(dx, 0, dz)
			if _, ok := w.Chunk(coord); ok {
				continue
			}
			if err := w.spawn(g, coord); err != nil {
				w.log.Error("chunk spawn failed", zap.Stringer("chunk", coord), zap.Error(err))
				continue
			}
			spawned++
		}
	}
	w.log.Debug("chunks streamed",
		zap.Stringer("center", w.center),
		zap.Int("spawned", spawned),
		zap.Int("loaded", len(w.chunks)),
	)
}

func (w *WorldComponent) spawn(g *engine.Game, coord Coord) error {
	a, err := g.CreateActor(engine.ActorOptions{
		Name:     fmt.Sprintf("chunk %s", coord),
		Position: coord.Origin(),
	})
	if err != nil {
		return err
	}

	chunk := NewChunk(coord)
	chunk.FillLayers(w.opts.Layers)
	if _, err := a.AddComponent(NewChunkComponent(chunk)); err != nil {
		g.DestroyActor(a.Entity())
		return err
	}
	w.chunks[coord] = a.Entity()
	return nil
}

// Chunk returns the chunk component loaded at coord. Handles whose actor was
// destroyed elsewhere are forgotten.
func (w *WorldComponent) Chunk(coord Coord) (*ChunkComponent, bool) {
	e, ok := w.chunks[coord]
	if !ok {
		return nil, false
	}
	a, ok := w.Actor()
	if !ok {
		return nil, false
	}
	g, ok := a.Game()
	if !ok {
		return nil, false
	}

	chunkActor, ok := g.Actor(e)
	if !ok {
		delete(w.chunks, coord)
		return nil, false
	}
	return engine.GetComponent[*ChunkComponent](chunkActor)
}

// Loaded returns the number of chunk handles held, including stale ones not
// yet looked up.
func (w *WorldComponent) Loaded() int { return len(w.chunks) }

// Coords returns the coordinates of the loaded chunks.
func (w *WorldComponent) Coords() []Coord {
	out := make([]Coord, 0, len(w.chunks))
	for c := range w.chunks {
		out = append(out, c)
	}
	return out
}

// SetBlock edits the block at integer world position (x, y, z). It returns
// false when the containing chunk is not loaded.
func (w *WorldComponent) SetBlock(x, y, z int, b Block) bool {
	coord := Coord{floorDiv(x), floorDiv(y), floorDiv(z)}
	c, ok := w.Chunk(coord)
	if !ok {
		return false
	}
	return c.Chunk().Set(x-int(coord.X)*Size, y-int(coord.Y)*Size, z-int(coord.Z)*Size, b)
}

// Block returns the block at integer world position (x, y, z).
func (w *WorldComponent) Block(x, y, z int) Block {
	coord := Coord{floorDiv(x), floorDiv(y), floorDiv(z)}
	c, ok := w.Chunk(coord)
	if !ok {
		return Air
	}
	return c.Chunk().Get(x-int(coord.X)*Size, y-int(coord.Y)*Size, z-int(coord.Z)*Size)
}

func floorDiv(v int) int32 {
	if v < 0 {
		return int32((v - Size + 1) / Size)
	}
	return int32(v / Size)
}
