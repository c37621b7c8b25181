package voxel

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/blockworks/engine"
	"go.uber.org/zap"
)

// ChunkComponent owns a chunk and keeps its MeshSummary current. Rebuilds run
// on the game's dispatch queue against a snapshot and are handed back with
// Game.Post; a result is applied only if the component is still attached to
// the same actor and the result is newer than the one it has.
type ChunkComponent struct {
	engine.ComponentBase

	chunk *Chunk
	log   *zap.Logger

	summary  MeshSummary
	built    uint64 // chunk version of summary, 0 before the first build
	inflight uint64 // version being rebuilt, 0 when idle
	rebuilds int
}

func NewChunkComponent(chunk *Chunk) *ChunkComponent {
	return &ChunkComponent{
		ComponentBase: engine.NewComponentBase(engine.EventUpdate | engine.EventRender),
		chunk:         chunk,
		log:           zap.NewNop(),
	}
}

func (c *ChunkComponent) Chunk() *Chunk { return c.chunk }

// Summary returns the latest applied summary. ok is false until the first
// rebuild has landed.
func (c *ChunkComponent) Summary() (MeshSummary, bool) {
	return c.summary, c.built != 0
}

// Rebuilds returns the number of rebuilds requested so far.
func (c *ChunkComponent) Rebuilds() int { return c.rebuilds }

// Stale reports whether the chunk changed since the applied summary.
func (c *ChunkComponent) Stale() bool { return c.built != c.chunk.Version() }

func (c *ChunkComponent) Start(f *engine.Frame) {
	c.log = f.Game.Logger().With(zap.Stringer("chunk", c.chunk.Coord()))
	c.requestRebuild(f.Game)
}

func (c *ChunkComponent) Update(f *engine.Frame) {
	if c.Stale() && c.inflight != c.chunk.Version() {
		c.requestRebuild(f.Game)
	}
}

func (c *ChunkComponent) requestRebuild(g *engine.Game) {
	a, ok := c.Actor()
	if !ok {
		return
	}

	snap := c.chunk.Snapshot()
	c.inflight = snap.Version
	c.rebuilds++

	q := g.Queue()
	if q == nil {
		c.apply(BuildSummary(snap))
		return
	}

	entity, id := a.Entity(), c.ID()
	err := q.Async(func() {
		summary := BuildSummary(snap)
		g.Post(func(g *engine.Game) {
			a, ok := g.Actor(entity)
			if !ok {
				return
			}
			if current, ok := a.Component(id); !ok || current != engine.Component(c) {
				return
			}
			c.apply(summary)
		})
	})
	if err != nil {
		c.log.Warn("chunk rebuild not queued", zap.Uint64("version", snap.Version), zap.Error(err))
		c.inflight = 0
	}
}

func (c *ChunkComponent) apply(s MeshSummary) {
	if c.inflight == s.Version {
		c.inflight = 0
	}
	if s.Version <= c.built {
		return
	}
	c.summary = s
	c.built = s.Version
	c.log.Debug("chunk rebuilt", zap.Int("faces", s.Faces), zap.Int("solid", s.Solid))
}

// Draw fills the screen-space bounds of the chunk's top surface with the
// colour of its dominant top block.
func (c *ChunkComponent) Draw(f *engine.Frame) {
	if c.built == 0 || c.summary.Height == 0 {
		return
	}
	a, ok := c.Actor()
	if !ok {
		return
	}

	w, h := f.Device.Size()
	camera := f.Game.Camera()
	origin := a.Transform().Position()
	top := float32(c.summary.Height)

	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := float32(-math.MaxFloat32), float32(-math.MaxFloat32)
	visible := false
	for _, corner := range [4][2]float32{{0, 0}, {Size, 0}, {0, Size}, {Size, Size}} {
		x, y, _, ok := camera.Project(origin.Add(mgl32.Vec3{corner[0], top, corner[1]}), w, h)
		if !ok {
			continue
		}
		visible = true
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	if !visible {
		return
	}

	f.Device.FillRect(minX, minY, max(maxX-minX, 1), max(maxY-minY, 1), c.summary.Top.Color())
}
