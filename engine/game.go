package engine

import (
	"fmt"
	"iter"
	"time"
	"weak"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/kamstrup/intmap"
	"github.com/plus3/blockworks/dispatch"
	"github.com/plus3/blockworks/physics"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Options configures a Game. The game takes ownership of Scene and Queue and
// closes them in Close.
type Options struct {
	Scene         physics.Scene
	Device        Device
	Queue         *dispatch.Queue
	Camera        *Camera
	Logger        *zap.Logger
	ActorCapacity int
}

// ActorOptions describes an actor to create. A zero Rotation means identity
// and a zero Scale means (1, 1, 1).
type ActorOptions struct {
	Name     string
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Dynamic  bool
	Mass     float32
}

type componentHandle struct {
	actor Entity
	id    ComponentID
}

// Game owns every actor, the physics scene, the device and the background
// queue, and drives the frame phases. The goroutine that calls New becomes
// the main goroutine: every mutating call made from any other goroutine
// panics. Post is the only method safe to call from other goroutines.
type Game struct {
	id     uuid.UUID
	log    *zap.Logger
	self   weak.Pointer[Game]
	mainID uint64

	actors *Arena[*Actor]
	phases [phaseCount]*intmap.Map[uint32, Entity]
	masks  *intmap.Map[uint32, EventType]

	scene  physics.Scene
	device Device
	queue  *dispatch.Queue
	camera *Camera

	frame    Frame
	commands *Commands
	mailbox  mailbox
	pending  []componentHandle
	deferred []componentHandle
	scratch  []Entity

	tick           uint64
	componentCount int
	dispatching    bool
	closed         bool

	timers  [phaseCount]phaseTimer
	physics phaseTimer
}

// New creates a game owned by the calling goroutine.
func New(opts Options) *Game {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Scene == nil {
		opts.Scene = physics.NewSpace(physics.DefaultOptions())
	}
	if opts.Device == nil {
		opts.Device = nopDevice{}
	}
	if opts.Camera == nil {
		opts.Camera = NewCamera(mgl32.Vec3{0, 24, 48}, mgl32.Vec3{0, 0, 0})
	}
	if opts.ActorCapacity <= 0 {
		opts.ActorCapacity = 256
	}

	g := &Game{
		id:       uuid.New(),
		mainID:   goroutineID(),
		actors:   NewArena[*Actor](opts.ActorCapacity),
		masks:    intmap.New[uint32, EventType](opts.ActorCapacity),
		scene:    opts.Scene,
		device:   opts.Device,
		queue:    opts.Queue,
		camera:   opts.Camera,
		commands: newCommands(),
		physics:  newPhaseTimer("physics"),
	}
	g.self = weak.Make(g)
	g.log = opts.Logger.With(zap.String("game", g.id.String()))

	for i, p := range Phases {
		g.phases[i] = intmap.New[uint32, Entity](opts.ActorCapacity)
		g.timers[i] = newPhaseTimer(phaseName(p))
	}

	g.log.Debug("game created", zap.Uint64("main_goroutine", g.mainID))
	return g
}

func (g *Game) ID() uuid.UUID        { return g.id }
func (g *Game) Logger() *zap.Logger  { return g.log }
func (g *Game) Scene() physics.Scene { return g.scene }
func (g *Game) Device() Device       { return g.device }
func (g *Game) Camera() *Camera      { return g.camera }
func (g *Game) TickCount() uint64    { return g.tick }
func (g *Game) ActorCount() int      { return g.actors.Len() }
func (g *Game) ComponentCount() int  { return g.componentCount }
func (g *Game) Closed() bool         { return g.closed }

// Queue returns the background queue, or nil when the game has none.
func (g *Game) Queue() *dispatch.Queue { return g.queue }

// IsMain reports whether the caller runs on the main goroutine.
func (g *Game) IsMain() bool {
	return goroutineID() == g.mainID
}

func (g *Game) mustBeMain(op string) {
	if id := goroutineID(); id != g.mainID {
		panic(fmt.Sprintf("engine: %s called on goroutine %d, game is owned by goroutine %d", op, id, g.mainID))
	}
}

// SetDevice replaces the device handed to draw hooks.
func (g *Game) SetDevice(d Device) {
	g.mustBeMain("SetDevice")
	if d == nil {
		d = nopDevice{}
	}
	g.device = d
}

// CreateActor creates an actor and its physics body at the requested pose.
func (g *Game) CreateActor(opts ActorOptions) (*Actor, error) {
	g.mustBeMain("CreateActor")
	if g.closed {
		return nil, ErrClosed
	}

	if opts.Rotation == (mgl32.Quat{}) {
		opts.Rotation = mgl32.QuatIdent()
	}
	if opts.Scale == (mgl32.Vec3{}) {
		opts.Scale = mgl32.Vec3{1, 1, 1}
	}

	a := newActor(g, opts.Name, newTransform(opts.Position, opts.Rotation, opts.Scale))
	a.entity = g.actors.Insert(a)

	a.body = g.scene.CreateBody(physics.BodyDesc{
		Position: a.transform.position,
		Rotation: a.transform.rotation,
		Dynamic:  opts.Dynamic,
		Mass:     opts.Mass,
	})
	a.transform.body = a.body

	g.log.Debug("actor created",
		zap.Stringer("actor", a.entity),
		zap.String("name", opts.Name),
		zap.Bool("dynamic", opts.Dynamic),
	)
	return a, nil
}

// DestroyActor destroys the actor referenced by e, its components and its
// physics body, and releases its slot. Stale handles return false.
func (g *Game) DestroyActor(e Entity) bool {
	g.mustBeMain("DestroyActor")

	a, ok := g.actors.Get(e)
	if !ok || a.destroyed {
		return false
	}

	g.UpdateEventTypeForActor(a, EventNone)
	a.destroy(g)
	g.actors.Remove(e)

	g.log.Debug("actor destroyed", zap.Stringer("actor", e), zap.String("name", a.name))
	return true
}

// Actor resolves e. It returns false when the slot was released or reused.
func (g *Game) Actor(e Entity) (*Actor, bool) {
	return g.actors.Get(e)
}

// Actors iterates live actors in slot order.
func (g *Game) Actors() iter.Seq2[Entity, *Actor] {
	return g.actors.All()
}

// ActorsInPhase returns the number of actors registered for phase p.
func (g *Game) ActorsInPhase(p EventType) int {
	i := phaseIndex(p)
	if i < 0 {
		return 0
	}
	return g.phases[i].Len()
}

// ActorEventTypes returns the aggregate mask last reported for e.
func (g *Game) ActorEventTypes(e Entity) EventType {
	if !g.actors.Alive(e) {
		return EventNone
	}
	mask, _ := g.masks.Get(e.Index)
	return mask
}

// UpdateEventTypeForActor makes the per-phase actor registries match mask:
// the actor leaves every phase not in mask and joins every phase in it.
func (g *Game) UpdateEventTypeForActor(a *Actor, mask EventType) {
	g.mustBeMain("UpdateEventTypeForActor")

	idx := a.entity.Index
	for i, p := range Phases {
		if mask.Has(p) {
			g.phases[i].Put(idx, a.entity)
		} else {
			g.phases[i].Del(idx)
		}
	}

	if mask == EventNone {
		g.masks.Del(idx)
	} else {
		g.masks.Put(idx, mask)
	}
}

func (g *Game) queueStart(actor Entity, id ComponentID) {
	g.pending = append(g.pending, componentHandle{actor: actor, id: id})
}

// Post schedules fn to run on the main goroutine at the start of the next
// Step. It is safe to call from any goroutine and never blocks on the frame.
func (g *Game) Post(fn func(*Game)) {
	if fn == nil {
		panic("engine: Post called with nil function")
	}
	g.mailbox.post(fn)
}

// Tick runs one full frame: Step then Present.
func (g *Game) Tick(dt float64) error {
	if err := g.Step(dt); err != nil {
		return err
	}
	return g.Present()
}

// Step runs the simulation half of a frame: posted results are applied,
// newly attached components are started, the update phase runs, and the
// physics scene advances.
func (g *Game) Step(dt float64) error {
	g.mustBeMain("Step")
	if g.closed {
		return ErrClosed
	}
	g.enter("Step")
	defer g.leave()

	g.tick++
	frame := g.beginFrame(dt)

	for _, fn := range g.mailbox.take() {
		fn(g)
	}
	g.startPending(frame)

	if err := g.runPhase(0, frame); err != nil {
		g.commands.Flush(g)
		return err
	}

	start := time.Now()
	g.scene.Step(dt)
	for _, a := range g.actors.All() {
		if a.body != nil && a.body.Dynamic() {
			a.transform.syncFromBody()
		}
	}
	g.physics.record(time.Since(start), g.scene.BodyCount())

	g.commands.Flush(g)
	return nil
}

// Present runs the render and render2d phases against the current device.
func (g *Game) Present() error {
	g.mustBeMain("Present")
	if g.closed {
		return ErrClosed
	}
	g.enter("Present")
	defer g.leave()

	frame := &g.frame
	frame.Device = g.device

	for i := 1; i < phaseCount; i++ {
		if err := g.runPhase(i, frame); err != nil {
			g.commands.Flush(g)
			return err
		}
	}

	g.commands.Flush(g)
	return nil
}

func (g *Game) enter(op string) {
	if g.dispatching {
		panic("engine: " + op + " called from inside a frame phase")
	}
	g.dispatching = true
}

func (g *Game) leave() {
	g.dispatching = false
}

func (g *Game) beginFrame(dt float64) *Frame {
	g.frame = Frame{
		DeltaTime: dt,
		Tick:      g.tick,
		Game:      g,
		Device:    g.device,
		Commands:  g.commands,
	}
	return &g.frame
}

// startPending runs Start for components attached since the last frame.
// Components attached by a Start hook are started in the same pass; disabled
// ones wait until they are enabled.
func (g *Game) startPending(frame *Frame) {
	g.deferred = g.deferred[:0]
	for i := 0; i < len(g.pending); i++ {
		h := g.pending[i]
		a, ok := g.actors.Get(h.actor)
		if !ok {
			continue
		}
		c, ok := a.components.Get(h.id)
		if !ok {
			continue
		}

		b := c.base()
		if b.started {
			continue
		}
		if !b.enabled {
			g.deferred = append(g.deferred, h)
			continue
		}

		b.started = true
		c.Start(frame)
	}
	g.pending = append(g.pending[:0], g.deferred...)
}

func (g *Game) runPhase(i int, frame *Frame) error {
	start := time.Now()
	phase := Phases[i]
	registry := g.phases[i]

	g.scratch = g.scratch[:0]
	registry.ForEach(func(_ uint32, e Entity) bool {
		g.scratch = append(g.scratch, e)
		return true
	})

	invoked := 0
	for _, e := range g.scratch {
		if current, ok := registry.Get(e.Index); !ok || !current.Equals(e) {
			// left the phase earlier in this walk
			continue
		}

		a, ok := g.actors.Get(e)
		if !ok {
			err := &DesyncError{Phase: phase, Actor: e, Reason: "phase registry references a released actor"}
			g.log.Error("frame abandoned", zap.Error(err))
			return err
		}

		var err error
		switch phase {
		case EventUpdate:
			err = a.Update(frame)
		case EventRender:
			err = a.Render(frame)
		case EventRender2D:
			err = a.Render2D(frame)
		}
		invoked++
		if err != nil {
			g.log.Error("frame abandoned", zap.Error(err))
			return err
		}
	}

	g.timers[i].record(time.Since(start), invoked)
	return nil
}

// Stats returns bookkeeping counters and phase timings.
func (g *Game) Stats() Stats {
	s := Stats{
		Ticks:      g.tick,
		Actors:     g.actors.Len(),
		Components: g.componentCount,
		Bodies:     g.scene.BodyCount(),
		Posted:     g.mailbox.len(),
		Phases:     make([]PhaseStats, phaseCount),
		Physics:    g.physics.snapshot(g.scene.BodyCount()),
	}
	for i := range g.timers {
		s.Phases[i] = g.timers[i].snapshot(g.phases[i].Len())
	}
	if g.queue != nil {
		qs := g.queue.Stats()
		s.Queue = &qs
	}
	return s
}

// Close destroys every actor, then shuts down the background queue and the
// physics scene. Posted closures that have not run are dropped.
func (g *Game) Close() error {
	g.mustBeMain("Close")
	if g.closed {
		return ErrClosed
	}

	entities := make([]Entity, 0, g.actors.Len())
	for e := range g.actors.All() {
		entities = append(entities, e)
	}
	for _, e := range entities {
		g.DestroyActor(e)
	}
	g.commands.Flush(g)
	g.closed = true
	g.pending = nil

	var err error
	if g.queue != nil {
		err = multierr.Append(err, g.queue.Close())
	}
	err = multierr.Append(err, g.scene.Close())

	g.log.Debug("game closed", zap.Uint64("ticks", g.tick), zap.Error(err))
	return err
}
