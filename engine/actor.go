package engine

import (
	"iter"
	"weak"

	"github.com/kamstrup/intmap"
	"github.com/plus3/blockworks/physics"
)

// Actor is a game object: a transform, a physics body and a set of
// components. For each phase the actor keeps the set of component indices to
// invoke; an index is in a phase set iff the component is enabled and its
// mask declares that phase.
//
// Actors are created and destroyed by their Game and may only be mutated on
// the game's main goroutine.
type Actor struct {
	entity Entity
	name   string
	game   weak.Pointer[Game]

	transform Transform
	body      physics.Body

	components *intmap.Map[ComponentID, Component]
	order      []ComponentID
	nextID     ComponentID

	sets      [phaseCount]indexSet[ComponentID]
	mask      EventType
	destroyed bool
}

func newActor(g *Game, name string, transform Transform) *Actor {
	a := &Actor{
		name:       name,
		game:       g.self,
		transform:  transform,
		components: intmap.New[ComponentID, Component](8),
		nextID:     1,
	}
	for i := range a.sets {
		a.sets[i] = newIndexSet[ComponentID](8)
	}
	return a
}

func (a *Actor) Entity() Entity        { return a.entity }
func (a *Actor) Name() string          { return a.name }
func (a *Actor) Transform() *Transform { return &a.transform }
func (a *Actor) Body() physics.Body    { return a.body }
func (a *Actor) Destroyed() bool       { return a.destroyed }
func (a *Actor) ComponentCount() int   { return len(a.order) }

// EventTypes returns the phases in which at least one component is active.
func (a *Actor) EventTypes() EventType { return a.mask }

// Game returns the owning game, or false once it has been released.
func (a *Actor) Game() (*Game, bool) {
	g := a.game.Value()
	return g, g != nil
}

// Component returns the component attached under id.
func (a *Actor) Component(id ComponentID) (Component, bool) {
	return a.components.Get(id)
}

// Components iterates attached components in attach order.
func (a *Actor) Components() iter.Seq2[ComponentID, Component] {
	return func(yield func(ComponentID, Component) bool) {
		for _, id := range a.order {
			c, ok := a.components.Get(id)
			if !ok {
				continue
			}
			if !yield(id, c) {
				return
			}
		}
	}
}

// InPhase reports whether the component attached under id is in the phase set for p.
func (a *Actor) InPhase(id ComponentID, p EventType) bool {
	i := phaseIndex(p)
	return i >= 0 && a.sets[i].has(id)
}

// PhaseLen returns the number of components active in phase p.
func (a *Actor) PhaseLen(p EventType) int {
	i := phaseIndex(p)
	if i < 0 {
		return 0
	}
	return a.sets[i].len()
}

func phaseIndex(p EventType) int {
	for i, phase := range Phases {
		if phase == p {
			return i
		}
	}
	return -1
}

func (a *Actor) mutable(op string) (*Game, error) {
	g := a.game.Value()
	if g == nil {
		return nil, ErrActorDestroyed
	}
	g.mustBeMain(op)
	if a.destroyed {
		return nil, ErrActorDestroyed
	}
	return g, nil
}

func (a *Actor) owns(b *ComponentBase) bool {
	if !b.attached || b.owner.game != a.game || !b.owner.entity.Equals(a.entity) {
		return false
	}
	c, ok := a.components.Get(b.id)
	return ok && c.base() == b
}

// AddComponent attaches c under a fresh component index and registers its
// declared phases. Start runs at the beginning of the next frame.
func (a *Actor) AddComponent(c Component) (ComponentID, error) {
	if c == nil {
		panic("engine: AddComponent called with nil component")
	}
	g, err := a.mutable("AddComponent")
	if err != nil {
		return 0, err
	}

	b := c.base()
	if b.attached {
		panic("engine: component is already attached to an actor")
	}

	id := a.nextID
	a.nextID++

	b.attach(id, actorRef{game: a.game, entity: a.entity})
	a.components.Put(id, c)
	a.order = append(a.order, id)
	g.componentCount++

	a.applyEventTypes(b, c.EventTypes())
	g.queueStart(a.entity, id)
	return id, nil
}

// RemoveComponent detaches the component attached under id.
func (a *Actor) RemoveComponent(id ComponentID) error {
	g, err := a.mutable("RemoveComponent")
	if err != nil {
		return err
	}

	c, ok := a.components.Get(id)
	if !ok {
		return ErrComponentNotFound
	}

	if s, ok := c.(Stopper); ok {
		s.Stop()
	}

	for i := range a.sets {
		a.sets[i].remove(id)
	}
	a.components.Del(id)
	for i, other := range a.order {
		if other == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	c.base().detach()
	g.componentCount--

	a.refreshEventTypes()
	return nil
}

// SetEventTypeForComponent stores mask as the component's declared phases
// and makes the phase sets match it exactly. Calling it twice with the same
// mask leaves the sets unchanged. Disabled components keep the mask but stay
// out of every phase set.
func (a *Actor) SetEventTypeForComponent(c Component, mask EventType) error {
	if _, err := a.mutable("SetEventTypeForComponent"); err != nil {
		return err
	}
	b := c.base()
	if !a.owns(b) {
		return ErrNotAttached
	}
	a.applyEventTypes(b, mask)
	return nil
}

// SetComponentEnabled disables or re-enables a component. Disabling only
// removes it from the phase sets; enabling recomputes them from the mask the
// component declares at that moment.
func (a *Actor) SetComponentEnabled(c Component, enabled bool) error {
	if _, err := a.mutable("SetComponentEnabled"); err != nil {
		return err
	}
	b := c.base()
	if !a.owns(b) {
		return ErrNotAttached
	}

	if !enabled {
		b.enabled = false
		for i := range a.sets {
			a.sets[i].remove(b.id)
		}
		a.refreshEventTypes()
		return nil
	}

	b.enabled = true
	a.applyEventTypes(b, c.EventTypes())
	return nil
}

// setEventTypes is the path taken by ComponentBase.SetEventTypes.
func (a *Actor) setEventTypes(b *ComponentBase, mask EventType) {
	if _, err := a.mutable("SetEventTypes"); err != nil {
		return
	}
	if a.owns(b) {
		a.applyEventTypes(b, mask)
		return
	}
	b.mask = mask
}

func (a *Actor) applyEventTypes(b *ComponentBase, mask EventType) {
	b.mask = mask

	effective := EventNone
	if b.enabled {
		effective = mask
	}

	for i, p := range Phases {
		if effective.Has(p) {
			a.sets[i].add(b.id)
		} else {
			a.sets[i].remove(b.id)
		}
	}
	a.refreshEventTypes()
}

// refreshEventTypes recomputes the aggregate mask and reports it to the game.
func (a *Actor) refreshEventTypes() {
	var mask EventType
	for i, p := range Phases {
		if a.sets[i].len() > 0 {
			mask |= p
		}
	}
	a.mask = mask

	if g := a.game.Value(); g != nil && !a.destroyed {
		g.UpdateEventTypeForActor(a, mask)
	}
}

// Update invokes Update on every component in the update set.
func (a *Actor) Update(frame *Frame) error { return a.dispatch(0, frame) }

// Render invokes Draw on every component in the render set.
func (a *Actor) Render(frame *Frame) error { return a.dispatch(1, frame) }

// Render2D invokes Draw2D on every component in the render2d set.
func (a *Actor) Render2D(frame *Frame) error { return a.dispatch(2, frame) }

// dispatch walks one phase set. Invocation order within a phase is not
// defined. A member without a component means the set and the component
// storage diverged; the walk stops and reports it.
func (a *Actor) dispatch(phase int, frame *Frame) error {
	set := &a.sets[phase]
	for _, id := range set.snapshot() {
		if a.destroyed {
			return nil
		}
		if !set.has(id) {
			continue
		}

		c, ok := a.components.Get(id)
		if !ok {
			return &DesyncError{
				Phase:     Phases[phase],
				Actor:     a.entity,
				Component: id,
				Reason:    "phase set references a missing component",
			}
		}
		if !c.base().started {
			continue
		}

		switch Phases[phase] {
		case EventUpdate:
			c.Update(frame)
		case EventRender:
			c.Draw(frame)
		case EventRender2D:
			c.Draw2D(frame)
		}
	}
	return nil
}

// destroy tears the actor down: components are stopped and detached, and the
// physics body is removed from the scene.
func (a *Actor) destroy(g *Game) {
	a.destroyed = true

	for _, id := range a.order {
		if c, ok := a.components.Get(id); ok {
			if s, ok := c.(Stopper); ok {
				s.Stop()
			}
		}
	}

	for _, id := range a.order {
		if c, ok := a.components.Get(id); ok {
			c.base().detach()
			g.componentCount--
		}
	}
	a.components.Clear()
	a.order = nil

	for i := range a.sets {
		a.sets[i].clear()
	}
	a.mask = EventNone

	if a.body != nil {
		g.scene.RemoveBody(a.body)
		a.transform.body = nil
		a.body = nil
	}
}

// GetComponent returns the first component of type T attached to a.
func GetComponent[T Component](a *Actor) (T, bool) {
	for _, id := range a.order {
		c, ok := a.components.Get(id)
		if !ok {
			continue
		}
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}
