package engine

import "weak"

// ComponentID identifies a component within its actor. IDs are never reused
// by the same actor.
type ComponentID uint32

// Component is a unit of behaviour attached to exactly one Actor. Concrete
// components embed ComponentBase, which supplies no-op hooks and the
// bookkeeping the actor relies on; they override the hooks they need.
//
// Hooks run on the game's main goroutine, at most once per frame per phase.
type Component interface {
	Start(frame *Frame)
	Update(frame *Frame)
	Draw(frame *Frame)
	Draw2D(frame *Frame)

	// EventTypes declares the phases the component wants to take part in.
	EventTypes() EventType

	base() *ComponentBase
}

// Stopper is implemented by components that release resources when they are
// detached from their actor or the actor is destroyed.
type Stopper interface {
	Stop()
}

// actorRef is a non-owning reference to an actor. It keeps neither the game
// nor the actor alive and resolves through the game's arena, so a destroyed
// or reused actor slot reads as gone.
type actorRef struct {
	game   weak.Pointer[Game]
	entity Entity
}

func (r actorRef) resolve() (*Actor, bool) {
	g := r.game.Value()
	if g == nil {
		return nil, false
	}
	return g.actors.Get(r.entity)
}

// ComponentBase is embedded by every component.
type ComponentBase struct {
	id       ComponentID
	mask     EventType
	enabled  bool
	attached bool
	started  bool
	owner    actorRef
}

// NewComponentBase returns a base declaring the given phases.
func NewComponentBase(mask EventType) ComponentBase {
	return ComponentBase{mask: mask}
}

func (b *ComponentBase) Start(*Frame)  {}
func (b *ComponentBase) Update(*Frame) {}
func (b *ComponentBase) Draw(*Frame)   {}
func (b *ComponentBase) Draw2D(*Frame) {}

func (b *ComponentBase) EventTypes() EventType { return b.mask }

func (b *ComponentBase) base() *ComponentBase { return b }

// ID returns the component's index within its actor.
func (b *ComponentBase) ID() ComponentID { return b.id }

func (b *ComponentBase) Enabled() bool  { return b.attached && b.enabled }
func (b *ComponentBase) Attached() bool { return b.attached }
func (b *ComponentBase) Started() bool  { return b.started }

// Actor returns the owning actor. ok is false once the actor has been
// destroyed, the game has been released, or the component was detached.
func (b *ComponentBase) Actor() (actor *Actor, ok bool) {
	if !b.attached {
		return nil, false
	}
	return b.owner.resolve()
}

// SetEventTypes changes the declared phases. When attached, the owning actor
// recomputes its phase sets from the new mask; the call then panics off the
// main goroutine before anything is changed.
func (b *ComponentBase) SetEventTypes(mask EventType) {
	if b.attached {
		if g := b.owner.game.Value(); g != nil {
			g.mustBeMain("SetEventTypes")
		}
	}
	a, ok := b.Actor()
	if !ok {
		b.mask = mask
		return
	}
	a.setEventTypes(b, mask)
}

func (b *ComponentBase) attach(id ComponentID, owner actorRef) {
	b.id = id
	b.owner = owner
	b.attached = true
	b.enabled = true
	b.started = false
}

func (b *ComponentBase) detach() {
	b.owner = actorRef{}
	b.attached = false
	b.enabled = false
}
