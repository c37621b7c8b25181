package engine

// Commands buffers structural changes requested from inside component hooks.
// They are applied when the current Step or Present finishes.
type Commands struct {
	destroys []Entity
	removes  []removeComponentCommand
	defers   []func()
}

type removeComponentCommand struct {
	actor     Entity
	component ComponentID
}

func newCommands() *Commands {
	return &Commands{}
}

// Destroy queues the destruction of an actor.
func (c *Commands) Destroy(actor Entity) {
	c.destroys = append(c.destroys, actor)
}

// RemoveComponent queues detaching a component from an actor.
func (c *Commands) RemoveComponent(actor Entity, id ComponentID) {
	c.removes = append(c.removes, removeComponentCommand{actor: actor, component: id})
}

// Defer queues fn to run after the current phase work is done.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.destroys) + len(c.removes) + len(c.defers)
}

// Flush applies queued commands to g and resets the buffer. Component
// removals run before actor destruction; deferred functions run last.
// Commands queued while flushing are applied in the same flush.
func (c *Commands) Flush(g *Game) {
	for c.Len() > 0 {
		removes, destroys, defers := c.removes, c.destroys, c.defers
		c.removes, c.destroys, c.defers = nil, nil, nil

		for _, cmd := range removes {
			if a, ok := g.Actor(cmd.actor); ok {
				_ = a.RemoveComponent(cmd.component)
			}
		}
		for _, e := range destroys {
			g.DestroyActor(e)
		}
		for _, fn := range defers {
			fn()
		}
	}
}
