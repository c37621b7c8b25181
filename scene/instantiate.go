package scene

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/blockworks/engine"
)

// Instantiate creates the file's actors and components in g. If any actor
// fails, the actors created so far are destroyed and the error is returned.
// The camera, when given, replaces the game's camera pose.
func Instantiate(ctx context.Context, g *engine.Game, f *File, r *Registry) ([]engine.Entity, error) {
	created := make([]engine.Entity, 0, len(f.Actors))
	rollback := func() {
		for _, e := range created {
			g.DestroyActor(e)
		}
	}

	for i, spec := range f.Actors {
		if err := ctx.Err(); err != nil {
			rollback()
			return nil, err
		}
		e, err := instantiateActor(g, spec, r)
		if err != nil {
			rollback()
			return nil, fmt.Errorf("actor %d (%s): %w", i, spec.Name, err)
		}
		created = append(created, e)
	}

	if c := f.Camera; c != nil {
		camera := g.Camera()
		camera.Eye = vec3(c.Eye, camera.Eye)
		camera.Target = vec3(c.Target, camera.Target)
		if c.FovY > 0 {
			camera.FovY = c.FovY
		}
	}
	return created, nil
}

func instantiateActor(g *engine.Game, spec ActorSpec, r *Registry) (engine.Entity, error) {
	built := make([]engine.Component, 0, len(spec.Components))
	for _, cs := range spec.Components {
		c, err := r.Build(cs.Type, cs.Params)
		if err != nil {
			stop(built)
			return engine.Entity{}, err
		}
		built = append(built, c)
	}

	a, err := g.CreateActor(engine.ActorOptions{
		Name:     spec.Name,
		Position: vec3(spec.Position, mgl32.Vec3{}),
		Rotation: rotation(spec.Rotation),
		Scale:    vec3(spec.Scale, mgl32.Vec3{1, 1, 1}),
		Dynamic:  spec.Dynamic,
		Mass:     spec.Mass,
	})
	if err != nil {
		stop(built)
		return engine.Entity{}, err
	}

	for i, c := range built {
		cs := spec.Components[i]
		attached, err := attach(a, c, cs)
		if err != nil {
			// destroying the actor stops what was attached
			g.DestroyActor(a.Entity())
			rest := built[i+1:]
			if !attached {
				rest = built[i:]
			}
			stop(rest)
			return engine.Entity{}, fmt.Errorf("component %d (%s): %w", i, cs.Type, err)
		}
	}
	return a.Entity(), nil
}

// stop releases components that were built but never attached.
func stop(cs []engine.Component) {
	for _, c := range cs {
		if s, ok := c.(engine.Stopper); ok {
			s.Stop()
		}
	}
}

func attach(a *engine.Actor, c engine.Component, cs ComponentSpec) (bool, error) {
	if _, err := a.AddComponent(c); err != nil {
		return false, err
	}
	if cs.Events != "" {
		mask, err := engine.ParseEventType(cs.Events)
		if err != nil {
			return true, err
		}
		if err := a.SetEventTypeForComponent(c, mask); err != nil {
			return true, err
		}
	}
	if !cs.IsEnabled() {
		return true, a.SetComponentEnabled(c, false)
	}
	return true, nil
}
