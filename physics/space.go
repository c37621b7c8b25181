package physics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrSpaceClosed = errors.New("physics: space closed")

// Options configures a Space.
type Options struct {
	Gravity   mgl32.Vec3
	Floor     float32
	Damping   float32 // fraction of velocity lost per second
	FixedStep float64 // seconds per sub-step
	MaxSteps  int     // sub-steps per Step call before the remainder is dropped
}

func DefaultOptions() Options {
	return Options{
		Gravity:   mgl32.Vec3{0, -9.81, 0},
		Floor:     0,
		Damping:   0.05,
		FixedStep: 1.0 / 60.0,
		MaxSteps:  8,
	}
}

type body struct {
	id       uint64
	dynamic  bool
	invMass  float32
	position mgl32.Vec3
	rotation mgl32.Quat
	velocity mgl32.Vec3
	index    int
}

func (b *body) ID() uint64               { return b.id }
func (b *body) Dynamic() bool            { return b.dynamic }
func (b *body) Position() mgl32.Vec3     { return b.position }
func (b *body) Rotation() mgl32.Quat     { return b.rotation }
func (b *body) Velocity() mgl32.Vec3     { return b.velocity }
func (b *body) SetPosition(p mgl32.Vec3) { b.position = p }
func (b *body) SetRotation(q mgl32.Quat) { b.rotation = q }

func (b *body) ApplyImpulse(impulse mgl32.Vec3) {
	if !b.dynamic {
		return
	}
	b.velocity = b.velocity.Add(impulse.Mul(b.invMass))
}

// Space integrates dynamic bodies under gravity with a floor plane. Static
// bodies never move unless repositioned.
type Space struct {
	opts        Options
	bodies      []*body
	nextID      uint64
	accumulator float64
	closed      bool
}

func NewSpace(opts Options) *Space {
	if opts.FixedStep <= 0 {
		opts.FixedStep = DefaultOptions().FixedStep
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultOptions().MaxSteps
	}
	return &Space{opts: opts}
}

func (s *Space) CreateBody(desc BodyDesc) Body {
	if s.closed {
		panic(ErrSpaceClosed)
	}

	s.nextID++
	b := &body{
		id:       s.nextID,
		dynamic:  desc.Dynamic,
		position: desc.Position,
		rotation: desc.Rotation,
		index:    len(s.bodies),
	}
	if desc.Dynamic {
		mass := desc.Mass
		if mass <= 0 {
			mass = 1
		}
		b.invMass = 1 / mass
	}
	s.bodies = append(s.bodies, b)
	return b
}

// RemoveBody detaches b from the space. It returns false if b does not belong to it.
func (s *Space) RemoveBody(b Body) bool {
	sb, ok := b.(*body)
	if !ok || sb.index < 0 || sb.index >= len(s.bodies) || s.bodies[sb.index] != sb {
		return false
	}

	last := len(s.bodies) - 1
	s.bodies[sb.index] = s.bodies[last]
	s.bodies[sb.index].index = sb.index
	s.bodies[last] = nil
	s.bodies = s.bodies[:last]
	sb.index = -1
	return true
}

// Step advances the simulation by dt seconds in fixed sub-steps.
func (s *Space) Step(dt float64) {
	if s.closed || dt <= 0 {
		return
	}

	s.accumulator += dt
	steps := 0
	for s.accumulator >= s.opts.FixedStep && steps < s.opts.MaxSteps {
		s.integrate(float32(s.opts.FixedStep))
		s.accumulator -= s.opts.FixedStep
		steps++
	}
	if steps == s.opts.MaxSteps {
		s.accumulator = 0
	}
}

func (s *Space) integrate(h float32) {
	damping := 1 - s.opts.Damping*h
	if damping < 0 {
		damping = 0
	}

	for _, b := range s.bodies {
		if !b.dynamic {
			continue
		}
		b.velocity = b.velocity.Add(s.opts.Gravity.Mul(h)).Mul(damping)
		b.position = b.position.Add(b.velocity.Mul(h))

		if b.position.Y() < s.opts.Floor {
			b.position[1] = s.opts.Floor
			if b.velocity.Y() < 0 {
				b.velocity[1] = 0
			}
		}
	}
}

func (s *Space) BodyCount() int {
	return len(s.bodies)
}

func (s *Space) Close() error {
	if s.closed {
		return ErrSpaceClosed
	}
	s.closed = true
	s.bodies = nil
	return nil
}
