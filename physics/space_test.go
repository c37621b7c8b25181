package physics_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/blockworks/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpace(t *testing.T) {
	t.Run("dynamic bodies fall and rest on the floor", func(t *testing.T) {
		s := physics.NewSpace(physics.DefaultOptions())
		b := s.CreateBody(physics.BodyDesc{Position: mgl32.Vec3{0, 2, 0}, Rotation: mgl32.QuatIdent(), Dynamic: true})

		s.Step(0.1)
		assert.Less(t, b.Position().Y(), float32(2))
		assert.Less(t, b.Velocity().Y(), float32(0))

		for i := 0; i < 120; i++ {
			s.Step(1.0 / 60)
		}
		assert.Equal(t, float32(0), b.Position().Y())
		assert.GreaterOrEqual(t, b.Velocity().Y(), float32(0))
	})

	t.Run("static bodies stay put", func(t *testing.T) {
		s := physics.NewSpace(physics.DefaultOptions())
		b := s.CreateBody(physics.BodyDesc{Position: mgl32.Vec3{1, 5, 1}})

		b.ApplyImpulse(mgl32.Vec3{0, 10, 0})
		s.Step(1)
		assert.Equal(t, mgl32.Vec3{1, 5, 1}, b.Position())
		assert.False(t, b.Dynamic())
	})

	t.Run("impulse scales with inverse mass", func(t *testing.T) {
		s := physics.NewSpace(physics.Options{})
		light := s.CreateBody(physics.BodyDesc{Dynamic: true, Mass: 1})
		heavy := s.CreateBody(physics.BodyDesc{Dynamic: true, Mass: 4})

		light.ApplyImpulse(mgl32.Vec3{4, 0, 0})
		heavy.ApplyImpulse(mgl32.Vec3{4, 0, 0})
		assert.Equal(t, float32(4), light.Velocity().X())
		assert.Equal(t, float32(1), heavy.Velocity().X())
	})

	t.Run("remove swaps the last body in", func(t *testing.T) {
		s := physics.NewSpace(physics.DefaultOptions())
		a := s.CreateBody(physics.BodyDesc{})
		b := s.CreateBody(physics.BodyDesc{})
		c := s.CreateBody(physics.BodyDesc{})
		require.Equal(t, 3, s.BodyCount())

		assert.True(t, s.RemoveBody(a))
		assert.False(t, s.RemoveBody(a))
		assert.Equal(t, 2, s.BodyCount())
		assert.True(t, s.RemoveBody(c))
		assert.True(t, s.RemoveBody(b))
		assert.Equal(t, 0, s.BodyCount())

		other := physics.NewSpace(physics.DefaultOptions())
		foreign := other.CreateBody(physics.BodyDesc{})
		assert.False(t, s.RemoveBody(foreign))
	})

	t.Run("close", func(t *testing.T) {
		s := physics.NewSpace(physics.DefaultOptions())
		s.CreateBody(physics.BodyDesc{})
		require.NoError(t, s.Close())
		assert.Equal(t, 0, s.BodyCount())
		assert.ErrorIs(t, s.Close(), physics.ErrSpaceClosed)
		assert.Panics(t, func() { s.CreateBody(physics.BodyDesc{}) })
	})
}
