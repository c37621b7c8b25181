// Package scene loads YAML scene descriptions and instantiates them as actors
// and components in a game.
package scene

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// File is a decoded scene file.
type File struct {
	Camera *CameraSpec `yaml:"camera"`
	Actors []ActorSpec `yaml:"actors"`
}

type CameraSpec struct {
	Eye    []float32 `yaml:"eye"`
	Target []float32 `yaml:"target"`
	FovY   float32   `yaml:"fov"`
}

// ActorSpec describes one actor. Rotation holds Euler angles in degrees,
// applied in X, Y, Z order.
type ActorSpec struct {
	Name       string          `yaml:"name"`
	Position   []float32       `yaml:"position"`
	Rotation   []float32       `yaml:"rotation"`
	Scale      []float32       `yaml:"scale"`
	Dynamic    bool            `yaml:"dynamic"`
	Mass       float32         `yaml:"mass"`
	Components []ComponentSpec `yaml:"components"`
}

// ComponentSpec names a registered component type. Events, when set,
// overrides the phases the component declares.
type ComponentSpec struct {
	Type    string `yaml:"type"`
	Enabled *bool  `yaml:"enabled"`
	Events  string `yaml:"events"`
	Params  Params `yaml:"params"`
}

func (c ComponentSpec) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Load reads and parses the scene file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a scene and checks the vector fields.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	for i, a := range f.Actors {
		for field, v := range map[string][]float32{"position": a.Position, "rotation": a.Rotation, "scale": a.Scale} {
			if len(v) != 0 && len(v) != 3 {
				return nil, fmt.Errorf("actor %d (%s): %s needs 3 values, got %d", i, a.Name, field, len(v))
			}
		}
		for j, c := range a.Components {
			if c.Type == "" {
				return nil, fmt.Errorf("actor %d (%s): component %d has no type", i, a.Name, j)
			}
		}
	}
	if c := f.Camera; c != nil && (len(c.Eye) != 3 || len(c.Target) != 3) {
		return nil, fmt.Errorf("camera: eye and target need 3 values")
	}
	return &f, nil
}

func vec3(v []float32, def mgl32.Vec3) mgl32.Vec3 {
	if len(v) != 3 {
		return def
	}
	return mgl32.Vec3{v[0], v[1], v[2]}
}

// rotation converts XYZ Euler angles in degrees to a quaternion.
func rotation(v []float32) mgl32.Quat {
	if len(v) != 3 {
		return mgl32.QuatIdent()
	}
	return mgl32.AnglesToQuat(mgl32.DegToRad(v[0]), mgl32.DegToRad(v[1]), mgl32.DegToRad(v[2]), mgl32.XYZ)
}
