package scene

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Params holds a component's free-form parameters as decoded from YAML.
type Params map[string]any

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("param %s: want number, got %T", key, v)
	}
	return f, nil
}

func (p Params) Int(key string, def int) (int, error) {
	f, err := p.Float(key, float64(def))
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func (p Params) String(key, def string) (string, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %s: want string, got %T", key, v)
	}
	return s, nil
}

func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("param %s: want bool, got %T", key, v)
	}
	return b, nil
}

// Vec3 reads a three element number list.
func (p Params) Vec3(key string, def mgl32.Vec3) (mgl32.Vec3, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	list, ok := v.([]any)
	if !ok || len(list) != 3 {
		return def, fmt.Errorf("param %s: want [x, y, z]", key)
	}
	var out mgl32.Vec3
	for i, item := range list {
		f, ok := toFloat(item)
		if !ok {
			return def, fmt.Errorf("param %s[%d]: want number, got %T", key, i, item)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// Color reads either "#rrggbb", "#rrggbbaa" or a [r, g, b] / [r, g, b, a]
// list with channels in 0..255.
func (p Params) Color(key string, def color.RGBA) (color.RGBA, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}

	switch c := v.(type) {
	case string:
		hex := strings.TrimPrefix(c, "#")
		if len(hex) == 6 {
			hex += "ff"
		}
		if len(hex) != 8 {
			return def, fmt.Errorf("param %s: bad colour %q", key, c)
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return def, fmt.Errorf("param %s: bad colour %q: %w", key, c, err)
		}
		return color.RGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
	case []any:
		if len(c) != 3 && len(c) != 4 {
			return def, fmt.Errorf("param %s: want [r, g, b] or [r, g, b, a]", key)
		}
		ch := [4]uint8{0, 0, 0, 255}
		for i, item := range c {
			f, ok := toFloat(item)
			if !ok || f < 0 || f > 255 {
				return def, fmt.Errorf("param %s[%d]: want 0..255", key, i)
			}
			ch[i] = uint8(f)
		}
		return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
	}
	return def, fmt.Errorf("param %s: want colour, got %T", key, v)
}

// Map reads a nested mapping. A missing key yields nil.
func (p Params) Map(key string) (map[string]any, error) {
	v, ok := p[key]
	if !ok {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("param %s: want mapping, got %T", key, v)
	}
	return m, nil
}

// List reads a sequence. A missing key yields nil.
func (p Params) List(key string) ([]any, error) {
	v, ok := p[key]
	if !ok {
		return nil, nil
	}
	l, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("param %s: want list, got %T", key, v)
	}
	return l, nil
}
