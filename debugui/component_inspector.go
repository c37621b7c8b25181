package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/blockworks/engine"
)

// ComponentInspector shows the selected actor's transform, body and
// components. Exported component fields of basic kinds are editable, and
// each component can be toggled or moved between phases.
type ComponentInspector struct {
	selected engine.Entity
}

func NewComponentInspector() *ComponentInspector {
	return &ComponentInspector{}
}

func (ci *ComponentInspector) Render(g *engine.Game, selected engine.Entity) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ci.selected = selected

	if ci.selected.IsZero() {
		imgui.Text("No actor selected")
		imgui.End()
		return
	}

	a, ok := g.Actor(ci.selected)
	if !ok {
		imgui.Text(fmt.Sprintf("Actor %s no longer exists", ci.selected))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Actor: %s (%s)", a.Entity(), a.Name()))
	imgui.Text(fmt.Sprintf("Phases: %s", a.EventTypes()))
	t := a.Transform()
	p := t.Position()
	imgui.Text(fmt.Sprintf("Position: %.2f %.2f %.2f", p.X(), p.Y(), p.Z()))
	if b := a.Body(); b != nil {
		v := b.Velocity()
		imgui.Text(fmt.Sprintf("Body %d dynamic=%t velocity %.2f %.2f %.2f", b.ID(), b.Dynamic(), v.X(), v.Y(), v.Z()))
	}
	imgui.Separator()

	for id, c := range a.Components() {
		l := layouts.Layout(c)
		if imgui.TreeNodeStr(fmt.Sprintf("%d: %s", id, l.Name)) {
			ci.renderControls(a, c)
			ci.renderComponent(c, l)
			imgui.TreePop()
		}
	}

	imgui.End()
}

func (ci *ComponentInspector) renderControls(a *engine.Actor, c engine.Component) {
	s := StateOf(c)
	imgui.Text(fmt.Sprintf("id %d started=%t", s.ID, s.Started))

	enabled := s.Enabled
	if imgui.Checkbox("Enabled", &enabled) {
		_ = a.SetComponentEnabled(c, enabled)
	}

	for _, p := range engine.Phases {
		on := s.Mask.Has(p)
		imgui.SameLine()
		if imgui.Checkbox(p.String(), &on) {
			_ = a.SetEventTypeForComponent(c, TogglePhase(s.Mask, p, on))
		}
	}
}

// TogglePhase returns mask with p set or cleared.
func TogglePhase(mask, p engine.EventType, on bool) engine.EventType {
	if on {
		return mask | p
	}
	return mask &^ p
}

func (ci *ComponentInspector) renderComponent(c engine.Component, l *ComponentLayout) {
	val := reflect.ValueOf(c)
	if val.Kind() == reflect.Pointer {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		imgui.Text(fmt.Sprintf("%v", c))
		return
	}
	if len(l.Fields) == 0 {
		imgui.Text("no exported fields")
		return
	}
	ci.renderFields(val, l.Fields)
}

func (ci *ComponentInspector) renderFields(val reflect.Value, fields []FieldInfo) {
	for _, f := range fields {
		fv, ok := f.Value(val)
		if !ok {
			imgui.Text(fmt.Sprintf("%s: nil", f.Name))
			continue
		}
		ci.renderField(f, fv)
	}
}

func (ci *ComponentInspector) renderField(f FieldInfo, val reflect.Value) {
	name := f.Name
	if f.Kind.Editable() && f.Kind != FieldBool {
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
	}
	id := fmt.Sprintf("##%s", name)

	switch f.Kind {
	case FieldInt:
		v := int32(val.Int())
		if imgui.InputInt(id, &v) && val.CanSet() {
			val.SetInt(int64(v))
		}

	case FieldUint:
		v := int32(val.Uint())
		if imgui.InputInt(id, &v) && v >= 0 && val.CanSet() {
			val.SetUint(uint64(v))
		}

	case FieldFloat:
		v := float32(val.Float())
		if imgui.InputFloat(id, &v) && val.CanSet() {
			val.SetFloat(float64(v))
		}

	case FieldBool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) && val.CanSet() {
			val.SetBool(v)
		}

	case FieldString:
		v := val.String()
		if imgui.InputTextWithHint(id, "", &v, imgui.InputTextFlagsNone, nil) && val.CanSet() {
			val.SetString(v)
		}

	case FieldStruct:
		if imgui.TreeNodeStr(name) {
			ci.renderFields(val, layouts.Fields(f.Type))
			imgui.TreePop()
		}

	case FieldArray:
		imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))

	case FieldSlice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case FieldMap:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	default:
		imgui.Text(fmt.Sprintf("%s: %s", name, val.Type()))
	}
}
