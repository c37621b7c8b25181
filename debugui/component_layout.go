package debugui

import (
	"reflect"
	"sync"

	"github.com/plus3/blockworks/engine"
)

var componentBaseType = reflect.TypeOf(engine.ComponentBase{})

// FieldKind selects the widget used for a field.
type FieldKind uint8

const (
	FieldOther FieldKind = iota
	FieldInt
	FieldUint
	FieldFloat
	FieldBool
	FieldString
	FieldStruct
	FieldArray
	FieldSlice
	FieldMap
)

// Editable reports whether the inspector shows an input widget for the kind.
func (k FieldKind) Editable() bool {
	return k >= FieldInt && k <= FieldString
}

// FieldInfo is one exported field of a component or nested struct.
type FieldInfo struct {
	Name    string
	Index   []int
	Type    reflect.Type
	Kind    FieldKind
	Pointer bool
}

// ComponentLayout is what the inspector needs to know about a component
// type. It is computed once per type.
type ComponentLayout struct {
	Type     reflect.Type
	Name     string
	Fields   []FieldInfo
	Editable int
}

// ComponentState is the engine bookkeeping shown above a component's fields.
type ComponentState struct {
	ID      engine.ComponentID
	Mask    engine.EventType
	Enabled bool
	Started bool
}

type componentState interface {
	ID() engine.ComponentID
	Enabled() bool
	Started() bool
}

// StateOf reads the ComponentBase state of c.
func StateOf(c engine.Component) ComponentState {
	s := ComponentState{Mask: c.EventTypes()}
	if b, ok := c.(componentState); ok {
		s.ID = b.ID()
		s.Enabled = b.Enabled()
		s.Started = b.Started()
	}
	return s
}

// LayoutCache memoizes layouts by component type and field lists by nested
// struct type.
type LayoutCache struct {
	mu      sync.RWMutex
	layouts map[reflect.Type]*ComponentLayout
	fields  map[reflect.Type][]FieldInfo
}

func NewLayoutCache() *LayoutCache {
	return &LayoutCache{
		layouts: make(map[reflect.Type]*ComponentLayout),
		fields:  make(map[reflect.Type][]FieldInfo),
	}
}

// Layout returns the layout of c's concrete type.
func (lc *LayoutCache) Layout(c engine.Component) *ComponentLayout {
	t := reflect.TypeOf(c)

	lc.mu.RLock()
	l, ok := lc.layouts[t]
	lc.mu.RUnlock()
	if ok {
		return l
	}

	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	l = &ComponentLayout{Type: st, Name: st.String(), Fields: lc.Fields(st)}
	for _, f := range l.Fields {
		if f.Kind.Editable() {
			l.Editable++
		}
	}

	lc.mu.Lock()
	lc.layouts[t] = l
	lc.mu.Unlock()
	return l
}

// Fields lists the exported fields of struct type t, leaving out the
// embedded ComponentBase. Other types have no fields.
func (lc *LayoutCache) Fields(t reflect.Type) []FieldInfo {
	lc.mu.RLock()
	fields, ok := lc.fields[t]
	lc.mu.RUnlock()
	if ok {
		return fields
	}

	fields = describe(t)

	lc.mu.Lock()
	lc.fields[t] = fields
	lc.mu.Unlock()
	return fields
}

func describe(t reflect.Type) []FieldInfo {
	if t.Kind() != reflect.Struct {
		return nil
	}
	var fields []FieldInfo
	for _, sf := range reflect.VisibleFields(t) {
		if len(sf.Index) > 1 || !sf.IsExported() || sf.Type == componentBaseType {
			continue
		}
		ft := sf.Type
		pointer := ft.Kind() == reflect.Pointer
		if pointer {
			ft = ft.Elem()
		}
		fields = append(fields, FieldInfo{
			Name:    sf.Name,
			Index:   sf.Index,
			Type:    ft,
			Kind:    kindOf(ft),
			Pointer: pointer,
		})
	}
	return fields
}

func kindOf(t reflect.Type) FieldKind {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return FieldInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return FieldUint
	case reflect.Float32, reflect.Float64:
		return FieldFloat
	case reflect.Bool:
		return FieldBool
	case reflect.String:
		return FieldString
	case reflect.Struct:
		return FieldStruct
	case reflect.Array:
		return FieldArray
	case reflect.Slice:
		return FieldSlice
	case reflect.Map:
		return FieldMap
	}
	return FieldOther
}

// Value resolves f on the struct value v, following a non-nil pointer. ok
// is false for a nil pointer.
func (f FieldInfo) Value(v reflect.Value) (reflect.Value, bool) {
	fv := v.FieldByIndex(f.Index)
	if f.Pointer {
		if fv.IsNil() {
			return fv, false
		}
		fv = fv.Elem()
	}
	return fv, true
}

var layouts = NewLayoutCache()
