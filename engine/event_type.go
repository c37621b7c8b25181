package engine

import (
	"fmt"
	"strings"
)

// EventType is the set of frame phases a component or actor takes part in.
type EventType uint8

const (
	EventUpdate EventType = 1 << iota
	EventRender
	EventRender2D

	EventNone EventType = 0
	EventAll            = EventUpdate | EventRender | EventRender2D
)

// Phases lists the frame phases in dispatch order.
var Phases = [...]EventType{EventUpdate, EventRender, EventRender2D}

const phaseCount = len(Phases)

// Has reports whether every phase in p is part of m.
func (m EventType) Has(p EventType) bool {
	return p != EventNone && m&p == p
}

func (m EventType) String() string {
	if m == EventNone {
		return "none"
	}

	parts := make([]string, 0, phaseCount)
	for _, p := range Phases {
		if m.Has(p) {
			parts = append(parts, phaseName(p))
		}
	}
	return strings.Join(parts, "|")
}

func phaseName(p EventType) string {
	switch p {
	case EventUpdate:
		return "update"
	case EventRender:
		return "render"
	case EventRender2D:
		return "render2d"
	}
	return fmt.Sprintf("EventType(%d)", uint8(p))
}

// ParseEventType parses masks such as "update|render", "render2d" or "all".
// Both "|" and "," separate phases.
func ParseEventType(s string) (EventType, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "none":
		return EventNone, nil
	case "all":
		return EventAll, nil
	}

	var mask EventType
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		switch strings.TrimSpace(part) {
		case "update":
			mask |= EventUpdate
		case "render":
			mask |= EventRender
		case "render2d":
			mask |= EventRender2D
		default:
			return EventNone, fmt.Errorf("unknown phase %q", part)
		}
	}
	return mask, nil
}
