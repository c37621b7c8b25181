package engine

import (
	"errors"
	"fmt"
)

var (
	ErrClosed            = errors.New("engine: game closed")
	ErrActorDestroyed    = errors.New("engine: actor destroyed")
	ErrComponentNotFound = errors.New("engine: component not found")
	ErrNotAttached       = errors.New("engine: component not attached to this actor")
)

// DesyncError reports that a phase registry referenced something that no
// longer exists: a component index without a component, or an actor handle
// without an actor. It means the bookkeeping invariants were broken and the
// frame was abandoned.
type DesyncError struct {
	Phase     EventType
	Actor     Entity
	Component ComponentID
	Reason    string
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("engine: %s phase desync on actor %s component %d: %s",
		phaseName(e.Phase), e.Actor, e.Component, e.Reason)
}
