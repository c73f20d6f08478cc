package renderer

import "fmt"

// ResourceState is the usage state tracked for a back buffer or depth surface.
type ResourceState int

const (
	// StatePresent is the state a back buffer must be in to be presented.
	StatePresent ResourceState = iota
	// StateRenderTarget is the state a back buffer must be in to be drawn to.
	StateRenderTarget
	// StateDepthWrite is the state the depth surface stays in for its whole lifetime.
	StateDepthWrite
)

func (s ResourceState) String() string {
	switch s {
	case StatePresent:
		return "PRESENT"
	case StateRenderTarget:
		return "RENDER_TARGET"
	case StateDepthWrite:
		return "DEPTH_WRITE"
	default:
		return fmt.Sprintf("ResourceState(%d)", int(s))
	}
}

// legalTransitions lists every before/after pair a back buffer may take.
var legalTransitions = map[ResourceState]ResourceState{
	StatePresent:      StateRenderTarget,
	StateRenderTarget: StatePresent,
}

// TransitionError is the panic value for an illegal resource state transition.
type TransitionError struct {
	Resource string
	Current  ResourceState
	Before   ResourceState
	After    ResourceState
}

func (e *TransitionError) Error() string {
	if e.Current != e.Before {
		return fmt.Sprintf("renderer: %s is %s, not %s, for transition to %s", e.Resource, e.Current, e.Before, e.After)
	}
	return fmt.Sprintf("renderer: illegal transition of %s from %s to %s", e.Resource, e.Before, e.After)
}

// checkTransition returns a TransitionError if a resource in state current cannot move from
// before to after.
func checkTransition(resource string, current, before, after ResourceState) *TransitionError {
	if current != before {
		return &TransitionError{Resource: resource, Current: current, Before: before, After: after}
	}
	if next, ok := legalTransitions[before]; !ok || next != after {
		return &TransitionError{Resource: resource, Current: current, Before: before, After: after}
	}
	return nil
}

// FrameOrderError is the panic value for BeginFrame/EndFrame called out of order, or for
// recording outside a frame.
type FrameOrderError struct {
	Op string
}

func (e *FrameOrderError) Error() string {
	return fmt.Sprintf("renderer: %s called out of frame order", e.Op)
}
