package vdom

// Event is passed to handlers by hosts that dispatch DOM-style events.
type Event struct {
	Type          string
	Target        string // ID of the element the event originated on
	CurrentTarget string // ID of the element whose handler is running
	Value         any    // Current value for input-like events

	defaultPrevented   bool
	propagationStopped bool
}

// NewEvent creates an event of the given type carrying value.
func NewEvent(typ string, value any) *Event {
	return &Event{Type: typ, Value: value}
}

// PreventDefault marks the default action as cancelled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// StopPropagation stops the event from reaching ancestor handlers.
func (e *Event) StopPropagation() { e.propagationStopped = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool { return e.propagationStopped }

// IsSelf reports whether the event originated on the element handling it.
// Events without target information count as self.
func (e *Event) IsSelf() bool {
	return e.Target == "" || e.CurrentTarget == "" || e.Target == e.CurrentTarget
}

// EventValue returns the Value carried by an event.
func (e *Event) EventValue() any { return e.Value }
