package sim

// Cycle is a point in simulated time, measured in whole clock cycles. Unlike
// Akita's continuous VTimeInSec, this network core only ever reasons about
// integer cycle counts (spec section 3, "Time").
type Cycle int64

// An Event is something going to happen in the future.
type Event interface {
	// Time returns the cycle at which the event should happen.
	Time() Cycle

	// Handler returns the handler that should handle the event.
	Handler() Handler

	// IsSecondary tells if the event is a secondary event. Secondary events
	// are handled after all same-cycle primary events are handled.
	IsSecondary() bool
}

// EventBase provides the basic fields and getters for other events.
type EventBase struct {
	ID        string
	time      Cycle
	handler   Handler
	secondary bool
}

// NewEventBase creates a new EventBase.
func NewEventBase(t Cycle, handler Handler) *EventBase {
	e := new(EventBase)
	e.ID = GetIDGenerator().Generate()
	e.time = t
	e.handler = handler

	return e
}

// Time returns the cycle that the event is going to happen.
func (e EventBase) Time() Cycle {
	return e.time
}

// SetHandler sets which handler handles the event.
//
// All components can only schedule events for themselves. The handler in
// this function must be the component that scheduled the event. The only
// exception is the kick-off of the simulation, where the driver schedules
// the first event for each component.
func (e *EventBase) SetHandler(h Handler) {
	e.handler = h
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true if the event is a secondary event.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler defines a domain for the events.
//
// One event is always bound to one Handler: the event can only be scheduled
// by that handler and can only directly modify that handler's state.
type Handler interface {
	Handle(e Event) error
}
