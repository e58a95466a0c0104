package sim

import (
	"sync"
)

// TickEvent is a generic event that almost all components use to update
// their status once per cycle.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a new TickEvent.
func MakeTickEvent(handler Handler, time Cycle) TickEvent {
	evt := TickEvent{}
	evt.ID = GetIDGenerator().Generate()
	evt.handler = handler
	evt.time = time

	return evt
}

// A Ticker is an object that updates its state on every tick.
type Ticker interface {
	Tick() bool
}

// TickScheduler schedules tick events one cycle at a time. Unlike Akita's
// multi-frequency-domain TickScheduler, every consumer in this network core
// shares a single cycle clock (spec section 5: "Simulated time is the
// coordinating clock"), so there is no Freq to convert through.
type TickScheduler struct {
	lock      sync.Mutex
	handler   Handler
	Engine    Engine
	secondary bool

	nextTickTime Cycle
}

// NewTickScheduler creates a scheduler for tick events.
func NewTickScheduler(handler Handler, engine Engine) *TickScheduler {
	ticker := new(TickScheduler)

	ticker.handler = handler
	ticker.Engine = engine
	ticker.nextTickTime = -1 // guarantees the first tick gets scheduled

	return ticker
}

// NewSecondaryTickScheduler creates a scheduler that always schedules
// secondary tick events.
func NewSecondaryTickScheduler(handler Handler, engine Engine) *TickScheduler {
	ticker := new(TickScheduler)

	ticker.handler = handler
	ticker.Engine = engine
	ticker.secondary = true
	ticker.nextTickTime = -1

	return ticker
}

// TickNow schedules a Tick event at the current cycle.
func (t *TickScheduler) TickNow() {
	t.lock.Lock()
	defer t.lock.Unlock()

	time := t.CurrentTime()
	if t.nextTickTime >= time {
		return
	}

	t.scheduleTickAt(time)
}

// TickLater schedules a tick event at the cycle after the current one.
func (t *TickScheduler) TickLater() {
	t.lock.Lock()
	defer t.lock.Unlock()

	time := t.CurrentTime() + 1
	if t.nextTickTime >= time {
		return
	}

	t.scheduleTickAt(time)
}

func (t *TickScheduler) scheduleTickAt(time Cycle) {
	t.nextTickTime = time
	tick := MakeTickEvent(t.handler, time)

	if t.secondary {
		tick.secondary = true
	}

	t.Engine.Schedule(tick)
}

// CurrentTime returns the engine's current cycle.
func (t *TickScheduler) CurrentTime() Cycle {
	return t.Engine.CurrentTime()
}

// TickingComponent is a component that updates its state from cycle to
// cycle. A programmer only needs to implement a Tick function; self-
// rescheduling is handled here (spec section 5: a consumer runs to
// completion for the cycle, then either self-schedules at now+1 or awaits
// external scheduling).
type TickingComponent struct {
	*ComponentBase
	*TickScheduler

	ticker Ticker
}

// NotifyPortFree triggers the TickingComponent to start ticking again.
func (c *TickingComponent) NotifyPortFree(_ Port) {
	c.TickLater()
}

// NotifyRecv triggers the TickingComponent to start ticking again.
func (c *TickingComponent) NotifyRecv(_ Port) {
	c.TickLater()
}

// Handle triggers the tick function of the TickingComponent.
func (c *TickingComponent) Handle(_ Event) error {
	madeProgress := c.ticker.Tick()
	if madeProgress {
		c.TickLater()
	}

	return nil
}

// NewTickingComponent creates a new ticking component.
func NewTickingComponent(name string, engine Engine, ticker Ticker) *TickingComponent {
	tc := new(TickingComponent)
	tc.TickScheduler = NewTickScheduler(tc, engine)
	tc.ComponentBase = NewComponentBase(name)
	tc.ticker = ticker

	return tc
}

// NewSecondaryTickingComponent creates a new ticking component whose tick
// events are always handled after same-cycle primary events.
func NewSecondaryTickingComponent(name string, engine Engine, ticker Ticker) *TickingComponent {
	tc := new(TickingComponent)
	tc.TickScheduler = NewSecondaryTickScheduler(tc, engine)
	tc.ComponentBase = NewComponentBase(name)
	tc.ticker = ticker

	return tc
}
