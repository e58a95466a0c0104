package switches

import (
	"github.com/sarchlab/rubynoc/noc/networking/arbitration"
	"github.com/sarchlab/rubynoc/noc/networking/routing"
	"github.com/sarchlab/rubynoc/sim"
)

// Builder can help building switches.
type Builder struct {
	engine       sim.Engine
	routingTable *routing.Table
	arbiter      arbitration.Arbiter
}

// MakeBuilder creates a default builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithEngine sets the engine that the switch to build uses.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithArbiter sets the arbiter to be used by the switch to build.
func (b Builder) WithArbiter(arbiter arbitration.Arbiter) Builder {
	b.arbiter = arbiter
	return b
}

// WithRoutingTable sets the routing table to be used by the switch to build.
func (b Builder) WithRoutingTable(rt *routing.Table) Builder {
	b.routingTable = rt
	return b
}

// Build creates a new switch.
func (b Builder) Build(name string) *Comp {
	b.engineMustBeGiven()
	b.routingTableMustBeGiven()
	b.arbiterMustBeGiven()

	s := &Comp{}
	s.TickingComponent = sim.NewTickingComponent(name, b.engine, s)
	s.routingTable = b.routingTable
	s.arbiter = b.arbiter
	s.portToComplexMapping = make(map[sim.Port]portComplex)

	return s
}

func (b Builder) engineMustBeGiven() {
	if b.engine == nil {
		panic("switch requires an engine to operate")
	}
}

func (b Builder) routingTableMustBeGiven() {
	if b.routingTable == nil {
		panic("switch requires a routing table to operate")
	}
}

func (b Builder) arbiterMustBeGiven() {
	if b.arbiter == nil {
		panic("switch requires an arbiter to operate")
	}
}
