// Package topology builds the static link graph between routers and
// network interfaces (spec component F, spec.md §4.1 "Link-making", §4.2
// "Topology"). A Topology is assembled through AddRouter/AddEndpoint/
// MakeInternalLink/MakeInLink/MakeOutLink calls and then frozen with
// Finalize; this core never supports mutating link structure once a
// simulation is running (spec.md Design Notes "Reconfiguration" — every
// method below rejects a call made after Finalize with
// simerr.ReconfigurationUnsupported rather than silently applying it).
package topology

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"

	"github.com/sarchlab/rubynoc/noc/messaging"
	"github.com/sarchlab/rubynoc/noc/networking/arbitration"
	"github.com/sarchlab/rubynoc/noc/networking/routing"
	"github.com/sarchlab/rubynoc/noc/networking/switching/endpoint"
	"github.com/sarchlab/rubynoc/noc/networking/switching/switches"
	"github.com/sarchlab/rubynoc/noc/simerr"
	"github.com/sarchlab/rubynoc/noc/wiring"
	"github.com/sarchlab/rubynoc/sim"
)

type routerHandle struct {
	comp  *switches.Comp
	table *routing.Table
}

// Topology owns every router and network interface in a network, and the
// links between them.
type Topology struct {
	engine sim.Engine

	routers   map[string]*routerHandle
	endpoints map[string]*endpoint.Comp
	finalized bool
}

// New creates an empty topology driven by engine.
func New(engine sim.Engine) *Topology {
	return &Topology{
		engine:    engine,
		routers:   make(map[string]*routerHandle),
		endpoints: make(map[string]*endpoint.Comp),
	}
}

// Finalize freezes the topology. Every Add*/Make*Link call made after
// Finalize fails with simerr.ReconfigurationUnsupported.
func (t *Topology) Finalize() {
	t.finalized = true
}

// Router looks up a previously added router by name.
func (t *Topology) Router(name string) (*switches.Comp, bool) {
	h, ok := t.routers[name]
	if !ok {
		return nil, false
	}

	return h.comp, true
}

// RouterNames returns every router's name in sorted order, for
// deterministic topology/config printing. Router names live in a plain
// map, so maps.Keys (the same helper ITI-mrnes's desc-topo.go uses to
// iterate its own device/interface maps deterministically) plus a sort
// pass is what keeps repeated PrintConfig output stable.
func (t *Topology) RouterNames() []string {
	names := maps.Keys(t.routers)
	sort.Strings(names)

	return names
}

// EndpointNames returns every network interface's name in sorted order,
// for the same reason RouterNames does.
func (t *Topology) EndpointNames() []string {
	names := maps.Keys(t.endpoints)
	sort.Strings(names)

	return names
}

// Endpoint looks up a previously added network interface by name.
func (t *Topology) Endpoint(name string) (*endpoint.Comp, bool) {
	ep, ok := t.endpoints[name]
	return ep, ok
}

// AddRouter creates a new router (Garnet switch) with its own routing
// table and round-robin arbiter.
func (t *Topology) AddRouter(name string) (*switches.Comp, error) {
	if t.finalized {
		return nil, simerr.NewReconfigurationUnsupported(
			"cannot add router " + name + ": topology is already finalized")
	}

	if _, exists := t.routers[name]; exists {
		return nil, simerr.NewInvalidArgument(
			fmt.Sprintf("router %q already exists", name))
	}

	rt := routing.NewTable()
	r := switches.MakeBuilder().
		WithEngine(t.engine).
		WithRoutingTable(rt).
		WithArbiter(arbitration.NewRoundRobinArbiter()).
		Build(name)

	t.routers[name] = &routerHandle{comp: r, table: rt}

	return r, nil
}

// AddEndpoint creates a new network interface with the given device ports
// attached.
func (t *Topology) AddEndpoint(name string, devicePorts []sim.Port) (*endpoint.Comp, error) {
	if t.finalized {
		return nil, simerr.NewReconfigurationUnsupported(
			"cannot add endpoint " + name + ": topology is already finalized")
	}

	if _, exists := t.endpoints[name]; exists {
		return nil, simerr.NewInvalidArgument(
			fmt.Sprintf("endpoint %q already exists", name))
	}

	ep := endpoint.MakeBuilder().
		WithEngine(t.engine).
		WithDevicePorts(devicePorts).
		Build(name)

	t.endpoints[name] = ep

	return ep, nil
}

// wirePair creates two wiring ports named after their owning components and
// joins them with a single wiring.Wire (spec.md's BasicLink, split into a
// pair of unidirectional wiring.Port/Wire endpoints, grounded on
// noc/wiring/wire.go).
func (t *Topology) wirePair(aComp sim.Component, aName string, bComp sim.Component, bName string) (*wiring.Port, *wiring.Port) {
	portA := wiring.NewPort(aComp, aName, t.engine)
	portB := wiring.NewPort(bComp, bName, t.engine)

	wiring.ConnectWithWire(portA, portB)

	return portA, portB
}

// MakeInternalLink wires two routers together with a single
// bidirectional link (gem5 Ruby's make_internal_link): a new port is
// added to each router's port complex, and dest/reverseDest are installed
// on each side's routing table at the given weight.
func (t *Topology) MakeInternalLink(
	srcName, dstName string,
	dest, reverseDest messaging.NetDest,
	weight, latency, numChannels int,
) error {
	if t.finalized {
		return simerr.NewReconfigurationUnsupported(
			"cannot add a link: topology is already finalized")
	}

	src, ok := t.routers[srcName]
	if !ok {
		return simerr.NewInvalidArgument(fmt.Sprintf("unknown router %q", srcName))
	}

	dst, ok := t.routers[dstName]
	if !ok {
		return simerr.NewInvalidArgument(fmt.Sprintf("unknown router %q", dstName))
	}

	srcPortIdx := src.comp.NumPorts()
	dstPortIdx := dst.comp.NumPorts()

	linkName := fmt.Sprintf("%s-%s", srcName, dstName)
	srcPort, dstPort := t.wirePair(
		src.comp, linkName+".Src", dst.comp, linkName+".Dst")

	switches.MakeSwitchPortAdder(src.comp).
		WithPorts(srcPort, dstPort).
		WithLatency(latency).
		WithNumInputChannel(numChannels).
		WithNumOutputChannel(numChannels).
		AddPort()

	switches.MakeSwitchPortAdder(dst.comp).
		WithPorts(dstPort, srcPort).
		WithLatency(latency).
		WithNumInputChannel(numChannels).
		WithNumOutputChannel(numChannels).
		AddPort()

	src.table.AddRoute(srcPortIdx, dest, weight)
	dst.table.AddRoute(dstPortIdx, reverseDest, weight)

	return nil
}

// MakeOutLink wires a router to the network interface of the node it
// hosts (gem5 Ruby's make_out_link): flits destined for dest leave the
// router here on their way to the device.
func (t *Topology) MakeOutLink(
	routerName, endpointName string,
	dest messaging.NetDest,
	weight, latency, numChannels int,
) error {
	if t.finalized {
		return simerr.NewReconfigurationUnsupported(
			"cannot add a link: topology is already finalized")
	}

	r, ok := t.routers[routerName]
	if !ok {
		return simerr.NewInvalidArgument(fmt.Sprintf("unknown router %q", routerName))
	}

	ep, ok := t.endpoints[endpointName]
	if !ok {
		return simerr.NewInvalidArgument(fmt.Sprintf("unknown endpoint %q", endpointName))
	}

	routerPortIdx := r.comp.NumPorts()

	linkName := fmt.Sprintf("%s-%s", routerName, endpointName)
	routerPort, epPort := t.wirePair(
		r.comp, linkName+".Router", ep, linkName+".NI")

	switches.MakeSwitchPortAdder(r.comp).
		WithPorts(routerPort, epPort).
		WithLatency(latency).
		WithNumInputChannel(numChannels).
		WithNumOutputChannel(numChannels).
		AddPort()

	ep.NetworkPort = epPort
	ep.DefaultSwitchDst = routerPort

	r.table.AddRoute(routerPortIdx, dest, weight)

	return nil
}

// MakeInLink wires a network interface to the router that accepts its
// outgoing traffic (gem5 Ruby's make_in_link). In this core, a node's
// in-link and out-link share the same physical wire (the NI and its
// router exchange flits over one bidirectional port pair), so MakeInLink
// simply confirms the endpoint already has a route into the fabric rather
// than allocating a second link.
func (t *Topology) MakeInLink(routerName, endpointName string) error {
	if t.finalized {
		return simerr.NewReconfigurationUnsupported(
			"cannot add a link: topology is already finalized")
	}

	ep, ok := t.endpoints[endpointName]
	if !ok {
		return simerr.NewInvalidArgument(fmt.Sprintf("unknown endpoint %q", endpointName))
	}

	if ep.NetworkPort == nil {
		return simerr.NewContractViolation(fmt.Sprintf(
			"endpoint %q has no out-link to router %q yet; call MakeOutLink first",
			endpointName, routerName))
	}

	return nil
}
