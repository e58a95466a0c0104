package network

import (
	"fmt"

	"github.com/sarchlab/rubynoc/noc/networking/throttle"
	"github.com/sarchlab/rubynoc/noc/simerr"
	"github.com/sarchlab/rubynoc/queueing"
	"github.com/sarchlab/rubynoc/sim"
)

// Queue is what GetToNetQueue/GetFromNetQueue return: the same
// enqueue/dequeue/ready contract as queueing.MessageBuffer (component B),
// plus the instrumentation SimpleNetwork needs to compute
// flits_injected/flits_received/latency without the protocol having to
// report them itself. A Queue is always backed by a real
// *queueing.MessageBuffer; only EnqueueMsg/DequeueMsg are shadowed.
type Queue struct {
	*queueing.MessageBuffer

	net     *SimpleNetwork
	isToNet bool
}

// EnqueueMsg forwards to the underlying buffer, and — for a to_net queue —
// timestamps msg for later latency accounting.
func (q *Queue) EnqueueMsg(msg interface{}, now sim.Cycle, latency int) {
	if q.isToNet {
		q.net.recordInjection(msg, now)
	}

	q.MessageBuffer.EnqueueMsg(msg, now, latency)
}

// DequeueMsg forwards to the underlying buffer, and — for a from_net
// queue — finishes latency accounting for msg if it was tracked.
func (q *Queue) DequeueMsg() interface{} {
	msg := q.MessageBuffer.DequeueMsg()

	if !q.isToNet && msg != nil {
		q.net.recordDelivery(msg, q.net.engine.CurrentTime())
	}

	return msg
}

// SimpleNetwork is the Network façade over gem5 Ruby's Throttle-based
// "simple network": each configured link gets its own Throttle moving
// messages straight from the source node's to_net buffers into the
// destination node's from_net buffers (spec §4.1/§4.4). The router
// pipeline spec §4.2 calls "deliberately out of scope" for this variant
// is exactly what is absent here — each link is a direct, single-hop
// Throttle, not a routed multi-hop fabric (that is GarnetNetwork's job).
type SimpleNetwork struct {
	engine sim.Engine
	cfg    Config

	toNet   [][]*Queue
	fromNet [][]*Queue

	inUse   []bool
	ordered []bool

	throttles []*throttle.Comp

	rubyStart sim.Cycle

	injectedAt map[interface{}]sim.Cycle

	flitsInjected      uint64
	flitsReceived      uint64
	networkLatencySum  uint64
	queueingLatencySum uint64
	totalLatencySum    uint64
}

// NewSimpleNetwork builds the to_net/from_net queues and one Throttle per
// configured link (spec §4.1's "allocate to_net/from_net for all node,
// vnet" plus "invoke topology link-building").
func NewSimpleNetwork(engine sim.Engine, cfg Config) (*SimpleNetwork, error) {
	if cfg.Nodes <= 0 {
		return nil, simerr.NewInvalidArgument("network requires at least one node")
	}

	if cfg.VirtualNetworks <= 0 {
		return nil, simerr.NewInvalidArgument("network requires at least one virtual network")
	}

	n := &SimpleNetwork{
		engine:     engine,
		cfg:        cfg,
		inUse:      make([]bool, cfg.VirtualNetworks),
		ordered:    make([]bool, cfg.VirtualNetworks),
		injectedAt: make(map[interface{}]sim.Cycle),
		rubyStart:  engine.CurrentTime(),
	}

	n.toNet = make([][]*Queue, cfg.Nodes)
	n.fromNet = make([][]*Queue, cfg.Nodes)

	for node := 0; node < cfg.Nodes; node++ {
		n.toNet[node] = make([]*Queue, cfg.VirtualNetworks)
		n.fromNet[node] = make([]*Queue, cfg.VirtualNetworks)

		for vnet := 0; vnet < cfg.VirtualNetworks; vnet++ {
			n.toNet[node][vnet] = &Queue{
				MessageBuffer: queueing.NewMessageBuffer(
					fmt.Sprintf("ToNet[%d][%d]", node, vnet), engine, 0),
				net:     n,
				isToNet: true,
			}
			n.fromNet[node][vnet] = &Queue{
				MessageBuffer: queueing.NewMessageBuffer(
					fmt.Sprintf("FromNet[%d][%d]", node, vnet), engine, 0),
				net:     n,
				isToNet: false,
			}
		}
	}

	for i, link := range cfg.Links {
		if link.Src < 0 || link.Src >= cfg.Nodes || link.Dst < 0 || link.Dst >= cfg.Nodes {
			return nil, simerr.NewInvalidArgument(fmt.Sprintf(
				"link %d: src/dst node out of range", i))
		}

		th := throttle.MakeBuilder().
			WithEngine(engine).
			WithNode(link.Dst).
			WithSourceID(link.Src).
			WithLinkBandwidth(link.BandwidthMultiplier).
			WithLinkLatency(link.Latency).
			WithBashPredictor(true, cfg.BashBandwidthAdaptiveThreshold).
			Build(fmt.Sprintf("Throttle[%d->%d]", link.Src, link.Dst))

		for vnet := 0; vnet < cfg.VirtualNetworks; vnet++ {
			th.AddVirtualNetwork(
				n.toNet[link.Src][vnet].MessageBuffer,
				n.fromNet[link.Dst][vnet].MessageBuffer)
		}

		n.throttles = append(n.throttles, th)
	}

	return n, nil
}

func (n *SimpleNetwork) nodeMustBeValid(node int) {
	if node < 0 || node >= n.cfg.Nodes {
		panic(simerr.NewInvalidArgument(fmt.Sprintf("node %d out of range", node)))
	}
}

func (n *SimpleNetwork) vnetMustBeValid(vnet int) {
	if vnet < 0 || vnet >= n.cfg.VirtualNetworks {
		panic(simerr.NewInvalidArgument(fmt.Sprintf("vnet %d out of range", vnet)))
	}
}

// GetToNetQueue returns the queue the protocol enqueues outgoing messages
// on for (node, vnet), marking the vnet in_use (and ordered, if
// requested) per spec §4.1. Allocation is monotone: once ordered is set
// for a vnet it is never cleared by a later unordered request.
func (n *SimpleNetwork) GetToNetQueue(node int, ordered bool, vnet int) *Queue {
	n.nodeMustBeValid(node)
	n.vnetMustBeValid(vnet)

	n.inUse[vnet] = true
	if ordered {
		n.ordered[vnet] = true
	}

	return n.toNet[node][vnet]
}

// GetFromNetQueue returns the queue the protocol dequeues delivered
// messages from for (node, vnet), with the same VN-usage bookkeeping as
// GetToNetQueue.
func (n *SimpleNetwork) GetFromNetQueue(node int, ordered bool, vnet int) *Queue {
	n.nodeMustBeValid(node)
	n.vnetMustBeValid(vnet)

	n.inUse[vnet] = true
	if ordered {
		n.ordered[vnet] = true
	}

	return n.fromNet[node][vnet]
}

// Reset clears every queue's contents without tearing down structure
// (spec §3 "Lifecycle"); already-scheduled wakeup events become no-ops
// because the drained buffers report empty.
func (n *SimpleNetwork) Reset() {
	for _, row := range n.toNet {
		for _, q := range row {
			q.Clear()
		}
	}

	for _, row := range n.fromNet {
		for _, q := range row {
			q.Clear()
		}
	}

	for _, th := range n.throttles {
		th.Clear()
	}

	n.injectedAt = make(map[interface{}]sim.Cycle)
}

func (n *SimpleNetwork) recordInjection(msg interface{}, now sim.Cycle) {
	n.injectedAt[msg] = now
	n.flitsInjected++
}

func (n *SimpleNetwork) recordDelivery(msg interface{}, now sim.Cycle) {
	injectedAt, ok := n.injectedAt[msg]
	if !ok {
		return
	}

	delete(n.injectedAt, msg)

	latency := uint64(now - injectedAt)
	n.flitsReceived++
	n.networkLatencySum += latency
	n.totalLatencySum += latency
	// Queueing latency at the source NI is not a distinct phase in this
	// direct to_net-to-Throttle model (see DESIGN.md); it is always 0.
}
