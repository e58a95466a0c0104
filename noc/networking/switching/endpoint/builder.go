package endpoint

import (
	"container/list"
	"fmt"

	"github.com/sarchlab/rubynoc/noc/messaging"
	"github.com/sarchlab/rubynoc/sim"
)

// Builder can help building network interfaces.
type Builder struct {
	engine                   sim.Engine
	numInputChannels         int
	numOutputChannels        int
	messageSizeMultiplier    int
	broadcastScaling         int
	flitPayloadUnits         int
	vnetClassifier           func(messaging.NetworkMessage) int
	networkPortBufferSize    int
	devicePorts              []sim.Port
}

// MakeBuilder creates a new Builder with default configurations, matching
// gem5 Ruby's Throttle.cc defaults (MESSAGE_SIZE_MULTIPLIER=1000,
// BROADCAST_SCALING=1).
func MakeBuilder() Builder {
	return Builder{
		messageSizeMultiplier: 1000,
		broadcastScaling:      1,
		flitPayloadUnits:      1000,
		networkPortBufferSize: 4,
		numInputChannels:      1,
		numOutputChannels:     1,
	}
}

// WithEngine sets the engine of the network interface to build.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithNumInputChannels sets the number of input channels of the network
// interface to build.
func (b Builder) WithNumInputChannels(num int) Builder {
	b.numInputChannels = num
	return b
}

// WithNumOutputChannels sets the number of output channels of the network
// interface to build.
func (b Builder) WithNumOutputChannels(num int) Builder {
	b.numOutputChannels = num
	return b
}

// WithFlitPayloadUnits sets the number of size-tag units that fit in one
// flit (analogous to the teacher's flit byte size, but expressed in the
// same unit system as MessageSizeType.IntOf).
func (b Builder) WithFlitPayloadUnits(n int) Builder {
	b.flitPayloadUnits = n
	return b
}

// WithMessageSizeMultiplier sets the multiplier applied to a message's
// IntOf(size tag) before it is divided into flits (Throttle.cc's
// MESSAGE_SIZE_MULTIPLIER).
func (b Builder) WithMessageSizeMultiplier(n int) Builder {
	b.messageSizeMultiplier = n
	return b
}

// WithBroadcastScaling sets the extra multiplier applied when a message's
// NetDest is a full broadcast (Throttle.cc's BROADCAST_SCALING).
func (b Builder) WithBroadcastScaling(n int) Builder {
	b.broadcastScaling = n
	return b
}

// WithVNetClassifier sets the function used to assign an outgoing message
// to a virtual network. Defaults to always returning VNet 0.
func (b Builder) WithVNetClassifier(f func(messaging.NetworkMessage) int) Builder {
	b.vnetClassifier = f
	return b
}

// WithNetworkPortBufferSize sets the network port buffer size of the
// network interface.
func (b Builder) WithNetworkPortBufferSize(n int) Builder {
	b.networkPortBufferSize = n
	return b
}

// WithDevicePorts sets a list of ports that communicate directly through
// the network interface.
func (b Builder) WithDevicePorts(ports []sim.Port) Builder {
	b.devicePorts = ports
	return b
}

// Build creates a new network interface.
func (b Builder) Build(name string) *Comp {
	b.engineMustBeGiven()
	b.flitPayloadUnitsMustNotBeZero()

	ep := &Comp{}
	ep.TickingComponent = sim.NewTickingComponent(name, b.engine, ep)
	ep.flitPayloadUnits = b.flitPayloadUnits
	ep.messageSizeMultiplier = b.messageSizeMultiplier
	ep.broadcastScaling = b.broadcastScaling
	ep.vnetClassifier = b.vnetClassifier

	ep.numInputChannels = b.numInputChannels
	ep.numOutputChannels = b.numOutputChannels

	ep.assemblingMsgs = list.New()
	ep.assemblingMsgTable = make(map[string]*list.Element)

	ep.NetworkPort = sim.NewPort(
		ep, b.networkPortBufferSize, b.networkPortBufferSize,
		fmt.Sprintf("%s.NetworkPort", name))

	for _, dp := range b.devicePorts {
		ep.PlugIn(dp)
	}

	return ep
}

func (b Builder) engineMustBeGiven() {
	if b.engine == nil {
		panic("engine is not given")
	}
}

func (b Builder) flitPayloadUnitsMustNotBeZero() {
	if b.flitPayloadUnits == 0 {
		panic("flit payload units must be given")
	}
}
