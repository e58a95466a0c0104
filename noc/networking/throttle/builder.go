package throttle

import (
	"github.com/sarchlab/rubynoc/noc/messaging"
	"github.com/sarchlab/rubynoc/sim"
)

// Builder constructs a Comp with Throttle.cc's own defaults
// (MESSAGE_SIZE_MULTIPLIER=1000, BROADCAST_SCALING=1).
type Builder struct {
	engine sim.Engine

	node int
	sID  int

	linkBandwidth         int
	linkLatency           int
	messageSizeMultiplier int
	broadcastScaling      int

	enableBashPredictor   bool
	bashAdaptiveThreshold float64
}

// MakeBuilder creates a Builder with Throttle.cc's defaults.
func MakeBuilder() Builder {
	return Builder{
		linkBandwidth:         16,
		linkLatency:           1,
		messageSizeMultiplier: 1000,
		broadcastScaling:      1,
		enableBashPredictor:   true,
		bashAdaptiveThreshold: 0.75,
	}
}

// WithEngine sets the engine the throttle schedules wakeups against.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithNode sets the node ID the throttle belongs to, for naming only.
func (b Builder) WithNode(node int) Builder {
	b.node = node
	return b
}

// WithSourceID sets the source switch ID the throttle belongs to
// (Throttle.cc's m_sID), for naming only.
func (b Builder) WithSourceID(sID int) Builder {
	b.sID = sID
	return b
}

// WithLinkBandwidth sets the number of bandwidth units this throttle can
// move per cycle (Throttle.cc's link_bandwidth_multiplier).
func (b Builder) WithLinkBandwidth(units int) Builder {
	b.linkBandwidth = units
	return b
}

// WithLinkLatency sets the number of cycles a message spends in flight
// once it leaves the input buffer (Throttle.cc's m_link_latency).
func (b Builder) WithLinkLatency(cycles int) Builder {
	b.linkLatency = cycles
	return b
}

// WithMessageSizeMultiplier sets Throttle.cc's MESSAGE_SIZE_MULTIPLIER.
func (b Builder) WithMessageSizeMultiplier(n int) Builder {
	b.messageSizeMultiplier = n
	return b
}

// WithBroadcastScaling sets Throttle.cc's BROADCAST_SCALING.
func (b Builder) WithBroadcastScaling(n int) Builder {
	b.broadcastScaling = n
	return b
}

// WithBashPredictor enables or disables the bash bandwidth predictor block,
// and sets the utilization threshold it adapts against.
func (b Builder) WithBashPredictor(enabled bool, adaptiveThreshold float64) Builder {
	b.enableBashPredictor = enabled
	b.bashAdaptiveThreshold = adaptiveThreshold
	return b
}

// Build creates the throttle. Virtual networks are attached afterwards via
// AddVirtualNetwork.
func (b Builder) Build(name string) *Comp {
	b.engineMustBeGiven()
	b.linkBandwidthMustBePositive()

	c := &Comp{
		name:                  name,
		engine:                b.engine,
		node:                  b.node,
		sID:                   b.sID,
		linkBandwidth:         b.linkBandwidth,
		linkLatency:           b.linkLatency,
		messageSizeMultiplier: b.messageSizeMultiplier,
		broadcastScaling:      b.broadcastScaling,
		EnableBashPredictor:   b.enableBashPredictor,
		BashAdaptiveThreshold: b.bashAdaptiveThreshold,
		bashCounter:           highRange,
	}

	c.messageCounters = make([][]int, messaging.NumMessageSizeTypes())
	c.rubyStart = b.engine.CurrentTime()
	c.lastBandwidthSample = c.rubyStart

	return c
}

func (b Builder) engineMustBeGiven() {
	if b.engine == nil {
		panic("throttle requires an engine to operate")
	}
}

func (b Builder) linkBandwidthMustBePositive() {
	if b.linkBandwidth <= 0 {
		panic("throttle requires a positive link bandwidth")
	}
}
