// Package throttle implements the per-link bandwidth scheduler (spec
// component D): it drains per-virtual-network input MessageBuffers into
// their matching output MessageBuffers at a fixed units-per-cycle rate,
// line for line following gem5 Ruby's Throttle.cc wakeup() algorithm
// (priority-inversion scheduling, the bash bandwidth predictor, and
// broadcast admission).
package throttle

import (
	"fmt"

	"github.com/sarchlab/rubynoc/noc/messaging"
	"github.com/sarchlab/rubynoc/queueing"
	"github.com/sarchlab/rubynoc/sim"
)

// The constants below are Throttle.cc's own tuning constants, carried over
// verbatim.
const (
	highRange            = 256
	adjustInterval       = 50000
	priioritySwitchLimit = 128
)

// vnetState tracks the in-flight message on one virtual network: how many
// bandwidth units of the message most recently moved from in to out are
// still unpaid for.
type vnetState struct {
	in             *queueing.MessageBuffer
	out            *queueing.MessageBuffer
	unitsRemaining int
}

// Comp is a Throttle: the bandwidth gate gem5 Ruby places on every link, one
// per direction per link (spec §4.4).
type Comp struct {
	sim.HookableBase

	name   string
	engine sim.Engine

	node int
	sID  int

	linkBandwidth         int
	linkLatency           int
	messageSizeMultiplier int
	broadcastScaling      int

	vnets []vnetState

	wakeupsWoSwitch int

	// Bash bandwidth predictor state (Throttle.cc's m_bash_counter and
	// friends). EnableBashPredictor gates the whole block; see DESIGN.md's
	// Open Question decision on why this is a flag rather than removed
	// code.
	EnableBashPredictor   bool
	BashAdaptiveThreshold float64
	bashCounter           int
	bandwidthSinceSample  int
	lastBandwidthSample   sim.Cycle

	linksUtilized float64
	rubyStart     sim.Cycle

	messageCounters [][]int // [sizeTag][vnet]
}

// Name returns the throttle's name.
func (c *Comp) Name() string { return c.name }

// Wakeup satisfies queueing.Consumer: an input MessageBuffer calls it when
// an enqueued message reaches its arrival cycle. The throttle's own
// next-cycle wakeup goes through Handle instead.
func (c *Comp) Wakeup() {
	c.run()
}

// Handle satisfies sim.Handler, letting the throttle schedule its own
// next-cycle wakeup directly (Throttle.cc's
// g_eventQueue_ptr->scheduleEvent(this, 1)).
func (c *Comp) Handle(_ sim.Event) error {
	c.run()
	return nil
}

// AddVirtualNetwork attaches one more (in, out) MessageBuffer pair to the
// throttle, in virtual-network order (Throttle.cc's addVirtualNetwork).
func (c *Comp) AddVirtualNetwork(in, out *queueing.MessageBuffer) {
	in.SetConsumer(c)

	c.vnets = append(c.vnets, vnetState{in: in, out: out})

	for sizeTag := range c.messageCounters {
		c.messageCounters[sizeTag] = append(c.messageCounters[sizeTag], 0)
	}
}

// Clear empties every virtual network's buffers (Throttle.cc's clear()).
func (c *Comp) Clear() {
	for _, v := range c.vnets {
		v.in.Clear()
		v.out.Clear()
	}
}

// run is Throttle::wakeup(), unchanged in algorithm shape from the
// original: for each cycle this throttle is woken, it walks its virtual
// networks in a priority order that inverts every priioritySwitchLimit
// wakeups (to avoid starving the lowest-priority vnet), draining units of
// bandwidth into whichever vnet's head message is ready.
func (c *Comp) run() {
	now := c.engine.CurrentTime()
	bwRemaining := c.linkBandwidth

	c.wakeupsWoSwitch++
	highestPrioVnet := len(c.vnets) - 1
	lowestPrioVnet := 0
	counter := 1

	if c.wakeupsWoSwitch > priioritySwitchLimit {
		c.wakeupsWoSwitch = 0
		highestPrioVnet = 0
		lowestPrioVnet = len(c.vnets) - 1
		counter = -1
	}

	scheduleWakeup := false

	for vnet := highestPrioVnet; (vnet * counter) >= (counter * lowestPrioVnet); vnet -= counter {
		v := &c.vnets[vnet]

		for bwRemaining > 0 &&
			(v.in.IsReady(now) || v.unitsRemaining > 0) &&
			v.out.AreNSlotsAvailable(1) {

			if v.unitsRemaining == 0 && v.in.IsReady(now) {
				msg := v.in.PeekMsg()
				netMsg := msg.(messaging.NetworkMessage)
				v.unitsRemaining += messaging.NetworkMessageToSize(
					netMsg, c.messageSizeMultiplier, c.broadcastScaling)

				v.out.EnqueueMsg(v.in.DequeueMsg(), now, c.linkLatency)

				c.messageCounters[netMsg.MessageSize()][vnet]++
			}

			diff := v.unitsRemaining - bwRemaining
			v.unitsRemaining = max(0, diff)
			bwRemaining = max(0, -diff)
		}

		if bwRemaining > 0 &&
			(v.in.IsReady(now) || v.unitsRemaining > 0) &&
			!v.out.AreNSlotsAvailable(1) {
			scheduleWakeup = true
		}
	}

	ratio := 1.0 - float64(bwRemaining)/float64(c.linkBandwidth)
	c.linksUtilized += ratio

	bwUsed := c.linkBandwidth - bwRemaining
	c.bandwidthSinceSample += bwUsed

	if c.EnableBashPredictor {
		c.runBashPredictor(now)
	}

	if bwRemaining > 0 && !scheduleWakeup {
		return
	}

	c.engine.Schedule(sim.NewEventBase(now+1, c))
}

// runBashPredictor is Throttle.cc's bash-predictor block, gated behind
// EnableBashPredictor per the Open Question decision recorded in
// DESIGN.md rather than removed outright.
func (c *Comp) runBashPredictor(now sim.Cycle) {
	for int(now-c.lastBandwidthSample) > adjustInterval {
		utilization := float64(c.bandwidthSinceSample) /
			float64(adjustInterval*c.linkBandwidth)

		if utilization > c.BashAdaptiveThreshold {
			c.bashCounter++
		} else {
			c.bashCounter--
		}

		c.bashCounter = min(highRange, c.bashCounter)
		c.bashCounter = max(0, c.bashCounter)

		c.lastBandwidthSample += adjustInterval
		c.bandwidthSinceSample = 0
	}
}

// BroadcastBandwidthAvailable reports whether the bash predictor currently
// believes there is enough spare bandwidth to admit a broadcast message,
// given a caller-supplied random draw (Throttle.cc's
// broadcastBandwidthAvailable). When the bash predictor is disabled this
// always returns true: admission control by prediction is opt-in.
func (c *Comp) BroadcastBandwidthAvailable(rnd int) bool {
	if !c.EnableBashPredictor {
		return true
	}

	return !(c.bashCounter > (highRange/4 + rnd%(highRange/2)))
}

// Utilization returns, as a percentage, the mean fraction of link
// bandwidth this throttle used per cycle since the last ClearStats call:
// each wakeup adds the fraction of its bandwidth it spent, and the sum is
// divided by the elapsed cycles (Throttle.cc's getUtilization).
func (c *Comp) Utilization() float64 {
	elapsed := c.engine.CurrentTime() - c.rubyStart
	if elapsed <= 0 {
		return 0
	}

	return 100.0 * c.linksUtilized / float64(elapsed)
}

// ClearStats resets the utilization sample window (Throttle.cc's
// clearStats).
func (c *Comp) ClearStats() {
	c.rubyStart = c.engine.CurrentTime()
	c.linksUtilized = 0

	for i := range c.messageCounters {
		for j := range c.messageCounters[i] {
			c.messageCounters[i][j] = 0
		}
	}
}

// MessageCount returns how many messages of sizeTag have crossed virtual
// network vnet since the last ClearStats call.
func (c *Comp) MessageCount(sizeTag messaging.MessageSizeType, vnet int) int {
	return c.messageCounters[sizeTag][vnet]
}

// PrintStats writes a one-line utilization summary in the same format as
// Throttle.cc's printStats.
func (c *Comp) PrintStats() string {
	return fmt.Sprintf("utilized_percent: %g", c.Utilization())
}
