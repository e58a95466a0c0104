// Package endpoint provides the Garnet-style network interface (spec
// component E): it packetizes protocol messages into flits sized by their
// MessageSizeType tag, injects them into the attached switch, and
// reassembles inbound flits back into messages before delivering them to
// the device ports plugged into it.
package endpoint

import (
	"container/list"
	"fmt"

	"github.com/sarchlab/rubynoc/noc/messaging"
	"github.com/sarchlab/rubynoc/noc/simerr"
	"github.com/sarchlab/rubynoc/noc/tracing"
	"github.com/sarchlab/rubynoc/sim"
)

// protocolMsg is what an endpoint's device ports are expected to carry:
// an ordinary sim.Msg that also declares its NetDest and size tag so the
// endpoint can packetize it (spec §4.3, §3).
type protocolMsg interface {
	sim.Msg
	messaging.NetworkMessage
}

type msgToAssemble struct {
	msg             protocolMsg
	numFlitRequired int
	numFlitArrived  int
}

// Comp is the network interface that sits between a node's device ports
// and the switch fabric.
type Comp struct {
	*sim.TickingComponent

	DevicePorts      []sim.Port
	NetworkPort      sim.Port
	DefaultSwitchDst sim.Port

	numInputChannels      int
	numOutputChannels     int
	messageSizeMultiplier int
	broadcastScaling      int
	flitPayloadUnits      int
	vnetClassifier        func(messaging.NetworkMessage) int

	msgOutBuf   []protocolMsg
	flitsToSend []*messaging.Flit

	assemblingMsgTable map[string]*list.Element
	assemblingMsgs     *list.List
	assembledMsgs      []protocolMsg
}

// PlugIn connects a port to the endpoint.
func (c *Comp) PlugIn(port sim.Port) {
	port.SetConnection(c)
	c.DevicePorts = append(c.DevicePorts, port)
}

// NotifyAvailable triggers the endpoint to continue to tick.
func (c *Comp) NotifyAvailable(_ sim.Port) {
	c.TickLater()
}

// NotifySend is called by a port to notify the connection there are
// messages waiting to be sent.
func (c *Comp) NotifySend() {
	c.TickLater()
}

// Unplug removes the association of a port and an endpoint.
func (c *Comp) Unplug(_ sim.Port) {
	panic(simerr.NewContractViolation("endpoint does not support unplugging ports at runtime"))
}

// Tick updates the endpoint state.
func (c *Comp) Tick() bool {
	madeProgress := false

	madeProgress = c.sendFlitOut() || madeProgress
	madeProgress = c.prepareMsg() || madeProgress
	madeProgress = c.prepareFlits() || madeProgress
	madeProgress = c.tryDeliver() || madeProgress
	madeProgress = c.assemble() || madeProgress
	madeProgress = c.recv() || madeProgress

	return madeProgress
}

func (c *Comp) msgTaskID(msgID string) string {
	return fmt.Sprintf("msg_%s_e2e", msgID)
}

func (c *Comp) flitTaskID(flit *messaging.Flit) string {
	return fmt.Sprintf("%s_e2e", flit.Meta().ID)
}

func (c *Comp) sendFlitOut() bool {
	madeProgress := false

	for i := 0; i < c.numOutputChannels; i++ {
		if len(c.flitsToSend) == 0 {
			return madeProgress
		}

		flit := c.flitsToSend[0]
		err := c.NetworkPort.Send(flit)

		if err == nil {
			c.flitsToSend = c.flitsToSend[1:]

			if len(c.flitsToSend) == 0 {
				for _, p := range c.DevicePorts {
					p.NotifyAvailable()
				}
			}

			madeProgress = true
		}
	}

	return madeProgress
}

func (c *Comp) prepareMsg() bool {
	madeProgress := false

	for i := 0; i < len(c.DevicePorts); i++ {
		port := c.DevicePorts[i]
		if port.PeekOutgoing() == nil {
			continue
		}

		msg := port.RetrieveOutgoing()
		netMsg, ok := msg.(protocolMsg)
		if !ok {
			panic(simerr.NewContractViolation(fmt.Sprintf(
				"%s: message %s on device port does not implement messaging.NetworkMessage",
				c.Name(), msg.Meta().ID)))
		}

		c.msgOutBuf = append(c.msgOutBuf, netMsg)

		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) prepareFlits() bool {
	madeProgress := false

	for {
		if len(c.msgOutBuf) == 0 {
			return madeProgress
		}

		msg := c.msgOutBuf[0]
		c.msgOutBuf = c.msgOutBuf[1:]
		flits := c.msgToFlits(msg)
		c.flitsToSend = append(c.flitsToSend, flits...)

		for _, flit := range flits {
			c.logFlitE2ETask(flit, false)
		}

		madeProgress = true
	}
}

func (c *Comp) recv() bool {
	madeProgress := false

	for i := 0; i < c.numInputChannels; i++ {
		received := c.NetworkPort.PeekIncoming()
		if received == nil {
			return madeProgress
		}

		flit := received.(*messaging.Flit)
		msg := flit.Msg.(protocolMsg)

		assemblingElem := c.assemblingMsgTable[msg.Meta().ID]
		if assemblingElem == nil {
			assemblingElem = c.assemblingMsgs.PushBack(&msgToAssemble{
				msg:             msg,
				numFlitRequired: flit.NumFlitInMsg,
				numFlitArrived:  0,
			})
			c.assemblingMsgTable[msg.Meta().ID] = assemblingElem
		}

		assembling := assemblingElem.Value.(*msgToAssemble)
		assembling.numFlitArrived++

		c.NetworkPort.RetrieveIncoming()

		c.logFlitE2ETask(flit, true)

		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) assemble() bool {
	madeProgress := false

	e := c.assemblingMsgs.Front()
	for e != nil {
		assemblingMsg := e.Value.(*msgToAssemble)

		next := e.Next()

		if assemblingMsg.numFlitArrived < assemblingMsg.numFlitRequired {
			e = next
			continue
		}

		c.assembledMsgs = append(c.assembledMsgs, assemblingMsg.msg)
		c.assemblingMsgs.Remove(e)
		delete(c.assemblingMsgTable, assemblingMsg.msg.Meta().ID)

		e = next

		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) tryDeliver() bool {
	madeProgress := false

	for len(c.assembledMsgs) > 0 {
		msg := c.assembledMsgs[0]

		dstPort := c.devicePortByRemote(msg.Meta().Dst)
		if dstPort == nil {
			panic(simerr.NewContractViolation(fmt.Sprintf(
				"%s: no device port matches destination %s", c.Name(), msg.Meta().Dst)))
		}

		err := dstPort.Deliver(msg)
		if err != nil {
			return madeProgress
		}

		c.logMsgE2ETask(msg, true)

		c.assembledMsgs = c.assembledMsgs[1:]

		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) devicePortByRemote(remote sim.RemotePort) sim.Port {
	for _, p := range c.DevicePorts {
		if p.AsRemote() == remote {
			return p
		}
	}

	return nil
}

func (c *Comp) logFlitE2ETask(flit *messaging.Flit, isEnd bool) {
	if c.NumHooks() == 0 {
		return
	}

	if isEnd {
		tracing.EndTask(c.flitTaskID(flit), c)
		return
	}

	msg := flit.Msg.(protocolMsg)
	tracing.StartTask(
		c.flitTaskID(flit), c.msgTaskID(msg.Meta().ID),
		c, "flit_e2e", "flit_e2e", flit,
	)
}

func (c *Comp) logMsgE2ETask(msg protocolMsg, isEnd bool) {
	if c.NumHooks() == 0 {
		return
	}

	rsp, isRsp := msg.(sim.Rsp)
	if isRsp {
		c.logMsgRsp(isEnd, rsp)
		return
	}

	c.logMsgReq(isEnd, msg)
}

func (c *Comp) logMsgReq(isEnd bool, msg sim.Msg) {
	if isEnd {
		tracing.EndTask(c.msgTaskID(msg.Meta().ID), c)
	} else {
		tracing.StartTask(
			c.msgTaskID(msg.Meta().ID),
			msg.Meta().ID+"_req_out",
			c, "msg_e2e", "msg_e2e", msg,
		)
	}
}

func (c *Comp) logMsgRsp(isEnd bool, rsp sim.Rsp) {
	if isEnd {
		tracing.EndTask(c.msgTaskID(rsp.Meta().ID), c)
	} else {
		tracing.StartTask(
			c.msgTaskID(rsp.Meta().ID),
			rsp.GetRspTo()+"_req_out",
			c, "msg_e2e", "msg_e2e", rsp,
		)
	}
}

func (c *Comp) msgToFlits(msg protocolMsg) []*messaging.Flit {
	units := messaging.NetworkMessageToSize(
		msg, c.messageSizeMultiplier, c.broadcastScaling)

	numFlit := (units-1)/c.flitPayloadUnits + 1
	if numFlit < 1 {
		numFlit = 1
	}

	dstNode := 0
	if ids := msg.Destination().IDs(); len(ids) > 0 {
		dstNode = ids[0]
	}

	vnet := 0
	if c.vnetClassifier != nil {
		vnet = c.vnetClassifier(msg)
	}

	flits := make([]*messaging.Flit, numFlit)
	for i := 0; i < numFlit; i++ {
		flits[i] = messaging.FlitBuilder{}.
			WithSrc(c.NetworkPort.AsRemote()).
			WithDst(c.DefaultSwitchDst.AsRemote()).
			WithSeqID(i).
			WithNumFlitInMsg(numFlit).
			WithVNet(vnet).
			WithDstNode(dstNode).
			WithMsg(msg).
			Build()
	}

	return flits
}
