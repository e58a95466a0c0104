package endpoint

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/rubynoc/noc/messaging"
	"github.com/sarchlab/rubynoc/sim"
)

// fakePort is a minimal hand-written sim.Port double that lets a test drive
// incoming/outgoing queues directly.
type fakePort struct {
	sim.HookableBase

	name     string
	remote   sim.RemotePort
	incoming []sim.Msg
	outgoing []sim.Msg
	sent     []sim.Msg
	delivered []sim.Msg
}

func newFakePort(name string, remote sim.RemotePort) *fakePort {
	return &fakePort{name: name, remote: remote}
}

func (p *fakePort) Name() string            { return p.name }
func (p *fakePort) AsRemote() sim.RemotePort { return p.remote }
func (p *fakePort) SetConnection(_ sim.Connection) {}
func (p *fakePort) Component() sim.Component { return nil }
func (p *fakePort) NotifyAvailable()         {}
func (p *fakePort) CanSend() bool            { return true }

func (p *fakePort) Deliver(msg sim.Msg) *sim.SendError {
	p.delivered = append(p.delivered, msg)
	return nil
}

func (p *fakePort) Send(msg sim.Msg) *sim.SendError {
	p.sent = append(p.sent, msg)
	return nil
}

func (p *fakePort) RetrieveIncoming() sim.Msg {
	if len(p.incoming) == 0 {
		return nil
	}
	m := p.incoming[0]
	p.incoming = p.incoming[1:]
	return m
}

func (p *fakePort) PeekIncoming() sim.Msg {
	if len(p.incoming) == 0 {
		return nil
	}
	return p.incoming[0]
}

func (p *fakePort) RetrieveOutgoing() sim.Msg {
	if len(p.outgoing) == 0 {
		return nil
	}
	m := p.outgoing[0]
	p.outgoing = p.outgoing[1:]
	return m
}

func (p *fakePort) PeekOutgoing() sim.Msg {
	if len(p.outgoing) == 0 {
		return nil
	}
	return p.outgoing[0]
}

// sampleMsg is a minimal protocol message carrying a NetDest and a size tag,
// as device ports are expected to produce (spec §4.3).
type sampleMsg struct {
	sim.MsgMeta

	dest     messaging.NetDest
	sizeType messaging.MessageSizeType
}

func (m *sampleMsg) Meta() *sim.MsgMeta                     { return &m.MsgMeta }
func (m *sampleMsg) Clone() sim.Msg                         { return m }
func (m *sampleMsg) Destination() messaging.NetDest         { return m.dest }
func (m *sampleMsg) MessageSize() messaging.MessageSizeType { return m.sizeType }

var _ = Describe("End Point", func() {
	var (
		engine            *sim.SerialEngine
		devicePort        *fakePort
		networkPort       *fakePort
		defaultSwitchPort *fakePort
		endPoint          *Comp
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		devicePort = newFakePort("DevicePort", sim.RemotePort("DevicePort"))
		networkPort = newFakePort("NetworkPort", sim.RemotePort("NetworkPort"))
		defaultSwitchPort = newFakePort(
			"DefaultSwitchPort", sim.RemotePort("DefaultSwitchPort"))

		endPoint = MakeBuilder().
			WithEngine(engine).
			WithMessageSizeMultiplier(1).
			WithFlitPayloadUnits(32).
			WithDevicePorts([]sim.Port{devicePort}).
			Build("EndPoint")
		endPoint.NetworkPort = networkPort
		endPoint.DefaultSwitchDst = defaultSwitchPort
	})

	It("should send flits", func() {
		dest := messaging.NewNetDest(4)
		dest.Add(2)

		msg := &sampleMsg{dest: dest, sizeType: messaging.MessageSizeData}
		msg.Src = devicePort.AsRemote()
		devicePort.outgoing = []sim.Msg{msg}

		madeProgress := endPoint.Tick()
		Expect(madeProgress).To(BeTrue())

		madeProgress = endPoint.Tick()
		Expect(madeProgress).To(BeTrue())
		Expect(networkPort.sent).To(HaveLen(1))
		flit0 := networkPort.sent[0].(*messaging.Flit)
		Expect(flit0.Src).To(Equal(networkPort.AsRemote()))
		Expect(flit0.Dst).To(Equal(defaultSwitchPort.AsRemote()))
		Expect(flit0.SeqID).To(Equal(0))
		Expect(flit0.NumFlitInMsg).To(Equal(2))
		Expect(flit0.Msg).To(BeIdenticalTo(msg))
		Expect(flit0.DstNode).To(Equal(2))

		madeProgress = endPoint.Tick()
		Expect(madeProgress).To(BeTrue())
		Expect(networkPort.sent).To(HaveLen(2))
		flit1 := networkPort.sent[1].(*messaging.Flit)
		Expect(flit1.SeqID).To(Equal(1))

		madeProgress = endPoint.Tick()
		Expect(madeProgress).To(BeFalse())
	})

	It("should receive a message once every flit has arrived", func() {
		dest := messaging.NewNetDest(4)
		msg := &sampleMsg{dest: dest, sizeType: messaging.MessageSizeControl}
		msg.Dst = devicePort.AsRemote()

		flit0 := messaging.FlitBuilder{}.
			WithSeqID(0).WithNumFlitInMsg(2).WithMsg(msg).Build()
		flit1 := messaging.FlitBuilder{}.
			WithSeqID(1).WithNumFlitInMsg(2).WithMsg(msg).Build()

		networkPort.incoming = []sim.Msg{flit0, flit1}

		// recv() accepts one flit per tick (single input channel); assemble()
		// only promotes a message to delivery the tick after its last flit
		// arrived, and tryDeliver() runs one tick further still.
		Expect(endPoint.Tick()).To(BeTrue()) // recv flit0
		Expect(endPoint.Tick()).To(BeTrue()) // recv flit1
		Expect(endPoint.Tick()).To(BeTrue()) // assemble
		Expect(endPoint.Tick()).To(BeTrue()) // tryDeliver
		Expect(devicePort.delivered).To(ContainElement(sim.Msg(msg)))

		Expect(endPoint.Tick()).To(BeFalse())
	})
})
