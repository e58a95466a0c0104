package switches

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/rubynoc/noc/messaging"
	"github.com/sarchlab/rubynoc/noc/networking/arbitration"
	"github.com/sarchlab/rubynoc/noc/networking/routing"
	"github.com/sarchlab/rubynoc/pipelining"
	"github.com/sarchlab/rubynoc/sim"
)

// fakePort is a minimal hand-written sim.Port double driven directly by
// pushing into incoming/outgoing queues, without an underlying connection.
type fakePort struct {
	sim.HookableBase

	name     string
	remote   sim.RemotePort
	incoming []sim.Msg
	sent     []sim.Msg
	sendErr  *sim.SendError
}

func newFakePort(name string, remote sim.RemotePort) *fakePort {
	return &fakePort{name: name, remote: remote}
}

func (p *fakePort) Name() string                     { return p.name }
func (p *fakePort) AsRemote() sim.RemotePort         { return p.remote }
func (p *fakePort) SetConnection(_ sim.Connection)   {}
func (p *fakePort) Component() sim.Component         { return nil }
func (p *fakePort) Deliver(_ sim.Msg) *sim.SendError { return nil }
func (p *fakePort) NotifyAvailable()                 {}
func (p *fakePort) RetrieveOutgoing() sim.Msg        { return nil }
func (p *fakePort) PeekOutgoing() sim.Msg            { return nil }
func (p *fakePort) CanSend() bool                    { return p.sendErr == nil }

func (p *fakePort) Send(msg sim.Msg) *sim.SendError {
	if p.sendErr != nil {
		return p.sendErr
	}
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

// fakePipeline is a hand-written pipelining.Pipeline double that reports a
// fixed CanAccept answer and records accepted items.
type fakePipeline struct {
	sim.HookableBase

	name       string
	canAccept  bool
	tickResult bool
	accepted   []interface{}
}

func (p *fakePipeline) Name() string             { return p.name }
func (p *fakePipeline) NumHooks() int            { return 0 }
func (p *fakePipeline) InvokeHook(_ sim.HookCtx) {}
func (p *fakePipeline) Tick() bool               { return p.tickResult }
func (p *fakePipeline) CanAccept() bool          { return p.canAccept }
func (p *fakePipeline) Clear()                   { p.accepted = nil }

func (p *fakePipeline) Accept(elem pipelining.PipelineItem) {
	p.accepted = append(p.accepted, elem)
}

// fakeBuffer is a minimal hand-written sim.Buffer double.
type fakeBuffer struct {
	sim.HookableBase

	name     string
	capacity int
	items    []interface{}
}

func newFakeBuffer(name string, capacity int) *fakeBuffer {
	return &fakeBuffer{name: name, capacity: capacity}
}

func (b *fakeBuffer) Name() string { return b.name }
func (b *fakeBuffer) CanPush() bool {
	return b.capacity == 0 || len(b.items) < b.capacity
}

func (b *fakeBuffer) Push(e interface{}) {
	if !b.CanPush() {
		panic("fakeBuffer overflow")
	}
	b.items = append(b.items, e)
}

func (b *fakeBuffer) Pop() interface{} {
	if len(b.items) == 0 {
		return nil
	}
	e := b.items[0]
	b.items = b.items[1:]
	return e
}

func (b *fakeBuffer) Peek() interface{} {
	if len(b.items) == 0 {
		return nil
	}
	return b.items[0]
}

func (b *fakeBuffer) Capacity() int { return b.capacity }
func (b *fakeBuffer) Size() int     { return len(b.items) }
func (b *fakeBuffer) Clear()        { b.items = nil }

type sampleMsg struct {
	sim.MsgMeta
}

func (m *sampleMsg) Meta() *sim.MsgMeta                     { return &m.MsgMeta }
func (m *sampleMsg) Clone() sim.Msg                         { return m }
func (m *sampleMsg) Destination() messaging.NetDest         { return messaging.NetDest{} }
func (m *sampleMsg) MessageSize() messaging.MessageSizeType { return messaging.MessageSizeControl }

func newTestComplex(idx int) (portComplex, *fakePort, *fakePipeline) {
	local := newFakePort("LocalPort", sim.RemotePort("local"))
	remote := newFakePort("RemotePort", sim.RemotePort("remote"))
	pipeline := &fakePipeline{name: "pipeline"}

	pc := portComplex{
		localPort:        local,
		remotePort:       remote,
		pipeline:         pipeline,
		routeBuffer:      newFakeBuffer("route", 0),
		forwardBuffer:    newFakeBuffer("forward", 0),
		sendOutBuffer:    newFakeBuffer("sendOut", 0),
		numInputChannel:  1,
		numOutputChannel: 1,
	}

	return pc, local, pipeline
}

var _ = Describe("Switch", func() {
	var (
		engine       *sim.SerialEngine
		sw           *Comp
		portComplex1 portComplex
		portComplex2 portComplex
		port1        *fakePort
		port2        *fakePort
		pipeline1    *fakePipeline
		pipeline2    *fakePipeline
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()

		portComplex1, port1, pipeline1 = newTestComplex(1)
		portComplex2, port2, pipeline2 = newTestComplex(2)

		dest := messaging.NewNetDest(8)
		dest.Add(7)

		rt := routing.NewTable()
		rt.AddRoute(1, dest, 0)

		sw = MakeBuilder().
			WithEngine(engine).
			WithRoutingTable(rt).
			WithArbiter(arbitration.NewRoundRobinArbiter()).
			Build("Switch")
		sw.addPort(portComplex1)
		sw.addPort(portComplex2)
	})

	It("should start processing when the pipeline can accept", func() {
		msg := &sampleMsg{}
		flit := messaging.FlitBuilder{}.WithMsg(msg).WithDstNode(7).Build()

		port1.incoming = []sim.Msg{flit}
		pipeline1.canAccept = true

		Expect(sw.startProcessing()).To(BeTrue())
		Expect(pipeline1.accepted).To(HaveLen(1))
		Expect(port1.incoming).To(BeEmpty())
	})

	It("should not start processing if pipeline is busy", func() {
		msg := &sampleMsg{}
		flit := messaging.FlitBuilder{}.WithMsg(msg).WithDstNode(7).Build()

		port1.incoming = []sim.Msg{flit}
		pipeline1.canAccept = false

		Expect(sw.startProcessing()).To(BeFalse())
	})

	It("should tick the pipelines", func() {
		pipeline1.tickResult = false
		pipeline2.tickResult = true

		Expect(sw.movePipeline()).To(BeTrue())
	})

	It("should route a flit to the port matching its destination", func() {
		msg := &sampleMsg{}
		flit := messaging.FlitBuilder{}.WithMsg(msg).WithDstNode(7).Build()

		portComplex1.routeBuffer.Push(flitPipelineItem{taskID: "flit", flit: flit})

		madeProgress := sw.route()

		Expect(madeProgress).To(BeTrue())
		Expect(flit.OutputBuf).To(BeIdenticalTo(portComplex2.sendOutBuffer))
	})

	It("should not route if the forward buffer is full", func() {
		msg := &sampleMsg{}
		flit := messaging.FlitBuilder{}.WithMsg(msg).WithDstNode(7).Build()

		fullForward := portComplex1.forwardBuffer.(*fakeBuffer)
		fullForward.capacity = 1
		fullForward.items = []interface{}{"occupied"}
		portComplex1.routeBuffer.Push(flitPipelineItem{taskID: "flit", flit: flit})

		Expect(sw.route()).To(BeFalse())
	})

	It("should forward flits from the forward buffer to the output buffer", func() {
		msg := &sampleMsg{}
		flit := messaging.FlitBuilder{}.WithMsg(msg).Build()
		flit.OutputBuf = portComplex2.sendOutBuffer

		portComplex1.forwardBuffer.Push(flit)

		Expect(sw.forward()).To(BeTrue())
		Expect(portComplex2.sendOutBuffer.Size()).To(Equal(1))
	})

	It("should send flits out through the local port", func() {
		msg := &sampleMsg{}
		flit := messaging.FlitBuilder{}.WithMsg(msg).Build()

		portComplex2.sendOutBuffer.Push(flit)

		Expect(sw.sendOut()).To(BeTrue())
		Expect(port2.sent).To(ContainElement(sim.Msg(flit)))
		Expect(flit.Src).To(Equal(port2.AsRemote()))
		Expect(flit.Dst).To(Equal(portComplex2.remotePort.AsRemote()))
	})

	It("should wait if the port cannot send", func() {
		msg := &sampleMsg{}
		flit := messaging.FlitBuilder{}.WithMsg(msg).Build()

		portComplex2.sendOutBuffer.Push(flit)
		port2.sendErr = sim.NewSendError()

		Expect(sw.sendOut()).To(BeFalse())
	})
})
