package topology

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/rubynoc/noc/messaging"
	"github.com/sarchlab/rubynoc/sim"
)

// fakePort is a minimal hand-written sim.Port double, following the same
// shape used in switches/swtich_test.go and endpoint/endpoint_test.go.
type fakePort struct {
	sim.HookableBase

	name      string
	remote    sim.RemotePort
	outgoing  []sim.Msg
	delivered []sim.Msg
}

func newFakePort(name string) *fakePort {
	return &fakePort{name: name, remote: sim.RemotePort(name)}
}

func (p *fakePort) Name() string                  { return p.name }
func (p *fakePort) AsRemote() sim.RemotePort       { return p.remote }
func (p *fakePort) SetConnection(_ sim.Connection) {}
func (p *fakePort) Component() sim.Component       { return nil }
func (p *fakePort) NotifyAvailable()               {}
func (p *fakePort) CanSend() bool                  { return true }
func (p *fakePort) Send(msg sim.Msg) *sim.SendError {
	return nil
}

func (p *fakePort) Deliver(msg sim.Msg) *sim.SendError {
	p.delivered = append(p.delivered, msg)
	return nil
}

func (p *fakePort) RetrieveIncoming() sim.Msg { return nil }
func (p *fakePort) PeekIncoming() sim.Msg     { return nil }

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

// sampleMsg is a minimal protocol message carrying a NetDest and a size
// tag, matching the protocolMsg contract endpoint.Comp requires of
// whatever a device port sends.
type sampleMsg struct {
	sim.MsgMeta

	dest     messaging.NetDest
	sizeType messaging.MessageSizeType
}

func (m *sampleMsg) Meta() *sim.MsgMeta                     { return &m.MsgMeta }
func (m *sampleMsg) Clone() sim.Msg                         { return m }
func (m *sampleMsg) Destination() messaging.NetDest         { return m.dest }
func (m *sampleMsg) MessageSize() messaging.MessageSizeType { return m.sizeType }

var _ = Describe("Topology", func() {
	It("routes a message across a 2-node mesh from NI to NI", func() {
		engine := sim.NewSerialEngine()
		devicePorts := make([]*fakePort, 2)

		topo := New(engine)
		err := topo.BuildMesh2D(MeshConfig{
			Width: 2, Height: 1,
			NumVC:       1,
			LinkLatency: 1,
			DevicePorts: func(id int) []sim.Port {
				dp := newFakePort("Device")
				devicePorts[id] = dp
				return []sim.Port{dp}
			},
		})
		Expect(err).NotTo(HaveOccurred())
		topo.Finalize()

		niSrc, ok := topo.Endpoint("NI[0,0]")
		Expect(ok).To(BeTrue())
		niDst, ok := topo.Endpoint("NI[1,0]")
		Expect(ok).To(BeTrue())
		routerSrc, ok := topo.Router("Router[0,0]")
		Expect(ok).To(BeTrue())
		routerDst, ok := topo.Router("Router[1,0]")
		Expect(ok).To(BeTrue())

		dest := messaging.NewNetDest(2)
		dest.Add(1)
		msg := &sampleMsg{dest: dest, sizeType: messaging.MessageSizeControl}
		devicePorts[0].outgoing = []sim.Msg{msg}

		delivered := false
		for i := 0; i < 50 && !delivered; i++ {
			niSrc.Tick()
			routerSrc.Tick()
			routerDst.Tick()
			niDst.Tick()

			if len(devicePorts[1].delivered) > 0 {
				delivered = true
			}
		}

		Expect(delivered).To(BeTrue())
		Expect(devicePorts[1].delivered).To(ContainElement(sim.Msg(msg)))
	})

	It("reports router and endpoint names in sorted order", func() {
		engine := sim.NewSerialEngine()
		topo := New(engine)

		_, err := topo.AddRouter("Router[1,0]")
		Expect(err).NotTo(HaveOccurred())
		_, err = topo.AddRouter("Router[0,0]")
		Expect(err).NotTo(HaveOccurred())
		_, err = topo.AddEndpoint("NI[0,0]", nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(topo.RouterNames()).To(Equal([]string{"Router[0,0]", "Router[1,0]"}))
		Expect(topo.EndpointNames()).To(Equal([]string{"NI[0,0]"}))
	})

	It("rejects further mutation after Finalize", func() {
		engine := sim.NewSerialEngine()
		topo := New(engine)

		_, err := topo.AddRouter("R0")
		Expect(err).NotTo(HaveOccurred())

		topo.Finalize()

		_, err = topo.AddRouter("R1")
		Expect(err).To(HaveOccurred())
	})
})
