package network

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/rubynoc/noc/messaging"
	"github.com/sarchlab/rubynoc/sim"
)

type sampleMsg struct {
	dest     messaging.NetDest
	sizeType messaging.MessageSizeType
}

func (m *sampleMsg) Destination() messaging.NetDest         { return m.dest }
func (m *sampleMsg) MessageSize() messaging.MessageSizeType { return m.sizeType }

var _ = Describe("SimpleNetwork", func() {
	var engine *sim.SerialEngine

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
	})

	It("delivers a single-flit control message across one link", func() {
		net, err := NewSimpleNetwork(engine, Config{
			Nodes:           2,
			VirtualNetworks: 1,
			Links: []LinkParams{
				{Src: 0, Dst: 1, Latency: 1, BandwidthMultiplier: 16},
			},
		})
		Expect(err).NotTo(HaveOccurred())

		dest := messaging.NewNetDest(2)
		dest.Add(1)
		msg := &sampleMsg{dest: dest, sizeType: messaging.MessageSizeControl}

		toNet := net.GetToNetQueue(0, false, 0)
		toNet.EnqueueMsg(msg, engine.CurrentTime(), 0)

		Expect(engine.Run()).NotTo(HaveOccurred())

		fromNet := net.GetFromNetQueue(1, false, 0)
		Expect(fromNet.Size()).To(Equal(1))
		Expect(fromNet.DequeueMsg()).To(BeIdenticalTo(msg))

		stats := net.Stats()
		Expect(stats.FlitsInjected).To(Equal(uint64(1)))
		Expect(stats.FlitsReceived).To(Equal(uint64(1)))
	})

	It("keeps a virtual network ordered once any allocation requests ordering", func() {
		net, err := NewSimpleNetwork(engine, Config{
			Nodes:           2,
			VirtualNetworks: 2,
			Links: []LinkParams{
				{Src: 0, Dst: 1, Latency: 1, BandwidthMultiplier: 16},
			},
		})
		Expect(err).NotTo(HaveOccurred())

		net.GetToNetQueue(0, true, 0)
		net.GetToNetQueue(0, false, 0)

		Expect(net.inUse[0]).To(BeTrue())
		Expect(net.ordered[0]).To(BeTrue())
		Expect(net.inUse[1]).To(BeFalse())
	})

	It("renders the mandated stats report layout", func() {
		net, err := NewSimpleNetwork(engine, Config{
			Nodes:           2,
			VirtualNetworks: 1,
			Links: []LinkParams{
				{Src: 0, Dst: 1, Latency: 1, BandwidthMultiplier: 16},
			},
		})
		Expect(err).NotTo(HaveOccurred())
		net.GetToNetQueue(0, false, 0)

		var sb strings.Builder
		net.PrintStats(&sb)

		out := sb.String()
		Expect(out).To(ContainSubstring("Network Stats"))
		Expect(out).To(ContainSubstring("Average Link Utilization"))
		Expect(out).To(ContainSubstring("Total flits injected = 0"))
	})
})
