package throttle

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/rubynoc/noc/messaging"
	"github.com/sarchlab/rubynoc/queueing"
	"github.com/sarchlab/rubynoc/sim"
)

type sampleMsg struct {
	id       string
	dest     messaging.NetDest
	sizeType messaging.MessageSizeType
}

func (m *sampleMsg) Destination() messaging.NetDest         { return m.dest }
func (m *sampleMsg) MessageSize() messaging.MessageSizeType { return m.sizeType }

var _ = Describe("Throttle", func() {
	var (
		engine *sim.SerialEngine
		in     *queueing.MessageBuffer
		out    *queueing.MessageBuffer
		th     *Comp
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		in = queueing.NewMessageBuffer("In", engine, 0)
		out = queueing.NewMessageBuffer("Out", engine, 0)

		th = MakeBuilder().
			WithEngine(engine).
			WithLinkBandwidth(16).
			WithLinkLatency(1).
			WithMessageSizeMultiplier(1).
			WithBashPredictor(false, 0).
			Build("Throttle")
		th.AddVirtualNetwork(in, out)
	})

	It("drains a message across several bandwidth-limited wakeups", func() {
		dest := messaging.NewNetDest(4)
		msg := &sampleMsg{id: "m0", dest: dest, sizeType: messaging.MessageSizeData}

		in.EnqueueMsg(msg, engine.CurrentTime(), 0)

		err := engine.Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(out.Size()).To(Equal(1))
		Expect(out.IsReady(engine.CurrentTime())).To(BeTrue())
		Expect(out.DequeueMsg()).To(BeIdenticalTo(msg))
		Expect(th.MessageCount(messaging.MessageSizeData, 0)).To(Equal(1))
	})

	It("reports zero utilization before any cycles have elapsed", func() {
		Expect(th.Utilization()).To(Equal(0.0))
	})

	It("always admits broadcasts when the bash predictor is disabled", func() {
		Expect(th.BroadcastBandwidthAvailable(12345)).To(BeTrue())
	})
})
