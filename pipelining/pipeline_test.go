package pipelining

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/rubynoc/sim"
)

type pipelineItem struct {
	taskID string
}

func (p pipelineItem) TaskID() string {
	return p.taskID
}

// fakeBuffer is a minimal hand-written sim.Buffer double; capacity 0 means
// it reports itself full, matching the CanPush/Push expectations the
// original mock-based test drove explicitly.
type fakeBuffer struct {
	capacity int
	pushed   []interface{}
}

func (b *fakeBuffer) Name() string         { return "fakeBuffer" }
func (b *fakeBuffer) AcceptHook(_ sim.Hook) {}
func (b *fakeBuffer) CanPush() bool        { return len(b.pushed) < b.capacity }
func (b *fakeBuffer) Push(e interface{}) {
	if !b.CanPush() {
		panic("fakeBuffer overflow")
	}
	b.pushed = append(b.pushed, e)
}
func (b *fakeBuffer) Pop() interface{} {
	if len(b.pushed) == 0 {
		return nil
	}
	e := b.pushed[0]
	b.pushed = b.pushed[1:]
	return e
}
func (b *fakeBuffer) Peek() interface{} {
	if len(b.pushed) == 0 {
		return nil
	}
	return b.pushed[0]
}
func (b *fakeBuffer) Capacity() int { return b.capacity }
func (b *fakeBuffer) Size() int     { return len(b.pushed) }
func (b *fakeBuffer) Clear()        { b.pushed = nil }

var _ = Describe("Pipeline", func() {
	var (
		postPipelineBuffer *fakeBuffer
		pipeline           Pipeline
	)

	BeforeEach(func() {
		postPipelineBuffer = &fakeBuffer{capacity: 2}
		pipeline = MakeBuilder().
			WithPipelineWidth(1).
			WithNumStage(100).
			WithCyclePerStage(2).
			WithPostPipelineBuffer(postPipelineBuffer).
			Build("Pipeline")
	})

	It("should process items in pipeline", func() {
		item1 := pipelineItem{taskID: "1"}
		item2 := pipelineItem{taskID: "2"}

		Expect(pipeline.CanAccept()).To(BeTrue())

		pipeline.Accept(item1)
		Expect(pipeline.CanAccept()).To(BeFalse())

		Expect(pipeline.Tick()).To(BeTrue())
		Expect(pipeline.CanAccept()).To(BeFalse())

		Expect(pipeline.Tick()).To(BeTrue())
		Expect(pipeline.CanAccept()).To(BeTrue())
		pipeline.Accept(item2)

		for i := 2; i < 199; i++ {
			Expect(pipeline.Tick()).To(BeTrue())
		}

		Expect(pipeline.Tick()).To(BeTrue())
		Expect(postPipelineBuffer.pushed).To(ContainElement(item1))

		// item2 entered two cycles after item1, so it is still in the last
		// stage here.
		Expect(pipeline.Tick()).To(BeTrue())

		Expect(pipeline.Tick()).To(BeTrue())
		Expect(postPipelineBuffer.pushed).To(ContainElement(item2))

		Expect(pipeline.Tick()).To(BeFalse())
	})
})

var _ = Describe("Zero-Stage Pipeline", func() {
	var (
		postPipelineBuffer *fakeBuffer
		pipeline           Pipeline
	)

	BeforeEach(func() {
		postPipelineBuffer = &fakeBuffer{capacity: 1}
		pipeline = MakeBuilder().
			WithPipelineWidth(1).
			WithNumStage(0).
			WithCyclePerStage(2).
			WithPostPipelineBuffer(postPipelineBuffer).
			Build("Pipeline")
	})

	It("should not accept if post buffer is full", func() {
		postPipelineBuffer.capacity = 0

		Expect(pipeline.CanAccept()).To(BeFalse())
	})

	It("should forward to post buffer directly", func() {
		item1 := pipelineItem{taskID: "1"}

		Expect(pipeline.CanAccept()).To(BeTrue())
		pipeline.Accept(item1)

		Expect(postPipelineBuffer.pushed).To(ContainElement(item1))
	})
})
