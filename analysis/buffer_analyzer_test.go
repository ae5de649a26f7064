package analysis

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/sdsim/sim"
	"go.uber.org/mock/gomock"
)

type clock struct {
	now sim.Tick
}

func (c *clock) CurrentTick() sim.Tick {
	return c.now
}

var _ = Describe("BufferAnalyzer", func() {
	var (
		mockCtrl       *gomock.Controller
		timeTeller     *clock
		recorder       *MockDataRecorder
		buffer         sim.Buffer
		bufferAnalyzer *BufferAnalyzer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = &clock{}
		recorder = NewMockDataRecorder(mockCtrl)
		buffer = sim.NewBuffer("Buffer", 4)

		bufferAnalyzer = MakeBufferAnalyzerBuilder().
			WithDataRecorder(recorder).
			WithTimeTeller(timeTeller).
			WithPeriod(10).
			WithBuffer(buffer).
			Build()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should attach itself to the buffer", func() {
		Expect(buffer.Hooks()).To(ContainElement(bufferAnalyzer))
	})

	It("should calculate average buffer level", func() {
		timeTeller.now = 1
		buffer.Push(1)

		recorder.EXPECT().InsertData(BufferLevelTableName, BufferLevelEntry{
			Start:    0,
			End:      10,
			Location: "Buffer",
			Level:    0.9,
		})

		timeTeller.now = 11
		buffer.Push(2)

		recorder.EXPECT().InsertData(BufferLevelTableName, BufferLevelEntry{
			Start:    10,
			End:      15,
			Location: "Buffer",
			Level:    1.8,
		})

		timeTeller.now = 15
		bufferAnalyzer.Summarize()
	})

	It("should report multiple periods together", func() {
		timeTeller.now = 1
		buffer.Push(1)

		gomock.InOrder(
			recorder.EXPECT().InsertData(BufferLevelTableName, BufferLevelEntry{
				Start:    0,
				End:      10,
				Location: "Buffer",
				Level:    0.9,
			}),
			recorder.EXPECT().InsertData(BufferLevelTableName, BufferLevelEntry{
				Start:    10,
				End:      20,
				Location: "Buffer",
				Level:    1,
			}),
			recorder.EXPECT().InsertData(BufferLevelTableName, BufferLevelEntry{
				Start:    20,
				End:      25,
				Location: "Buffer",
				Level:    1,
			}),
		)

		timeTeller.now = 25
		buffer.Pop()
		bufferAnalyzer.Summarize()
	})

	It("should not record an empty buffer", func() {
		timeTeller.now = 35
		bufferAnalyzer.Summarize()
	})

	It("should panic without a recorder", func() {
		Expect(func() {
			MakeBufferAnalyzerBuilder().
				WithTimeTeller(timeTeller).
				WithBuffer(buffer).
				Build()
		}).To(Panic())
	})
})

var _ = Describe("CreateTable", func() {
	It("should create the buffer level table", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		defer mockCtrl.Finish()

		recorder := NewMockDataRecorder(mockCtrl)
		recorder.EXPECT().CreateTable(BufferLevelTableName, BufferLevelEntry{})

		CreateTable(recorder)
	})
})
