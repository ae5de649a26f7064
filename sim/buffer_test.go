package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Buffer", func() {
	var (
		mockCtrl *gomock.Controller
		buf      Buffer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		buf = NewBuffer("Buf", 2)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should keep fifo order", func() {
		buf.Push(1)
		buf.Push(2)

		Expect(buf.CanPush()).To(BeFalse())
		Expect(buf.Peek()).To(Equal(1))
		Expect(buf.Pop()).To(Equal(1))
		Expect(buf.Pop()).To(Equal(2))
		Expect(buf.Pop()).To(BeNil())
	})

	It("should panic on overflow", func() {
		buf.Push(1)
		buf.Push(2)

		Expect(func() { buf.Push(3) }).To(Panic())
	})

	It("should invoke hooks on push and pop", func() {
		hook := NewMockHook(mockCtrl)
		buf.AcceptHook(hook)

		gomock.InOrder(
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
				Expect(ctx.Pos).To(BeIdenticalTo(HookPosBufPush))
			}),
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
				Expect(ctx.Pos).To(BeIdenticalTo(HookPosBufPop))
				Expect(ctx.Item).To(Equal(7))
			}),
		)

		buf.Push(7)
		buf.Pop()
	})

	It("should clear", func() {
		buf.Push(1)
		buf.Clear()

		Expect(buf.Size()).To(Equal(0))
		Expect(buf.Capacity()).To(Equal(2))
	})
})

var _ = Describe("NameMustBeValid", func() {
	DescribeTable("valid names",
		func(name string) {
			Expect(func() { NameMustBeValid(name) }).NotTo(Panic())
		},
		Entry("single", "SDSim"),
		Entry("hierarchical", "SDSim.Bus"),
		Entry("indexed", "SDSim.Master[2]"),
	)

	DescribeTable("invalid names",
		func(name string) {
			Expect(func() { NameMustBeValid(name) }).To(Panic())
		},
		Entry("trailing dot", "SDSim."),
		Entry("lower case", "SDSim.bus"),
		Entry("underscore", "SD_Sim"),
		Entry("bad index", "Master[x]"),
		Entry("open bracket", "Master[1"),
	)
})

var _ = Describe("Freq", func() {
	It("should convert ticks to seconds", func() {
		f := 50 * MHz

		Expect(f.Seconds(50)).To(BeNumerically("~", 1e-6, 1e-12))
		Expect(f.Cycles(1)).To(Equal(uint64(50_000_000)))
	})
})
