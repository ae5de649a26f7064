package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
		compA    *MockComponent
		compB    *MockComponent
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()

		compA = NewMockComponent(mockCtrl)
		compA.EXPECT().Name().Return("CompA").AnyTimes()
		compB = NewMockComponent(mockCtrl)
		compB.EXPECT().Name().Return("CompB").AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should fail to run without components", func() {
		Expect(engine.Run()).To(MatchError(ErrNoComponent))
	})

	It("should panic when registering the same name twice", func() {
		engine.RegisterComponent(compA)

		Expect(func() { engine.RegisterComponent(compA) }).To(Panic())
	})

	It("should tick components in registration order", func() {
		engine.RegisterComponent(compA)
		engine.RegisterComponent(compB)

		gomock.InOrder(
			compA.EXPECT().Tick(Tick(1)).Return(true),
			compB.EXPECT().Tick(Tick(1)).Return(false),
			compA.EXPECT().Tick(Tick(2)).Return(true),
			compB.EXPECT().Tick(Tick(2)).
				DoAndReturn(func(Tick) bool {
					engine.Terminate()
					return true
				}),
		)

		Expect(engine.Run()).To(Succeed())
		Expect(engine.CurrentTick()).To(Equal(Tick(2)))
	})

	It("should finish the current tick when terminated", func() {
		engine.RegisterComponent(compA)
		engine.RegisterComponent(compB)

		compA.EXPECT().Tick(Tick(1)).
			DoAndReturn(func(Tick) bool {
				engine.Terminate()
				return true
			})
		compB.EXPECT().Tick(Tick(1)).Return(false)

		Expect(engine.Run()).To(Succeed())
		Expect(engine.Terminated()).To(BeTrue())
	})

	It("should stop at the tick limit", func() {
		engine.WithTickLimit(3)
		engine.RegisterComponent(compA)
		compA.EXPECT().Tick(gomock.Any()).Return(false).Times(3)

		Expect(engine.Run()).To(MatchError(ErrTickLimitReached))
		Expect(engine.CurrentTick()).To(Equal(Tick(3)))
	})

	It("should invoke hooks around every tick", func() {
		hook := NewMockHook(mockCtrl)
		engine.AcceptHook(hook)
		engine.RegisterComponent(compA)

		gomock.InOrder(
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
				Expect(ctx.Pos).To(BeIdenticalTo(HookPosBeforeTick))
				Expect(ctx.Now).To(Equal(Tick(1)))
			}),
			compA.EXPECT().Tick(Tick(1)).DoAndReturn(func(Tick) bool {
				engine.Terminate()
				return false
			}),
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
				Expect(ctx.Pos).To(BeIdenticalTo(HookPosAfterTick))
			}),
		)

		Expect(engine.Run()).To(Succeed())
	})

	It("should call simulation end handlers", func() {
		handler := NewMockSimulationEndHandler(mockCtrl)
		engine.RegisterSimulationEndHandler(handler)
		handler.EXPECT().Handle(Tick(0))

		engine.Finished()
	})

	It("should not deadlock on repeated pause and continue", func() {
		engine.Pause()
		engine.Pause()
		engine.Continue()
		engine.Continue()

		engine.RegisterComponent(compA)
		compA.EXPECT().Tick(Tick(1)).DoAndReturn(func(Tick) bool {
			engine.Terminate()
			return false
		})

		Expect(engine.Run()).To(Succeed())
	})
})

var _ = Describe("TickCounter", func() {
	It("should start at zero and advance by one", func() {
		c := TickCounter{}

		Expect(c.Value()).To(Equal(Tick(0)))
		Expect(c.Advance()).To(Equal(Tick(1)))
		Expect(c.Value()).To(Equal(Tick(1)))
	})

	It("should wrap at 32 bits", func() {
		c := TickCounter{value: 0xffffffff}

		Expect(c.Advance()).To(Equal(Tick(0)))
	})
})
