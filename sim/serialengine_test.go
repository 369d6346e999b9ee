package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingHandler struct {
	engine  Engine
	handled []string
	times   []VTimeInSec
}

type taggedEvent struct {
	*EventBase
	tag string
}

func (h *recordingHandler) Handle(e Event) error {
	evt := e.(taggedEvent)
	h.handled = append(h.handled, evt.tag)
	h.times = append(h.times, h.engine.CurrentTime())

	return nil
}

func makeTaggedEvent(
	t VTimeInSec,
	h Handler,
	tag string,
	secondary bool,
) taggedEvent {
	evt := taggedEvent{EventBase: NewEventBase(t, h), tag: tag}
	evt.secondary = secondary

	return evt
}

type countingHook struct {
	before, after int
}

func (h *countingHook) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosBeforeEvent:
		h.before++
	case HookPosAfterEvent:
		h.after++
	}
}

var _ = Describe("SerialEngine", func() {
	var (
		engine  *SerialEngine
		handler *recordingHandler
	)

	BeforeEach(func() {
		engine = NewSerialEngine()
		handler = &recordingHandler{engine: engine}
	})

	It("should run events in time order", func() {
		engine.Schedule(makeTaggedEvent(3, handler, "c", false))
		engine.Schedule(makeTaggedEvent(1, handler, "a", false))
		engine.Schedule(makeTaggedEvent(2, handler, "b", false))

		Expect(engine.Run()).To(Succeed())

		Expect(handler.handled).To(Equal([]string{"a", "b", "c"}))
		Expect(handler.times).To(Equal([]VTimeInSec{1, 2, 3}))
	})

	It("should run primary events before secondary events", func() {
		engine.Schedule(makeTaggedEvent(1, handler, "secondary", true))
		engine.Schedule(makeTaggedEvent(1, handler, "primary", false))

		Expect(engine.Run()).To(Succeed())

		Expect(handler.handled).To(Equal([]string{"primary", "secondary"}))
	})

	It("should stop at the given time", func() {
		engine.Schedule(makeTaggedEvent(1, handler, "a", false))
		engine.Schedule(makeTaggedEvent(2, handler, "b", true))
		engine.Schedule(makeTaggedEvent(3, handler, "c", false))

		Expect(engine.RunUntil(2)).To(Succeed())

		Expect(handler.handled).To(Equal([]string{"a", "b"}))
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(2)))

		Expect(engine.RunUntil(10)).To(Succeed())

		Expect(handler.handled).To(Equal([]string{"a", "b", "c"}))
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(10)))
	})

	It("should panic when scheduling in the past", func() {
		Expect(engine.RunUntil(5)).To(Succeed())

		Expect(func() {
			engine.Schedule(makeTaggedEvent(1, handler, "late", false))
		}).To(Panic())
	})

	It("should invoke hooks around events", func() {
		hook := &countingHook{}
		engine.AcceptHook(hook)

		engine.Schedule(makeTaggedEvent(1, handler, "a", false))
		engine.Schedule(makeTaggedEvent(2, handler, "b", false))

		Expect(engine.Run()).To(Succeed())

		Expect(hook.before).To(Equal(2))
		Expect(hook.after).To(Equal(2))
	})

	It("should refuse the same hook twice", func() {
		hook := &countingHook{}
		engine.AcceptHook(hook)

		Expect(func() { engine.AcceptHook(hook) }).To(Panic())
		Expect(engine.NumHooks()).To(Equal(1))
	})

	It("should pause and continue", func() {
		engine.Pause()
		engine.Pause()
		engine.Continue()
		engine.Continue()

		engine.Schedule(makeTaggedEvent(1, handler, "a", false))
		Expect(engine.Run()).To(Succeed())
		Expect(handler.handled).To(HaveLen(1))
	})
})
