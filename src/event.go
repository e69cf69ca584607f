package rtos

// ecbKind distinguishes the two event flavors sharing one free pool, the
// same role OS_EVENT_TYPE_SEM / OS_EVENT_TYPE_MSGQ play in the original.
type ecbKind uint8

const (
	ecbSem ecbKind = iota + 1
	ecbQueue
)

// ECB (event control block) is the shared handle type for both
// semaphores and message queues, matching os.h's OS_EVENT: one pool, one
// free list, differentiated at use by a kind tag so SemWait called on a
// queue handle (or vice versa) fails with ErrEventType instead of
// silently corrupting state.
type ECB struct {
	kind    ecbKind
	name    string
	counter uint16 // semaphore count; unused for queues
	mq      *mqcb  // non-nil for ecbQueue
	free    *ECB   // free-list link; nil once allocated
}

// ecbPool is the fixed-size free list OSEventFreeList walks. Sized by
// Config.MaxEvents at Init and never grown, so a pool exhausted at
// runtime returns ErrNoResource rather than allocating unboundedly —
// the same "pool too small" failure mode the original's OS_MAX_EVENTS
// enforces.
type ecbPool struct {
	all  []ECB
	free *ECB
}

func newECBPool(n int) *ecbPool {
	p := &ecbPool{all: make([]ECB, n)}
	for i := range p.all {
		p.all[i].free = p.free
		p.free = &p.all[i]
	}
	return p
}

func (p *ecbPool) alloc() *ECB {
	ev := p.free
	if ev == nil {
		return nil
	}
	p.free = ev.free
	ev.free = nil
	return ev
}

func (p *ecbPool) release(ev *ECB) {
	ev.mq = nil
	ev.counter = 0
	ev.free = p.free
	p.free = ev
}

// parkCurrentOnEvent transitions the calling task from Ready to
// Waiting, recording which event it's blocked on, the wait state kind,
// and its timeout. Mirrors OS_Tcb_Curr->OS_TcbState/OS_TcbTimeout/
// OS_TcbEcbPtr assignment followed by OS_EventTaskWait in os_sem.c /
// os_msg_q.c.
func (k *Kernel) parkCurrentOnEvent(tcb *TCB, ev *ECB, state tcbWaitState, timeout uint32) {
	tcb.state = state
	tcb.pend = PendOK
	tcb.Timeout = timeout
	tcb.event = ev
	k.ready.remove(tcb)
	k.waiting.insert(tcb)
}

// wakeHighestWaiter finds the highest-priority task parked on ev (if
// any), detaches it from Waiting, delivers msg (nil for semaphores) and
// marks the wait outcome ok. Returns nil if nobody is waiting on this
// specific event, even if other tasks are waiting on other events —
// the distinction the original's OS_Sem_Post/OS_MsgQ_Send get wrong by
// testing only "is the Waiting bitmap non-empty" (see DESIGN.md).
func (k *Kernel) wakeHighestWaiter(ev *ECB, msg any) *TCB {
	tcb := k.waiting.removeHighestWaiter(ev)
	if tcb == nil {
		return nil
	}
	tcb.pend = PendOK
	tcb.event = nil
	tcb.state = waitStateNone
	tcb.inbox = msg
	k.ready.insert(tcb)
	return tcb
}
