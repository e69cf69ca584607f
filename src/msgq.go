package rtos

// mqcb is the ring-buffer body of a message queue, allocated from a
// fixed pool the same way ECBs are; an ECB of kind ecbQueue points at
// one of these. Splitting it out (rather than embedding the ring
// directly in ECB) mirrors the original's separate OS_MQ struct
// referenced by OS_EventPtr.
type mqcb struct {
	ring     []any
	in, out  int
	fill     int
	freeNext *mqcb
}

type mqcbPool struct {
	all  []mqcb
	free *mqcb
}

func newMQCBPool(n int) *mqcbPool {
	p := &mqcbPool{all: make([]mqcb, n)}
	for i := range p.all {
		p.all[i].freeNext = p.free
		p.free = &p.all[i]
	}
	return p
}

func (p *mqcbPool) alloc() *mqcb {
	mq := p.free
	if mq == nil {
		return nil
	}
	p.free = mq.freeNext
	mq.freeNext = nil
	return mq
}

func (p *mqcbPool) release(mq *mqcb) {
	mq.in, mq.out, mq.fill = 0, 0, 0
	mq.freeNext = p.free
	p.free = mq
}

func (mq *mqcb) push(msg any) bool {
	if mq.fill == len(mq.ring) {
		return false
	}
	mq.ring[mq.in] = msg
	mq.in = (mq.in + 1) % len(mq.ring)
	mq.fill++
	return true
}

func (mq *mqcb) pop() (any, bool) {
	if mq.fill == 0 {
		return nil, false
	}
	msg := mq.ring[mq.out]
	mq.ring[mq.out] = nil
	mq.out = (mq.out + 1) % len(mq.ring)
	mq.fill--
	return msg, true
}

// QueueCreate allocates an ECB and a backing ring of the requested
// capacity, analogous to OS_MsgQ_Create. Unlike the original — whose
// ECB-exhaustion path dereferences the already-null event pointer
// before returning it — exhaustion of either pool here simply returns
// ErrNoResource with no partial allocation left dangling.
func (k *Kernel) QueueCreate(capacity int, name string) (*ECB, error) {
	if capacity < 1 {
		return nil, kerrf("queue capacity %d must be positive", capacity)
	}
	k.crit.Enter()
	defer k.crit.Exit()

	ev := k.ecbPool.alloc()
	if ev == nil {
		k.trace.poolExhausted("event")
		return nil, ErrNoResource
	}
	mq := k.mqPool.alloc()
	if mq == nil {
		k.ecbPool.release(ev)
		k.trace.poolExhausted("queue")
		return nil, ErrNoResource
	}
	mq.ring = make([]any, capacity)
	ev.kind = ecbQueue
	ev.name = name
	ev.mq = mq
	return ev, nil
}

// QueueSend delivers msg to ev from interrupt/ISR-style context: it
// never suspends the caller, since there is no task to suspend. If a
// task is already waiting on this specific queue, the message is
// handed directly to it and the ring is never touched — the "direct
// hand-off bypasses the ring" law. Only when nobody is waiting does the
// message get pushed onto the ring, failing with ErrQueueFull if it is
// already at capacity.
//
// This deliberately departs from OS_MsgQ_Send, which always pushes onto
// the ring first and only afterward checks for (and wakes) a waiter —
// so on the original, a message handed to an already-waiting task still
// occupies a ring slot until that task is scheduled to pop it, and a
// queue at capacity rejects a send even though a task is sitting right
// there waiting for exactly this message.
//
// Task code should call Task.QueueSend instead, which additionally lets
// the sender itself be preempted if the send makes a higher-priority
// task ready.
func (k *Kernel) QueueSend(ev *ECB, msg any) error {
	d, err := k.queueSendLocked(ev, msg)
	k.completeSwitch(d, nil)
	return err
}

func (k *Kernel) queueSendLocked(ev *ECB, msg any) (switchDecision, error) {
	k.crit.Enter()
	defer k.crit.Exit()
	if ev.kind != ecbQueue {
		return noSwitch(), ErrEventType
	}
	if woken := k.wakeHighestWaiter(ev, msg); woken != nil {
		return k.sched(), nil
	}
	if ev.mq.push(msg) {
		return noSwitch(), nil
	}
	k.trace.queueFull(ev.name)
	return noSwitch(), ErrQueueFull
}

// queueWait is the blocking implementation behind Task.QueueWait. If
// the ring already holds a message it is popped immediately with no
// suspension, matching OS_MsgQ_Wait's "pop if entries > 0, else park"
// ordering; otherwise self blocks until a message is delivered or
// timeout ticks elapse, in which case it returns ErrTimeout.
//
// As in semWait, there is no ISR-context Wait to guard against — only
// Kernel.QueueSend exists for interrupt-simulating callers, and it never
// blocks — so the mustNotBlock check here is that the caller is a real
// task, never the idle task.
func (k *Kernel) queueWait(self *TCB, ev *ECB, timeout uint32) (any, error) {
	kassert(self != k.idle, "the idle task must never block in a wait call")
	k.checkpoint(self)

	k.crit.Enter()
	if ev.kind != ecbQueue {
		k.crit.Exit()
		return nil, ErrEventType
	}
	if msg, ok := ev.mq.pop(); ok {
		k.crit.Exit()
		return msg, nil
	}

	k.parkCurrentOnEvent(self, ev, waitStateQueue, timeout)
	d := k.sched()
	k.crit.Exit()

	k.completeSwitch(d, self)
	if self.pend == PendTimedOut {
		return nil, ErrTimeout
	}
	return self.inbox, nil
}
