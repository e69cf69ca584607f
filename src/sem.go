package rtos

// SemCreate allocates an ECB as a counting semaphore seeded at initial.
// Mirrors OS_Sem_Create; unlike the commented-out
// OS_EventWaitListInit(pEvent) call there, no reset of the shared
// Waiting list is needed here since a freshly
// allocated ECB is never referenced by any TCB's event field.
func (k *Kernel) SemCreate(initial uint16, name string) (*ECB, error) {
	k.crit.Enter()
	defer k.crit.Exit()

	ev := k.ecbPool.alloc()
	if ev == nil {
		k.trace.poolExhausted("event")
		return nil, ErrNoResource
	}
	ev.kind = ecbSem
	ev.name = name
	ev.counter = initial
	return ev, nil
}

// SemPost signals ev from interrupt/ISR-style context: it never
// suspends the caller. If a task is waiting specifically on ev, the
// highest-priority one is woken directly and the counter is left
// untouched; otherwise the counter is incremented, failing with
// ErrSemOverflow at the 16-bit ceiling.
//
// OS_Sem_Post instead treats "the Waiting bitmap is non-empty" as
// "somebody is waiting on this semaphore": if any task at all is
// parked on a different event, the post is silently swallowed (its
// OS_EventTaskReady return value is discarded) instead of incrementing
// the counter. This implementation only takes the no-increment branch
// when a waiter on this specific ev is actually found.
//
// Task code should call Task.SemPost instead, which additionally lets
// the poster itself be preempted if the post makes a higher-priority
// task ready.
func (k *Kernel) SemPost(ev *ECB) error {
	d, err := k.semPostLocked(ev)
	k.completeSwitch(d, nil)
	return err
}

func (k *Kernel) semPostLocked(ev *ECB) (switchDecision, error) {
	k.crit.Enter()
	defer k.crit.Exit()
	if ev.kind != ecbSem {
		return noSwitch(), ErrEventType
	}
	if woken := k.wakeHighestWaiter(ev, nil); woken != nil {
		return k.sched(), nil
	}
	if ev.counter == 65535 {
		k.trace.semOverflow(ev.name)
		return noSwitch(), ErrSemOverflow
	}
	ev.counter++
	return noSwitch(), nil
}

// semWait is the blocking implementation behind Task.SemWait. If the
// counter is already positive it is decremented with no suspension;
// otherwise self blocks until posted or until timeout ticks elapse.
//
// There is no ISR-context equivalent of Wait — interrupt-simulating
// callers only ever have Kernel.SemPost, which never blocks — so the
// one mustNotBlock check this package can make is that the caller is an
// actual task context, never the idle task standing in for "nobody."
func (k *Kernel) semWait(self *TCB, ev *ECB, timeout uint32) error {
	kassert(self != k.idle, "the idle task must never block in a wait call")
	k.checkpoint(self)

	k.crit.Enter()
	if ev.kind != ecbSem {
		k.crit.Exit()
		return ErrEventType
	}
	if ev.counter > 0 {
		ev.counter--
		k.crit.Exit()
		return nil
	}

	k.parkCurrentOnEvent(self, ev, waitStateSem, timeout)
	d := k.sched()
	k.crit.Exit()

	k.completeSwitch(d, self)
	return errForOutcome(self.pend)
}
