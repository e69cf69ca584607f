package rtos

// switchDecision reports what sched decided, so callers can perform the
// actual handoff (which must happen outside the critical section, see
// completeSwitch) after releasing the kernel lock.
type switchDecision struct {
	prev, next *TCB
}

// noSwitch reports "current task keeps running."
func noSwitch() switchDecision { return switchDecision{} }

func (d switchDecision) needed() bool { return d.next != nil }

// sched picks the next task to run and updates k.current, but does not
// itself touch the cpu port — the caller must still hold k.crit when
// calling this, and must call completeSwitch with the returned decision
// only after releasing it. This split exists because the original's
// OS_sched() can request a PendSV and simply return (the actual switch
// happens asynchronously once interrupts are re-enabled); a Go
// goroutine can't be preempted that way, so the handoff has to be an
// explicit second step.
//
// Mirrors os_schedGetNextTaskToRun: if the Ready bitmap is empty, idle
// runs; otherwise the highest non-empty priority slot is chosen, and if
// the current task is already in that slot, round-robin advances to
// its successor (wrapping to the slot head) rather than re-running it.
func (k *Kernel) sched() switchDecision {
	var next *TCB
	if p, ok := k.ready.highestSetSlot(); ok {
		next = k.ready.next(p, k.current)
	} else {
		next = k.idle
	}
	kassert(next != nil, "sched must always resolve to idle at minimum")

	prev := k.current
	if next == prev {
		return noSwitch()
	}
	if prev != nil {
		prev.current = false
	}
	next.current = true
	k.current = next
	k.trace.taskSwitch(prev, next)
	return switchDecision{prev: prev, next: next}
}

// completeSwitch performs the handoff sched decided on. self is the TCB
// of the calling task if the caller is a task (Delay, SemWait,
// QueueWait, or a task-context Post/Send wrapper), or nil if the caller
// is an ISR-simulating context (Tick, or a board package interrupt
// callback) with no task of its own to suspend.
//
// It must run after k.crit has been released: releasing next lets it
// start running concurrently right away, and since a Go goroutine
// cannot be asynchronously suspended mid-instruction the way a real
// PendSV preempts a running task, self — if it is no longer current —
// blocks on its own channel here instead. Combined with every
// task-facing kernel entry point calling checkpoint first, this
// guarantees a newly-readied higher-priority task always finishes its
// own next suspension before the preempted task's next kernel call can
// return, which is the only point at which preemption is externally
// observable for tasks that spend their time between kernel calls doing
// negligible work (the common case for every task this kernel runs).
func (k *Kernel) completeSwitch(d switchDecision, self *TCB) {
	if d.needed() {
		k.port.release(d.next)
	}
	if self != nil && self != d.next {
		k.checkpoint(self)
	}
}

// checkpoint blocks the calling task until it is (again) k.current. It
// is the preemption point every task-facing entry point calls before
// doing any work, so that a task made current by some other goroutine's
// sched() decision always resumes here rather than mid-instruction.
func (k *Kernel) checkpoint(self *TCB) {
	for {
		k.crit.Enter()
		isCurrent := k.current == self
		k.crit.Exit()
		if isCurrent {
			return
		}
		k.port.park(self)
	}
}
