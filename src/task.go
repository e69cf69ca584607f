package rtos

// Task is the handle an application holds for a task it created with
// CreateTask. All blocking calls are methods on Task rather than free
// functions operating on an implicit "current task" global (OS_Tcb_Curr
// in the original): the handle makes explicit which task is suspending,
// which a Go program can't infer from "whichever goroutine happens to
// call in" without the kind of thread-local bookkeeping the language
// deliberately doesn't offer.
type Task struct {
	tcb *TCB
	k   *Kernel
}

// Name reports the task's name, set at CreateTask.
func (t *Task) Name() string { return t.tcb.Name }

// Priority reports the task's static priority.
func (t *Task) Priority() Priority { return t.tcb.Prio }

// CreateTask allocates a TCB, builds its synthetic stack frame, and
// adds it to Ready — matching OS_Task_Create's stack rounding, frame
// push, and os_utilsAddTaskToReadyListByTcb call — then starts the
// goroutine that will run entry once the scheduler dispatches it.
// entry must run as an infinite loop suspending itself periodically via
// Delay, SemWait, or QueueWait; if it returns, its goroutine exits but
// its TCB stays on Ready, so the scheduler can still select it and
// nothing runs while it is current (there is no equivalent of a
// hardware fault for a falling-off-the-end task).
//
// prio must be in [1, Config.MaxPriority]; priority 0 is reserved for
// the kernel's own idle task.
func (k *Kernel) CreateTask(name string, prio Priority, stackBytes int, entry func()) (*Task, error) {
	if prio < 1 || prio > k.cfg.MaxPriority {
		return nil, kerrf("task %q priority %d out of range [1,%d]", name, prio, k.cfg.MaxPriority)
	}
	if stackBytes < 64 {
		return nil, kerrf("task %q stack size %d too small", name, stackBytes)
	}

	tcb := newTCB(name, prio)
	// Round the stack size down so the top of stack sits on an 8-byte boundary.
	tcb.stack = make([]byte, stackBytes&^7)
	tcb.frame = buildStackFrame(tcb.stack, uint32(prio)) // entryToken carries prio for frame inspection only
	tcb.entry = entry

	k.crit.Enter()
	k.ready.insert(tcb)
	k.crit.Exit()

	k.port.spawn(tcb)
	return &Task{tcb: tcb, k: k}, nil
}

// Delay suspends t for ticks kernel ticks, moving it from Ready to
// Delayed and rescheduling. Calling Delay from the idle task is a
// programming error (mirroring Q_REQUIRE(OS_Tcb_Curr != idleTask) in
// OS_Delay) since the idle task must always be ready to run whenever
// nothing else is.
func (t *Task) Delay(ticks uint32) {
	self := t.tcb
	t.k.checkpoint(self)

	t.k.crit.Enter()
	kassert(self != t.k.idle, "the idle task must never call Delay")
	self.Timeout = ticks
	t.k.ready.remove(self)
	t.k.delayed.insert(self)
	d := t.k.sched()
	t.k.crit.Exit()

	t.k.completeSwitch(d, self)
}

// SemWait blocks t until ev is posted or timeout ticks elapse.
func (t *Task) SemWait(ev *ECB, timeout uint32) error {
	return t.k.semWait(t.tcb, ev, timeout)
}

// SemPost signals ev. Unlike Kernel.SemPost (meant for ISR-style
// callers with no task to suspend), this additionally lets t itself be
// preempted immediately if the post makes a higher-priority task ready.
func (t *Task) SemPost(ev *ECB) error {
	t.k.checkpoint(t.tcb)
	d, err := t.k.semPostLocked(ev)
	t.k.completeSwitch(d, t.tcb)
	return err
}

// QueueWait blocks t until a message is available on ev or timeout
// ticks elapse.
func (t *Task) QueueWait(ev *ECB, timeout uint32) (any, error) {
	return t.k.queueWait(t.tcb, ev, timeout)
}

// QueueSend delivers msg to ev. Unlike Kernel.QueueSend, this
// additionally lets t itself be preempted immediately if the send
// makes a higher-priority task ready.
func (t *Task) QueueSend(ev *ECB, msg any) error {
	t.k.checkpoint(t.tcb)
	d, err := t.k.queueSendLocked(ev, msg)
	t.k.completeSwitch(d, t.tcb)
	return err
}
