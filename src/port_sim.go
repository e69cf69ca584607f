package rtos

// simPort is the host simulator port: every TCB is backed by a real
// goroutine parked on its own channel except while it is k.current.
// This is the "software simulator that performs an equivalent stack
// swap" the design calls for — Go's own goroutine stacks stand in for
// the saved/restored CPU stack, so no hand-rolled stack-pointer swap is
// needed to actually resume a task's control flow (buildStackFrame
// still produces the inspectable frame layout, but only the channel
// handoff here is load-bearing for execution).
type simPort struct{}

func (simPort) spawn(tcb *TCB) {
	go func() {
		tcb.park()
		tcb.entry()
	}()
}

func (simPort) release(tcb *TCB) { tcb.release() }

func (simPort) park(tcb *TCB) { tcb.park() }
