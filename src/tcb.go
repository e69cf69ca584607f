package rtos

// Priority is a task's static scheduling priority. 0 is reserved for the
// idle task; application tasks run at 1..Config.MaxPriority, with 1 the
// lowest and MaxPriority the highest, matching PRIORITY_TO_BIT's
// (index-1) convention in the original header.
type Priority uint8

// tcbWaitState records which kind of event, if any, a TCB is blocked on
// while it sits on the Waiting list. It mirrors the OS_STATE_SEM /
// OS_STATE_MSGQ bitmask from os.h, collapsed to an enum since a task in
// this design can only ever wait on a single event at a time.
type tcbWaitState uint8

const (
	waitStateNone tcbWaitState = iota
	waitStateSem
	waitStateQueue
)

// listNode is the intrusive link embedded in every TCB. A task is on at
// most one of {Ready, Delayed, Waiting} at any instant, so one node
// per TCB is enough; the original's separate allocation of list nodes
// per task works out to the same one-node-per-task invariant.
type listNode struct {
	prev, next *listNode
	tcb        *TCB
}

// TCB is a task control block: the scheduler's complete view of one
// task. The stack frame and sp fields exist for parity with the
// original's register-save discipline (and so CreateTask's synthetic
// frame can be inspected by tests); actual suspension and resumption of
// a task's control flow is carried out by the goroutine-based port
// (port_sim.go) parking and releasing cpu, not by restoring sp.
type TCB struct {
	node listNode

	Name string
	Prio Priority

	// Timeout counts ticks remaining while on Delayed, or while Waiting
	// with a bounded wait; NoTimeout means "wait forever" and is never
	// decremented by Tick.
	Timeout uint32

	state tcbWaitState
	event *ECB
	pend  WaitOutcome

	// inbox carries a delivered message from QueueSend's direct hand-off
	// path (or a dequeued ring entry) back to the waiter.
	inbox any

	stack []byte
	frame stackFrame
	entry func()

	cpu chan struct{}

	// current is true exactly when this TCB is k.current; kept on the
	// TCB (instead of requiring a kernel-wide map lookup) purely as a
	// debugging/trace convenience.
	current bool
}

// NoTimeout requests an unbounded wait; Tick never expires a TCB parked
// with this value.
const NoTimeout uint32 = 0xFFFFFFFF

func newTCB(name string, prio Priority) *TCB {
	return &TCB{
		Name: name,
		Prio: prio,
		cpu:  make(chan struct{}, 1),
	}
}

func (t *TCB) release() {
	select {
	case t.cpu <- struct{}{}:
	default:
	}
}

func (t *TCB) park() {
	<-t.cpu
}
