package rtos

// stackFrame is the inspectable, data-only stand-in for the synthetic
// exception-return frame OS_Task_Create builds on real Cortex-M
// hardware: xPSR/PC/LR/R12/R0-R3 followed by the fake R4-R11 save, with
// the remainder of the stack pre-filled with a sentinel so a debugger
// (or, here, a test) can measure high-water-mark usage. Nothing in this
// simulator actually resumes a task by popping this frame off a real
// stack pointer — that job falls to the goroutine-backed cpu port below
// — but keeping the frame gives CreateTask the same observable layout
// and lets overflow-style tests scan for sentinel corruption the way
// they would against real hardware.
type stackFrame struct {
	sp    int    // index into stack where the frame starts (growing down)
	words []uint32
}

const stackSentinel = 0xDEADBEEF

// buildStackFrame lays out a synthetic Cortex-M exception frame at the
// top of stack (which must already be 8-byte aligned by the caller) and
// fills the remainder with the sentinel, matching OS_Task_Create's
// "xPSR, PC, LR..R0, R11..R4, then 0xDEADBEEF down to the stack limit"
// sequence.
func buildStackFrame(stack []byte, entryToken uint32) stackFrame {
	nWords := len(stack) / 4
	words := make([]uint32, nWords)
	for i := range words {
		words[i] = stackSentinel
	}

	i := nWords
	push := func(v uint32) {
		i--
		words[i] = v
	}
	push(1 << 24)     // xPSR: Thumb bit set
	push(entryToken)  // PC: the task's entry trampoline
	push(0x0000000E)  // LR
	push(0x0000000C)  // R12
	push(0x00000003)  // R3
	push(0x00000002)  // R2
	push(0x00000001)  // R1
	push(0x00000000)  // R0
	push(0x0000000B)  // R11
	push(0x0000000A)  // R10
	push(0x00000009)  // R9
	push(0x00000008)  // R8
	push(0x00000007)  // R7
	push(0x00000006)  // R6
	push(0x00000005)  // R5
	push(0x00000004)  // R4

	return stackFrame{sp: i, words: words}
}

// sentinelWordsFree counts how many untouched 0xDEADBEEF words remain
// below the saved frame, giving a crude stack high-water-mark estimate
// analogous to what a board-support high-water-mark utility would
// report against real hardware.
func (f stackFrame) sentinelWordsFree() int {
	n := 0
	for i := 0; i < f.sp; i++ {
		if f.words[i] != stackSentinel {
			break
		}
		n++
	}
	return n
}

// cpuPort isolates the one genuinely architecture-specific concern —
// how control actually transfers from one task's execution context to
// another's — behind a narrow interface, so the scheduler core
// (sched.go, tick.go, sem.go, msgq.go) never depends on it directly.
// simPort (port_sim.go) is the only implementation: it backs each TCB
// with a goroutine and a 1-buffered channel, turning "context switch"
// into "unpark the next task's goroutine, then park the caller's own,"
// which is exactly the "equivalent stack swap" a software simulator is
// expected to perform in place of a real PendSV handler.
type cpuPort interface {
	// spawn starts the goroutine that will run tcb.entry once released,
	// parked immediately until its first dispatch.
	spawn(tcb *TCB)
	// release allows tcb's goroutine to proceed (or run for the first
	// time). Safe to call from any goroutine, including ISR-simulating
	// callers with no TCB of their own.
	release(tcb *TCB)
	// park blocks the calling goroutine — which must be the one backing
	// tcb — until a future release(tcb).
	park(tcb *TCB)
}
