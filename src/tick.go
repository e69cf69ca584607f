package rtos

// Tick advances the kernel clock by one tick from interrupt context
// (the SysTick_Handler role): every Delayed task's timeout is
// decremented, moving it to Ready when it reaches zero, as the
// original's OS_tick does.
//
// It additionally sweeps Waiting for tasks with a bounded (non-
// NoTimeout) wait whose timeout has reached zero, moving them to Ready
// with pend set to PendTimedOut. The original never does this: its
// OS_tick only walks DelayedTaskList, so a task blocked in
// OS_Sem_Wait/OS_MsgQ_Wait with a finite timeout never actually times
// out — it only leaves Waiting if posted to. Tick is the arc that was
// missing; without it, "timeout" on a wait call is a parameter that is
// stored but never acted on.
//
// Tick always ends by calling sched, matching SysTick_Handler's
// OS_tick(); OS_sched() pairing: a task whose delay or wait expired on
// this tick can preempt the current one, and when the current task
// shares the highest ready priority with peers, sched's round-robin
// rule hands the CPU to the next of them.
func (k *Kernel) Tick() {
	k.crit.Enter()

	var expiredDelayed, expiredWaiting []*TCB

	k.delayed.forEach(func(tcb *TCB) {
		if tcb.Timeout == NoTimeout || tcb.Timeout == 0 {
			return
		}
		tcb.Timeout--
		if tcb.Timeout == 0 {
			expiredDelayed = append(expiredDelayed, tcb)
		}
	})
	for _, tcb := range expiredDelayed {
		k.delayed.remove(tcb)
		k.ready.insert(tcb)
	}

	k.waiting.forEach(func(tcb *TCB) {
		if tcb.Timeout == NoTimeout || tcb.Timeout == 0 {
			return
		}
		tcb.Timeout--
		if tcb.Timeout == 0 {
			expiredWaiting = append(expiredWaiting, tcb)
		}
	})
	for _, tcb := range expiredWaiting {
		k.waiting.remove(tcb)
		tcb.pend = PendTimedOut
		tcb.event = nil
		tcb.state = waitStateNone
		k.trace.taskTimeout(tcb)
		k.ready.insert(tcb)
	}

	d := k.sched()
	k.crit.Exit()

	k.completeSwitch(d, nil)
}
