package rtos

import "math/bits"

// taskList is the array-plus-bitmap structure the original calls
// Task_List: one doubly-linked list per priority slot (heads[0] holds
// only the idle task, on Ready; it stays empty on Delayed and Waiting
// since the idle task never delays or waits), and a bitmap whose bit (p-1)
// is set whenever heads[p] is non-empty. The bitmap turns "find the
// highest-priority non-empty slot" into one math/bits.LeadingZeros32
// call instead of a linear scan, matching the original's LOG2(x) =
// 32 - __builtin_clz(x) trick.
type taskList struct {
	heads  []*listNode // length MaxPriority+1, indexed by Priority
	bitmap uint32
}

func newTaskList(maxPrio Priority) *taskList {
	return &taskList{heads: make([]*listNode, int(maxPrio)+1)}
}

func bitFor(p Priority) uint32 {
	kassert(p >= 1, "priority 0 (idle) never appears in a bitmap-tracked list")
	return 1 << (uint32(p) - 1)
}

// highestSetSlot returns the highest priority with a non-empty slot, and
// ok=false if the bitmap is zero. LeadingZeros32 on a 32-bit word with
// bit (p-1) set returns 31-(p-1), so priority = 32 - lz.
func (l *taskList) highestSetSlot() (Priority, bool) {
	if l.bitmap == 0 {
		return 0, false
	}
	lz := bits.LeadingZeros32(l.bitmap)
	return Priority(32 - lz), true
}

// insert appends tcb's node to the tail of its priority's slot and sets
// the corresponding bitmap bit. Priority 0 (idle, on Ready only) is
// tracked by the head pointer alone; it never participates in the
// bitmap since idle is never the "highest priority ready" answer sched
// needs the fast path for (sched falls back to idle only when the
// bitmap is entirely zero).
func (l *taskList) insert(tcb *TCB) {
	n := &tcb.node
	n.tcb = tcb
	p := tcb.Prio
	head := l.heads[p]
	if head == nil {
		n.next, n.prev = n, n
		l.heads[p] = n
	} else {
		tail := head.prev
		n.prev, n.next = tail, head
		tail.next, head.prev = n, n
	}
	if p != 0 {
		l.bitmap |= bitFor(p)
	}
}

// remove unlinks tcb's node from whichever slot it currently occupies
// in this list, clearing the bitmap bit when the slot empties.
func (l *taskList) remove(tcb *TCB) {
	n := &tcb.node
	p := tcb.Prio
	if n.next == n {
		l.heads[p] = nil
	} else {
		n.prev.next = n.next
		n.next.prev = n.prev
		if l.heads[p] == n {
			l.heads[p] = n.next
		}
	}
	n.next, n.prev, n.tcb = nil, nil, nil
	if p != 0 && l.heads[p] == nil {
		l.bitmap &^= bitFor(p)
	}
}

// removeHighestWaiter scans from the highest occupied slot down,
// looking for a TCB whose event pointer matches ev. It mirrors
// os_utilsRemoveFromWaitingListHPT, which the original keys on
// pTcb->OS_TcbEcbPtr == pEvent rather than blindly taking the
// highest-priority waiter regardless of which event it is parked on.
func (l *taskList) removeHighestWaiter(ev *ECB) *TCB {
	bitmap := l.bitmap
	for bitmap != 0 {
		lz := bits.LeadingZeros32(bitmap)
		p := Priority(32 - lz)
		for n := l.heads[p]; n != nil; {
			next := n.next
			if n.tcb.event == ev {
				l.remove(n.tcb)
				return n.tcb
			}
			if next == l.heads[p] {
				break
			}
			n = next
		}
		bitmap &^= bitFor(p)
	}
	return nil
}

// next implements round-robin advance within cur's priority slot: if
// cur currently heads (or sits anywhere in) its slot, the task after it
// runs next, wrapping back to the slot head; this matches
// os_schedGetNextTaskToRun's walk of the highest non-empty slot.
func (l *taskList) next(p Priority, cur *TCB) *TCB {
	head := l.heads[p]
	if head == nil {
		return nil
	}
	if cur == nil || cur.Prio != p {
		return head.tcb
	}
	for n := head; ; n = n.next {
		if n == &cur.node {
			return n.next.tcb
		}
		if n.next == head {
			return head.tcb
		}
	}
}

func (l *taskList) empty() bool { return l.bitmap == 0 }

// forEach supports Tick's sweep of Delayed and Waiting: each slot is
// walked from its head to the tail it had when the walk began,
// snapshotting "next" before calling fn, so fn may remove the node it
// was given without corrupting the walk.
func (l *taskList) forEach(fn func(tcb *TCB)) {
	bitmap := l.bitmap
	for bitmap != 0 {
		lz := bits.LeadingZeros32(bitmap)
		p := Priority(32 - lz)
		head := l.heads[p]
		if head != nil {
			n := head
			tail := head.prev
			for {
				next := n.next
				fn(n.tcb)
				if n == tail {
					break
				}
				n = next
			}
		}
		bitmap &^= bitFor(p)
	}
}
