package rtos

import "errors"

// WaitOutcome is the pending-result code stored on a TCB while it is
// blocked and surfaced to the caller once it resumes.
type WaitOutcome uint8

const (
	// PendOK means the wait was satisfied by a post/send (or the resource
	// was already available).
	PendOK WaitOutcome = iota
	// PendTimedOut means the tick handler unblocked the task because its
	// timeout reached zero before the event occurred.
	PendTimedOut
	// PendAborted reports an aborted wait. No code path in this revision
	// sets it; there is no cancellation API.
	PendAborted
)

// Sentinel errors covering the kernel's closed error-code set. Argument-kind
// and resource-exhaustion errors are returned to the caller without
// altering kernel state; wait-outcome errors are reported through a wait
// call's return value once the task resumes.
var (
	ErrEventType   = errors.New("rtos: event control block is not of the expected kind")
	ErrQueueFull   = errors.New("rtos: message queue is full")
	ErrSemOverflow = errors.New("rtos: semaphore counter would overflow its 16-bit ceiling")
	ErrNoResource  = errors.New("rtos: no free event or queue control block")
	ErrTimeout     = errors.New("rtos: wait timed out before the event occurred")
	ErrAborted     = errors.New("rtos: wait was aborted")
)

func errForOutcome(o WaitOutcome) error {
	switch o {
	case PendOK:
		return nil
	case PendTimedOut:
		return ErrTimeout
	case PendAborted:
		return ErrAborted
	default:
		return ErrAborted
	}
}
