package rtos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueWaitPopsImmediatelyWhenRingNonEmpty(t *testing.T) {
	k := newBareKernel(t, 8)
	q, err := k.QueueCreate(2, "q")
	require.NoError(t, err)
	k.current = k.idle
	k.idle.current = true

	require.NoError(t, k.QueueSend(q, "hello"))

	self := newTCB("solo", 3)
	k.ready.insert(self)
	self.current = true
	k.current = self

	msg, err := k.queueWait(self, q, NoTimeout)
	require.NoError(t, err)
	assert.Equal(t, "hello", msg)
}

func TestQueueSendDirectHandoffBypassesRing(t *testing.T) {
	k := newBareKernel(t, 8)
	q, err := k.QueueCreate(1, "q")
	require.NoError(t, err)

	waiter := newTCB("waiter", 6)
	k.ready.insert(waiter)
	k.current = waiter
	waiter.current = true

	done := make(chan struct {
		msg any
		err error
	}, 1)
	go func() {
		msg, err := k.queueWait(waiter, q, NoTimeout)
		done <- struct {
			msg any
			err error
		}{msg, err}
	}()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, k.QueueSend(q, "direct"))

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, "direct", r.msg)
	case <-time.After(2 * time.Second):
		t.Fatal("queueWait never returned after QueueSend")
	}
	assert.Equal(t, 0, q.mq.fill, "direct hand-off must never touch the ring")
}

func TestQueueSendFillsRingThenReportsFull(t *testing.T) {
	k := newBareKernel(t, 8)
	q, err := k.QueueCreate(2, "q")
	require.NoError(t, err)
	k.current = k.idle
	k.idle.current = true

	require.NoError(t, k.QueueSend(q, 1))
	require.NoError(t, k.QueueSend(q, 2))
	assert.ErrorIs(t, k.QueueSend(q, 3), ErrQueueFull)
}

func TestQueueWaitTimesOut(t *testing.T) {
	k := newBareKernel(t, 8)
	q, err := k.QueueCreate(1, "q")
	require.NoError(t, err)

	waiter := newTCB("waiter", 5)
	k.ready.insert(waiter)
	k.current = waiter
	waiter.current = true

	done := make(chan error, 1)
	go func() {
		_, err := k.queueWait(waiter, q, 2)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)

	k.Tick()
	k.Tick()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrTimeout)
	case <-time.After(2 * time.Second):
		t.Fatal("queueWait never timed out")
	}
}

func TestQueueCreateExhaustionReturnsNoResourceWithoutLeaking(t *testing.T) {
	k := newBareKernel(t, 8)
	for i := 0; i < 8; i++ {
		_, err := k.QueueCreate(1, "q")
		require.NoError(t, err)
	}
	_, err := k.QueueCreate(1, "overflow")
	assert.ErrorIs(t, err, ErrNoResource)
}
