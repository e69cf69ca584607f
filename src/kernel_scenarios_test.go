package rtos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunningKernel(t *testing.T, maxPrio Priority) *Kernel {
	t.Helper()
	cfg := Config{MaxPriority: maxPrio, MaxEvents: 8, MaxQueues: 8, IdleStackBytes: 256}
	k, err := Init(cfg, nil)
	require.NoError(t, err)
	k.Run()
	return k
}

// recordChan gives a task body a way to report a checkpoint back to the
// test goroutine without relying on wall-clock sleeps to observe order.
func recordChan(buf int) chan string { return make(chan string, buf) }

// Scenario 1: a high-priority task blocked on a semaphore preempts a
// lower-priority task that is free-running between its own delay
// calls, as soon as the semaphore is posted.
func TestScenarioPriorityPreemption(t *testing.T) {
	k := newRunningKernel(t, 8)
	sem, err := k.SemCreate(0, "s")
	require.NoError(t, err)

	events := recordChan(16)

	var lo *Task
	lo, err = k.CreateTask("lo", 2, 4096, func() {
		for {
			events <- "lo"
			lo.Delay(1)
		}
	})
	require.NoError(t, err)

	var hi *Task
	hi, err = k.CreateTask("hi", 6, 4096, func() {
		events <- "hi-start"
		_ = hi.SemWait(sem, NoTimeout)
		events <- "hi-woken"
	})
	require.NoError(t, err)

	// hi is the highest-priority ready task, so the first tick dispatches
	// it before lo; finding the semaphore empty, it blocks immediately,
	// and the same tick's scheduling cascade falls through to lo.
	k.Tick()
	assertNextEvent(t, events, "hi-start")
	assertNextEvent(t, events, "lo")
	time.Sleep(20 * time.Millisecond)

	// lo's one-tick delay expires on the next tick, letting it run again
	// while hi is still parked on the semaphore.
	k.Tick()
	assertNextEvent(t, events, "lo")
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, k.SemPost(sem))
	assertNextEvent(t, events, "hi-woken")
}

// Scenario 2: same-priority peers rotate strictly in round-robin order
// across successive ticks.
func TestScenarioRoundRobinPeers(t *testing.T) {
	k := newRunningKernel(t, 8)
	events := recordChan(32)

	names := []string{"p0", "p1", "p2"}
	tasks := make([]*Task, len(names))
	for i, name := range names {
		i, name := i, name
		task, err := k.CreateTask(name, 3, 4096, func() {
			for {
				events <- tasks[i].Name()
				tasks[i].Delay(1)
			}
		})
		require.NoError(t, err)
		tasks[i] = task
	}

	// Each tick's scheduling cascade runs every ready peer in turn (each
	// runs until its own Delay(1) call hands off to the next), so one
	// external tick produces all three names in round-robin order; a
	// second tick repeats the cycle once their one-tick delays expire
	// together.
	var seen []string
	for round := 0; round < 2; round++ {
		k.Tick()
		for i := 0; i < 3; i++ {
			seen = append(seen, <-events)
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, []string{"p0", "p1", "p2", "p0", "p1", "p2"}, seen)
}

// Scenario 3: sending to a queue nobody is waiting on fills the ring
// and then reports ErrQueueFull, without blocking the sender.
func TestScenarioQueueFull(t *testing.T) {
	k := newRunningKernel(t, 8)
	q, err := k.QueueCreate(2, "q")
	require.NoError(t, err)

	results := recordChan(4)
	var sender *Task
	sender, err = k.CreateTask("sender", 4, 4096, func() {
		results <- errString(sender.QueueSend(q, 1))
		results <- errString(sender.QueueSend(q, 2))
		results <- errString(sender.QueueSend(q, 3))
	})
	require.NoError(t, err)

	k.Tick()
	assert.Equal(t, "<nil>", <-results)
	assert.Equal(t, "<nil>", <-results)
	assert.Equal(t, ErrQueueFull.Error(), <-results)
}

// Scenario 4: a message sent while a task is already waiting on the
// queue is handed directly to it; the ring stays empty throughout.
func TestScenarioDirectHandoff(t *testing.T) {
	k := newRunningKernel(t, 8)
	q, err := k.QueueCreate(4, "q")
	require.NoError(t, err)

	delivered := recordChan(2)
	var receiver *Task
	receiver, err = k.CreateTask("receiver", 5, 4096, func() {
		msg, err := receiver.QueueWait(q, NoTimeout)
		require.NoError(t, err)
		delivered <- msg.(string)
	})
	require.NoError(t, err)

	k.Tick() // let receiver park on the empty queue
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, k.QueueSend(q, "payload"))
	assert.Equal(t, "payload", <-delivered)
	assert.Equal(t, 0, q.mq.fill)
}

// Scenario 5: posting a semaphore past its 16-bit ceiling reports
// ErrSemOverflow and leaves the counter at the ceiling.
func TestScenarioSemaphoreOverflow(t *testing.T) {
	k := newRunningKernel(t, 8)
	sem, err := k.SemCreate(65535, "s")
	require.NoError(t, err)

	assert.ErrorIs(t, k.SemPost(sem), ErrSemOverflow)
	assert.Equal(t, uint16(65535), sem.counter)
}

// Scenario 6: Delay(n) resumes the task after exactly n ticks, not one
// more or one fewer.
func TestScenarioDelayAccuracy(t *testing.T) {
	k := newRunningKernel(t, 8)
	woken := recordChan(1)
	var task *Task
	task, err := k.CreateTask("sleeper", 4, 4096, func() {
		task.Delay(3)
		woken <- struct{}{}
	})
	require.NoError(t, err)
	_ = task

	// The first tick only dispatches sleeper and starts its Delay(3);
	// the countdown itself only advances on the ticks that follow.
	for i := 0; i < 3; i++ {
		k.Tick()
		time.Sleep(5 * time.Millisecond)
		select {
		case <-woken:
			t.Fatalf("woke up after only %d ticks", i+1)
		default:
		}
	}
	k.Tick()
	select {
	case <-woken:
	case <-time.After(2 * time.Second):
		t.Fatal("sleeper never woke after its fourth tick")
	}
}

func assertNextEvent(t *testing.T, ch chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event %q", want)
	}
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
