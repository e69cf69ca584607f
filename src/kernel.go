package rtos

import "io"

// Kernel is the scheduler singleton: every list, pool, and piece of
// bookkeeping the original scattered across file-scope globals
// (OS_Tcb_Curr, ReadyTaskList, OSEventFreeList, ...) lives here instead,
// behind Init, so a test can build as many independent kernels as it
// needs instead of sharing mutable package state across test cases.
type Kernel struct {
	cfg Config

	crit criticalSection
	port cpuPort

	ready, delayed, waiting *taskList
	ecbPool                 *ecbPool
	mqPool                  *mqcbPool

	current *TCB
	idle    *TCB

	trace *tracer

	// OnStartup runs once, after Run is called and before the scheduler
	// ever picks a task, mirroring OS_OnStartup — the natural place for
	// an application to arm its own interrupt sources (board.GPIO edge
	// callbacks, a ticker goroutine calling Tick).
	OnStartup func()

	// OnIdle runs repeatedly from the idle task's loop whenever no
	// other task is ready, mirroring OS_OnIdle (main_idleTask's body).
	// The default does nothing; an application can use it for a
	// power-saving sleep or a heartbeat LED toggle.
	OnIdle func()
}

// Init builds a Kernel from cfg, allocates its pools and idle task, and
// returns it ready for CreateTask calls. It does not start the
// scheduler — call Run for that, once every startup task has been
// created.
func Init(cfg Config, traceOut io.Writer) (*Kernel, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	k := &Kernel{
		cfg:     cfg,
		port:    simPort{},
		ready:   newTaskList(cfg.MaxPriority),
		delayed: newTaskList(cfg.MaxPriority),
		waiting: newTaskList(cfg.MaxPriority),
		ecbPool: newECBPool(cfg.MaxEvents),
		mqPool:  newMQCBPool(cfg.MaxQueues),
		OnIdle:  func() {},
	}
	if traceOut != nil {
		k.trace = newTracer(traceOut, cfg.TraceLevel)
	}

	idle := newTCB("idle", 0)
	idle.stack = make([]byte, cfg.IdleStackBytes)
	idle.frame = buildStackFrame(idle.stack, 0)
	idle.entry = func() {
		for {
			k.checkpoint(idle)
			k.OnIdle()
		}
	}
	k.idle = idle
	k.ready.insert(idle)
	k.port.spawn(idle)

	return k, nil
}

// Run starts the scheduler: it invokes OnStartup, then performs the
// first dispatch, the role OS_Run plays in the original. Unlike OS_Run
// (whose trailing Q_ERROR() marks that control never comes back past
// OS_sched()), Run returns. It must be called from the goroutine that
// owns "the boot context" — it is not itself a task, so it never parks;
// once the first task is released it simply returns, leaving the scheduler
// driven from then on by Tick and the Task/Kernel wait/post/send calls
// the running tasks and the board package's interrupt simulators make.
func (k *Kernel) Run() {
	if k.OnStartup != nil {
		k.OnStartup()
	}
	k.crit.Enter()
	d := k.sched()
	k.crit.Exit()
	k.completeSwitch(d, nil)
}

// Config reports the configuration this kernel was initialized with.
func (k *Kernel) Config() Config { return k.cfg }

// IdleTask exposes the kernel's idle task, mainly so tests and trace
// output can recognize it by identity.
func (k *Kernel) IdleTask() *Task { return &Task{tcb: k.idle, k: k} }
