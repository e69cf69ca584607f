package rtos

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

// tracer is this port's OS_Trace/bsp MY_PRINTF equivalent: a structured
// logger recording scheduling events (switches, timeouts, overflow and
// full-queue conditions) for offline inspection, the same role
// log.go's log_write/log_rr_bits played for direwolf's packet trace,
// just retargeted at kernel events instead of AX.25 frames.
type tracer struct {
	logger *log.Logger
	stamp  *strftime.Strftime
}

// newTracer builds a tracer writing to w at the given level ("debug",
// "info", "warn", "error"); an empty level defaults to "info".
func newTracer(w io.Writer, level string) *tracer {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	// %Y-%m-%d %H:%M:%S renders the plain-text "at" field attached to
	// every trace line alongside the structured log's own timestamp,
	// mirroring log.go's two parallel timestamp styles (CSV column vs.
	// console).
	stamp, err := strftime.New("%Y-%m-%d %H:%M:%S")
	if err != nil {
		panic(err)
	}
	return &tracer{logger: logger, stamp: stamp}
}

// stampNow renders the current moment in the plain-text format of the
// "at" field every trace line carries alongside charmbracelet/log's own
// RFC3339 structured timestamp — the same "CSV column vs. console" duplication
// log.go carries for direwolf's packet trace.
func (t *tracer) stampNow() string {
	var buf []byte
	buf, _ = t.stamp.AppendFormat(buf, time.Now())
	return string(buf)
}

func (t *tracer) taskSwitch(prev, next *TCB) {
	if t == nil {
		return
	}
	prevName := "<none>"
	if prev != nil {
		prevName = prev.Name
	}
	t.logger.Debug("task switch", "from", prevName, "to", next.Name, "prio", next.Prio, "at", t.stampNow())
}

func (t *tracer) taskTimeout(tcb *TCB) {
	if t == nil {
		return
	}
	t.logger.Debug("wait timed out", "task", tcb.Name, "at", t.stampNow())
}

func (t *tracer) semOverflow(name string) {
	if t == nil {
		return
	}
	t.logger.Warn("semaphore overflow", "sem", name, "at", t.stampNow())
}

func (t *tracer) queueFull(name string) {
	if t == nil {
		return
	}
	t.logger.Warn("message queue full", "queue", name, "at", t.stampNow())
}

func (t *tracer) poolExhausted(kind string) {
	if t == nil {
		return
	}
	t.logger.Error("control block pool exhausted", "kind", kind, "at", t.stampNow())
}

func (t *tracer) info(msg string, keyvals ...any) {
	if t == nil {
		return
	}
	t.logger.Info(msg, append(keyvals, "at", t.stampNow())...)
}
