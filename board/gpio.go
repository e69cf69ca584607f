// Package board adapts the simulated kernel in package rtos to real
// Linux GPIO/serial hardware, playing the role bsp.c/bsp.h played for
// the original: LED on/off helpers, a button wired to a semaphore post,
// and a UART sink for the trace queue, just targeting a Linux GPIO
// character device and a real serial port instead of bare-metal
// register writes.
package board

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// LED drives one GPIO line as an active-high output, standing in for
// bsp.c's BSP_LedRedOn/Off style helpers.
type LED struct {
	line *gpiocdev.Line
}

// NewLED requests offset on chip as an output line, initially off.
func NewLED(chip string, offset int) (*LED, error) {
	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer("minirtos-led"))
	if err != nil {
		return nil, fmt.Errorf("board: request LED line %s:%d: %w", chip, offset, err)
	}
	return &LED{line: line}, nil
}

func (l *LED) On() error  { return l.line.SetValue(1) }
func (l *LED) Off() error { return l.line.SetValue(0) }

func (l *LED) Set(on bool) error {
	if on {
		return l.On()
	}
	return l.Off()
}

func (l *LED) Close() error { return l.line.Close() }

// Button wires a GPIO input line's edge events to a callback, the
// software equivalent of a hardware interrupt calling OS_Sem_Post from
// ISR context — the callback it invokes is expected to call
// (*rtos.Kernel).SemPost, not (*rtos.Task).SemPost, since there is no
// task backing the handler.
type Button struct {
	line *gpiocdev.Line
	edge chan struct{}
}

// NewButton requests offset on chip as a debounced, pulled-up input and
// invokes onPress on each falling edge (active-low button to ground).
func NewButton(chip string, offset int, onPress func()) (*Button, error) {
	b := &Button{edge: make(chan struct{}, 1)}
	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithDebounce(0),
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			if evt.Type == gpiocdev.LineEventFallingEdge {
				onPress()
				select {
				case b.edge <- struct{}{}:
				default:
				}
			}
		}),
		gpiocdev.WithConsumer("minirtos-button"),
	)
	if err != nil {
		return nil, fmt.Errorf("board: request button line %s:%d: %w", chip, offset, err)
	}
	b.line = line
	return b, nil
}

// WaitForInterrupt blocks the calling goroutine until the button's next
// falling edge, the host stand-in for a Cortex-M WFI instruction: a
// place for the idle task to give up the processor instead of busy
// spinning until a real interrupt (here, a GPIO edge) has work for it.
func (b *Button) WaitForInterrupt() {
	<-b.edge
}

func (b *Button) Close() error { return b.line.Close() }
