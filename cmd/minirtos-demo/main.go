// Command minirtos-demo boots the simulated kernel with a small fixed
// task set — a button-reactive watcher, a periodic producer, and a
// pair of round-robin worker peers — exercising priority preemption,
// round robin among peers, semaphores, and message queues end to end
// on a host machine, optionally wired to a real GPIO chip and UART
// when --gpio-chip and --uart-device are supplied.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/xliu75189/MiniRTOS/board"
	rtos "github.com/xliu75189/MiniRTOS/src"
)

func main() {
	var (
		configFile = pflag.StringP("config-file", "c", "", "YAML config file (overrides built-in defaults)")
		gpioChip   = pflag.String("gpio-chip", "", "GPIO chardev, e.g. /dev/gpiochip0 (omit to run without hardware)")
		ledLine    = pflag.Int("led-line", 17, "GPIO offset for the status LED")
		buttonLine = pflag.Int("button-line", 27, "GPIO offset for the event button")
		uartDevice = pflag.String("uart-device", "", "serial device for trace output, e.g. /dev/ttyUSB0")
		uartBaud   = pflag.Int("uart-baud", 115200, "serial baud rate")
		runFor     = pflag.Duration("run-for", 5*time.Second, "how long to run the demo before exiting")
		listBoards = pflag.Bool("list-boards", false, "list attached tty devices and exit, instead of running the demo")
	)
	pflag.Parse()

	if *listBoards {
		boards, err := board.Discover()
		must(err)
		for _, b := range boards {
			fmt.Printf("%s\tvendor=%s product=%s serial=%s manufacturer=%q\n",
				b.DevNode, b.VendorID, b.ProductID, b.Serial, b.Manufacturer)
		}
		return
	}

	cfg := rtos.DefaultConfig()
	if *configFile != "" {
		loaded, err := rtos.LoadConfig(*configFile)
		must(err)
		cfg = loaded
	}

	traceWriters := []io.Writer{os.Stderr}
	if *uartDevice != "" {
		uart, err := board.OpenUART(*uartDevice, *uartBaud)
		must(err)
		defer uart.Close()
		traceWriters = append(traceWriters, uart)
	}

	k, err := rtos.Init(cfg, io.MultiWriter(traceWriters...))
	must(err)

	var led *board.LED
	if *gpioChip != "" {
		led, err = board.NewLED(*gpioChip, *ledLine)
		must(err)
		defer led.Close()
	}

	buttonSem, err := k.SemCreate(0, "button")
	must(err)

	var button *board.Button
	if *gpioChip != "" {
		button, err = board.NewButton(*gpioChip, *buttonLine, func() {
			_ = k.SemPost(buttonSem)
		})
		must(err)
		defer button.Close()

		// Give the idle task a real WFI-style block instead of spinning:
		// it only resumes once the GPIO edge handler above has already
		// posted the button semaphore.
		k.OnIdle = button.WaitForInterrupt
	}

	readings, err := k.QueueCreate(4, "readings")
	must(err)

	// Highest priority: reacts to the button within one tick.
	var watch *rtos.Task
	watch, err = k.CreateTask("watch", cfg.MaxPriority, 4096, func() {
		for {
			if err := watch.SemWait(buttonSem, rtos.NoTimeout); err == nil {
				if led != nil {
					_ = led.On()
				}
				_ = watch.QueueSend(readings, time.Now())
			}
		}
	})
	must(err)

	// Mid priority: periodic producer.
	var producer *rtos.Task
	producer, err = k.CreateTask("producer", 4, 4096, func() {
		for {
			_ = producer.QueueSend(readings, time.Now())
			producer.Delay(10)
		}
	})
	must(err)

	// Two peers at the same priority, to exercise round robin.
	for i := 0; i < 2; i++ {
		name := fmt.Sprintf("worker-%d", i)
		var worker *rtos.Task
		worker, err = k.CreateTask(name, 2, 4096, func() {
			for {
				msg, err := worker.QueueWait(readings, 50)
				if err == nil {
					if led != nil {
						_ = led.Off()
					}
					_ = msg
				}
				worker.Delay(5)
			}
		})
		must(err)
	}

	k.OnStartup = func() {
		go func() {
			ticker := time.NewTicker(time.Second / time.Duration(cfg.TickHz))
			defer ticker.Stop()
			for range ticker.C {
				k.Tick()
			}
		}()
	}

	go k.Run()
	time.Sleep(*runFor)
}

func must(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "minirtos-demo: %v\n", err)
		os.Exit(1)
	}
}
