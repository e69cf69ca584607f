package rtos

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config bundles every compile-time-in-spirit knob the original kernel
// hard-coded as header constants (os.h's OS_MAX_EVENTS, OS_MAX_MQ,
// HIGHEST_PRIOTITY_USED, bsp.h's BSP_TICKS_PER_SEC) into values an
// application picks when it calls Init.
type Config struct {
	// MaxPriority is the highest usable task priority. Priority 0 is
	// always reserved for the idle task; application tasks use
	// 1..MaxPriority. Priority p occupies bit p-1 of the 32-bit
	// ready/delayed/waiting bitmaps; validate accepts MaxPriority only
	// up to 31, so bit 31 is never used.
	MaxPriority Priority `yaml:"max_priority"`

	// MaxEvents bounds the semaphore + message-queue ECB pool.
	MaxEvents int `yaml:"max_events"`

	// MaxQueues bounds the MQCB pool backing message queues.
	MaxQueues int `yaml:"max_queues"`

	// TickHz is the nominal rate at which Tick is expected to be driven.
	// The kernel never reads it and only ever counts raw ticks; the demo
	// binary uses it to set its ticker period.
	TickHz int `yaml:"tick_hz"`

	// IdleStackBytes sizes the synthetic stack frame built for the idle
	// task.
	IdleStackBytes int `yaml:"idle_stack_bytes"`

	// TraceLevel controls the verbosity of the charmbracelet/log tracer;
	// one of "debug", "info", "warn", "error".
	TraceLevel string `yaml:"trace_level"`
}

// DefaultConfig mirrors the original header's constants: 8 priority
// levels, 8 events, 8 queues, a 1kHz tick.
func DefaultConfig() Config {
	return Config{
		MaxPriority:    8,
		MaxEvents:      8,
		MaxQueues:      8,
		TickHz:         1000,
		IdleStackBytes: 256,
		TraceLevel:     "info",
	}
}

// LoadConfig reads a YAML config file, starting from DefaultConfig and
// overriding only the fields present in the document.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxPriority < 1 || c.MaxPriority > 31 {
		return kerrf("max_priority %d out of range [1,31]", c.MaxPriority)
	}
	if c.MaxEvents < 1 {
		return kerrf("max_events must be positive, got %d", c.MaxEvents)
	}
	if c.MaxQueues < 1 {
		return kerrf("max_queues must be positive, got %d", c.MaxQueues)
	}
	return nil
}
