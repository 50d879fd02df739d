package hw

import (
	"errors"
	"time"
)

// ErrNotSupported is returned by a ClockProvider when a clock cannot change
// rate. Callers treat it as success.
var ErrNotSupported = errors.New("operation not supported")

// Clock is a handle to a single clock.
type Clock interface {
	// Name returns the clock's consumer-visible name (for example "core_clk").
	Name() string
}

// ClockProvider controls clock rates, gating, reset lines and retention.
type ClockProvider interface {
	// Get looks up the named clock for the given consumer.
	Get(consumer, name string) (Clock, error)

	// Put releases a handle obtained from Get.
	Put(c Clock)

	// Rate returns the current rate in Hz. Zero means the rate was never set.
	Rate(c Clock) uint64

	// SetRate changes the rate in Hz.
	SetRate(c Clock, hz uint64) error

	// PrepareEnable prepares and ungates the clock.
	PrepareEnable(c Clock) error

	// DisableUnprepare gates and unprepares the clock.
	DisableUnprepare(c Clock)

	// AssertReset puts the clock's block into reset.
	AssertReset(c Clock)

	// DeassertReset takes the clock's block out of reset.
	DeassertReset(c Clock)

	// SetRetention sets or clears the retain-in-low-power flag.
	SetRetention(c Clock, retain bool)
}

// BusPortController halts and unhalts fabric ports.
type BusPortController interface {
	HaltPort(id int) error
	UnhaltPort(id int) error
}

// RegisterIO accesses 32-bit memory-mapped registers.
type RegisterIO interface {
	Read32(addr uintptr) uint32
	Write32(addr uintptr, v uint32)

	// Barrier orders all prior writes before any later access.
	Barrier()
}

// Delayer waits for a hardware settle time.
type Delayer interface {
	Delay(d time.Duration)
}

// SpinDelayer busy-waits for the requested duration without yielding.
type SpinDelayer struct{}

// Delay spins until d has elapsed.
func (SpinDelayer) Delay(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}

// Compile-time interface satisfaction check.
var _ Delayer = SpinDelayer{}
