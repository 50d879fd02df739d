// Package hw defines the hardware capabilities a footswitch sequence drives.
//
// The rail sequencer never touches hardware directly. It is handed a clock
// provider, a bus-port controller, a register accessor and a delay source,
// each of which may be backed by real memory-mapped hardware or by the
// simulator in package sim.
//
// # Clocks
//
// A Clock is an opaque handle obtained from ClockProvider.Get at probe time
// and released with ClockProvider.Put at teardown. Rate, prepare/enable,
// reset and retention operations all take the handle.
//
// # Registers
//
// RegisterIO exposes 32-bit relaxed accessors plus an explicit Barrier. A
// write is not guaranteed to be visible to the hardware before the next
// write unless a Barrier separates them.
//
// # Delays
//
// Delayer encodes hardware settle times. Delays are not scheduling hints:
// SpinDelayer busy-waits instead of yielding to the scheduler.
package hw
