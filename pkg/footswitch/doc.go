// Package footswitch sequences power rails ("footswitches") that gate supply
// to multimedia blocks: the 2D and 3D graphics cores, display, rotator, JPEG
// and video blocks.
//
// A Controller brings a Rail up or down through a fixed hardware sequence:
//
//  1. Prepare the rail's clocks (ClockSequencer): record each rate, force a
//     reference rate where needed, prepare and enable.
//  2. Isolate or reconnect the rail's bus ports.
//  3. Assert reset on every clock of the rail.
//  4. Toggle the enable and clamp bits of the rail's control register in
//     two separate writes.
//  5. Release reset, set or clear core clock retention, and return the
//     clocks to their previous rates and gating.
//
// Each completed step registers a compensating action. When a later step
// fails, the compensations run in reverse, so a failed Enable or Disable
// leaves clocks, bus ports and the control register as they were.
//
// # Profiles
//
// Standard rails have up to two bus ports and a 1µs post-reset settle. The
// 2D graphics rails (ProfileGfx2D) have a single port, gate their core clock
// explicitly around the reset window and need a 5µs settle on power-down.
// The 3D graphics rail additionally pulses its core clock reset after
// power-up to work around a hardware erratum.
//
// # Claims
//
// Enable marks a rail claimed. DisableUnclaimed powers down every bound
// rail that no consumer has claimed; it is meant to run once, late in
// bring-up, after all consumers had the chance to claim their rails.
//
// # Concurrency
//
// Enable and Disable run synchronously in the caller's goroutine. Callers
// must not run two sequences on the same rail concurrently. The claimed flag
// is the only state shared across rails and is guarded by the Controller.
package footswitch
