// Package registry owns the fixed table of MSM8x60 footswitch rails.
//
// A Registry is created once per SoC with New. Probe binds a rail to its
// clocks using board init data, programs the control register's ramp delay
// and publishes the rail to the regulator framework. Remove and Close undo
// probes. LateSweep runs once, after consumers have had the chance to claim
// their rails, and powers down every rail nobody claimed.
package registry
