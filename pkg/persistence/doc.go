// Package persistence saves simulator state between gfs-ctl invocations.
//
// This package handles the JSON serialization of the simulated SoC
// (control registers, clock rates and gating, halted bus ports) together
// with the rail claim flags and late-sweep status, so that a sequence of
// CLI commands behaves like one continuously running system.
package persistence
