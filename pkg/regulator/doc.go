// Package regulator is the narrow regulator framework the footswitch
// registry publishes rails through.
//
// A Framework accepts a Desc and its Ops at probe time and drops them at
// removal. Board is a minimal in-memory Framework: it looks regulators up
// by name and drives them on behalf of a console or test. Status maps a
// returned error to the negative errno a kernel-style consumer expects.
package regulator
