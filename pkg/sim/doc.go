// Package sim is an in-memory SoC implementing every capability in package
// hw: clocks, bus ports, 32-bit registers and settle delays.
//
// Every operation is appended to an ordered journal, which makes the exact
// hardware sequence observable in tests and in the gfs-ctl simulator.
// Faults can be injected per clock and per bus port.
//
//	soc := sim.New()
//	soc.AddClock("fs_mdp", "core_clk", 200000000)
//	soc.FailUnhalt(7, errors.New("port stuck"))
//
// Delays are recorded, not slept.
package sim
