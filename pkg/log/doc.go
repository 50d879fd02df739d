// Package log provides structured sequence logging for footswitch rails.
//
// This package defines the Logger interface and Event types for capturing
// every step of a rail power sequence: clock setup, bus port isolation,
// reset assertion, control register writes and rollback. It is separate from
// operational logging (slog) - sequence capture provides a complete
// machine-readable trace for debugging bring-up problems after the fact.
//
// # Basic Usage
//
// Components accept a Logger in their Config:
//
//	// For development: log to console via slog
//	cfg.SequenceLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.SequenceLogger, _ = log.NewFileLogger("/var/log/gfs/rails.glog")
//
//	// Both: use MultiLogger
//	cfg.SequenceLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Every event carries the sequence ID of the Enable, Disable, Probe or Sweep
// call that produced it, the rail, and the Stage. Stage-specific payloads:
//   - Register writes (RegisterEvent)
//   - Clock rate and gating changes (ClockEvent)
//   - Bus port halts (PortEvent)
//   - Settle delays (DelayEvent)
//   - Rail state transitions (StateChangeEvent)
//   - Failures (ErrorEventData)
//
// # File Format
//
// Log files use CBOR encoding with .glog extension. The gfs-log CLI tool
// provides viewing, filtering, and export capabilities.
package log
