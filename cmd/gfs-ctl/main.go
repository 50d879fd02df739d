// Command gfs-ctl drives the footswitch rails of a simulated MSM8x60.
//
// Each run builds a simulated SoC from a board file, restores the SoC and
// claim state saved by the previous run, probes every rail, executes one
// command and saves the state again.
//
// Usage:
//
//	gfs-ctl [flags] <command> [args]
//
// Commands:
//
//	status          Show every rail
//	enable RAIL     Claim and enable a rail
//	disable RAIL    Disable a rail
//	sweep           Disable every unclaimed rail (once)
//	clocks          Show simulated clock state
//	interactive     Start an interactive console
//
// Flags:
//
//	-config string     Board file (default: built-in msm8x60)
//	-state string      SoC state file (default "gfs-state.json")
//	-trace string      Append sequence events to this .glog file
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-strict            Abort sequences on clock prepare failures
//
// Examples:
//
//	# Bring up the display and power down everything nobody claimed
//	gfs-ctl enable fs_mdp
//	gfs-ctl sweep
//
//	# Record a trace for gfs-log
//	gfs-ctl -trace bringup.glog -log-level debug enable fs_gfx3d
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gfs-power/gfs-go/cmd/gfs-ctl/interactive"
	"github.com/gfs-power/gfs-go/pkg/regulator"
)

var opts Options

func init() {
	flag.StringVar(&opts.ConfigFile, "config", "", "Board file (default: built-in msm8x60)")
	flag.StringVar(&opts.StateFile, "state", "gfs-state.json", "SoC state file (empty disables persistence)")
	flag.StringVar(&opts.TraceFile, "trace", "", "Append sequence events to this .glog file")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&opts.Strict, "strict", false, "Abort sequences on clock prepare failures")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `gfs-ctl - footswitch rail control

Usage:
  gfs-ctl [flags] <status|enable RAIL|disable RAIL|sweep|clocks|interactive>

Flags:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := setupLogging(opts.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	s, err := newSession(opts, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	code := run(s, flag.Arg(0), flag.Args()[1:])

	if err := s.save(); err != nil {
		logger.Error("failed to save state", "path", opts.StateFile, "error", err)
		code = 1
	}
	if err := s.close(); err != nil {
		logger.Warn("failed to release rails", "error", err)
	}
	os.Exit(code)
}

func setupLogging(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(h), nil
}

// run executes one command and returns the process exit code.
func run(s *session, cmd string, args []string) int {
	switch strings.ToLower(cmd) {
	case "status":
		s.Status(os.Stdout)
		return 0

	case "clocks":
		s.Clocks(os.Stdout)
		return 0

	case "enable", "disable":
		if len(args) != 1 {
			fmt.Fprintf(os.Stderr, "Error: %s requires a rail name\n", cmd)
			return 2
		}
		var err error
		if cmd == "enable" {
			err = s.Enable(args[0])
		} else {
			err = s.Disable(args[0])
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s %s: %v (status %d)\n", cmd, args[0], err, regulator.Status(err))
			return 1
		}
		fmt.Printf("%s: %sd\n", args[0], cmd)
		return 0

	case "sweep":
		names, err := s.Sweep()
		if len(names) > 0 {
			fmt.Printf("disabled: %s\n", strings.Join(names, " "))
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0

	case "interactive":
		console, err := interactive.New(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		console.Run()
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		flag.Usage()
		return 2
	}
}
