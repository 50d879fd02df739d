// Command gfs-log is a tool for viewing and analyzing footswitch sequence
// logs.
//
// Log files are written by gfs-ctl when run with the -trace flag. Every
// Enable, Disable, Probe and Sweep call is recorded step by step under its
// own sequence ID.
//
// Usage:
//
//	gfs-log <command> [flags] <file.glog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// A file argument of "-" reads the log from standard input.
//
// Examples:
//
//	# View all events
//	gfs-log view trace.glog
//
//	# View only failures of the 3D core
//	gfs-log view -rail fs_gfx3d -category error trace.glog
//
//	# Export to CSV
//	gfs-log export -format csv -o trace.csv trace.glog
//
//	# Keep only the late sweep
//	gfs-log filter -op sweep -o sweep.glog trace.glog
//
//	# Show statistics
//	gfs-log stats trace.glog
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gfs-power/gfs-go/cmd/gfs-log/commands"
)

const usage = `gfs-log - Footswitch Sequence Log Analyzer

Usage:
  gfs-log <command> [flags] <file.glog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

A file of "-" reads standard input.

Use "gfs-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// logPath returns the single positional argument or exits.
func logPath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

// selection registers the event selection flags shared by view and filter.
func selection(fs *flag.FlagSet) *commands.FilterOptions {
	o := &commands.FilterOptions{}
	fs.StringVar(&o.SequenceID, "seq", "", "Filter by sequence ID")
	fs.StringVar(&o.Rail, "rail", "", "Filter by rail (e.g. fs_mdp)")
	fs.StringVar(&o.Op, "op", "", "Filter by op (enable, disable, probe, sweep, remove)")
	fs.StringVar(&o.Stage, "stage", "", "Filter by stage (e.g. bus_halt, clamp_write)")
	fs.StringVar(&o.Category, "category", "", "Filter by category (step, state, error)")
	fs.StringVar(&o.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&o.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	return o
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `gfs-log view - View log file in human-readable format

Usage:
  gfs-log view [flags] <file.glog>

Flags:
`)
		fs.PrintDefaults()
	}

	sel := selection(fs)

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := logPath(fs)

	filter, err := sel.Filter()
	if err != nil {
		fatal(err)
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fatal(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `gfs-log export - Export log file to JSON or CSV format

Usage:
  gfs-log export [flags] <file.glog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format ("+strings.Join(commands.ExportFormats(), ", ")+")")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := logPath(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fatal(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `gfs-log filter - Filter log file and write to new file

Usage:
  gfs-log filter [flags] <file.glog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	sel := selection(fs)

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := logPath(fs)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	sel.Output = *output
	n, err := commands.RunFilter(path, *sel)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, *output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `gfs-log stats - Show statistics about the log file

Usage:
  gfs-log stats <file.glog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := logPath(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fatal(err)
	}
}
