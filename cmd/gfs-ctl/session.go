package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/gfs-power/gfs-go/pkg/config"
	"github.com/gfs-power/gfs-go/pkg/footswitch"
	"github.com/gfs-power/gfs-go/pkg/log"
	"github.com/gfs-power/gfs-go/pkg/persistence"
	"github.com/gfs-power/gfs-go/pkg/regulator"
	"github.com/gfs-power/gfs-go/pkg/registry"
	"github.com/gfs-power/gfs-go/pkg/sim"
)

// Options holds the gfs-ctl configuration.
type Options struct {
	ConfigFile string
	StateFile  string
	TraceFile  string
	LogLevel   string
	Strict     bool
}

// session is one gfs-ctl run against a simulated SoC.
type session struct {
	board  *config.Board
	soc    *sim.SoC
	rails  *regulator.Board
	reg    *registry.Registry
	store  *persistence.SoCStateStore
	trace  *log.FileLogger
	logger *slog.Logger
}

// newSession loads the board, restores persisted SoC state and probes every
// rail the board describes.
func newSession(opts Options, logger *slog.Logger) (*session, error) {
	board, err := loadBoard(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	policy := board.Policy()
	if opts.Strict {
		policy = footswitch.PrepareStrict
	}

	s := &session{
		board:  board,
		soc:    sim.New(),
		rails:  regulator.NewBoard(),
		logger: logger,
	}
	seedClocks(s.soc, board)

	var seqLog log.Logger = log.NewSlogAdapter(logger)
	if opts.TraceFile != "" {
		s.trace, err = log.NewFileLogger(opts.TraceFile)
		if err != nil {
			return nil, fmt.Errorf("open trace: %w", err)
		}
		seqLog = log.NewMultiLogger(s.trace, seqLog)
	}

	var state *persistence.SoCState
	if opts.StateFile != "" {
		s.store = persistence.NewSoCStateStore(opts.StateFile)
		state, err = s.store.Load()
		if err != nil {
			s.close()
			return nil, fmt.Errorf("load state: %w", err)
		}
		if state != nil {
			if err := s.soc.Restore(state); err != nil {
				s.close()
				return nil, fmt.Errorf("restore state: %w", err)
			}
		}
	}

	s.reg, err = registry.New(registry.Config{
		Base: uintptr(board.MMSSBase),
		Hardware: footswitch.Config{
			Clocks:         s.soc,
			Bus:            s.soc,
			Registers:      s.soc,
			Delay:          s.soc,
			PreparePolicy:  policy,
			Logger:         logger,
			SequenceLogger: seqLog,
		},
		Framework: s.rails,
	})
	if err != nil {
		s.close()
		return nil, err
	}

	if err := s.reg.ProbeAll(board); err != nil {
		logger.Warn("some rails failed to probe", "error", err)
	}

	if state != nil {
		for _, name := range state.Claimed {
			rail, err := s.reg.Lookup(name)
			if err != nil {
				logger.Warn("ignoring claim on unknown rail", "rail", name)
				continue
			}
			s.reg.Controller().SetClaimed(rail, true)
		}
		if state.Swept {
			s.reg.MarkSwept()
		}
	}
	return s, nil
}

func loadBoard(path string) (*config.Board, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

// seedClocks creates the simulated clocks the board refers to.
func seedClocks(soc *sim.SoC, board *config.Board) {
	for name, rail := range board.Rails {
		for _, c := range rail.Clocks {
			if c.SimFixed {
				soc.AddFixedClock(name, c.Name, c.SimRate)
			} else {
				soc.AddClock(name, c.Name, c.SimRate)
			}
		}
	}
}

// save persists the SoC and claim state when a state file is configured.
func (s *session) save() error {
	if s.store == nil {
		return nil
	}
	st := s.soc.Snapshot()
	ctrl := s.reg.Controller()
	for _, rail := range s.reg.Rails() {
		if ctrl.Claimed(rail) {
			st.Claimed = append(st.Claimed, rail.Name)
		}
	}
	st.Swept = s.reg.Swept()
	return s.store.Save(st)
}

// close releases every rail and the trace file.
func (s *session) close() error {
	var errs []error
	if s.reg != nil {
		errs = append(errs, s.reg.Close())
	}
	if s.trace != nil {
		errs = append(errs, s.trace.Err(), s.trace.Close())
		s.logger.Debug("trace closed", "path", s.trace.Path(), "events", s.trace.Count())
	}
	return errors.Join(errs...)
}

// Enable enables a rail through the regulator board.
func (s *session) Enable(name string) error {
	s.soc.ResetJournal()
	return s.rails.Enable(name)
}

// Disable disables a rail through the regulator board.
func (s *session) Disable(name string) error {
	s.soc.ResetJournal()
	return s.rails.Disable(name)
}

// Sweep runs the late sweep and returns the names of the rails it disabled.
func (s *session) Sweep() ([]string, error) {
	s.soc.ResetJournal()
	swept, err := s.reg.LateSweep()
	names := make([]string, len(swept))
	for i, r := range swept {
		names[i] = r.Name
	}
	return names, err
}

// Status writes one line per rail.
func (s *session) Status(w io.Writer) {
	ctrl := s.reg.Controller()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RAIL\tPROFILE\tCTL\tREG\tSTATE\tCLAIMED\tPORTS")
	for _, rail := range s.reg.Rails() {
		if !rail.Bound() {
			fmt.Fprintf(tw, "%s\t%s\t%#x\t-\tUNBOUND\t-\t-\n", rail.Name, rail.Profile, rail.Ctl)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%#x\t%#05x\t%s\t%t\t%s\n",
			rail.Name, rail.Profile, rail.Ctl, s.soc.Register(rail.Ctl),
			rail.State(), ctrl.Claimed(rail), formatPorts(rail.BusPorts))
	}
	tw.Flush()
	if s.reg.Swept() {
		fmt.Fprintln(w, "late sweep: done")
	} else {
		fmt.Fprintln(w, "late sweep: pending")
	}
}

// Clocks writes the simulated clock state.
func (s *session) Clocks(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CLOCK\tRATE\tENABLED\tRESET\tRETAIN\tREFS")
	for _, key := range s.soc.Clocks() {
		consumer, name, _ := strings.Cut(key, "/")
		st, _ := s.soc.Clock(consumer, name)
		fmt.Fprintf(tw, "%s\t%d\t%t\t%t\t%t\t%d\n", key, st.Rate, st.Enabled(), st.InReset, st.Retain, st.Refs)
	}
	tw.Flush()
}

// Journal writes the hardware operations of the last command.
func (s *session) Journal(w io.Writer) {
	for i, op := range s.soc.Journal() {
		fmt.Fprintf(w, "%4d  %s\n", i, op)
	}
}

// Fault injects or clears a simulated hardware fault.
//
//	halt <port> | unhalt <port> | prepare <rail> <clock> | rate <rail> <clock> | clear
func (s *session) Fault(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: fault halt|unhalt|prepare|rate|clear ...")
	}
	injected := fmt.Errorf("injected %s fault", args[0])

	switch args[0] {
	case "clear":
		s.soc.ClearFaults()
		return nil
	case "halt", "unhalt":
		if len(args) != 2 {
			return fmt.Errorf("usage: fault %s <port>", args[0])
		}
		port, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid port %q", args[1])
		}
		if args[0] == "halt" {
			s.soc.FailHalt(port, injected)
		} else {
			s.soc.FailUnhalt(port, injected)
		}
		return nil
	case "prepare", "rate":
		if len(args) != 3 {
			return fmt.Errorf("usage: fault %s <rail> <clock>", args[0])
		}
		if _, ok := s.soc.Clock(args[1], args[2]); !ok {
			return fmt.Errorf("unknown clock %s/%s", args[1], args[2])
		}
		if args[0] == "prepare" {
			s.soc.FailPrepare(args[1], args[2], injected)
		} else {
			s.soc.FailSetRate(args[1], args[2], injected)
		}
		return nil
	default:
		return fmt.Errorf("unknown fault %q", args[0])
	}
}

// RailNames returns the registered rail names.
func (s *session) RailNames() []string {
	names := s.rails.Names()
	sort.Strings(names)
	return names
}

func formatPorts(ports [2]int) string {
	switch {
	case ports[0] != 0 && ports[1] != 0:
		return fmt.Sprintf("%d,%d", ports[0], ports[1])
	case ports[0] != 0:
		return strconv.Itoa(ports[0])
	case ports[1] != 0:
		return "-," + strconv.Itoa(ports[1])
	default:
		return "-"
	}
}
