package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/gfs-power/gfs-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsByOp       map[log.Op]int
	EventsByCategory map[log.Category]int
	Rails            map[string]*RailStats
	Sequences        map[string]struct{}
	Errors           int
	Rollbacks        int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// RailStats holds statistics for a single rail.
type RailStats struct {
	Events    int
	Enables   int
	Disables  int
	Failures  int
	Delay     time.Duration
	LastState string
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByOp:       make(map[log.Op]int),
		EventsByCategory: make(map[log.Category]int),
		Rails:            make(map[string]*RailStats),
		Sequences:        make(map[string]struct{}),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByOp[event.Op]++
	s.EventsByCategory[event.Category]++
	if event.SequenceID != "" {
		s.Sequences[event.SequenceID] = struct{}{}
	}

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	if event.Category == log.CategoryError {
		s.Errors++
	}
	if event.Stage == log.StageRollback {
		s.Rollbacks++
	}

	if event.Rail == "" {
		return
	}
	rs, ok := s.Rails[event.Rail]
	if !ok {
		rs = &RailStats{}
		s.Rails[event.Rail] = rs
	}
	rs.Events++
	if event.Delay != nil {
		rs.Delay += event.Delay.Duration
	}
	if event.Category == log.CategoryError {
		rs.Failures++
	}
	if sc := event.StateChange; sc != nil {
		rs.LastState = sc.NewState
		switch {
		case event.Op == log.OpEnable && sc.NewState == "ENABLED":
			rs.Enables++
		case event.Op == log.OpDisable && sc.NewState == "DISABLED":
			rs.Disables++
		}
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Footswitch Sequence Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Sequences:    %d\n", len(stats.Sequences))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Op:")
	for _, op := range []log.Op{log.OpEnable, log.OpDisable, log.OpProbe, log.OpSweep, log.OpRemove} {
		if count := stats.EventsByOp[op]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", op.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryStep, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Rails: %d\n", len(stats.Rails))
	names := make([]string, 0, len(stats.Rails))
	for name := range stats.Rails {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rs := stats.Rails[name]
		fmt.Fprintf(w, "  %-10s %d events, %d enables, %d disables, settle %s\n",
			name, rs.Events, rs.Enables, rs.Disables, formatDuration(rs.Delay))
		if rs.Failures > 0 {
			fmt.Fprintf(w, "             Failures: %d\n", rs.Failures)
		}
		if rs.LastState != "" {
			fmt.Fprintf(w, "             Last state: %s\n", rs.LastState)
		}
	}

	if stats.Errors > 0 || stats.Rollbacks > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
		fmt.Fprintf(w, "Rollback steps: %d\n", stats.Rollbacks)
	}
}
