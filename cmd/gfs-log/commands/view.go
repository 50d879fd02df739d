// Package commands implements the gfs-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gfs-power/gfs-go/pkg/log"
)

// ViewFilter selects the events the view command prints.
type ViewFilter = log.Filter

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [seq:id] RAIL OP STAGE Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	seq := shortenSequenceID(event.SequenceID)
	rail := event.Rail
	if rail == "" {
		rail = "-"
	}

	var typeLabel string
	switch {
	case event.Register != nil:
		typeLabel = "Register"
	case event.Clock != nil:
		typeLabel = "Clock"
	case event.Port != nil:
		typeLabel = "Port"
	case event.Delay != nil:
		typeLabel = "Delay"
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = event.Category.String()
	}

	fmt.Fprintf(w, "%s [seq:%s] %-9s %-7s %-14s %s\n",
		ts, seq, rail, event.Op, event.Stage, typeLabel)

	switch {
	case event.Register != nil:
		fmt.Fprintf(w, "  0x%08x <- 0x%08x\n", event.Register.Addr, event.Register.Value)
	case event.Clock != nil:
		formatClockDetails(w, event.Clock)
	case event.Port != nil:
		state := "unhalted"
		if event.Port.Halted {
			state = "halted"
		}
		fmt.Fprintf(w, "  Port %d %s\n", event.Port.ID, state)
	case event.Delay != nil:
		fmt.Fprintf(w, "  Wait %s\n", formatDuration(event.Delay.Duration))
	}

	// State changes and errors may accompany other payloads.
	if event.StateChange != nil {
		formatStateChangeDetails(w, event.StateChange)
	}
	if event.Error != nil {
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenSequenceID returns the first 8 characters of the sequence ID.
func shortenSequenceID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatClockDetails(w io.Writer, c *log.ClockEvent) {
	gate := "gated"
	if c.Enabled {
		gate = "enabled"
	}
	if c.Rate != 0 {
		fmt.Fprintf(w, "  %s %s @ %d Hz\n", c.Name, gate, c.Rate)
		return
	}
	fmt.Fprintf(w, "  %s %s\n", c.Name, gate)
}

// formatStateChangeDetails writes state change details.
func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *err.Code)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseOpFlag parses an operation name (case-insensitive).
func ParseOpFlag(s string) (log.Op, error) {
	switch strings.ToLower(s) {
	case "enable":
		return log.OpEnable, nil
	case "disable":
		return log.OpDisable, nil
	case "probe":
		return log.OpProbe, nil
	case "sweep":
		return log.OpSweep, nil
	case "remove":
		return log.OpRemove, nil
	default:
		return 0, fmt.Errorf("invalid op: %s (must be enable, disable, probe, sweep, or remove)", s)
	}
}

// ParseStageFlag parses a stage name such as "bus_halt" (case-insensitive).
func ParseStageFlag(s string) (log.Stage, error) {
	for _, st := range log.Stages() {
		if strings.EqualFold(st.String(), s) {
			return st, nil
		}
	}
	return 0, fmt.Errorf("invalid stage: %s", s)
}

// ParseCategoryFlag parses a category name (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "step":
		return log.CategoryStep, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be step, state, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
