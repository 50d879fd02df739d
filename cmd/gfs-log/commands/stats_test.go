package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gfs-power/gfs-go/pkg/log"
)

func TestStatsPerRail(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	events := append(enableSequence(ts),
		log.Event{
			Timestamp: ts.Add(time.Millisecond), SequenceID: "seq-2", Op: log.OpDisable,
			Stage: log.StageBusHalt, Category: log.CategoryError, Rail: "fs_rot",
			Error: &log.ErrorEventData{Message: "busy"},
		},
		log.Event{
			Timestamp: ts.Add(time.Millisecond), SequenceID: "seq-2", Op: log.OpDisable,
			Stage: log.StageRollback, Category: log.CategoryStep, Rail: "fs_rot",
			Error: &log.ErrorEventData{Message: "undo CLOCK_SETUP", Context: "restore clocks"},
		},
		log.Event{
			Timestamp: ts.Add(2 * time.Millisecond), SequenceID: "seq-3", Op: log.OpSweep,
			Stage: log.StageDone, Category: log.CategoryState,
			StateChange: &log.StateChangeEvent{OldState: "PENDING", NewState: "SWEPT"},
		},
	)
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Total Events: 8",
		"Sequences:    3",
		"ENABLE:",
		"SWEEP:",
		"Rails: 2",
		"fs_mdp     5 events, 1 enables, 0 disables, settle 1.000us",
		"Last state: ENABLED",
		"Failures: 1",
		"Errors: 1",
		"Rollback steps: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestStatsEmpty(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Total Events: 0") {
		t.Errorf("expected zero events:\n%s", out)
	}
	if strings.Contains(out, "Time Range") {
		t.Errorf("no time range expected for empty log:\n%s", out)
	}
}
