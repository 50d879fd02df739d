package log

import (
	"testing"
	"time"
)

type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(event Event) {
	r.events = append(r.events, event)
}

func TestMultiLoggerFansOut(t *testing.T) {
	console := &recordingLogger{}
	journal := &recordingLogger{}

	multi := NewMultiLogger(console, journal)
	multi.Log(Event{Timestamp: time.Now(), SequenceID: "sweep-1", Op: OpSweep, Rail: "fs_vpe"})

	for name, l := range map[string]*recordingLogger{"console": console, "journal": journal} {
		if len(l.events) != 1 {
			t.Errorf("%s: got %d events, want 1", name, len(l.events))
			continue
		}
		if l.events[0].Rail != "fs_vpe" {
			t.Errorf("%s: Rail = %q, want fs_vpe", name, l.events[0].Rail)
		}
	}
}

func TestMultiLoggerSkipsNil(t *testing.T) {
	journal := &recordingLogger{}
	multi := NewMultiLogger(nil, journal, nil)

	if multi.Len() != 1 {
		t.Fatalf("Len = %d, want 1", multi.Len())
	}
	multi.Log(Event{Op: OpDisable})
	if len(journal.events) != 1 {
		t.Errorf("journal got %d events, want 1", len(journal.events))
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	multi := NewMultiLogger()
	multi.Log(Event{Timestamp: time.Now(), SequenceID: "probe-1"})
	if multi.Len() != 0 {
		t.Errorf("Len = %d, want 0", multi.Len())
	}
}
