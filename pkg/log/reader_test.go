package log

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"
	"time"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.glog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var read []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return read
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SequenceID: "seq-1", Op: OpEnable, Stage: StageClockSetup, Rail: "fs_mdp"},
		{Timestamp: time.Now(), SequenceID: "seq-1", Op: OpEnable, Stage: StageEnableWrite, Rail: "fs_mdp"},
		{Timestamp: time.Now(), SequenceID: "seq-2", Op: OpDisable, Stage: StageDone, Rail: "fs_rot", Category: CategoryState},
	}

	path := createTestLogFile(t, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	if read[0].Stage != StageClockSetup {
		t.Errorf("first event Stage = %v, want %v", read[0].Stage, StageClockSetup)
	}
	if read[2].SequenceID != "seq-2" {
		t.Errorf("last event SequenceID = %q, want %q", read[2].SequenceID, "seq-2")
	}
}

func TestReaderHandlesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.glog")

	logger, _ := NewFileLogger(path)
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF, got err=%v, event=%+v", err, event)
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.glog")); err == nil {
		t.Error("NewReader succeeded on missing file")
	}
}

func TestReaderFilters(t *testing.T) {
	base := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, SequenceID: "a", Op: OpEnable, Stage: StageClockSetup, Category: CategoryStep, Rail: "fs_mdp"},
		{Timestamp: base.Add(time.Second), SequenceID: "a", Op: OpEnable, Stage: StageBusUnhalt, Category: CategoryError, Rail: "fs_mdp"},
		{Timestamp: base.Add(2 * time.Second), SequenceID: "b", Op: OpDisable, Stage: StageBusHalt, Category: CategoryStep, Rail: "fs_rot"},
		{Timestamp: base.Add(3 * time.Second), SequenceID: "c", Op: OpSweep, Stage: StageDone, Category: CategoryState, Rail: "fs_vpe"},
	}
	path := createTestLogFile(t, events)

	disable := OpDisable
	halt := StageBusHalt
	errCat := CategoryError
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"a", "a", "b", "c"}},
		{"sequence", Filter{SequenceID: "a"}, []string{"a", "a"}},
		{"rail", Filter{Rail: "fs_rot"}, []string{"b"}},
		{"op", Filter{Op: &disable}, []string{"b"}},
		{"stage", Filter{Stage: &halt}, []string{"b"}},
		{"category", Filter{Category: &errCat}, []string{"a"}},
		{"time range", Filter{TimeStart: &start, TimeEnd: &end}, []string{"a", "b"}},
		{"no match", Filter{Rail: "fs_vcap"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer reader.Close()

			var got []string
			for _, e := range readAll(t, reader) {
				got = append(got, e.SequenceID)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("event %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStreamReaderCountsFilteredEvents(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, rail := range []string{"fs_mdp", "fs_rot", "fs_mdp"} {
		if err := enc.Encode(Event{Op: OpEnable, Rail: rail}); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	reader := NewStreamReader(io.NopCloser(&buf), Filter{Rail: "fs_rot"})
	defer reader.Close()

	got := readAll(t, reader)
	if len(got) != 1 || got[0].Rail != "fs_rot" {
		t.Fatalf("got %+v, want one fs_rot event", got)
	}
	if reader.Scanned() != 3 {
		t.Errorf("Scanned = %d, want 3", reader.Scanned())
	}
}
