package commands

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/gfs-power/gfs-go/pkg/log"
)

func readAll(t *testing.T, path string) []log.Event {
	t.Helper()
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	var out []log.Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		out = append(out, event)
	}
	return out
}

func TestFilterByRailAndOp(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	events := append(enableSequence(ts),
		log.Event{Timestamp: ts, SequenceID: "s2", Op: log.OpDisable, Rail: "fs_mdp", Category: log.CategoryStep},
		log.Event{Timestamp: ts, SequenceID: "s3", Op: log.OpEnable, Rail: "fs_vfe", Category: log.CategoryStep},
	)
	path := createTestLogFile(t, events)
	out := filepath.Join(t.TempDir(), "filtered.glog")

	n, err := RunFilter(path, FilterOptions{Output: out, Rail: "fs_mdp", Op: "enable"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 events, got %d", n)
	}
	for _, e := range readAll(t, out) {
		if e.Rail != "fs_mdp" || e.Op != log.OpEnable {
			t.Errorf("unexpected event %s %s", e.Rail, e.Op)
		}
	}
}

func TestFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: base, Rail: "fs_rot"},
		{Timestamp: base.Add(time.Hour), Rail: "fs_rot"},
		{Timestamp: base.Add(2 * time.Hour), Rail: "fs_rot"},
	}
	path := createTestLogFile(t, events)
	out := filepath.Join(t.TempDir(), "filtered.glog")

	n, err := RunFilter(path, FilterOptions{
		Output:    out,
		TimeStart: base.Add(30 * time.Minute).Format(time.RFC3339),
		TimeEnd:   base.Add(90 * time.Minute).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 event, got %d", n)
	}
	got := readAll(t, out)
	if !got[0].Timestamp.Equal(base.Add(time.Hour)) {
		t.Errorf("unexpected timestamp %v", got[0].Timestamp)
	}
}

func TestFilterBySequenceAndStage(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	path := createTestLogFile(t, enableSequence(ts))
	out := filepath.Join(t.TempDir(), "filtered.glog")

	n, err := RunFilter(path, FilterOptions{
		Output:     out,
		SequenceID: "5f0c9d2e-aaaa-bbbb-cccc-000000000001",
		Stage:      "enable_write",
		Category:   "step",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 events, got %d", n)
	}
}

func TestFilterInvalidOptions(t *testing.T) {
	path := createTestLogFile(t, nil)
	out := filepath.Join(t.TempDir(), "filtered.glog")

	tests := []struct {
		name string
		opts FilterOptions
	}{
		{"time start", FilterOptions{Output: out, TimeStart: "yesterday"}},
		{"time end", FilterOptions{Output: out, TimeEnd: "tomorrow"}},
		{"op", FilterOptions{Output: out, Op: "reboot"}},
		{"stage", FilterOptions{Output: out, Stage: "warmup"}},
		{"category", FilterOptions{Output: out, Category: "message"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RunFilter(path, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFilterOptionsFilter(t *testing.T) {
	f, err := FilterOptions{
		Rail:      "fs_gfx3d",
		Op:        "disable",
		Category:  "error",
		TimeStart: "2026-03-02T09:00:00Z",
	}.Filter()
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if f.Rail != "fs_gfx3d" || f.Op == nil || *f.Op != log.OpDisable {
		t.Errorf("unexpected filter: %+v", f)
	}
	if f.Category == nil || *f.Category != log.CategoryError {
		t.Errorf("Category = %v, want ERROR", f.Category)
	}
	if f.TimeStart == nil || f.TimeStart.Hour() != 9 || f.TimeEnd != nil {
		t.Errorf("time range = %v..%v", f.TimeStart, f.TimeEnd)
	}
	if f.Stage != nil {
		t.Errorf("Stage = %v, want nil", *f.Stage)
	}
}
