package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSoCStateStore(t *testing.T) {
	t.Run("SaveAndLoadEmpty", func(t *testing.T) {
		dir := t.TempDir()
		store := NewSoCStateStore(filepath.Join(dir, "state.json"))

		if err := store.Save(&SoCState{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.Version != StateVersion {
			t.Errorf("Version = %d, want %d", got.Version, StateVersion)
		}
		if got.SavedAt.IsZero() {
			t.Error("SavedAt not set")
		}
	})

	t.Run("LoadNonExistent", func(t *testing.T) {
		dir := t.TempDir()
		store := NewSoCStateStore(filepath.Join(dir, "nonexistent.json"))

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got != nil {
			t.Errorf("Load() = %v, want nil for non-existent file", got)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		dir := t.TempDir()
		store := NewSoCStateStore(filepath.Join(dir, "sub", "state.json"))

		state := &SoCState{
			SavedAt:   time.Now(),
			Registers: map[string]uint32{"0x190": 0x11f},
			Clocks: map[string]ClockSnapshot{
				"fs_mdp/core_clk":  {Rate: 200000000, Retain: true},
				"fs_mdp/iface_clk": {Rate: 27000000, Fixed: true},
			},
			HaltedPorts: []int{3, 4},
			Claimed:     []string{"fs_mdp"},
			Swept:       true,
		}
		if err := store.Save(state); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.Registers["0x190"] != 0x11f {
			t.Errorf("Registers[0x190] = %#x, want 0x11f", got.Registers["0x190"])
		}
		if c := got.Clocks["fs_mdp/core_clk"]; c.Rate != 200000000 || !c.Retain {
			t.Errorf("core_clk = %+v", c)
		}
		if !got.Clocks["fs_mdp/iface_clk"].Fixed {
			t.Error("iface_clk lost Fixed flag")
		}
		if len(got.HaltedPorts) != 2 || len(got.Claimed) != 1 || !got.Swept {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("LoadCorrupt", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "state.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewSoCStateStore(path).Load(); err == nil {
			t.Error("Load() accepted corrupt file")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		dir := t.TempDir()
		store := NewSoCStateStore(filepath.Join(dir, "state.json"))
		if err := store.Save(&SoCState{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Errorf("second Clear() error = %v", err)
		}
		got, _ := store.Load()
		if got != nil {
			t.Error("state survived Clear()")
		}
	})
}
