package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// SoCState contains the persisted state of a simulated SoC.
type SoCState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Registers maps hex register addresses ("0x190") to their values.
	Registers map[string]uint32 `json:"registers,omitempty"`

	// Clocks maps "consumer/clock" keys to clock snapshots.
	Clocks map[string]ClockSnapshot `json:"clocks,omitempty"`

	// HaltedPorts lists the halted bus ports.
	HaltedPorts []int `json:"halted_ports,omitempty"`

	// Claimed lists the rails a consumer has enabled.
	Claimed []string `json:"claimed,omitempty"`

	// Swept is set once the late sweep has run.
	Swept bool `json:"swept,omitempty"`
}

// ClockSnapshot captures one simulated clock.
type ClockSnapshot struct {
	Rate    uint64 `json:"rate"`
	Enables int    `json:"enables,omitempty"`
	InReset bool   `json:"in_reset,omitempty"`
	Retain  bool   `json:"retain,omitempty"`
	Fixed   bool   `json:"fixed,omitempty"`
}

// SoCStateStore manages persistence of SoC state to a JSON file.
type SoCStateStore struct {
	mu   sync.Mutex
	path string
}

// NewSoCStateStore creates a new SoC state store.
func NewSoCStateStore(path string) *SoCStateStore {
	return &SoCStateStore{path: path}
}

// Path returns the state file path.
func (s *SoCStateStore) Path() string { return s.path }

// Save persists the SoC state to disk.
func (s *SoCStateStore) Save(state *SoCState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Load reads the SoC state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *SoCStateStore) Load() (*SoCState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &SoCState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}

	return state, nil
}

// Clear removes the state file.
func (s *SoCStateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
