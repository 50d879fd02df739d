package regulator

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gfs-power/gfs-go/pkg/hw"
)

// Framework errors.
var (
	ErrNoDevice = errors.New("regulator: no such regulator")
	ErrExists   = errors.New("regulator: already registered")
)

// Desc describes a regulator to the framework.
type Desc struct {
	// Name is the regulator's unique name, e.g. "fs_mdp".
	Name string

	// ID is the driver's index for the regulator.
	ID int
}

// Ops drives one regulator.
type Ops interface {
	IsEnabled() bool
	Enable() error
	Disable() error
}

// Framework is where drivers publish their regulators.
type Framework interface {
	Register(desc Desc, ops Ops) error
	Unregister(name string)
}

// ClockInit names one clock of a rail.
type ClockInit struct {
	Name string

	// ResetRate, when non-zero, is forced on the clock during sequencing.
	ResetRate uint64
}

// InitData is the board-supplied configuration of one rail.
type InitData struct {
	Clocks []ClockInit

	// BusPorts holds up to two fabric port ids. Zero means no port.
	BusPorts [2]int
}

// Errno values reported by Status.
const (
	EIO    = 5
	EEXIST = 17
	ENODEV = 19
	EINVAL = 22
	ENOSYS = 38
)

// Status maps err to a negative errno. A nil error is 0.
func Status(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrNoDevice):
		return -ENODEV
	case errors.Is(err, ErrExists):
		return -EEXIST
	case errors.Is(err, hw.ErrNotSupported):
		return -ENOSYS
	default:
		return -EIO
	}
}

type entry struct {
	desc Desc
	ops  Ops
}

// Board is an in-memory Framework.
type Board struct {
	mu   sync.RWMutex
	regs map[string]entry
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{regs: make(map[string]entry)}
}

// Register implements Framework.
func (b *Board) Register(desc Desc, ops Ops) error {
	if desc.Name == "" || ops == nil {
		return fmt.Errorf("regulator: invalid registration %q", desc.Name)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.regs[desc.Name]; ok {
		return fmt.Errorf("%s: %w", desc.Name, ErrExists)
	}
	b.regs[desc.Name] = entry{desc: desc, ops: ops}
	return nil
}

// Unregister implements Framework. Unknown names are ignored.
func (b *Board) Unregister(name string) {
	b.mu.Lock()
	delete(b.regs, name)
	b.mu.Unlock()
}

// Lookup returns the ops registered under name.
func (b *Board) Lookup(name string) (Ops, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.regs[name]
	return e.ops, ok
}

// Names returns the registered names, ordered by Desc.ID.
func (b *Board) Names() []string {
	b.mu.RLock()
	entries := make([]entry, 0, len(b.regs))
	for _, e := range b.regs {
		entries = append(entries, e)
	}
	b.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].desc.ID != entries[j].desc.ID {
			return entries[i].desc.ID < entries[j].desc.ID
		}
		return entries[i].desc.Name < entries[j].desc.Name
	})
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.desc.Name
	}
	return names
}

// IsEnabled reports whether the named regulator is enabled.
func (b *Board) IsEnabled(name string) (bool, error) {
	ops, ok := b.Lookup(name)
	if !ok {
		return false, fmt.Errorf("%s: %w", name, ErrNoDevice)
	}
	return ops.IsEnabled(), nil
}

// Enable enables the named regulator.
func (b *Board) Enable(name string) error {
	ops, ok := b.Lookup(name)
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrNoDevice)
	}
	return ops.Enable()
}

// Disable disables the named regulator.
func (b *Board) Disable(name string) error {
	ops, ok := b.Lookup(name)
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrNoDevice)
	}
	return ops.Disable()
}

var _ Framework = (*Board)(nil)
