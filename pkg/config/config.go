package config

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gfs-power/gfs-go/pkg/footswitch"
	"github.com/gfs-power/gfs-go/pkg/regulator"
)

//go:embed boards/*.yaml
var boardFS embed.FS

// DefaultBoard is the name of the built-in board.
const DefaultBoard = "msm8x60"

// Board describes the rails of one SoC.
type Board struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// MMSSBase is the base address of the multimedia clock control block.
	// Rail control registers sit at fixed offsets from it.
	MMSSBase uint64 `yaml:"mmss_base"`

	// PreparePolicy is "permissive" (default) or "strict".
	PreparePolicy string `yaml:"prepare_policy"`

	Rails map[string]Rail `yaml:"rails"`
}

// Rail is the init data of one rail.
type Rail struct {
	BusPorts []int   `yaml:"bus_ports"`
	Clocks   []Clock `yaml:"clocks"`
}

// Clock is one clock of a rail.
type Clock struct {
	Name      string `yaml:"name"`
	ResetRate uint64 `yaml:"reset_rate"`

	// SimRate is the rate the simulator starts the clock at.
	SimRate uint64 `yaml:"sim_rate"`

	// SimFixed makes the simulated clock refuse rate changes.
	SimFixed bool `yaml:"sim_fixed"`
}

// ValidationError reports an invalid board field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// LoadError reports a board that could not be read or parsed.
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Cause }

// Parse decodes and validates a board.
func Parse(data []byte) (*Board, error) {
	var b Board
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Load reads a board from path.
func Load(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}
	b, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
		}
		return nil, err
	}
	return b, nil
}

// Builtin returns the named built-in board.
func Builtin(name string) (*Board, error) {
	data, err := boardFS.ReadFile("boards/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("board %q not found: %w", name, err)
	}
	return Parse(data)
}

// Default returns the built-in MSM8x60 board.
func Default() (*Board, error) {
	return Builtin(DefaultBoard)
}

// Builtins lists the names of the built-in boards.
func Builtins() []string {
	entries, err := boardFS.ReadDir("boards")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
		}
	}
	sort.Strings(names)
	return names
}

// Validate checks rail names, clocks and bus ports.
func (b *Board) Validate() error {
	if _, err := footswitch.ParsePreparePolicy(b.PreparePolicy); err != nil {
		return &ValidationError{Field: "prepare_policy", Message: err.Error()}
	}
	if len(b.Rails) == 0 {
		return &ValidationError{Field: "rails", Message: "at least one rail is required"}
	}

	for _, name := range b.RailNames() {
		r := b.Rails[name]
		field := "rails." + name
		if _, ok := footswitch.ParseID(name); !ok {
			return &ValidationError{Field: field, Message: "unknown rail"}
		}
		if len(r.BusPorts) > 2 {
			return &ValidationError{Field: field + ".bus_ports", Message: "at most two ports"}
		}
		for _, p := range r.BusPorts {
			if p < 0 {
				return &ValidationError{Field: field + ".bus_ports", Message: fmt.Sprintf("invalid port %d", p)}
			}
		}
		if len(r.Clocks) == 0 {
			return &ValidationError{Field: field + ".clocks", Message: "at least one clock is required"}
		}

		seen := make(map[string]bool, len(r.Clocks))
		core := false
		for i, c := range r.Clocks {
			if c.Name == "" {
				return &ValidationError{Field: fmt.Sprintf("%s.clocks[%d]", field, i), Message: "name is required"}
			}
			if seen[c.Name] {
				return &ValidationError{Field: fmt.Sprintf("%s.clocks[%d]", field, i), Message: "duplicate clock " + c.Name}
			}
			seen[c.Name] = true
			if strings.HasPrefix(c.Name, "core_clk") {
				core = true
			}
		}
		if !core {
			return &ValidationError{Field: field + ".clocks", Message: "no core_clk"}
		}
	}
	return nil
}

// Policy returns the parsed prepare policy.
func (b *Board) Policy() footswitch.PreparePolicy {
	p, _ := footswitch.ParsePreparePolicy(b.PreparePolicy)
	return p
}

// RailNames returns the configured rail names in rail ID order.
func (b *Board) RailNames() []string {
	names := make([]string, 0, len(b.Rails))
	for name := range b.Rails {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, aok := footswitch.ParseID(names[i])
		c, cok := footswitch.ParseID(names[j])
		if aok != cok {
			return aok
		}
		if a != c {
			return a < c
		}
		return names[i] < names[j]
	})
	return names
}

// InitData returns the regulator init data of the rail.
func (b *Board) InitData(id footswitch.ID) (regulator.InitData, bool) {
	r, ok := b.Rails[id.String()]
	if !ok {
		return regulator.InitData{}, false
	}
	var d regulator.InitData
	copy(d.BusPorts[:], r.BusPorts)
	for _, c := range r.Clocks {
		d.Clocks = append(d.Clocks, regulator.ClockInit{Name: c.Name, ResetRate: c.ResetRate})
	}
	return d, true
}
