package footswitch

import (
	"time"

	"github.com/gfs-power/gfs-go/pkg/hw"
)

// Control register bits.
const (
	// DelayCountMask covers the ramp delay count field.
	DelayCountMask uint32 = 0x1f

	// DelayCount is the ramp delay count programmed at probe.
	DelayCount uint32 = 31

	// ClampBit isolates the rail's outputs while set.
	ClampBit uint32 = 1 << 5

	// EnableBit switches the rail on.
	EnableBit uint32 = 1 << 8

	// RetentionBit keeps the rail's state across low-power transitions.
	RetentionBit uint32 = 1 << 9
)

// Sequence timing.
const (
	// ResetDelay is the settle time after asserting or releasing reset.
	ResetDelay = time.Microsecond

	// ClampDelay separates the enable write from the clamp release.
	ClampDelay = time.Microsecond

	// Gfx2DDisableSettle is the post-reset settle of a 2D core power-down.
	Gfx2DDisableSettle = 5 * time.Microsecond
)

// DefaultRate is the rate in Hz forced on a clock that reports no rate.
const DefaultRate uint64 = 27000000

// ID identifies a rail.
type ID uint8

// Rail identifiers.
const (
	GFX2D0 ID = iota
	GFX2D1
	GFX3D
	IJPEG
	MDP
	ROT
	VED
	VFE
	VPE
	VCAP

	// NumRails is the number of known rails.
	NumRails
)

var railNames = [NumRails]string{
	GFX2D0: "fs_gfx2d0",
	GFX2D1: "fs_gfx2d1",
	GFX3D:  "fs_gfx3d",
	IJPEG:  "fs_ijpeg",
	MDP:    "fs_mdp",
	ROT:    "fs_rot",
	VED:    "fs_ved",
	VFE:    "fs_vfe",
	VPE:    "fs_vpe",
	VCAP:   "fs_vcap",
}

// String returns the rail's regulator name.
func (id ID) String() string {
	if id < NumRails {
		return railNames[id]
	}
	return "UNKNOWN"
}

// ParseID returns the rail with the given regulator name.
func ParseID(name string) (ID, bool) {
	for i, n := range railNames {
		if n == name {
			return ID(i), true
		}
	}
	return 0, false
}

// Profile selects the sequence variant of a rail.
type Profile uint8

const (
	// ProfileStandard is used by every rail except the 2D cores.
	ProfileStandard Profile = iota

	// ProfileGfx2D gates the core clock around reset and has one bus port.
	ProfileGfx2D
)

// String returns a human-readable profile name.
func (p Profile) String() string {
	switch p {
	case ProfileStandard:
		return "standard"
	case ProfileGfx2D:
		return "gfx2d"
	default:
		return "unknown"
	}
}

func (p Profile) maxPorts() int {
	if p == ProfileGfx2D {
		return 1
	}
	return 2
}

func (p Profile) gatesCoreClock() bool {
	return p == ProfileGfx2D
}

func (p Profile) disableSettle() time.Duration {
	if p == ProfileGfx2D {
		return Gfx2DDisableSettle
	}
	return ResetDelay
}

// State is the sequencing state of a rail.
type State uint8

const (
	StateDisabled State = iota
	StateEnabling
	StateEnabled
	StateDisabling
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisabled:
		return "DISABLED"
	case StateEnabling:
		return "ENABLING"
	case StateEnabled:
		return "ENABLED"
	case StateDisabling:
		return "DISABLING"
	default:
		return "UNKNOWN"
	}
}

// ClockSpec is one clock of a rail.
type ClockSpec struct {
	// Name is the clock's consumer name.
	Name string

	// Clock is the bound handle. Nil until the rail is bound.
	Clock hw.Clock

	// ResetRate, when non-zero, is forced on the clock for every sequence.
	ResetRate uint64

	// rate is the rate observed at the start of the current sequence.
	rate uint64

	// enabled is set while the sequencer holds the clock prepared.
	enabled bool
}

// Rate returns the rate observed at the start of the last sequence.
func (cs *ClockSpec) Rate() uint64 { return cs.rate }

// Enabled reports whether the sequencer currently holds the clock enabled.
func (cs *ClockSpec) Enabled() bool { return cs.enabled }

// Rail is a single power domain.
type Rail struct {
	ID      ID
	Name    string
	Ctl     uintptr
	Profile Profile

	// BusPorts holds up to two fabric port ids. Zero means no port.
	BusPorts [2]int

	// Clocks are sequenced in order; reset assertion walks them backwards.
	Clocks []*ClockSpec

	// CoreClock is the clock whose retention flag tracks the rail.
	CoreClock hw.Clock

	state   State
	claimed bool
	bound   bool
}

// NewRail returns an unbound rail.
func NewRail(id ID, ctl uintptr, profile Profile) *Rail {
	return &Rail{
		ID:      id,
		Name:    id.String(),
		Ctl:     ctl,
		Profile: profile,
	}
}

// Bind attaches clocks and bus ports. enabled seeds the cached enable state
// from the hardware.
func (r *Rail) Bind(clocks []*ClockSpec, core hw.Clock, ports [2]int, enabled bool) {
	r.Clocks = clocks
	r.CoreClock = core
	r.BusPorts = ports
	r.bound = true
	if enabled {
		r.state = StateEnabled
	} else {
		r.state = StateDisabled
	}
}

// Unbind drops the clock handles. The caller releases them.
func (r *Rail) Unbind() {
	r.Clocks = nil
	r.CoreClock = nil
	r.bound = false
}

// Bound reports whether the rail has clock handles attached.
func (r *Rail) Bound() bool { return r.bound }

// Enabled returns the cached enable state.
func (r *Rail) Enabled() bool { return r.state == StateEnabled }

// State returns the current sequencing state.
func (r *Rail) State() State { return r.state }

// busPort is a configured fabric port and its slot (0 or 1).
type busPort struct {
	slot int
	id   int
}

// ports returns the configured bus ports this rail's profile considers.
func (r *Rail) ports() []busPort {
	var out []busPort
	for i, p := range r.BusPorts[:r.Profile.maxPorts()] {
		if p != 0 {
			out = append(out, busPort{slot: i, id: p})
		}
	}
	return out
}
