package log

import "time"

// Event represents a sequence log event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SequenceID identifies the Enable/Disable/Probe/Sweep call (UUID).
	SequenceID string `cbor:"2,keyasint"`

	// Op is the operation the sequence performs.
	Op Op `cbor:"3,keyasint"`

	// Stage within the sequence.
	Stage Stage `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RailID is the numeric rail identifier.
	RailID uint8 `cbor:"6,keyasint"`

	// Rail is the rail name (for example "fs_mdp").
	Rail string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (at most one of these will be set).
	Register    *RegisterEvent    `cbor:"10,keyasint,omitempty"`
	Clock       *ClockEvent       `cbor:"11,keyasint,omitempty"`
	Port        *PortEvent        `cbor:"12,keyasint,omitempty"`
	Delay       *DelayEvent       `cbor:"13,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"14,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"15,keyasint,omitempty"`
}

// Op identifies the operation that produced an event.
type Op uint8

const (
	// OpEnable is a rail power-up sequence.
	OpEnable Op = 0
	// OpDisable is a rail power-down sequence.
	OpDisable Op = 1
	// OpProbe binds a rail to its clocks and control register.
	OpProbe Op = 2
	// OpSweep is the late pass that powers down unclaimed rails.
	OpSweep Op = 3
	// OpRemove releases a rail's handles.
	OpRemove Op = 4
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpEnable:
		return "ENABLE"
	case OpDisable:
		return "DISABLE"
	case OpProbe:
		return "PROBE"
	case OpSweep:
		return "SWEEP"
	case OpRemove:
		return "REMOVE"
	default:
		return "UNKNOWN"
	}
}

// Stage identifies a step of a rail sequence.
type Stage uint8

const (
	StageCheck Stage = iota
	StageClockSetup
	StageBusUnhalt
	StageBusHalt
	StageResetAssert
	StageEnableWrite
	StageClampWrite
	StageResetDeassert
	StageCorePulse
	StageCoreGate
	StageRetention
	StageClockRestore
	StageRollback
	StageBind
	StageDone
)

var stageNames = [...]string{
	StageCheck:         "CHECK",
	StageClockSetup:    "CLOCK_SETUP",
	StageBusUnhalt:     "BUS_UNHALT",
	StageBusHalt:       "BUS_HALT",
	StageResetAssert:   "RESET_ASSERT",
	StageEnableWrite:   "ENABLE_WRITE",
	StageClampWrite:    "CLAMP_WRITE",
	StageResetDeassert: "RESET_DEASSERT",
	StageCorePulse:     "CORE_PULSE",
	StageCoreGate:      "CORE_GATE",
	StageRetention:     "RETENTION",
	StageClockRestore:  "CLOCK_RESTORE",
	StageRollback:      "ROLLBACK",
	StageBind:          "BIND",
	StageDone:          "DONE",
}

// String returns the stage name.
func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "UNKNOWN"
}

// Stages returns every defined stage in sequence order.
func Stages() []Stage {
	out := make([]Stage, len(stageNames))
	for i := range stageNames {
		out[i] = Stage(i)
	}
	return out
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryStep indicates a completed hardware step.
	CategoryStep Category = 0
	// CategoryState indicates a rail state change.
	CategoryState Category = 1
	// CategoryError indicates a failure.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryStep:
		return "STEP"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// RegisterEvent captures a control register write.
type RegisterEvent struct {
	// Addr is the register address.
	Addr uint64 `cbor:"1,keyasint"`

	// Value is the word written.
	Value uint32 `cbor:"2,keyasint"`
}

// ClockEvent captures a clock operation.
type ClockEvent struct {
	// Name is the clock name.
	Name string `cbor:"1,keyasint"`

	// Rate is the rate in Hz involved in the operation (0 if none).
	Rate uint64 `cbor:"2,keyasint,omitempty"`

	// Enabled reports the gate state after the operation.
	Enabled bool `cbor:"3,keyasint,omitempty"`
}

// PortEvent captures a bus port halt or unhalt.
type PortEvent struct {
	// ID is the bus port identifier.
	ID int `cbor:"1,keyasint"`

	// Halted reports the port state after the operation.
	Halted bool `cbor:"2,keyasint,omitempty"`
}

// DelayEvent captures a hardware settle delay.
type DelayEvent struct {
	// Duration of the delay. Stored as nanoseconds.
	Duration time.Duration `cbor:"1,keyasint"`
}

// StateChangeEvent captures rail state transitions.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures failures at any stage.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Code is the negative errno status reported to the framework (if any).
	Code *int `cbor:"2,keyasint,omitempty"`

	// Context describes what was being attempted.
	Context string `cbor:"3,keyasint,omitempty"`
}
