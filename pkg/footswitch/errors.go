package footswitch

import (
	"errors"
	"fmt"
)

// Controller errors.
var (
	ErrMissingBackend = errors.New("footswitch: missing hardware backend")
	ErrNotBound       = errors.New("footswitch: rail not bound")
)

// ClockRateError reports a clock that could not be set to its sequencing
// rate. No register write happened and all clocks were restored.
type ClockRateError struct {
	Rail  string
	Clock string
	Rate  uint64
	Err   error
}

func (e *ClockRateError) Error() string {
	return fmt.Sprintf("%s: set %s rate to %d Hz: %v", e.Rail, e.Clock, e.Rate, e.Err)
}

func (e *ClockRateError) Unwrap() error { return e.Err }

// ClockPrepareError reports a clock that could not be prepared and enabled.
// It is only returned under PrepareStrict.
type ClockPrepareError struct {
	Rail  string
	Clock string
	Err   error
}

func (e *ClockPrepareError) Error() string {
	return fmt.Sprintf("%s: prepare %s: %v", e.Rail, e.Clock, e.Err)
}

func (e *ClockPrepareError) Unwrap() error { return e.Err }

// BusOp is the bus port operation that failed.
type BusOp uint8

const (
	BusHalt BusOp = iota
	BusUnhalt
)

// String returns the operation name.
func (o BusOp) String() string {
	if o == BusUnhalt {
		return "unhalt"
	}
	return "halt"
}

// BusError reports a failed bus port halt or unhalt. Completed steps were
// rolled back.
type BusError struct {
	Rail string
	Op   BusOp
	Slot int
	Port int
	Err  error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("%s: port %d (%d) %s failed: %v", e.Rail, e.Slot, e.Port, e.Op, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }
