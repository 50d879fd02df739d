package registry

import (
	"errors"
	"fmt"

	"github.com/gfs-power/gfs-go/pkg/regulator"
)

// Registry errors.
var (
	ErrUnknownRail  = fmt.Errorf("registry: unknown rail: %w", regulator.ErrNoDevice)
	ErrAlreadySwept = errors.New("registry: late sweep already ran")
)

// Stage identifies where a probe failed.
type Stage string

const (
	StageBind      Stage = "bind"
	StageClockGet  Stage = "clock_get"
	StageCoreClock Stage = "core_clock"
	StageRegister  Stage = "register"
)

// RegistrationError reports a failed probe. Clocks acquired before the
// failure have been released.
type RegistrationError struct {
	Rail  string
	Stage Stage

	// Clock is set for StageClockGet.
	Clock string

	Err error
}

func (e *RegistrationError) Error() string {
	if e.Clock != "" {
		return fmt.Sprintf("%s: %s %s: %v", e.Rail, e.Stage, e.Clock, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Rail, e.Stage, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }
