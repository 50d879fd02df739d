package footswitch

import (
	"errors"

	"github.com/gfs-power/gfs-go/pkg/hw"
	"github.com/gfs-power/gfs-go/pkg/log"
)

// setupClocks brings every clock of the rail to a sequencing rate and
// enables it. On failure every clock already touched is returned to its
// previous rate and gating before the error is returned.
func (c *Controller) setupClocks(s *sequence) error {
	r := s.rail
	var u unwinder

	for _, cs := range r.Clocks {
		cs.rate = c.clocks.Rate(cs.Clock)
		changed := false

		if cs.rate == 0 || cs.ResetRate != 0 {
			target := cs.ResetRate
			if target == 0 {
				target = DefaultRate
			}
			err := c.clocks.SetRate(cs.Clock, target)
			switch {
			case err == nil:
				changed = true
			case errors.Is(err, hw.ErrNotSupported):
			default:
				u.unwind(s)
				return s.fail(log.StageClockSetup, &ClockRateError{
					Rail:  r.Name,
					Clock: cs.Name,
					Rate:  target,
					Err:   err,
				})
			}
		}

		if err := c.clocks.PrepareEnable(cs.Clock); err != nil {
			cs.enabled = false
			if c.policy == PrepareStrict {
				if changed && cs.rate != 0 {
					_ = c.clocks.SetRate(cs.Clock, cs.rate)
				}
				u.unwind(s)
				return s.fail(log.StageClockSetup, &ClockPrepareError{
					Rail:  r.Name,
					Clock: cs.Name,
					Err:   err,
				})
			}
			c.logger.Warn("clock prepare failed, continuing",
				"rail", r.Name, "clock", cs.Name, "seq", s.id, "error", err)
			s.emit(log.Event{
				Stage:    log.StageClockSetup,
				Category: log.CategoryError,
				Clock:    &log.ClockEvent{Name: cs.Name, Rate: c.clocks.Rate(cs.Clock)},
				Error:    &log.ErrorEventData{Message: err.Error(), Context: "prepare"},
			})
		} else {
			cs.enabled = true
		}
		s.clock(log.StageClockSetup, cs.Name, c.clocks.Rate(cs.Clock), cs.enabled)

		held := cs
		u.push(log.StageClockSetup, held.Name, func() {
			if held.enabled {
				c.clocks.DisableUnprepare(held.Clock)
				held.enabled = false
			}
			if held.rate != 0 {
				_ = c.clocks.SetRate(held.Clock, held.rate)
			}
		})
	}
	return nil
}

// restoreClocks releases every clock setupClocks enabled and restores the
// recorded rates. Restore failures are logged, never returned.
func (c *Controller) restoreClocks(s *sequence) {
	r := s.rail
	for _, cs := range r.Clocks {
		if cs.enabled {
			c.clocks.DisableUnprepare(cs.Clock)
			cs.enabled = false
		}
		if cs.rate == 0 {
			continue
		}
		if err := c.clocks.SetRate(cs.Clock, cs.rate); err != nil && !errors.Is(err, hw.ErrNotSupported) {
			c.logger.Error("failed to restore clock rate",
				"rail", r.Name, "clock", cs.Name, "rate", cs.rate, "seq", s.id, "error", err)
			s.emit(log.Event{
				Stage:    log.StageClockRestore,
				Category: log.CategoryError,
				Clock:    &log.ClockEvent{Name: cs.Name, Rate: cs.rate},
				Error:    &log.ErrorEventData{Message: err.Error(), Context: "restore rate"},
			})
			continue
		}
		s.clock(log.StageClockRestore, cs.Name, cs.rate, false)
	}
}
