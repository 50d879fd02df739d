package footswitch

import (
	"time"

	"github.com/gfs-power/gfs-go/pkg/log"
)

func (c *Controller) enable(r *Rail) error {
	s := c.begin(log.OpEnable, r)

	regval := c.regs.Read32(r.Ctl)
	if regval&(EnableBit|ClampBit) == EnableBit {
		r.state = StateEnabled
		s.emit(log.Event{Stage: log.StageCheck, Category: log.CategoryStep})
		return nil
	}

	prev := r.state
	r.state = StateEnabling
	s.transition(prev, StateEnabling, "")

	var u unwinder
	if err := c.setupClocks(s); err != nil {
		r.state = prev
		return err
	}
	u.push(log.StageClockRestore, "restore clocks", func() { c.restoreClocks(s) })

	for _, p := range r.ports() {
		if err := c.bus.UnhaltPort(p.id); err != nil {
			err = &BusError{Rail: r.Name, Op: BusUnhalt, Slot: p.slot, Port: p.id, Err: err}
			u.unwind(s)
			r.state = prev
			return s.fail(log.StageBusUnhalt, err)
		}
		s.port(log.StageBusUnhalt, p.id, false)

		id := p.id
		u.push(log.StageBusUnhalt, "halt port", func() { _ = c.bus.HaltPort(id) })
	}

	// The 2D core clock would otherwise run through the reset window.
	if r.Profile.gatesCoreClock() {
		c.clocks.DisableUnprepare(r.CoreClock)
		s.clock(log.StageCoreGate, r.CoreClock.Name(), 0, false)
	}

	c.assertResets(s, ResetDelay)

	// Enable and unclamp are separate writes; isolation is removed only
	// after the rail has been switched on for ClampDelay.
	regval |= EnableBit
	s.write(log.StageEnableWrite, regval)
	c.regs.Barrier()
	s.delay(log.StageEnableWrite, ClampDelay)

	regval &^= ClampBit
	s.write(log.StageClampWrite, regval)

	c.deassertResets(s)

	if r.Profile.gatesCoreClock() {
		s.delay(log.StageResetDeassert, ResetDelay)
		c.ungateCore(s)
	}

	// Hardware erratum: the 3D core needs its reset pulsed after power-up.
	if r.ID == GFX3D {
		c.clocks.AssertReset(r.CoreClock)
		s.clock(log.StageCorePulse, r.CoreClock.Name(), 0, false)
		s.delay(log.StageCorePulse, ResetDelay)
		c.clocks.DeassertReset(r.CoreClock)
		s.clock(log.StageCorePulse, r.CoreClock.Name(), 0, true)
		s.delay(log.StageCorePulse, ResetDelay)
	}

	c.clocks.SetRetention(r.CoreClock, true)
	s.clock(log.StageRetention, r.CoreClock.Name(), 0, true)

	c.restoreClocks(s)

	r.state = StateEnabled
	s.transition(StateEnabling, StateEnabled, "")
	return nil
}

func (c *Controller) disable(r *Rail, reason string) error {
	s := c.begin(log.OpDisable, r)

	regval := c.regs.Read32(r.Ctl)
	if regval&EnableBit == 0 {
		r.state = StateDisabled
		s.emit(log.Event{Stage: log.StageCheck, Category: log.CategoryStep})
		return nil
	}

	prev := r.state
	r.state = StateDisabling
	s.transition(prev, StateDisabling, reason)

	var u unwinder
	if err := c.setupClocks(s); err != nil {
		r.state = prev
		return err
	}
	u.push(log.StageClockRestore, "restore clocks", func() { c.restoreClocks(s) })

	c.clocks.SetRetention(r.CoreClock, false)
	s.clock(log.StageRetention, r.CoreClock.Name(), 0, false)
	u.push(log.StageRetention, "retain core clock", func() { c.clocks.SetRetention(r.CoreClock, true) })

	for _, p := range r.ports() {
		if err := c.bus.HaltPort(p.id); err != nil {
			err = &BusError{Rail: r.Name, Op: BusHalt, Slot: p.slot, Port: p.id, Err: err}
			u.unwind(s)
			r.state = prev
			return s.fail(log.StageBusHalt, err)
		}
		s.port(log.StageBusHalt, p.id, true)

		id := p.id
		u.push(log.StageBusHalt, "unhalt port", func() { _ = c.bus.UnhaltPort(id) })
	}

	if r.Profile.gatesCoreClock() {
		c.clocks.DisableUnprepare(r.CoreClock)
		s.clock(log.StageCoreGate, r.CoreClock.Name(), 0, false)
	}

	c.assertResets(s, r.Profile.disableSettle())

	if !r.Profile.gatesCoreClock() {
		c.restoreClocks(s)
	}

	regval |= ClampBit
	s.write(log.StageClampWrite, regval)
	regval &^= EnableBit
	s.write(log.StageEnableWrite, regval)

	if r.Profile.gatesCoreClock() {
		c.ungateCore(s)
		c.restoreClocks(s)
	}

	r.state = StateDisabled
	s.transition(StateDisabling, StateDisabled, reason)
	return nil
}

// assertResets puts every clock of the rail into reset, last clock first,
// then waits settle.
func (c *Controller) assertResets(s *sequence, settle time.Duration) {
	clocks := s.rail.Clocks
	for i := len(clocks) - 1; i >= 0; i-- {
		c.clocks.AssertReset(clocks[i].Clock)
		s.clock(log.StageResetAssert, clocks[i].Name, 0, clocks[i].enabled)
	}
	s.delay(log.StageResetAssert, settle)
}

// deassertResets releases reset on every clock, first clock first.
func (c *Controller) deassertResets(s *sequence) {
	for _, cs := range s.rail.Clocks {
		c.clocks.DeassertReset(cs.Clock)
		s.clock(log.StageResetDeassert, cs.Name, 0, cs.enabled)
	}
}

// ungateCore re-enables the core clock gated for the reset window. A
// failure is logged; the sequence has already switched the rail.
func (c *Controller) ungateCore(s *sequence) {
	core := s.rail.CoreClock
	if err := c.clocks.PrepareEnable(core); err != nil {
		c.logger.Warn("core clock re-enable failed",
			"rail", s.rail.Name, "clock", core.Name(), "seq", s.id, "error", err)
		s.emit(log.Event{
			Stage:    log.StageCoreGate,
			Category: log.CategoryError,
			Clock:    &log.ClockEvent{Name: core.Name()},
			Error:    &log.ErrorEventData{Message: err.Error(), Context: "core prepare"},
		})
		return
	}
	s.clock(log.StageCoreGate, core.Name(), 0, true)
}
