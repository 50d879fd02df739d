package footswitch

import (
	"time"

	"github.com/gfs-power/gfs-go/pkg/log"
)

// sequence carries the identity of one Enable/Disable call and emits its
// events to the sequence logger.
type sequence struct {
	c    *Controller
	id   string
	op   log.Op
	rail *Rail
}

func (c *Controller) begin(op log.Op, r *Rail) *sequence {
	return &sequence{c: c, id: c.newID(), op: op, rail: r}
}

func (s *sequence) emit(e log.Event) {
	e.Timestamp = s.c.now()
	e.SequenceID = s.id
	e.Op = s.op
	e.RailID = uint8(s.rail.ID)
	e.Rail = s.rail.Name
	s.c.seqLog.Log(e)
}

func (s *sequence) write(stage log.Stage, v uint32) {
	s.c.regs.Write32(s.rail.Ctl, v)
	s.emit(log.Event{
		Stage:    stage,
		Category: log.CategoryStep,
		Register: &log.RegisterEvent{Addr: uint64(s.rail.Ctl), Value: v},
	})
}

func (s *sequence) delay(stage log.Stage, d time.Duration) {
	s.c.delay.Delay(d)
	s.emit(log.Event{
		Stage:    stage,
		Category: log.CategoryStep,
		Delay:    &log.DelayEvent{Duration: d},
	})
}

func (s *sequence) clock(stage log.Stage, name string, rate uint64, enabled bool) {
	s.emit(log.Event{
		Stage:    stage,
		Category: log.CategoryStep,
		Clock:    &log.ClockEvent{Name: name, Rate: rate, Enabled: enabled},
	})
}

func (s *sequence) port(stage log.Stage, id int, halted bool) {
	s.emit(log.Event{
		Stage:    stage,
		Category: log.CategoryStep,
		Port:     &log.PortEvent{ID: id, Halted: halted},
	})
}

func (s *sequence) transition(from, to State, reason string) {
	s.emit(log.Event{
		Stage:    log.StageDone,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: from.String(),
			NewState: to.String(),
			Reason:   reason,
		},
	})
}

func (s *sequence) rollback(stage log.Stage, what string) {
	s.emit(log.Event{
		Stage:    log.StageRollback,
		Category: log.CategoryStep,
		Error:    &log.ErrorEventData{Message: "undo " + stage.String(), Context: what},
	})
}

// fail logs err and returns it.
func (s *sequence) fail(stage log.Stage, err error) error {
	s.c.logger.Error("rail sequence failed",
		"rail", s.rail.Name,
		"op", s.op.String(),
		"stage", stage.String(),
		"seq", s.id,
		"error", err)
	s.emit(log.Event{
		Stage:    stage,
		Category: log.CategoryError,
		Error:    &log.ErrorEventData{Message: err.Error(), Context: s.op.String()},
	})
	return err
}
