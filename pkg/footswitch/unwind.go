package footswitch

import "github.com/gfs-power/gfs-go/pkg/log"

// compensation undoes one completed step of a sequence.
type compensation struct {
	stage log.Stage
	what  string
	undo  func()
}

// unwinder records compensations as steps complete and runs them in
// reverse when a later step fails.
type unwinder struct {
	steps []compensation
}

func (u *unwinder) push(stage log.Stage, what string, undo func()) {
	u.steps = append(u.steps, compensation{stage: stage, what: what, undo: undo})
}

// unwind runs every recorded compensation, newest first, and forgets them.
func (u *unwinder) unwind(s *sequence) {
	for i := len(u.steps) - 1; i >= 0; i-- {
		c := u.steps[i]
		s.rollback(c.stage, c.what)
		c.undo()
	}
	u.steps = nil
}
