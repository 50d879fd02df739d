package registry

import (
	"fmt"

	"github.com/gfs-power/gfs-go/pkg/footswitch"
	"github.com/gfs-power/gfs-go/pkg/log"
)

// LateSweep disables every bound rail that no consumer claimed. It runs at
// most once; later calls return ErrAlreadySwept. Per-rail failures are
// joined and do not stop the sweep. The rails disabled are returned.
func (r *Registry) LateSweep() ([]*footswitch.Rail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.swept {
		return nil, ErrAlreadySwept
	}
	r.swept = true

	seq := r.newID()
	r.emit(seq, log.OpSweep, nil, log.Event{Stage: log.StageCheck, Category: log.CategoryStep})

	swept, err := r.ctrl.DisableUnclaimed(r.rails[:])

	names := make([]string, len(swept))
	for i, rail := range swept {
		names[i] = rail.Name
	}
	r.logger.Info("late sweep done", "disabled", names, "seq", seq)

	done := log.Event{
		Stage:    log.StageDone,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: "PENDING",
			NewState: "SWEPT",
			Reason:   fmt.Sprintf("%d rails disabled", len(swept)),
		},
	}
	if err != nil {
		r.logger.Error("late sweep failures", "seq", seq, "error", err)
		done.Category = log.CategoryError
		done.Error = &log.ErrorEventData{Message: err.Error(), Context: "sweep"}
	}
	r.emit(seq, log.OpSweep, nil, done)
	return swept, err
}

// Swept reports whether the late sweep has run.
func (r *Registry) Swept() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.swept
}

// MarkSwept records that the late sweep already ran, for restoring
// persisted state.
func (r *Registry) MarkSwept() {
	r.mu.Lock()
	r.swept = true
	r.mu.Unlock()
}
