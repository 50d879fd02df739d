package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes sequence events to an slog.Logger.
// Useful during bring-up when you want to watch sequences on the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Error events are logged at
// Warn level, everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("seq", event.SequenceID),
		slog.String("op", event.Op.String()),
		slog.String("stage", event.Stage.String()),
		slog.String("category", event.Category.String()),
	}
	if event.Rail != "" {
		attrs = append(attrs, slog.String("rail", event.Rail))
	}

	level := slog.LevelDebug
	switch {
	case event.Register != nil:
		attrs = append(attrs,
			slog.Uint64("reg_addr", event.Register.Addr),
			slog.Uint64("reg_value", uint64(event.Register.Value)),
		)
	case event.Clock != nil:
		attrs = append(attrs, slog.String("clock", event.Clock.Name))
		if event.Clock.Rate != 0 {
			attrs = append(attrs, slog.Uint64("rate", event.Clock.Rate))
		}
		attrs = append(attrs, slog.Bool("clock_enabled", event.Clock.Enabled))
	case event.Port != nil:
		attrs = append(attrs,
			slog.Int("port", event.Port.ID),
			slog.Bool("halted", event.Port.Halted),
		)
	case event.Delay != nil:
		attrs = append(attrs, slog.Duration("delay", event.Delay.Duration))
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "sequence", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
