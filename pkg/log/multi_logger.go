package log

// MultiLogger fans events out to several loggers, typically the console
// SlogAdapter and a FileLogger journal. Nil entries are skipped so callers
// can pass optional sinks without branching.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger returns a MultiLogger over the non-nil loggers.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

// Len returns the number of attached sinks.
func (m *MultiLogger) Len() int { return len(m.loggers) }

// Log forwards event to every sink in order.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

var _ Logger = (*MultiLogger)(nil)
