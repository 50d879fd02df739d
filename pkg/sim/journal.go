package sim

import (
	"fmt"
	"time"
)

// OpKind identifies a journaled hardware operation.
type OpKind uint8

const (
	OpRead OpKind = iota
	OpWrite
	OpBarrier
	OpGetClock
	OpPutClock
	OpSetRate
	OpPrepareEnable
	OpDisableUnprepare
	OpAssertReset
	OpDeassertReset
	OpRetention
	OpHalt
	OpUnhalt
	OpDelay
)

var opNames = [...]string{
	OpRead:             "read",
	OpWrite:            "write",
	OpBarrier:          "barrier",
	OpGetClock:         "get",
	OpPutClock:         "put",
	OpSetRate:          "set_rate",
	OpPrepareEnable:    "prepare_enable",
	OpDisableUnprepare: "disable_unprepare",
	OpAssertReset:      "assert_reset",
	OpDeassertReset:    "deassert_reset",
	OpRetention:        "retention",
	OpHalt:             "halt",
	OpUnhalt:           "unhalt",
	OpDelay:            "delay",
}

// String returns the operation name.
func (k OpKind) String() string {
	if int(k) < len(opNames) {
		return opNames[k]
	}
	return "unknown"
}

// Op is one journaled operation.
type Op struct {
	Kind OpKind

	// Target is "consumer/clock" for clock operations, the hex address for
	// register operations and the port number for bus operations.
	Target string

	// Value is the register word, rate in Hz, retention flag (0/1) or delay
	// in nanoseconds.
	Value uint64

	// Failed is set when the operation returned an injected fault.
	Failed bool
}

// String formats the operation for display.
func (o Op) String() string {
	var s string
	switch o.Kind {
	case OpWrite, OpRead:
		s = fmt.Sprintf("%s %s=%#x", o.Kind, o.Target, o.Value)
	case OpSetRate:
		s = fmt.Sprintf("%s %s=%d", o.Kind, o.Target, o.Value)
	case OpRetention:
		s = fmt.Sprintf("%s %s=%t", o.Kind, o.Target, o.Value != 0)
	case OpDelay:
		s = fmt.Sprintf("%s %v", o.Kind, time.Duration(o.Value))
	case OpBarrier:
		s = o.Kind.String()
	default:
		s = fmt.Sprintf("%s %s", o.Kind, o.Target)
	}
	if o.Failed {
		s += " (failed)"
	}
	return s
}
