package footswitch

import (
	"sync"
	"testing"

	"github.com/gfs-power/gfs-go/pkg/log"
	"github.com/gfs-power/gfs-go/pkg/sim"
	"github.com/stretchr/testify/require"
)

const testRate = 100000000

// eventRecorder collects sequence events.
type eventRecorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *eventRecorder) Log(e log.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

type fixture struct {
	soc    *sim.SoC
	ctrl   *Controller
	events *eventRecorder
}

func newFixture(t *testing.T, policy PreparePolicy) *fixture {
	t.Helper()
	soc := sim.New()
	events := &eventRecorder{}
	ctrl, err := NewController(Config{
		Clocks:         soc,
		Bus:            soc,
		Registers:      soc,
		Delay:          soc,
		PreparePolicy:  policy,
		SequenceLogger: events,
	})
	require.NoError(t, err)
	return &fixture{soc: soc, ctrl: ctrl, events: events}
}

// rail builds and binds a rail whose clocks all start at testRate. The
// first clock named core_clk becomes the core clock.
func (f *fixture) rail(t *testing.T, id ID, profile Profile, ctl uintptr, ports [2]int, clocks ...string) *Rail {
	t.Helper()
	r := NewRail(id, ctl, profile)
	var specs []*ClockSpec
	for _, name := range clocks {
		if _, ok := f.soc.Clock(r.Name, name); !ok {
			f.soc.AddClock(r.Name, name, testRate)
		}
		c, err := f.soc.Get(r.Name, name)
		require.NoError(t, err)
		specs = append(specs, &ClockSpec{Name: name, Clock: c})
		if name == "core_clk" && r.CoreClock == nil {
			r.CoreClock = c
		}
	}
	r.Bind(specs, r.CoreClock, ports, f.soc.Register(ctl)&EnableBit != 0)
	f.soc.ResetJournal()
	return r
}

func (f *fixture) mdp(t *testing.T) *Rail {
	return f.rail(t, MDP, ProfileStandard, 0x190, [2]int{3, 4}, "core_clk", "iface_clk", "bus_clk")
}

func (f *fixture) gfx2d0(t *testing.T) *Rail {
	return f.rail(t, GFX2D0, ProfileGfx2D, 0x180, [2]int{6, 0}, "core_clk", "iface_clk")
}

func (f *fixture) gfx3d(t *testing.T) *Rail {
	return f.rail(t, GFX3D, ProfileStandard, 0x188, [2]int{8, 0}, "core_clk", "iface_clk")
}

func ofKind(j []sim.Op, kind sim.OpKind) []sim.Op {
	var out []sim.Op
	for _, op := range j {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

func forTarget(j []sim.Op, target string) []sim.Op {
	var out []sim.Op
	for _, op := range j {
		if op.Target == target {
			out = append(out, op)
		}
	}
	return out
}

func firstIndex(j []sim.Op, match func(sim.Op) bool) int {
	for i, op := range j {
		if match(op) {
			return i
		}
	}
	return -1
}

func lastIndex(j []sim.Op, match func(sim.Op) bool) int {
	for i := len(j) - 1; i >= 0; i-- {
		if match(j[i]) {
			return i
		}
	}
	return -1
}

func kinds(j []sim.Op) []sim.OpKind {
	out := make([]sim.OpKind, len(j))
	for i, op := range j {
		out[i] = op.Kind
	}
	return out
}

// assertClocksAtRest checks that every clock is gated, out of the
// sequencer's hands and back at its starting rate.
func assertClocksAtRest(t *testing.T, f *fixture, r *Rail, rate uint64) {
	t.Helper()
	for _, cs := range r.Clocks {
		require.False(t, cs.Enabled(), "%s still marked enabled", cs.Name)
		st, ok := f.soc.Clock(r.Name, cs.Name)
		require.True(t, ok)
		require.False(t, st.Enabled(), "%s still ungated", cs.Name)
		require.Equal(t, rate, st.Rate, "%s rate", cs.Name)
	}
}
