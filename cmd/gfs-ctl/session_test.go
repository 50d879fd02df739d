package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfs-power/gfs-go/pkg/footswitch"
	"github.com/gfs-power/gfs-go/pkg/log"
	"github.com/gfs-power/gfs-go/pkg/registry"
)

func openSession(t *testing.T, opts Options) *session {
	t.Helper()
	s, err := newSession(opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.close() })
	return s
}

func TestSessionProbesDefaultBoard(t *testing.T) {
	s := openSession(t, Options{})

	assert.Len(t, s.RailNames(), int(footswitch.NumRails))
	for _, r := range s.reg.Rails() {
		assert.True(t, r.Bound(), r.Name)
		assert.Equal(t, footswitch.DelayCount, s.soc.Register(r.Ctl)&footswitch.DelayCountMask, r.Name)
	}

	var buf bytes.Buffer
	s.Status(&buf)
	out := buf.String()
	assert.Contains(t, out, "fs_gfx2d0")
	assert.Contains(t, out, "gfx2d")
	assert.Contains(t, out, "0x4000254")
	assert.Contains(t, out, "late sweep: pending")
}

func TestSessionEnableUsesBoardClocks(t *testing.T) {
	s := openSession(t, Options{})

	require.NoError(t, s.Enable("fs_mdp"))

	rail, _ := s.reg.Lookup("fs_mdp")
	assert.True(t, rail.Enabled())
	assert.NotEmpty(t, s.soc.Journal())

	// Clocks seeded at rate 0 keep the reference rate afterwards.
	st, ok := s.soc.Clock("fs_mdp", "core_clk")
	require.True(t, ok)
	assert.Equal(t, footswitch.DefaultRate, st.Rate)
	assert.False(t, st.Enabled())

	// tv_clk cannot change rate; the sequence tolerates it.
	tv, _ := s.soc.Clock("fs_mdp", "tv_clk")
	assert.Zero(t, tv.Rate)

	var buf bytes.Buffer
	s.Clocks(&buf)
	assert.Contains(t, buf.String(), "fs_mdp/tv_src_clk")

	buf.Reset()
	s.Journal(&buf)
	assert.Contains(t, buf.String(), "unhalt 1")
}

func TestSessionPersistsClaimsAndSweep(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state.json")

	s1 := openSession(t, Options{StateFile: state})
	require.NoError(t, s1.Enable("fs_mdp"))
	require.NoError(t, s1.save())
	require.NoError(t, s1.close())

	s2 := openSession(t, Options{StateFile: state})
	mdp, _ := s2.reg.Lookup("fs_mdp")
	assert.True(t, mdp.Enabled(), "enabled state seeded from restored register")
	assert.True(t, s2.reg.Controller().Claimed(mdp))

	names, err := s2.Sweep()
	require.NoError(t, err)
	assert.Len(t, names, int(footswitch.NumRails)-1)
	assert.NotContains(t, names, "fs_mdp")
	assert.True(t, mdp.Enabled())
	require.NoError(t, s2.save())
	require.NoError(t, s2.close())

	s3 := openSession(t, Options{StateFile: state})
	_, err = s3.Sweep()
	assert.ErrorIs(t, err, registry.ErrAlreadySwept)
}

func TestSessionTrace(t *testing.T) {
	trace := filepath.Join(t.TempDir(), "trace.glog")

	s := openSession(t, Options{TraceFile: trace})
	require.NoError(t, s.Enable("fs_gfx3d"))
	require.NoError(t, s.close())

	reader, err := log.NewReader(trace)
	require.NoError(t, err)
	defer reader.Close()

	ops := make(map[log.Op]int)
	var pulses int
	for {
		e, err := reader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		ops[e.Op]++
		if e.Stage == log.StageCorePulse && e.Rail == "fs_gfx3d" {
			pulses++
		}
	}
	assert.Positive(t, ops[log.OpProbe])
	assert.Positive(t, ops[log.OpEnable])
	assert.Positive(t, pulses)
}

func TestSessionFaults(t *testing.T) {
	s := openSession(t, Options{})

	require.NoError(t, s.Fault([]string{"unhalt", "2"}))
	err := s.Enable("fs_mdp")
	var busErr *footswitch.BusError
	require.ErrorAs(t, err, &busErr)
	assert.Equal(t, 2, busErr.Port)

	require.NoError(t, s.Fault([]string{"clear"}))
	require.NoError(t, s.Enable("fs_mdp"))

	assert.Error(t, s.Fault(nil))
	assert.Error(t, s.Fault([]string{"melt"}))
	assert.Error(t, s.Fault([]string{"halt"}))
	assert.Error(t, s.Fault([]string{"halt", "x"}))
	assert.Error(t, s.Fault([]string{"prepare", "fs_mdp", "nope_clk"}))
	assert.NoError(t, s.Fault([]string{"rate", "fs_rot", "core_clk"}))
}

func TestSessionStrict(t *testing.T) {
	s := openSession(t, Options{Strict: true})
	require.NoError(t, s.Fault([]string{"prepare", "fs_vpe", "iface_clk"}))

	err := s.Enable("fs_vpe")
	var prepErr *footswitch.ClockPrepareError
	require.ErrorAs(t, err, &prepErr)
	assert.Equal(t, "iface_clk", prepErr.Clock)

	lenient := openSession(t, Options{})
	require.NoError(t, lenient.Fault([]string{"prepare", "fs_vpe", "iface_clk"}))
	assert.NoError(t, lenient.Enable("fs_vpe"))
}

func TestSessionBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rails: {fs_gpu: {clocks: [{name: core_clk}]}}"), 0o644))

	_, err := newSession(Options{ConfigFile: path}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	_, err := setupLogging("debug")
	assert.NoError(t, err)
	_, err = setupLogging("chatty")
	assert.Error(t, err)
}

func TestFormatPorts(t *testing.T) {
	tests := []struct {
		ports [2]int
		want  string
	}{
		{[2]int{1, 2}, "1,2"},
		{[2]int{14, 0}, "14"},
		{[2]int{0, 5}, "-,5"},
		{[2]int{}, "-"},
	}
	for _, tt := range tests {
		if got := formatPorts(tt.ports); got != tt.want {
			t.Errorf("formatPorts(%v) = %q, want %q", tt.ports, got, tt.want)
		}
	}
}
