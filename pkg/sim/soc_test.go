package sim

import (
	"errors"
	"testing"
	"time"

	"github.com/gfs-power/gfs-go/pkg/hw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockLifecycle(t *testing.T) {
	soc := New()
	soc.AddClock("fs_mdp", "core_clk", 200000000)

	c, err := soc.Get("fs_mdp", "core_clk")
	require.NoError(t, err)
	assert.Equal(t, "core_clk", c.Name())
	assert.Equal(t, uint64(200000000), soc.Rate(c))

	require.NoError(t, soc.SetRate(c, 27000000))
	require.NoError(t, soc.PrepareEnable(c))
	soc.AssertReset(c)
	soc.SetRetention(c, true)

	st, ok := soc.Clock("fs_mdp", "core_clk")
	require.True(t, ok)
	assert.Equal(t, uint64(27000000), st.Rate)
	assert.True(t, st.Enabled())
	assert.True(t, st.InReset)
	assert.True(t, st.Retain)
	assert.Equal(t, 1, st.Refs)

	soc.DisableUnprepare(c)
	soc.DisableUnprepare(c)
	soc.DeassertReset(c)
	soc.Put(c)

	st, _ = soc.Clock("fs_mdp", "core_clk")
	assert.False(t, st.Enabled())
	assert.Equal(t, 0, st.Enables, "unbalanced disable must not go negative")
	assert.False(t, st.InReset)
	assert.Equal(t, 0, st.Refs)
}

func TestGetUnknownClock(t *testing.T) {
	soc := New()
	_, err := soc.Get("fs_mdp", "missing")
	assert.ErrorIs(t, err, ErrNoClock)
}

func TestFixedClockRejectsRate(t *testing.T) {
	soc := New()
	soc.AddFixedClock("fs_rot", "iface_clk", 0)
	c, err := soc.Get("fs_rot", "iface_clk")
	require.NoError(t, err)

	err = soc.SetRate(c, 27000000)
	assert.ErrorIs(t, err, hw.ErrNotSupported)
	assert.Equal(t, uint64(0), soc.Rate(c))
}

func TestInjectedFaults(t *testing.T) {
	soc := New()
	soc.AddClock("fs_vfe", "core_clk", 1)
	boom := errors.New("boom")

	soc.FailGet("fs_vfe", "core_clk", boom)
	_, err := soc.Get("fs_vfe", "core_clk")
	assert.ErrorIs(t, err, boom)

	soc.ClearFaults()
	c, err := soc.Get("fs_vfe", "core_clk")
	require.NoError(t, err)

	soc.FailSetRate("fs_vfe", "core_clk", boom)
	soc.FailPrepare("fs_vfe", "core_clk", boom)
	soc.FailHalt(3, boom)
	soc.FailUnhalt(4, boom)

	assert.ErrorIs(t, soc.SetRate(c, 5), boom)
	assert.ErrorIs(t, soc.PrepareEnable(c), boom)
	assert.ErrorIs(t, soc.HaltPort(3), boom)
	assert.ErrorIs(t, soc.UnhaltPort(4), boom)
	assert.False(t, soc.PortHalted(3))

	j := soc.Journal()
	require.NotEmpty(t, j)
	assert.True(t, j[len(j)-1].Failed)
}

func TestJournalOrder(t *testing.T) {
	soc := New()
	soc.Write32(0x190, 0x100)
	soc.Barrier()
	soc.Delay(time.Microsecond)
	_ = soc.Read32(0x190)
	require.NoError(t, soc.HaltPort(7))

	want := []string{
		"write 0x190=0x100",
		"barrier",
		"delay 1µs",
		"read 0x190=0x100",
		"halt 7",
	}
	j := soc.Journal()
	require.Len(t, j, len(want))
	for i := range want {
		assert.Equal(t, want[i], j[i].String())
	}
	assert.True(t, soc.PortHalted(7))

	soc.ResetJournal()
	assert.Empty(t, soc.Journal())
}

func TestSnapshotRestore(t *testing.T) {
	soc := New()
	soc.AddClock("fs_mdp", "core_clk", 200000000)
	soc.AddFixedClock("fs_mdp", "iface_clk", 27000000)
	soc.SetRegister(0x190, 0x11f)
	require.NoError(t, soc.HaltPort(5))

	st := soc.Snapshot()
	assert.Equal(t, uint32(0x11f), st.Registers["0x190"])
	assert.Equal(t, []int{5}, st.HaltedPorts)

	other := New()
	require.NoError(t, other.Restore(st))
	assert.Equal(t, uint32(0x11f), other.Register(0x190))
	assert.True(t, other.PortHalted(5))

	c, err := other.Get("fs_mdp", "iface_clk")
	require.NoError(t, err)
	assert.ErrorIs(t, other.SetRate(c, 1), hw.ErrNotSupported)
	assert.Equal(t, []string{"fs_mdp/core_clk", "fs_mdp/iface_clk"}, other.Clocks())
}
