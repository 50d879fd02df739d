package sim

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gfs-power/gfs-go/pkg/persistence"
)

// Snapshot captures registers, clocks and halted ports. Claim flags are
// filled in by the caller.
func (s *SoC) Snapshot() *persistence.SoCState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &persistence.SoCState{
		Registers: make(map[string]uint32, len(s.regs)),
		Clocks:    make(map[string]persistence.ClockSnapshot, len(s.clocks)),
	}
	for addr, v := range s.regs {
		st.Registers[addrString(addr)] = v
	}
	for key, c := range s.clocks {
		st.Clocks[key] = persistence.ClockSnapshot{
			Rate:    c.rate,
			Enables: c.enables,
			InReset: c.inReset,
			Retain:  c.retain,
			Fixed:   c.fixed,
		}
	}
	for port, halted := range s.halted {
		if halted {
			st.HaltedPorts = append(st.HaltedPorts, port)
		}
	}
	sort.Ints(st.HaltedPorts)
	return st
}

// Restore loads registers, clocks and halted ports from st. Clocks present
// in st but unknown to the SoC are created.
func (s *SoC) Restore(st *persistence.SoCState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for a, v := range st.Registers {
		addr, err := strconv.ParseUint(strings.TrimPrefix(a, "0x"), 16, 64)
		if err != nil {
			return err
		}
		s.regs[uintptr(addr)] = v
	}
	for key, snap := range st.Clocks {
		c, ok := s.clocks[key]
		if !ok {
			consumer, name, _ := strings.Cut(key, "/")
			c = &clock{consumer: consumer, name: name}
			s.clocks[key] = c
		}
		c.rate = snap.Rate
		c.enables = snap.Enables
		c.inReset = snap.InReset
		c.retain = snap.Retain
		c.fixed = snap.Fixed
	}
	for _, port := range st.HaltedPorts {
		s.halted[port] = true
	}
	return nil
}
