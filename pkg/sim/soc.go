package sim

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gfs-power/gfs-go/pkg/hw"
)

// ErrNoClock is returned by Get for an unknown clock.
var ErrNoClock = errors.New("sim: no such clock")

// clock is a simulated clock and the handle returned by Get.
type clock struct {
	consumer string
	name     string
	rate     uint64
	enables  int
	inReset  bool
	retain   bool
	fixed    bool
	refs     int
}

func (c *clock) Name() string { return c.name }

func (c *clock) key() string { return clockKey(c.consumer, c.name) }

func clockKey(consumer, name string) string { return consumer + "/" + name }

// ClockState is a snapshot of one simulated clock.
type ClockState struct {
	Rate    uint64
	Enables int
	InReset bool
	Retain  bool
	Refs    int
}

// Enabled reports whether the clock is ungated.
func (s ClockState) Enabled() bool { return s.Enables > 0 }

// SoC is a simulated system-on-chip.
type SoC struct {
	mu      sync.Mutex
	regs    map[uintptr]uint32
	clocks  map[string]*clock
	halted  map[int]bool
	journal []Op

	failGet     map[string]error
	failSetRate map[string]error
	failPrepare map[string]error
	failHalt    map[int]error
	failUnhalt  map[int]error
}

// New returns an empty SoC.
func New() *SoC {
	s := &SoC{
		regs:   make(map[uintptr]uint32),
		clocks: make(map[string]*clock),
		halted: make(map[int]bool),
	}
	s.ClearFaults()
	return s
}

// AddClock registers a clock for consumer at the given rate.
func (s *SoC) AddClock(consumer, name string, rate uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clocks[clockKey(consumer, name)] = &clock{consumer: consumer, name: name, rate: rate}
}

// AddFixedClock registers a clock whose rate cannot be changed.
func (s *SoC) AddFixedClock(consumer, name string, rate uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clocks[clockKey(consumer, name)] = &clock{consumer: consumer, name: name, rate: rate, fixed: true}
}

// FailGet makes Get of the clock return err.
func (s *SoC) FailGet(consumer, name string, err error) {
	s.mu.Lock()
	s.failGet[clockKey(consumer, name)] = err
	s.mu.Unlock()
}

// FailSetRate makes SetRate on the clock return err.
func (s *SoC) FailSetRate(consumer, name string, err error) {
	s.mu.Lock()
	s.failSetRate[clockKey(consumer, name)] = err
	s.mu.Unlock()
}

// FailPrepare makes PrepareEnable on the clock return err.
func (s *SoC) FailPrepare(consumer, name string, err error) {
	s.mu.Lock()
	s.failPrepare[clockKey(consumer, name)] = err
	s.mu.Unlock()
}

// FailHalt makes HaltPort on the port return err.
func (s *SoC) FailHalt(port int, err error) {
	s.mu.Lock()
	s.failHalt[port] = err
	s.mu.Unlock()
}

// FailUnhalt makes UnhaltPort on the port return err.
func (s *SoC) FailUnhalt(port int, err error) {
	s.mu.Lock()
	s.failUnhalt[port] = err
	s.mu.Unlock()
}

// ClearFaults removes every injected fault.
func (s *SoC) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGet = make(map[string]error)
	s.failSetRate = make(map[string]error)
	s.failPrepare = make(map[string]error)
	s.failHalt = make(map[int]error)
	s.failUnhalt = make(map[int]error)
}

// Journal returns a copy of the operations recorded so far.
func (s *SoC) Journal() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Op, len(s.journal))
	copy(out, s.journal)
	return out
}

// ResetJournal discards the recorded operations.
func (s *SoC) ResetJournal() {
	s.mu.Lock()
	s.journal = nil
	s.mu.Unlock()
}

// Register returns a register value without journaling.
func (s *SoC) Register(addr uintptr) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs[addr]
}

// SetRegister sets a register value without journaling, as firmware would.
func (s *SoC) SetRegister(addr uintptr, v uint32) {
	s.mu.Lock()
	s.regs[addr] = v
	s.mu.Unlock()
}

// Clock returns the state of a clock.
func (s *SoC) Clock(consumer, name string) (ClockState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clocks[clockKey(consumer, name)]
	if !ok {
		return ClockState{}, false
	}
	return ClockState{Rate: c.rate, Enables: c.enables, InReset: c.inReset, Retain: c.retain, Refs: c.refs}, true
}

// PortHalted reports whether a bus port is halted.
func (s *SoC) PortHalted(port int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.halted[port]
}

// Clocks returns the keys of every clock, sorted.
func (s *SoC) Clocks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.clocks))
	for k := range s.clocks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *SoC) record(op Op) {
	s.journal = append(s.journal, op)
}

func (s *SoC) lookup(h hw.Clock) *clock {
	c, ok := h.(*clock)
	if !ok {
		panic(fmt.Sprintf("sim: foreign clock handle %T", h))
	}
	return c
}

// Get implements hw.ClockProvider.
func (s *SoC) Get(consumer, name string) (hw.Clock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := clockKey(consumer, name)
	if err := s.failGet[key]; err != nil {
		s.record(Op{Kind: OpGetClock, Target: key, Failed: true})
		return nil, err
	}
	c, ok := s.clocks[key]
	if !ok {
		s.record(Op{Kind: OpGetClock, Target: key, Failed: true})
		return nil, fmt.Errorf("%w: %s", ErrNoClock, key)
	}
	c.refs++
	s.record(Op{Kind: OpGetClock, Target: key})
	return c, nil
}

// Put implements hw.ClockProvider.
func (s *SoC) Put(h hw.Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(h)
	if c.refs > 0 {
		c.refs--
	}
	s.record(Op{Kind: OpPutClock, Target: c.key()})
}

// Rate implements hw.ClockProvider.
func (s *SoC) Rate(h hw.Clock) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(h).rate
}

// SetRate implements hw.ClockProvider.
func (s *SoC) SetRate(h hw.Clock, hz uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(h)
	if err := s.failSetRate[c.key()]; err != nil {
		s.record(Op{Kind: OpSetRate, Target: c.key(), Value: hz, Failed: true})
		return err
	}
	if c.fixed {
		s.record(Op{Kind: OpSetRate, Target: c.key(), Value: hz, Failed: true})
		return hw.ErrNotSupported
	}
	c.rate = hz
	s.record(Op{Kind: OpSetRate, Target: c.key(), Value: hz})
	return nil
}

// PrepareEnable implements hw.ClockProvider.
func (s *SoC) PrepareEnable(h hw.Clock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(h)
	if err := s.failPrepare[c.key()]; err != nil {
		s.record(Op{Kind: OpPrepareEnable, Target: c.key(), Failed: true})
		return err
	}
	c.enables++
	s.record(Op{Kind: OpPrepareEnable, Target: c.key()})
	return nil
}

// DisableUnprepare implements hw.ClockProvider. Unbalanced calls leave the
// clock gated.
func (s *SoC) DisableUnprepare(h hw.Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(h)
	if c.enables > 0 {
		c.enables--
	}
	s.record(Op{Kind: OpDisableUnprepare, Target: c.key()})
}

// AssertReset implements hw.ClockProvider.
func (s *SoC) AssertReset(h hw.Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(h)
	c.inReset = true
	s.record(Op{Kind: OpAssertReset, Target: c.key()})
}

// DeassertReset implements hw.ClockProvider.
func (s *SoC) DeassertReset(h hw.Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(h)
	c.inReset = false
	s.record(Op{Kind: OpDeassertReset, Target: c.key()})
}

// SetRetention implements hw.ClockProvider.
func (s *SoC) SetRetention(h hw.Clock, retain bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.lookup(h)
	c.retain = retain
	var v uint64
	if retain {
		v = 1
	}
	s.record(Op{Kind: OpRetention, Target: c.key(), Value: v})
}

// HaltPort implements hw.BusPortController.
func (s *SoC) HaltPort(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := strconv.Itoa(id)
	if err := s.failHalt[id]; err != nil {
		s.record(Op{Kind: OpHalt, Target: target, Failed: true})
		return err
	}
	s.halted[id] = true
	s.record(Op{Kind: OpHalt, Target: target})
	return nil
}

// UnhaltPort implements hw.BusPortController.
func (s *SoC) UnhaltPort(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := strconv.Itoa(id)
	if err := s.failUnhalt[id]; err != nil {
		s.record(Op{Kind: OpUnhalt, Target: target, Failed: true})
		return err
	}
	s.halted[id] = false
	s.record(Op{Kind: OpUnhalt, Target: target})
	return nil
}

// Read32 implements hw.RegisterIO.
func (s *SoC) Read32(addr uintptr) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.regs[addr]
	s.record(Op{Kind: OpRead, Target: addrString(addr), Value: uint64(v)})
	return v
}

// Write32 implements hw.RegisterIO.
func (s *SoC) Write32(addr uintptr, v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs[addr] = v
	s.record(Op{Kind: OpWrite, Target: addrString(addr), Value: uint64(v)})
}

// Barrier implements hw.RegisterIO.
func (s *SoC) Barrier() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(Op{Kind: OpBarrier})
}

// Delay implements hw.Delayer. It records the delay and returns at once.
func (s *SoC) Delay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(Op{Kind: OpDelay, Value: uint64(d)})
}

func addrString(addr uintptr) string {
	return "0x" + strconv.FormatUint(uint64(addr), 16)
}

// Compile-time interface satisfaction checks.
var (
	_ hw.ClockProvider     = (*SoC)(nil)
	_ hw.BusPortController = (*SoC)(nil)
	_ hw.RegisterIO        = (*SoC)(nil)
	_ hw.Delayer           = (*SoC)(nil)
)
