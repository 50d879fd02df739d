package registry

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gfs-power/gfs-go/pkg/footswitch"
	"github.com/gfs-power/gfs-go/pkg/hw"
	"github.com/gfs-power/gfs-go/pkg/log"
	"github.com/gfs-power/gfs-go/pkg/regulator"
)

var errNoCoreClock = errors.New("no core_clk among rail clocks")

// InitSource supplies board init data per rail. *config.Board implements it.
type InitSource interface {
	InitData(id footswitch.ID) (regulator.InitData, bool)
}

// Config configures a Registry.
type Config struct {
	// Base is the address of the MMSS clock control block.
	Base uintptr

	// Hardware configures the Controller shared by every rail. Its
	// Logger and SequenceLogger are used by the registry as well.
	Hardware footswitch.Config

	// Framework receives probed rails. Optional.
	Framework regulator.Framework
}

// Registry owns every rail of the SoC and the Controller that drives them.
type Registry struct {
	ctrl   *footswitch.Controller
	clocks hw.ClockProvider
	regs   hw.RegisterIO
	fw     regulator.Framework
	logger *slog.Logger
	seqLog log.Logger

	rails [footswitch.NumRails]*footswitch.Rail

	// mu serialises probe, removal and the late sweep.
	mu    sync.Mutex
	swept bool

	newID func() string
	now   func() time.Time
}

// New creates a Registry with every rail unbound.
func New(cfg Config) (*Registry, error) {
	ctrl, err := footswitch.NewController(cfg.Hardware)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		ctrl:   ctrl,
		clocks: cfg.Hardware.Clocks,
		regs:   cfg.Hardware.Registers,
		fw:     cfg.Framework,
		logger: cfg.Hardware.Logger,
		seqLog: cfg.Hardware.SequenceLogger,
		newID:  uuid.NewString,
		now:    time.Now,
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.seqLog == nil {
		r.seqLog = log.NoopLogger{}
	}

	for id := footswitch.ID(0); id < footswitch.NumRails; id++ {
		d := descriptors[id]
		r.rails[id] = footswitch.NewRail(id, cfg.Base+d.offset, d.profile)
	}
	return r, nil
}

// Controller returns the controller that sequences the rails.
func (r *Registry) Controller() *footswitch.Controller { return r.ctrl }

// Rail returns the rail with the given ID.
func (r *Registry) Rail(id footswitch.ID) (*footswitch.Rail, error) {
	if id >= footswitch.NumRails {
		return nil, fmt.Errorf("%d: %w", id, ErrUnknownRail)
	}
	return r.rails[id], nil
}

// Lookup returns the rail with the given regulator name.
func (r *Registry) Lookup(name string) (*footswitch.Rail, error) {
	id, ok := footswitch.ParseID(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownRail)
	}
	return r.rails[id], nil
}

// Rails returns every rail in ID order, bound or not.
func (r *Registry) Rails() []*footswitch.Rail {
	out := make([]*footswitch.Rail, len(r.rails))
	copy(out, r.rails[:])
	return out
}

// Probe binds the rail to the clocks and bus ports in data, programs the
// ramp delay count, clears retention and registers the rail with the
// framework. On failure every clock acquired is released.
func (r *Registry) Probe(id footswitch.ID, data regulator.InitData) error {
	rail, err := r.Rail(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seq := r.newID()
	if rail.Bound() {
		return r.probeFailed(seq, rail, &RegistrationError{
			Rail: rail.Name, Stage: StageBind, Err: regulator.ErrExists,
		})
	}

	var (
		specs []*footswitch.ClockSpec
		core  hw.Clock
	)
	release := func() {
		for _, cs := range specs {
			r.clocks.Put(cs.Clock)
		}
	}

	for _, ci := range data.Clocks {
		c, err := r.clocks.Get(rail.Name, ci.Name)
		if err != nil {
			release()
			return r.probeFailed(seq, rail, &RegistrationError{
				Rail: rail.Name, Stage: StageClockGet, Clock: ci.Name, Err: err,
			})
		}
		specs = append(specs, &footswitch.ClockSpec{Name: ci.Name, Clock: c, ResetRate: ci.ResetRate})
		if core == nil && strings.HasPrefix(ci.Name, "core_clk") {
			core = c
		}
	}
	if core == nil {
		release()
		return r.probeFailed(seq, rail, &RegistrationError{
			Rail: rail.Name, Stage: StageCoreClock, Err: errNoCoreClock,
		})
	}

	regval := r.regs.Read32(rail.Ctl)
	regval |= footswitch.DelayCount
	regval &^= footswitch.RetentionBit
	r.regs.Write32(rail.Ctl, regval)
	r.emit(seq, log.OpProbe, rail, log.Event{
		Stage:    log.StageBind,
		Category: log.CategoryStep,
		Register: &log.RegisterEvent{Addr: uint64(rail.Ctl), Value: regval},
	})

	rail.Bind(specs, core, data.BusPorts, regval&footswitch.EnableBit != 0)

	if r.fw != nil {
		desc := regulator.Desc{Name: rail.Name, ID: int(rail.ID)}
		if err := r.fw.Register(desc, &railOps{ctrl: r.ctrl, rail: rail}); err != nil {
			rail.Unbind()
			release()
			return r.probeFailed(seq, rail, &RegistrationError{
				Rail: rail.Name, Stage: StageRegister, Err: err,
			})
		}
	}

	r.logger.Debug("rail probed",
		"rail", rail.Name, "clocks", len(specs), "enabled", rail.Enabled(), "seq", seq)
	r.emit(seq, log.OpProbe, rail, log.Event{
		Stage:    log.StageDone,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: "UNBOUND",
			NewState: rail.State().String(),
		},
	})
	return nil
}

func (r *Registry) probeFailed(seq string, rail *footswitch.Rail, err *RegistrationError) error {
	r.logger.Error("rail probe failed",
		"rail", rail.Name, "stage", string(err.Stage), "seq", seq, "error", err.Err)
	code := regulator.Status(err)
	r.emit(seq, log.OpProbe, rail, log.Event{
		Stage:    log.StageBind,
		Category: log.CategoryError,
		Error:    &log.ErrorEventData{Message: err.Error(), Code: &code, Context: string(err.Stage)},
	})
	return err
}

// ProbeAll probes every rail src has init data for. Rails without init
// data stay unbound. Failures are joined; probing does not stop at the
// first one.
func (r *Registry) ProbeAll(src InitSource) error {
	var errs []error
	for id := footswitch.ID(0); id < footswitch.NumRails; id++ {
		data, ok := src.InitData(id)
		if !ok {
			continue
		}
		if err := r.Probe(id, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Remove unregisters the rail and releases its clocks. The rail's power
// state is left as it is.
func (r *Registry) Remove(id footswitch.ID) error {
	rail, err := r.Rail(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !rail.Bound() {
		return fmt.Errorf("%s: %w", rail.Name, footswitch.ErrNotBound)
	}
	if r.fw != nil {
		r.fw.Unregister(rail.Name)
	}
	for _, cs := range rail.Clocks {
		r.clocks.Put(cs.Clock)
	}
	rail.Unbind()

	r.emit(r.newID(), log.OpRemove, rail, log.Event{
		Stage:    log.StageDone,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: rail.State().String(),
			NewState: "UNBOUND",
		},
	})
	return nil
}

// Close removes every bound rail.
func (r *Registry) Close() error {
	var errs []error
	for _, rail := range r.rails {
		if !rail.Bound() {
			continue
		}
		if err := r.Remove(rail.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) emit(seq string, op log.Op, rail *footswitch.Rail, e log.Event) {
	e.Timestamp = r.now()
	e.SequenceID = seq
	e.Op = op
	if rail != nil {
		e.RailID = uint8(rail.ID)
		e.Rail = rail.Name
	}
	r.seqLog.Log(e)
}

// railOps adapts a rail to regulator.Ops.
type railOps struct {
	ctrl *footswitch.Controller
	rail *footswitch.Rail
}

func (o *railOps) IsEnabled() bool { return o.rail.Enabled() }
func (o *railOps) Enable() error   { return o.ctrl.Enable(o.rail) }
func (o *railOps) Disable() error  { return o.ctrl.Disable(o.rail) }
