package footswitch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gfs-power/gfs-go/pkg/hw"
	"github.com/gfs-power/gfs-go/pkg/log"
)

// PreparePolicy decides what a clock prepare failure does to a sequence.
type PreparePolicy uint8

const (
	// PreparePermissive logs the failure and continues the sequence.
	PreparePermissive PreparePolicy = iota

	// PrepareStrict aborts the sequence and rolls back.
	PrepareStrict
)

// String returns the policy name.
func (p PreparePolicy) String() string {
	switch p {
	case PreparePermissive:
		return "permissive"
	case PrepareStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParsePreparePolicy parses "permissive" or "strict". The empty string
// selects PreparePermissive.
func ParsePreparePolicy(s string) (PreparePolicy, error) {
	switch strings.ToLower(s) {
	case "", "permissive":
		return PreparePermissive, nil
	case "strict":
		return PrepareStrict, nil
	default:
		return 0, fmt.Errorf("unknown prepare policy %q", s)
	}
}

// Config configures a Controller.
type Config struct {
	// Clocks, Bus and Registers are required.
	Clocks    hw.ClockProvider
	Bus       hw.BusPortController
	Registers hw.RegisterIO

	// Delay provides settle delays. Defaults to hw.SpinDelayer.
	Delay hw.Delayer

	// PreparePolicy selects how clock prepare failures are handled.
	PreparePolicy PreparePolicy

	// Logger is the optional logger for operational output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// SequenceLogger receives one event per sequence step.
	// If nil, events are discarded.
	SequenceLogger log.Logger
}

// Controller runs rail sequences against one set of hardware backends.
type Controller struct {
	clocks hw.ClockProvider
	bus    hw.BusPortController
	regs   hw.RegisterIO
	delay  hw.Delayer
	policy PreparePolicy

	logger *slog.Logger
	seqLog log.Logger

	// claimMu guards Rail.claimed across every rail this controller serves.
	claimMu sync.Mutex

	newID func() string
	now   func() time.Time
}

// NewController creates a Controller.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Clocks == nil || cfg.Bus == nil || cfg.Registers == nil {
		return nil, ErrMissingBackend
	}

	c := &Controller{
		clocks: cfg.Clocks,
		bus:    cfg.Bus,
		regs:   cfg.Registers,
		delay:  cfg.Delay,
		policy: cfg.PreparePolicy,
		logger: cfg.Logger,
		seqLog: cfg.SequenceLogger,
		newID:  uuid.NewString,
		now:    time.Now,
	}
	if c.delay == nil {
		c.delay = hw.SpinDelayer{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.seqLog == nil {
		c.seqLog = log.NoopLogger{}
	}
	return c, nil
}

// PreparePolicy returns the configured prepare policy.
func (c *Controller) PreparePolicy() PreparePolicy { return c.policy }

// Claimed reports whether a consumer has enabled the rail.
func (c *Controller) Claimed(r *Rail) bool {
	c.claimMu.Lock()
	defer c.claimMu.Unlock()
	return r.claimed
}

// SetClaimed overrides the claim flag, for restoring persisted state.
func (c *Controller) SetClaimed(r *Rail, claimed bool) {
	c.claimMu.Lock()
	r.claimed = claimed
	c.claimMu.Unlock()
}

// DisableUnclaimed forces Disable on every bound rail that was never
// claimed. Claimed rails are left alone whatever their state. It returns
// the rails it disabled and the joined errors of those that failed.
func (c *Controller) DisableUnclaimed(rails []*Rail) ([]*Rail, error) {
	c.claimMu.Lock()
	defer c.claimMu.Unlock()

	var (
		swept []*Rail
		errs  []error
	)
	for _, r := range rails {
		if r == nil || !r.bound || r.claimed {
			continue
		}
		c.logger.Info("disabling unclaimed rail", "rail", r.Name)
		if err := c.disable(r, "unclaimed"); err != nil {
			errs = append(errs, err)
			continue
		}
		swept = append(swept, r)
	}
	return swept, errors.Join(errs...)
}

// Enable claims the rail and powers it up. A rail whose enable bit is set
// and clamp bit clear is left untouched.
func (c *Controller) Enable(r *Rail) error {
	if !r.bound {
		return fmt.Errorf("%s: %w", r.Name, ErrNotBound)
	}

	c.claimMu.Lock()
	r.claimed = true
	c.claimMu.Unlock()

	return c.enable(r)
}

// Disable powers the rail down. A rail whose enable bit is clear is left
// untouched.
func (c *Controller) Disable(r *Rail) error {
	if !r.bound {
		return fmt.Errorf("%s: %w", r.Name, ErrNotBound)
	}
	return c.disable(r, "")
}
