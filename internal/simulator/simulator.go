// Package simulator implements the zero-intelligence event scheduler
// (spec §4.H): a collection of independent per-kind event generators
// drives the manager under a stop condition, either as fast as
// possible or paced to wall-clock time.
package simulator

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
	tomb "gopkg.in/tomb.v2"

	"matchcore/internal/event"
	"matchcore/internal/manager"
)

// Config carries the simulator's seed and anchoring parameters (spec
// §6.4 "anchor_price, num_grids, random_seed, max_timestamp?,
// max_num_events?"), plus the wall-clock pacing supplement of
// SPEC_FULL.md §6.4.
type Config struct {
	AnchorPrice decimal.Decimal
	NumGrids    int
	RandomSeed  int64
	Tick        decimal.Decimal

	// MaxTimestamp and MaxNumEvents are optional stop conditions for
	// Simulate; each bound applies only when its HasMaxTS/HasMaxEvents
	// flag is set.
	MaxTimestamp  uint64
	HasMaxTS      bool
	MaxNumEvents  uint64
	HasMaxEvents  bool

	// TickInterval/RateLimitPerSec pace RunRealtime (SPEC_FULL.md
	// §6.4 supplement, not present in spec.md's simulator config).
	TickInterval   time.Duration
	RateLimitPerSec float64
}

// Simulator owns the generator pool, the deterministic RNG, and the
// tick counter (spec §4.H). It submits generated events to a manager,
// never touching the engine directly.
type Simulator struct {
	mgr        *manager.Manager
	cfg        Config
	generators []Generator
	rng        *rng

	tickCount   uint64
	eventsFired uint64

	log zerolog.Logger
}

// New returns a Simulator driving mgr with the given generators,
// seeded deterministically from cfg.RandomSeed (spec §4.H "All RNGs
// are seeded deterministically from the simulator config's
// random_seed").
func New(mgr *manager.Manager, cfg Config, generators []Generator, log zerolog.Logger) *Simulator {
	return &Simulator{
		mgr:        mgr,
		cfg:        cfg,
		generators: generators,
		rng:        newRNG(cfg.RandomSeed),
		log:        log.With().Str("component", "simulator").Logger(),
	}
}

// TickCount returns the number of ticks StepOneTick has advanced.
func (s *Simulator) TickCount() uint64 { return s.tickCount }

// EventsFired returns the number of generator events submitted so far.
func (s *Simulator) EventsFired() uint64 { return s.eventsFired }

// StepOneTick queries each generator for an optional event at
// currentTS; any that fire are submitted to the manager in generator
// order, and the tick counter advances by 1 regardless of whether any
// generator fired (spec §4.H "the simulator's tick counter advances
// by 1").
func (s *Simulator) StepOneTick(currentTS uint64) error {
	for i := range s.generators {
		g := &s.generators[i]
		p := g.Rate.Probability(s.mgr)
		if s.rng.draw() >= p {
			continue
		}
		if err := s.fire(g); err != nil {
			return err
		}
		s.eventsFired++
	}
	s.tickCount++
	return nil
}

func (s *Simulator) fire(g *Generator) error {
	var err error
	switch g.Kind {
	case event.LimitSubmit:
		qty := g.Sizer.Size(s.rng)
		price := g.Pricer.Price(s.rng, s.cfg.AnchorPrice, s.cfg.Tick)
		_, _, err = s.mgr.SubmitLimit(g.Side, qty, price)
	case event.MarketSubmit:
		qty := g.Sizer.Size(s.rng)
		_, _, err = s.mgr.SubmitMarket(g.Side, qty)
	default:
		s.log.Warn().Str("kind", g.Kind.String()).Msg("generator kind not supported for live order flow")
		return nil
	}
	if err != nil {
		s.log.Warn().Err(err).Str("kind", g.Kind.String()).Msg("generator event rejected")
	}
	return nil
}

// stopConditionHolds reports whether Simulate's configured stop
// condition (spec §4.H "max_timestamp or max_events") has been met.
func (s *Simulator) stopConditionHolds(currentTS uint64) bool {
	if s.cfg.HasMaxTS && currentTS >= s.cfg.MaxTimestamp {
		return true
	}
	if s.cfg.HasMaxEvents && s.eventsFired >= s.cfg.MaxNumEvents {
		return true
	}
	return false
}

// Simulate loops StepOneTick, advancing the manager's clock by one
// tick per iteration, until the configured stop condition holds (spec
// §4.H). It runs as fast as possible, with no wall-clock pacing.
func (s *Simulator) Simulate() error {
	for {
		ts := s.mgr.Clock().Now()
		if s.stopConditionHolds(ts) {
			return nil
		}
		if err := s.StepOneTick(ts); err != nil {
			return err
		}
		s.mgr.Clock().Tick(1)
	}
}

// AdvanceToTimestamp loops StepOneTick until the manager's logical
// clock reaches t (spec §4.H), ignoring any configured max_timestamp/
// max_events stop condition.
func (s *Simulator) AdvanceToTimestamp(t uint64) error {
	for {
		ts := s.mgr.Clock().Now()
		if ts >= t {
			return nil
		}
		if err := s.StepOneTick(ts); err != nil {
			return err
		}
		s.mgr.Clock().Tick(1)
	}
}

// RunRealtime paces Simulate's loop to wall-clock time via
// cfg.TickInterval/cfg.RateLimitPerSec, supervised by a tomb so the
// caller can request a clean stop (spec §4.H "real-time run mode",
// SPEC_FULL.md §4.H, repurposing the teacher's tomb-based worker
// lifecycle from connection workers to simulator ticks). Cancellation
// is checked only between ticks, mirroring the engine's own
// run-to-completion contract (spec §5 "Simulator stop_condition is
// checked between ticks, never mid-tick").
func (s *Simulator) RunRealtime(ctx context.Context, t *tomb.Tomb) error {
	interval := s.cfg.TickInterval
	if interval <= 0 {
		interval = time.Millisecond
	}
	var limiter *rate.Limiter
	if s.cfg.RateLimitPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimitPerSec), 1)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.Dying():
			return tomb.ErrDying
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			ts := s.mgr.Clock().Now()
			if s.stopConditionHolds(ts) {
				return nil
			}
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
			}
			if err := s.StepOneTick(ts); err != nil {
				return err
			}
			s.mgr.Clock().Tick(1)
		}
	}
}
