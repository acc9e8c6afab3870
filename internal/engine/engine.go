// Package engine implements the care and lifecycle rules for sheep.
//
// Every operation is a pure transition: it takes a flock.Sheep value and an
// instant and returns the next value. Nothing here persists or schedules;
// the pasture package owns the roster and decides when to call in.
package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/vovakirdan/sheepfold/internal/config"
	"github.com/vovakirdan/sheepfold/internal/flock"
)

// RandomSource drives the stochastic status transitions.
// *math/rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandom replaces the default time-seeded random source.
func WithRandom(src RandomSource) Option {
	return func(e *Engine) {
		if src != nil {
			e.rnd = src
		}
	}
}

// WithLocation sets the timezone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// Engine applies Rules to sheep. It is safe for concurrent use.
type Engine struct {
	rules config.Rules
	loc   *time.Location

	mu  sync.Mutex // guards rnd
	rnd RandomSource
}

// New creates an engine for the given rules.
func New(rules config.Rules, opts ...Option) *Engine {
	e := &Engine{
		rules: rules,
		loc:   time.Local,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the rules the engine was built with.
func (e *Engine) Rules() config.Rules {
	return e.rules
}

// Location returns the timezone used for day boundaries.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Today returns the calendar day containing now.
func (e *Engine) Today(now time.Time) flock.Day {
	return flock.DayOf(now, e.loc)
}

// StageInfo returns the display metadata of a stage.
func (e *Engine) StageInfo(stage flock.Stage) config.StageRule {
	return e.rules.Stages.Rule(stage)
}

// roll reports whether an event with probability p happens.
func (e *Engine) roll(p float64) bool {
	if p <= 0 {
		return false
	}
	e.mu.Lock()
	v := e.rnd.Float64()
	e.mu.Unlock()
	return v < p
}

func clampHealth(h float64) float64 {
	switch {
	case h != h: // NaN
		return 0
	case h < 0:
		return 0
	case h > 100:
		return 100
	default:
		return h
	}
}
