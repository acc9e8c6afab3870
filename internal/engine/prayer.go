package engine

import (
	"fmt"
	"time"

	"github.com/vovakirdan/sheepfold/internal/flock"
)

// OutcomeKind describes what an accepted prayer did.
type OutcomeKind int

const (
	OutcomeHealed OutcomeKind = iota
	OutcomeEvolved
	OutcomeRitualStep
	OutcomeRevived
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeHealed:
		return "healed"
	case OutcomeEvolved:
		return "evolved"
	case OutcomeRitualStep:
		return "ritual-step"
	case OutcomeRevived:
		return "revived"
	default:
		return "unknown"
	}
}

func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome reports the effect of an accepted prayer.
type Outcome struct {
	Kind OutcomeKind `json:"kind"`

	// Set for OutcomeEvolved.
	From flock.Stage `json:"from,omitempty"`
	To   flock.Stage `json:"to,omitempty"`

	// Prayers used today and left today, for living sheep.
	PrayedToday int `json:"prayed_today"`
	Remaining   int `json:"remaining"`

	// Ritual progress and the days needed, for dead sheep.
	Progress int `json:"progress,omitempty"`
	Required int `json:"required,omitempty"`
}

// PrayOptions modifies how a prayer is checked.
type PrayOptions struct {
	// Admin skips the daily prayer cap and the once-a-day ritual rule.
	Admin bool
}

// Pray applies one prayer to s at now.
//
// For a living sheep it heals and builds care, evolving the sheep when the
// stage threshold is reached. For a dead sheep it is one step of the
// resurrection ritual. A rejected prayer returns s unchanged together with
// an error wrapping flock.ErrLimitReached.
func (e *Engine) Pray(s flock.Sheep, now time.Time, opts PrayOptions) (flock.Sheep, Outcome, error) {
	next := e.Sanitize(s)
	today := e.Today(now)

	if next.Status == flock.StatusDead {
		return e.ritualStep(s, next, today, opts)
	}

	care := e.rules.Care
	count := e.EffectivePrayedCount(next, now)
	if !opts.Admin && count >= care.DailyLimit {
		return s, Outcome{}, fmt.Errorf("%w: %s has had %d prayers today", flock.ErrLimitReached, next.Name, count)
	}

	next.Health = clampHealth(next.Health + care.HealAmount)
	if next.Status == flock.StatusSick || next.Status == flock.StatusInjured {
		next.Status = flock.StatusHealthy
	}
	next.CareLevel += care.CareGain
	next.PrayedCount = count + 1
	next.LastPrayedDate = today

	out := Outcome{
		Kind:        OutcomeHealed,
		PrayedToday: next.PrayedCount,
		Remaining:   max(care.DailyLimit-next.PrayedCount, 0),
	}

	if stage, ok := next.Stage.Next(); ok && next.CareLevel >= e.rules.Stages.Rule(next.Stage).Threshold {
		out.Kind = OutcomeEvolved
		out.From = next.Stage
		out.To = stage
		next.Stage = stage
		next.CareLevel = 0
	}
	return next, out, nil
}

// ritualStep advances the resurrection ritual by one day.
func (e *Engine) ritualStep(orig, s flock.Sheep, today flock.Day, opts PrayOptions) (flock.Sheep, Outcome, error) {
	required := e.rules.Resurrection.DaysRequired
	steppedToday := s.ResurrectionProgress > 0 && s.LastPrayedDate == today

	if steppedToday && !opts.Admin {
		return orig, Outcome{}, fmt.Errorf("%w: the ritual for %s was already held today", flock.ErrLimitReached, s.Name)
	}

	switch {
	case steppedToday:
		s.ResurrectionProgress++
	case s.ResurrectionProgress > 0 && s.LastPrayedDate.AddDays(1) == today:
		s.ResurrectionProgress++
	default:
		s.ResurrectionProgress = 1
	}
	s.LastPrayedDate = today
	s.PrayedCount = 0

	if s.ResurrectionProgress < required {
		return s, Outcome{Kind: OutcomeRitualStep, Progress: s.ResurrectionProgress, Required: required}, nil
	}

	// Revived sheep start over but keep their name and annotations.
	s.Status = flock.StatusHealthy
	s.Health = 100
	s.ResurrectionProgress = 0
	s.Stage = flock.BaseStage
	s.CareLevel = 0
	return s, Outcome{Kind: OutcomeRevived, Progress: required, Required: required}, nil
}
