package engine

import (
	"time"

	"github.com/vovakirdan/sheepfold/internal/flock"
)

// Sanitize brings a stored record back within the engine invariants.
// Out-of-range numbers are clamped, unknown enums fall back to their
// defaults and a sheep with no health left is dead.
func (e *Engine) Sanitize(s flock.Sheep) flock.Sheep {
	s.Name = flock.TruncateName(s.Name, e.rules.NameMaxLen)
	s.Health = clampHealth(s.Health)

	if !s.Stage.Valid() {
		s.Stage = flock.BaseStage
	}
	if s.Status < flock.StatusHealthy || s.Status > flock.StatusDead {
		s.Status = flock.StatusHealthy
	}

	s.CareLevel = max(s.CareLevel, 0)
	s.PrayedCount = max(s.PrayedCount, 0)

	switch {
	case s.Status == flock.StatusDead:
		s.Health = 0
		s.ResurrectionProgress = min(max(s.ResurrectionProgress, 0), e.rules.Resurrection.DaysRequired)
	case s.Health <= 0:
		s.Status = flock.StatusDead
		s.ResurrectionProgress = 0
	default:
		s.ResurrectionProgress = 0
	}
	return s
}

// EffectivePrayedCount is the number of prayers counted against today's
// cap. A counter from an earlier day reads as zero.
func (e *Engine) EffectivePrayedCount(s flock.Sheep, now time.Time) int {
	if s.LastPrayedDate != e.Today(now) {
		return 0
	}
	return max(s.PrayedCount, 0)
}

// EffectiveResurrection is the ritual progress that still counts at now.
// Progress whose streak was broken by a skipped day reads as zero.
func (e *Engine) EffectiveResurrection(s flock.Sheep, now time.Time) int {
	if s.Status != flock.StatusDead || s.ResurrectionProgress <= 0 {
		return 0
	}
	if s.LastPrayedDate.AddDays(1).Before(e.Today(now)) {
		return 0
	}
	return s.ResurrectionProgress
}

// CanPray reports whether a non-admin prayer would be accepted at now.
func (e *Engine) CanPray(s flock.Sheep, now time.Time) bool {
	if s.Status == flock.StatusDead {
		return !(s.ResurrectionProgress > 0 && s.LastPrayedDate == e.Today(now))
	}
	return e.EffectivePrayedCount(s, now) < e.rules.Care.DailyLimit
}
