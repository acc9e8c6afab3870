package engine

import (
	"math"
	"time"

	"github.com/vovakirdan/sheepfold/internal/flock"
)

// DailyRate returns the health a sheep loses per day at its current status.
// A sheep prayed for today decays at the gentler prayed rate. No rate
// exceeds the daily cap.
func (e *Engine) DailyRate(s flock.Sheep, today flock.Day) float64 {
	d := e.rules.Decay

	var rate float64
	switch s.Status {
	case flock.StatusDead:
		return 0
	case flock.StatusSick:
		rate = d.SickDaily
	case flock.StatusInjured:
		rate = d.InjuredDaily
	default:
		rate = d.HealthyDaily
	}
	if s.LastPrayedDate == today {
		rate = math.Min(rate, d.PrayedDaily)
	}
	return math.Min(rate, d.DailyCap)
}

// Decay evaluates a sheep at now during an online session.
// Loss is linear in the time since UpdatedAt and the prayed rate covers only
// the part of that time inside LastPrayedDate, so evaluating at t1 and then
// at t2 gives the same health as evaluating once at t2.
func (e *Engine) Decay(s flock.Sheep, now time.Time) flock.Sheep {
	return e.decay(s, now, e.rules.Decay.SicknessChance)
}

// CatchUp evaluates a sheep that was not observed since UpdatedAt, such as
// when an owner's pasture is opened. Short absences are left alone.
func (e *Engine) CatchUp(s flock.Sheep, now time.Time) flock.Sheep {
	if now.Sub(s.UpdatedAt) < e.rules.Decay.MinOfflineElapsed {
		return s
	}
	return e.decay(s, now, e.rules.Decay.OfflineSicknessChance)
}

func (e *Engine) decay(s flock.Sheep, now time.Time, sicknessChance float64) flock.Sheep {
	s = e.Sanitize(s)
	today := e.Today(now)

	if s.Status == flock.StatusDead {
		// A skipped day breaks the ritual streak.
		if s.ResurrectionProgress > 0 && s.LastPrayedDate.AddDays(1).Before(today) {
			s.ResurrectionProgress = 0
		}
		if now.After(s.UpdatedAt) {
			s.UpdatedAt = now
		}
		return s
	}

	elapsed := now.Sub(s.UpdatedAt)
	if elapsed <= 0 {
		return s
	}

	s.Health = clampHealth(s.Health - e.loss(s, s.UpdatedAt, now, today))
	s.UpdatedAt = now

	if s.Health <= 0 {
		s.Health = 0
		s.Status = flock.StatusDead
		s.ResurrectionProgress = 0
		return s
	}

	d := e.rules.Decay
	if s.Status == flock.StatusHealthy && s.Health < d.SicknessThreshold && e.roll(sicknessChance) {
		s.Status = flock.StatusSick
	}
	if s.Status != flock.StatusInjured && s.Health < d.InjuryThreshold && e.roll(d.InjuryChance) {
		s.Status = flock.StatusInjured
	}
	return s
}

// loss is the health lost between from and to. Time inside LastPrayedDate
// decays at that day's rate and the rest at the unprayed rate.
func (e *Engine) loss(s flock.Sheep, from, to time.Time, today flock.Day) float64 {
	var prayed time.Duration
	if !s.LastPrayedDate.IsZero() {
		start, end := s.LastPrayedDate.Bounds(e.loc)
		if from.After(start) {
			start = from
		}
		if to.Before(end) {
			end = to
		}
		prayed = max(end.Sub(start), 0)
	}

	unprayed := s
	unprayed.LastPrayedDate = flock.Day{}
	rest := to.Sub(from) - prayed

	return (e.DailyRate(s, s.LastPrayedDate)*prayed.Hours() +
		e.DailyRate(unprayed, today)*rest.Hours()) / 24
}
