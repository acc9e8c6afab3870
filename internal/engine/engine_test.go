package engine

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/sheepfold/internal/config"
	"github.com/vovakirdan/sheepfold/internal/flock"
)

// fixedRandom always returns the same value.
type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestEngine(rnd RandomSource) *Engine {
	return New(config.DefaultRules(), WithRandom(rnd), WithLocation(time.UTC))
}

func adopt(t *testing.T, e *Engine, name string) flock.Sheep {
	t.Helper()
	s, err := e.Adopt("owner-1", name, base)
	if err != nil {
		t.Fatalf("Adopt(%q) failed: %v", name, err)
	}
	return s
}

func TestAdopt(t *testing.T) {
	e := newTestEngine(fixedRandom(1))
	s := adopt(t, e, "  Dolly  ")

	if s.ID == "" || s.OwnerID != "owner-1" || s.Name != "Dolly" {
		t.Errorf("unexpected identity: %+v", s)
	}
	if s.Health != 100 || s.Status != flock.StatusHealthy || s.Stage != flock.BaseStage || s.CareLevel != 0 {
		t.Errorf("unexpected initial state: %+v", s)
	}
	if !s.UpdatedAt.Equal(base) {
		t.Errorf("UpdatedAt = %v, expected %v", s.UpdatedAt, base)
	}

	other := adopt(t, e, "Dolly")
	if other.ID == s.ID {
		t.Error("adopted sheep share an id")
	}

	long := adopt(t, e, "Bartholomew the Great")
	if long.Name != "Bartholome" {
		t.Errorf("Name = %q, expected truncation to 10 code points", long.Name)
	}

	if _, err := e.Adopt("owner-1", "   ", base); !errors.Is(err, flock.ErrInvalidInput) {
		t.Errorf("empty name: expected ErrInvalidInput, got %v", err)
	}
	if _, err := e.Adopt("", "Dolly", base); !errors.Is(err, flock.ErrInvalidInput) {
		t.Errorf("empty owner: expected ErrInvalidInput, got %v", err)
	}
}

func TestAnnotate(t *testing.T) {
	e := newTestEngine(fixedRandom(1))
	s := adopt(t, e, "Dolly")

	when := base.Add(48 * time.Hour)
	s.Plan = flock.Plan{Time: &when, Content: "visit", Notified: true}

	note := " likes songs "
	same := flock.Plan{Time: &when, Content: "visit again", Notified: true}
	got, err := e.Annotate(s, Annotation{Note: &note, Plan: &same})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if got.Note != "likes songs" || !got.Plan.Notified {
		t.Errorf("same plan time should keep notified flag: %+v", got)
	}

	later := when.Add(time.Hour)
	moved := flock.Plan{Time: &later, Content: "visit", Notified: true}
	got, _ = e.Annotate(got, Annotation{Plan: &moved})
	if got.Plan.Notified {
		t.Error("moved plan should be re-armed")
	}

	empty := ""
	if _, err := e.Annotate(got, Annotation{Name: &empty}); !errors.Is(err, flock.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty name, got %v", err)
	}
}

func TestDailyCapEnforcement(t *testing.T) {
	e := newTestEngine(fixedRandom(1))
	s := adopt(t, e, "Dolly")
	s.Health = 50

	now := base.Add(time.Hour)
	for i := 1; i <= 3; i++ {
		var out Outcome
		var err error
		s, out, err = e.Pray(s, now, PrayOptions{})
		if err != nil {
			t.Fatalf("prayer %d rejected: %v", i, err)
		}
		if out.Kind != OutcomeHealed || out.PrayedToday != i || out.Remaining != 3-i {
			t.Errorf("prayer %d: outcome %+v", i, out)
		}
	}
	if s.Health != 80 || s.CareLevel != 30 {
		t.Errorf("after 3 prayers: health=%v care=%d", s.Health, s.CareLevel)
	}

	before := s
	after, _, err := e.Pray(s, now, PrayOptions{})
	if !errors.Is(err, flock.ErrLimitReached) {
		t.Fatalf("4th prayer: expected ErrLimitReached, got %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("rejected prayer changed state:\n%+v\n%+v", before, after)
	}
	if e.CanPray(s, now) {
		t.Error("CanPray should be false at the cap")
	}

	// Admin bypasses the cap.
	after, out, err := e.Pray(s, now, PrayOptions{Admin: true})
	if err != nil || after.PrayedCount != 4 || out.Remaining != 0 {
		t.Errorf("admin prayer: err=%v count=%d out=%+v", err, after.PrayedCount, out)
	}
}

func TestStalePrayedCountIsIgnored(t *testing.T) {
	e := newTestEngine(fixedRandom(1))
	s := adopt(t, e, "Dolly")
	s.LastPrayedDate = e.Today(base).AddDays(-1)
	s.PrayedCount = 3

	if got := e.EffectivePrayedCount(s, base); got != 0 {
		t.Errorf("EffectivePrayedCount = %d, expected 0 for a stale counter", got)
	}
	s, _, err := e.Pray(s, base, PrayOptions{})
	if err != nil {
		t.Fatalf("Pray failed: %v", err)
	}
	if s.PrayedCount != 1 || s.LastPrayedDate != e.Today(base) {
		t.Errorf("count=%d date=%s", s.PrayedCount, s.LastPrayedDate)
	}
}

func TestPrayerClearsSicknessAndClamps(t *testing.T) {
	e := newTestEngine(fixedRandom(1))
	s := adopt(t, e, "Dolly")
	s.Status = flock.StatusSick
	s.Health = 95

	s, _, err := e.Pray(s, base, PrayOptions{})
	if err != nil {
		t.Fatalf("Pray failed: %v", err)
	}
	if s.Status != flock.StatusHealthy || s.Health != 100 {
		t.Errorf("status=%s health=%v", s.Status, s.Health)
	}
}

func TestEvolutionThreshold(t *testing.T) {
	e := newTestEngine(fixedRandom(1))
	s := adopt(t, e, "Dolly")
	s.CareLevel = 90

	s, out, err := e.Pray(s, base, PrayOptions{})
	if err != nil {
		t.Fatalf("Pray failed: %v", err)
	}
	if out.Kind != OutcomeEvolved || out.From != flock.StageLamb || out.To != flock.StageFaithful {
		t.Errorf("outcome = %+v", out)
	}
	if s.Stage != flock.StageFaithful || s.CareLevel != 0 {
		t.Errorf("stage=%s care=%d", s.Stage, s.CareLevel)
	}

	// The final stage never advances.
	s.Stage = flock.StageGolden
	s.CareLevel = 10000
	s.PrayedCount = 0
	s, out, _ = e.Pray(s, base, PrayOptions{Admin: true})
	if out.Kind != OutcomeHealed || s.Stage != flock.StageGolden || s.CareLevel != 10010 {
		t.Errorf("golden sheep: out=%+v stage=%s care=%d", out, s.Stage, s.CareLevel)
	}
}

func deadSheep(t *testing.T, e *Engine) flock.Sheep {
	t.Helper()
	s := adopt(t, e, "Dolly")
	s.Status = flock.StatusDead
	s.Health = 0
	s.Note = "first lamb"
	s.Maturity = "seeker"
	s.Stage = flock.StageFaithful
	return s
}

func TestResurrectionStreakReset(t *testing.T) {
	e := newTestEngine(fixedRandom(1))
	s := deadSheep(t, e)
	today := e.Today(base)
	s.ResurrectionProgress = 3
	s.LastPrayedDate = today.AddDays(-2)

	if got := e.EffectiveResurrection(s, base); got != 0 {
		t.Errorf("EffectiveResurrection = %d, expected 0 after a skipped day", got)
	}

	s, out, err := e.Pray(s, base, PrayOptions{})
	if err != nil {
		t.Fatalf("Pray failed: %v", err)
	}
	if s.ResurrectionProgress != 1 || out.Kind != OutcomeRitualStep || out.Progress != 1 {
		t.Errorf("progress=%d out=%+v, expected reset to 1", s.ResurrectionProgress, out)
	}
	if s.Status != flock.StatusDead || s.Health != 0 {
		t.Errorf("ritual step revived early: %s %v", s.Status, s.Health)
	}
}

func TestResurrectionRitual(t *testing.T) {
	e := newTestEngine(fixedRandom(1))
	s := deadSheep(t, e)

	now := base
	for day := 1; day <= 4; day++ {
		var out Outcome
		var err error
		s, out, err = e.Pray(s, now, PrayOptions{})
		if err != nil {
			t.Fatalf("day %d: %v", day, err)
		}
		if out.Kind != OutcomeRitualStep || s.ResurrectionProgress != day {
			t.Fatalf("day %d: progress=%d out=%+v", day, s.ResurrectionProgress, out)
		}

		// Only one step per day.
		if _, _, err := e.Pray(s, now.Add(time.Hour), PrayOptions{}); !errors.Is(err, flock.ErrLimitReached) {
			t.Fatalf("day %d: second step expected ErrLimitReached, got %v", day, err)
		}
		now = now.Add(24 * time.Hour)
		s = e.Decay(s, now)
	}

	s, out, err := e.Pray(s, now, PrayOptions{})
	if err != nil {
		t.Fatalf("final step: %v", err)
	}
	if out.Kind != OutcomeRevived {
		t.Fatalf("outcome = %+v, expected revived", out)
	}
	if s.Status != flock.StatusHealthy || s.Health != 100 || s.ResurrectionProgress != 0 ||
		s.Stage != flock.BaseStage || s.CareLevel != 0 {
		t.Errorf("revived state: %+v", s)
	}
	if s.Name != "Dolly" || s.Note != "first lamb" || s.Maturity != "seeker" {
		t.Errorf("revival lost annotations: %+v", s)
	}
}

func TestAdminRitualSameDay(t *testing.T) {
	e := newTestEngine(fixedRandom(1))
	s := deadSheep(t, e)

	var out Outcome
	var err error
	for i := 0; i < 5; i++ {
		s, out, err = e.Pray(s, base, PrayOptions{Admin: true})
		if err != nil {
			t.Fatalf("admin step %d: %v", i, err)
		}
	}
	if out.Kind != OutcomeRevived || s.Status != flock.StatusHealthy {
		t.Errorf("admin ritual should revive in one day: out=%+v status=%s", out, s.Status)
	}
}

func TestDeathFinality(t *testing.T) {
	e := newTestEngine(fixedRandom(0))
	s := adopt(t, e, "Dolly")
	s.Health = 5

	s = e.Decay(s, base.Add(72*time.Hour))
	if s.Status != flock.StatusDead || s.Health != 0 {
		t.Fatalf("expected death, got %s %v", s.Status, s.Health)
	}

	for i := 1; i <= 10; i++ {
		s = e.Decay(s, base.Add(time.Duration(72+i*5)*time.Hour))
		if s.Status != flock.StatusDead || s.Health != 0 {
			t.Fatalf("decay changed a dead sheep: %s %v", s.Status, s.Health)
		}
		s = e.CatchUp(s, base.Add(time.Duration(72+i*5)*time.Hour+time.Hour))
		if s.Status != flock.StatusDead {
			t.Fatalf("catch-up changed a dead sheep: %s", s.Status)
		}
	}

	// One ritual step heals nothing.
	s, _, err := e.Pray(s, base.Add(200*time.Hour), PrayOptions{})
	if err != nil {
		t.Fatalf("Pray failed: %v", err)
	}
	if s.Status != flock.StatusDead || s.Health != 0 {
		t.Errorf("single ritual step changed status: %s %v", s.Status, s.Health)
	}
}

func TestDecayMonotonicAndClamped(t *testing.T) {
	e := newTestEngine(fixedRandom(1))
	s := adopt(t, e, "Dolly")

	prev := s.Health
	for h := 1; h <= 400; h += 7 {
		s = e.Decay(s, base.Add(time.Duration(h)*time.Hour))
		if s.Health > prev {
			t.Fatalf("health rose from %v to %v at %dh", prev, s.Health, h)
		}
		if s.Health < 0 || s.Health > 100 {
			t.Fatalf("health %v out of range", s.Health)
		}
		prev = s.Health
	}
	if s.Status != flock.StatusDead {
		t.Errorf("expected death after 400h, got %s", s.Status)
	}
}

func TestDecayReplayIdempotent(t *testing.T) {
	e := newTestEngine(fixedRandom(1))
	s := adopt(t, e, "Dolly")

	t1 := base.Add(3 * time.Hour)
	t2 := base.Add(11 * time.Hour)

	stepwise := e.Decay(e.Decay(s, t1), t2)
	direct := e.Decay(s, t2)
	if math.Abs(stepwise.Health-direct.Health) > 1e-9 {
		t.Errorf("stepwise %v != direct %v", stepwise.Health, direct.Health)
	}

	// Replaying the same instant is a no-op.
	again := e.Decay(direct, t2)
	if !reflect.DeepEqual(again, direct) {
		t.Error("re-evaluating at the same instant changed state")
	}
}

func TestDecayAcrossMidnightMatchesTicks(t *testing.T) {
	e := newTestEngine(fixedRandom(1))
	evening := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)
	morning := time.Date(2025, 3, 11, 4, 0, 0, 0, time.UTC)

	s, err := e.Adopt("owner-1", "Dolly", evening)
	if err != nil {
		t.Fatalf("Adopt failed: %v", err)
	}
	s.Health = 50
	s, _, err = e.Pray(s, evening, PrayOptions{})
	if err != nil {
		t.Fatalf("Pray failed: %v", err)
	}
	start := s.Health

	ticked := s
	for at := evening.Add(30 * time.Minute); !at.After(morning); at = at.Add(30 * time.Minute) {
		ticked = e.Decay(ticked, at)
	}
	once := e.Decay(s, morning)
	caught := e.CatchUp(s, morning)

	if math.Abs(ticked.Health-once.Health) > 1e-9 || math.Abs(once.Health-caught.Health) > 1e-9 {
		t.Errorf("ticks %v, single %v, catch-up %v should agree", ticked.Health, once.Health, caught.Health)
	}

	// Four hours at the prayed rate, then four at the healthy rate.
	want := start - (4.0*6+4.0*13)/24
	if math.Abs(once.Health-want) > 1e-9 {
		t.Errorf("health = %v, expected %v", once.Health, want)
	}
}

func TestDecayRates(t *testing.T) {
	e := newTestEngine(fixedRandom(1))
	today := e.Today(base)

	s := adopt(t, e, "Dolly")
	if got := e.DailyRate(s, today); got != 13 {
		t.Errorf("healthy rate = %v, expected 13", got)
	}
	s.LastPrayedDate = today
	if got := e.DailyRate(s, today); got != 6 {
		t.Errorf("prayed rate = %v, expected 6", got)
	}
	s.LastPrayedDate = today.AddDays(-1)
	s.Status = flock.StatusSick
	if got := e.DailyRate(s, today); got != 20 {
		t.Errorf("sick rate = %v, expected 20", got)
	}

	s = adopt(t, e, "Dolly")
	s = e.Decay(s, base.Add(12*time.Hour))
	if math.Abs(s.Health-93.5) > 1e-9 {
		t.Errorf("health after 12h = %v, expected 93.5", s.Health)
	}
}

func TestOfflineCatchUpBound(t *testing.T) {
	rules := config.DefaultRules()
	rules.Decay.HealthyDaily = 50 // above the cap
	e := New(rules, WithRandom(fixedRandom(1)), WithLocation(time.UTC))

	s := adopt(t, e, "Dolly")
	s = e.CatchUp(s, base.Add(48*time.Hour))
	if s.Health < 100-rules.Decay.DailyCap*2-1e-9 {
		t.Errorf("48h catch-up lost %v, more than the cap allows", 100-s.Health)
	}

	s = adopt(t, e, "Dolly")
	s = e.CatchUp(s, base.Add(240*time.Hour))
	if s.Health != 0 || s.Status != flock.StatusDead {
		t.Errorf("240h catch-up: health=%v status=%s, expected clamp at 0", s.Health, s.Status)
	}
}

func TestCatchUpIgnoresShortAbsence(t *testing.T) {
	e := newTestEngine(fixedRandom(0))
	s := adopt(t, e, "Dolly")
	s.Health = 30

	got := e.CatchUp(s, base.Add(time.Minute))
	if !reflect.DeepEqual(got, s) {
		t.Errorf("short absence changed state: %+v", got)
	}
}

func TestSicknessBranches(t *testing.T) {
	// A source that always fires makes a low sheep sick.
	e := newTestEngine(fixedRandom(0))
	s := adopt(t, e, "Dolly")
	s.Health = 30
	if got := e.Decay(s, base.Add(time.Minute)); got.Status != flock.StatusSick {
		t.Errorf("status = %s, expected sick", got.Status)
	}

	// Above the threshold nothing happens even when the source fires.
	s.Health = 60
	if got := e.Decay(s, base.Add(time.Minute)); got.Status != flock.StatusHealthy {
		t.Errorf("status = %s, expected healthy above threshold", got.Status)
	}

	// A source that never fires leaves it healthy.
	e = newTestEngine(fixedRandom(0.9999))
	s.Health = 30
	if got := e.Decay(s, base.Add(time.Minute)); got.Status != flock.StatusHealthy {
		t.Errorf("status = %s, expected healthy", got.Status)
	}
}

func TestInjuryBelowThreshold(t *testing.T) {
	e := newTestEngine(fixedRandom(0))
	s := adopt(t, e, "Dolly")
	s.Health = 5
	got := e.Decay(s, base.Add(time.Minute))
	if got.Status != flock.StatusInjured {
		t.Errorf("status = %s, expected injured", got.Status)
	}
}

func TestSicknessDistribution(t *testing.T) {
	rules := config.DefaultRules()
	rules.Decay.SicknessChance = 0.3
	rules.Decay.InjuryChance = 0
	e := New(rules, WithRandom(rand.New(rand.NewSource(42))), WithLocation(time.UTC))

	const trials = 5000
	sick := 0
	for i := 0; i < trials; i++ {
		s := adopt(t, e, "Dolly")
		s.Health = 30
		if e.Decay(s, base.Add(time.Minute)).Status == flock.StatusSick {
			sick++
		}
	}
	ratio := float64(sick) / trials
	if ratio < 0.25 || ratio > 0.35 {
		t.Errorf("sick ratio = %.3f, expected about 0.3", ratio)
	}
}

func TestDeadProgressResetsAfterSkippedDay(t *testing.T) {
	e := newTestEngine(fixedRandom(1))
	s := deadSheep(t, e)
	s.ResurrectionProgress = 2
	s.LastPrayedDate = e.Today(base)

	next := e.Decay(s, base.Add(24*time.Hour))
	if next.ResurrectionProgress != 2 {
		t.Errorf("progress = %d, expected streak kept on the following day", next.ResurrectionProgress)
	}
	next = e.Decay(s, base.Add(48*time.Hour))
	if next.ResurrectionProgress != 0 {
		t.Errorf("progress = %d, expected reset after a skipped day", next.ResurrectionProgress)
	}
}

func TestSanitize(t *testing.T) {
	e := newTestEngine(fixedRandom(1))
	s := flock.Sheep{
		Name:                 "A very long sheep name",
		Health:               150,
		Stage:                flock.Stage(9),
		Status:               flock.Status(-3),
		CareLevel:            -5,
		PrayedCount:          -1,
		ResurrectionProgress: 4,
	}
	got := e.Sanitize(s)
	if got.Health != 100 || got.Stage != flock.BaseStage || got.Status != flock.StatusHealthy ||
		got.CareLevel != 0 || got.PrayedCount != 0 || got.ResurrectionProgress != 0 {
		t.Errorf("Sanitize = %+v", got)
	}
	if got.Name != "A very lon" {
		t.Errorf("Name = %q", got.Name)
	}

	got = e.Sanitize(flock.Sheep{Name: "x", Health: math.NaN()})
	if got.Health != 0 || got.Status != flock.StatusDead {
		t.Errorf("NaN health: %+v", got)
	}

	got = e.Sanitize(flock.Sheep{Name: "x", Status: flock.StatusDead, Health: 40, ResurrectionProgress: 99})
	if got.Health != 0 || got.ResurrectionProgress != 5 {
		t.Errorf("dead record: %+v", got)
	}
}
