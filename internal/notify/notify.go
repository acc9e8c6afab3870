// Package notify hands due shepherding plans to a Sender and marks them sent.
// Delivery itself is the Sender's business.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sheepfold/internal/flock"
)

// Plans are due from an hour in the past up to a quarter hour ahead.
const (
	DefaultLookBack  = time.Hour
	DefaultLookAhead = 15 * time.Minute
)

// PlanSource lists due plans and records delivery.
type PlanSource interface {
	DuePlans(ctx context.Context, from, to time.Time) ([]flock.DuePlan, error)
	MarkPlanNotified(ctx context.Context, sheepID string) error
}

// Sender delivers one plan reminder.
type Sender interface {
	Send(ctx context.Context, plan flock.DuePlan) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, plan flock.DuePlan) error

func (f SenderFunc) Send(ctx context.Context, plan flock.DuePlan) error { return f(ctx, plan) }

// LogSender "delivers" reminders to a logger.
type LogSender struct {
	Logger *log.Logger
}

func (s LogSender) Send(_ context.Context, plan flock.DuePlan) error {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Info("plan reminder",
		"owner", plan.OwnerID,
		"sheep", plan.SheepName,
		"at", plan.Plan.Time,
		"location", plan.Plan.Location,
		"content", plan.Plan.Content,
	)
	return nil
}

// Dispatcher polls a PlanSource and sends due plans.
type Dispatcher struct {
	source    PlanSource
	sender    Sender
	logger    *log.Logger
	now       func() time.Time
	lookBack  time.Duration
	lookAhead time.Duration
}

// NewDispatcher creates a dispatcher with the default window.
func NewDispatcher(source PlanSource, sender Sender, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		source:    source,
		sender:    sender,
		logger:    logger,
		now:       time.Now,
		lookBack:  DefaultLookBack,
		lookAhead: DefaultLookAhead,
	}
}

// Result summarizes one dispatch pass.
type Result struct {
	Due    int
	Sent   int
	Failed int
}

// RunOnce sends every due plan, oldest first. A plan is marked notified
// only after its send succeeds; failures are logged and retried next pass.
func (d *Dispatcher) RunOnce(ctx context.Context) (Result, error) {
	now := d.now()
	plans, err := d.source.DuePlans(ctx, now.Add(-d.lookBack), now.Add(d.lookAhead))
	if err != nil {
		return Result{}, fmt.Errorf("notify: list due plans: %w", err)
	}

	res := Result{Due: len(plans)}
	for _, plan := range plans {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := d.sender.Send(ctx, plan); err != nil {
			res.Failed++
			d.logger.Warn("reminder not sent", "sheep", plan.SheepID, "error", err)
			continue
		}
		if err := d.source.MarkPlanNotified(ctx, plan.SheepID); err != nil {
			res.Failed++
			d.logger.Warn("reminder sent but not marked", "sheep", plan.SheepID, "error", err)
			continue
		}
		res.Sent++
	}

	if res.Due > 0 {
		d.logger.Info("reminders dispatched", "due", res.Due, "sent", res.Sent, "failed", res.Failed)
	}
	return res, nil
}

// Run calls RunOnce every interval until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := d.RunOnce(ctx); err != nil && ctx.Err() == nil {
			d.logger.Error("dispatch failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
