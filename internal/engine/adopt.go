package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/sheepfold/internal/flock"
)

// Adopt creates a new sheep at the base stage with full health.
func (e *Engine) Adopt(ownerID, name string, now time.Time) (flock.Sheep, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return flock.Sheep{}, fmt.Errorf("%w: owner id is required", flock.ErrInvalidInput)
	}
	name, err := e.cleanName(name)
	if err != nil {
		return flock.Sheep{}, err
	}

	return flock.Sheep{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Stage:     flock.BaseStage,
		Health:    100,
		Status:    flock.StatusHealthy,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Annotation carries optional edits to the user-owned fields of a sheep.
// Nil fields are left untouched.
type Annotation struct {
	Name     *string
	Note     *string
	Maturity *string
	Plan     *flock.Plan
}

// Annotate applies user edits. Health, status and stage are never touched.
// A plan whose time changes is marked as not yet notified.
func (e *Engine) Annotate(s flock.Sheep, a Annotation) (flock.Sheep, error) {
	if a.Name != nil {
		name, err := e.cleanName(*a.Name)
		if err != nil {
			return s, err
		}
		s.Name = name
	}
	if a.Note != nil {
		s.Note = strings.TrimSpace(*a.Note)
	}
	if a.Maturity != nil {
		s.Maturity = strings.TrimSpace(*a.Maturity)
	}
	if a.Plan != nil {
		plan := *a.Plan
		plan.Notified = samePlanTime(s.Plan, plan) && s.Plan.Notified
		s.Plan = plan
	}
	return s, nil
}

func samePlanTime(a, b flock.Plan) bool {
	if a.Time == nil || b.Time == nil {
		return a.Time == nil && b.Time == nil
	}
	return a.Time.Equal(*b.Time)
}

func (e *Engine) cleanName(name string) (string, error) {
	name = flock.TruncateName(name, e.rules.NameMaxLen)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", flock.ErrInvalidInput)
	}
	return name, nil
}
