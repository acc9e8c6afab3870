// Package flock defines the sheep record, owner profile and calendar-day
// types shared by the engine, the pasture and the record stores.
// It has no dependencies outside the standard library.
package flock

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Status is the health state of a sheep.
type Status int

const (
	StatusHealthy Status = iota
	StatusSick
	StatusInjured
	StatusDead
)

// String returns the persisted name of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusSick:
		return "sick"
	case StatusInjured:
		return "injured"
	case StatusDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Alive reports whether the status is anything other than dead.
func (s Status) Alive() bool {
	return s != StatusDead
}

// ParseStatus converts a persisted status name back into a Status.
func ParseStatus(v string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "healthy", "":
		return StatusHealthy, nil
	case "sick":
		return StatusSick, nil
	case "injured":
		return StatusInjured, nil
	case "dead":
		return StatusDead, nil
	default:
		return StatusHealthy, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, v)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Stage is the evolutionary stage of a sheep. Stages only ever advance
// in declaration order; the last stage has no successor.
type Stage int

const (
	StageLamb Stage = iota
	StageFaithful
	StageGolden

	// StageCount is the number of stages.
	StageCount = 3
)

// BaseStage is the stage every sheep starts in.
const BaseStage = StageLamb

// String returns the persisted name of the stage.
func (s Stage) String() string {
	switch s {
	case StageLamb:
		return "lamb"
	case StageFaithful:
		return "faithful"
	case StageGolden:
		return "golden"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the declared stages.
func (s Stage) Valid() bool {
	return s >= StageLamb && s < StageCount
}

// Next returns the stage after s, or false for the final stage.
func (s Stage) Next() (Stage, bool) {
	if !s.Valid() || s == StageCount-1 {
		return s, false
	}
	return s + 1, true
}

// ParseStage accepts the persisted names plus the labels used by older
// records ("strong" for the middle stage, "human" for the last one).
func ParseStage(v string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "lamb", "":
		return StageLamb, nil
	case "faithful", "strong":
		return StageFaithful, nil
	case "golden", "human":
		return StageGolden, nil
	default:
		return StageLamb, fmt.Errorf("%w: unknown stage %q", ErrInvalidInput, v)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(text []byte) error {
	v, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Plan is a shepherding appointment attached to a sheep.
type Plan struct {
	Time     *time.Time `json:"time,omitempty"`
	Location string     `json:"location,omitempty"`
	Content  string     `json:"content,omitempty"`
	Notified bool       `json:"notified"`
}

// Scheduled reports whether the plan has a time set.
func (p Plan) Scheduled() bool {
	return p.Time != nil && !p.Time.IsZero()
}

// Sheep is one persisted sheep record.
type Sheep struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`

	Stage     Stage   `json:"stage"`
	Health    float64 `json:"health"`
	Status    Status  `json:"status"`
	CareLevel int     `json:"care_level"`

	LastPrayedDate       Day `json:"last_prayed_date"`
	PrayedCount          int `json:"prayed_count"`
	ResurrectionProgress int `json:"resurrection_progress"`

	Note     string `json:"note,omitempty"`
	Maturity string `json:"maturity,omitempty"`
	Plan     Plan   `json:"plan"`

	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the instant Health was last evaluated against the clock.
	UpdatedAt time.Time `json:"updated_at"`
}

// DuePlan is a scheduled plan selected for notification.
type DuePlan struct {
	SheepID   string
	OwnerID   string
	SheepName string
	Plan      Plan
}

// DefaultProfileName is the name given to profiles created on first load.
const DefaultProfileName = "Shepherd"

// Profile is the owner record.
type Profile struct {
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileUpdate carries optional profile fields; nil fields are left untouched.
type ProfileUpdate struct {
	Name      *string
	LastLogin *time.Time
}

// TruncateName trims surrounding space and cuts the name to at most max
// code points.
func TruncateName(name string, max int) string {
	name = strings.TrimSpace(name)
	if max <= 0 || utf8.RuneCountInString(name) <= max {
		return name
	}
	runes := []rune(name)
	return strings.TrimSpace(string(runes[:max]))
}

// Relationship labels a sheep by how personally it has been named.
func Relationship(name string) string {
	if utf8.RuneCountInString(strings.TrimSpace(name)) > 3 {
		return "companion"
	}
	return "new friend"
}

// StatusText is the short human-readable condition of a sheep.
func StatusText(s Sheep) string {
	switch s.Status {
	case StatusDead:
		return "resting"
	case StatusSick:
		return "sick (needs prayer)"
	case StatusInjured:
		return "injured (needs prayer)"
	}
	if s.Health >= 80 {
		return "strong"
	}
	return "healthy"
}
