// Package pasture owns the live in-memory flocks.
//
// Each owner's sheep live in a Pasture: one writer at a time, readers get
// immutable Roster snapshots. A Manager runs the single scheduling loop that
// ticks decay and flushes dirty sheep to the record store.
package pasture

import (
	"context"
	"time"

	"github.com/vovakirdan/sheepfold/internal/flock"
)

// Store is the durable record store behind the pastures.
type Store interface {
	// Load returns the owner's profile and sheep, creating the profile if needed.
	Load(ctx context.Context, ownerID string) (flock.Profile, []flock.Sheep, error)
	// Upsert writes sheep by id. Implementations keep the newer updated_at.
	Upsert(ctx context.Context, sheep ...flock.Sheep) error
	Delete(ctx context.Context, sheepID string) error
	UpdateProfile(ctx context.Context, ownerID string, upd flock.ProfileUpdate) error
}

// Clock is the source of "now".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
