package pasture

import (
	"time"

	"github.com/vovakirdan/sheepfold/internal/flock"
)

// Roster is an immutable snapshot of one owner's flock.
// Callers must not modify the Sheep slice.
type Roster struct {
	OwnerID string
	Profile flock.Profile
	Sheep   []flock.Sheep // Adoption order
	At      time.Time     // When the snapshot was published
	Version uint64
}

// Len returns the number of sheep.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Sheep)
}

// Find returns the sheep with the given id.
func (r *Roster) Find(id string) (flock.Sheep, bool) {
	if i := r.index(id); i >= 0 {
		return r.Sheep[i], true
	}
	return flock.Sheep{}, false
}

func (r *Roster) index(id string) int {
	if r == nil {
		return -1
	}
	for i := range r.Sheep {
		if r.Sheep[i].ID == id {
			return i
		}
	}
	return -1
}

// Counts tallies sheep by status.
func (r *Roster) Counts() map[flock.Status]int {
	counts := make(map[flock.Status]int, 4)
	if r == nil {
		return counts
	}
	for _, s := range r.Sheep {
		counts[s.Status]++
	}
	return counts
}

// with returns a new roster with sheep replaced and the version bumped.
func (r *Roster) with(sheep []flock.Sheep, at time.Time) *Roster {
	return &Roster{
		OwnerID: r.OwnerID,
		Profile: r.Profile,
		Sheep:   sheep,
		At:      at,
		Version: r.Version + 1,
	}
}

func cloneSheep(in []flock.Sheep) []flock.Sheep {
	out := make([]flock.Sheep, len(in))
	copy(out, in)
	return out
}
