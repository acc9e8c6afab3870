package pasture

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/sheepfold/internal/engine"
	"github.com/vovakirdan/sheepfold/internal/flock"
)

// Pasture holds one owner's flock in memory.
//
// Mutations apply immediately to the in-memory roster and mark sheep dirty;
// Flush writes them out. Every mutation publishes a fresh Roster, so
// readers never observe a half-applied tick.
type Pasture struct {
	ownerID string
	engine  *engine.Engine
	store   Store
	clock   Clock
	logger  *log.Logger

	mu    sync.Mutex // serializes writers
	dirty map[string]struct{}

	// ioMu orders Flush against Delete so a flush can't resurrect a
	// sheep that was deleted while its batch was in flight.
	ioMu sync.Mutex

	snap      atomic.Pointer[Roster]
	localOnly atomic.Bool
	watchers  watchers
}

// Load reads an owner's flock from the store, catches up offline decay and
// stamps the profile's last login.
func Load(ctx context.Context, ownerID string, eng *engine.Engine, store Store, clock Clock, logger *log.Logger) (*Pasture, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("pasture: %w: owner id is required", flock.ErrInvalidInput)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}

	profile, sheep, err := store.Load(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("pasture: load %s: %w", ownerID, err)
	}

	p := &Pasture{
		ownerID: ownerID,
		engine:  eng,
		store:   store,
		clock:   clock,
		logger:  logger.With("owner", ownerID),
		dirty:   make(map[string]struct{}),
	}

	now := clock.Now()
	caught := make([]flock.Sheep, 0, len(sheep))
	for _, s := range sheep {
		next := eng.CatchUp(eng.Sanitize(s), now)
		if next != s {
			p.dirty[next.ID] = struct{}{}
		}
		if s.Status.Alive() && !next.Status.Alive() {
			p.logger.Info("sheep died while away", "sheep", next.Name)
		}
		caught = append(caught, next)
	}

	profile.LastLogin = now
	if err := store.UpdateProfile(ctx, ownerID, flock.ProfileUpdate{LastLogin: &now}); err != nil {
		p.logger.Warn("could not stamp last login", "error", err)
		p.localOnly.Store(true)
	}

	p.snap.Store(&Roster{
		OwnerID: ownerID,
		Profile: profile,
		Sheep:   caught,
		At:      now,
	})
	return p, nil
}

// OwnerID returns the owner this pasture belongs to.
func (p *Pasture) OwnerID() string {
	return p.ownerID
}

// Engine returns the rules engine the pasture applies.
func (p *Pasture) Engine() *engine.Engine {
	return p.engine
}

// Snapshot returns the current roster.
func (p *Pasture) Snapshot() *Roster {
	return p.snap.Load()
}

// Profile returns the owner's profile.
func (p *Pasture) Profile() flock.Profile {
	return p.snap.Load().Profile
}

// LocalOnly reports whether the last write to the store failed.
func (p *Pasture) LocalOnly() bool {
	return p.localOnly.Load()
}

// Dirty returns the number of sheep waiting to be flushed.
func (p *Pasture) Dirty() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.dirty)
}

// Watch subscribes to published snapshots. Call the returned function to stop.
func (p *Pasture) Watch() (*Watcher, func()) {
	w := p.watchers.add()
	return w, func() { p.watchers.remove(w) }
}

// publish must be called with mu held.
func (p *Pasture) publish(r *Roster) {
	p.snap.Store(r)
	p.watchers.broadcast(r)
}

// Adopt adds a new sheep to the flock.
func (p *Pasture) Adopt(name string) (flock.Sheep, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	s, err := p.engine.Adopt(p.ownerID, name, now)
	if err != nil {
		return flock.Sheep{}, err
	}

	cur := p.snap.Load()
	sheep := make([]flock.Sheep, 0, len(cur.Sheep)+1)
	sheep = append(sheep, cur.Sheep...)
	sheep = append(sheep, s)

	p.dirty[s.ID] = struct{}{}
	p.publish(cur.with(sheep, now))
	p.logger.Info("sheep adopted", "sheep", s.Name, "id", s.ID)
	return s, nil
}

// Pray prays for one sheep. Decay up to now is applied first so the
// prayer acts on current health. A rejected prayer changes nothing.
func (p *Pasture) Pray(id string, opts engine.PrayOptions) (flock.Sheep, engine.Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := p.snap.Load()
	i := cur.index(id)
	if i < 0 {
		return flock.Sheep{}, engine.Outcome{}, fmt.Errorf("pasture: sheep %s: %w", id, flock.ErrNotFound)
	}

	now := p.clock.Now()
	next, out, err := p.engine.Pray(p.engine.Decay(cur.Sheep[i], now), now, opts)
	if err != nil {
		return cur.Sheep[i], engine.Outcome{}, err
	}

	sheep := cloneSheep(cur.Sheep)
	sheep[i] = next
	p.dirty[id] = struct{}{}
	p.publish(cur.with(sheep, now))

	switch out.Kind {
	case engine.OutcomeEvolved:
		p.logger.Info("sheep evolved", "sheep", next.Name, "from", out.From, "to", out.To)
	case engine.OutcomeRevived:
		p.logger.Info("sheep revived", "sheep", next.Name)
	default:
		p.logger.Debug("prayer accepted", "sheep", next.Name, "outcome", out.Kind)
	}
	return next, out, nil
}

// Annotate edits a sheep's name, note, maturity or plan.
func (p *Pasture) Annotate(id string, a engine.Annotation) (flock.Sheep, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := p.snap.Load()
	i := cur.index(id)
	if i < 0 {
		return flock.Sheep{}, fmt.Errorf("pasture: sheep %s: %w", id, flock.ErrNotFound)
	}

	now := p.clock.Now()
	next, err := p.engine.Annotate(p.engine.Decay(cur.Sheep[i], now), a)
	if err != nil {
		return cur.Sheep[i], err
	}

	sheep := cloneSheep(cur.Sheep)
	sheep[i] = next
	p.dirty[id] = struct{}{}
	p.publish(cur.with(sheep, now))
	return next, nil
}

const profileNameMaxLen = 20

// Rename changes the owner's display name and writes it through.
func (p *Pasture) Rename(ctx context.Context, name string) (flock.Profile, error) {
	name = flock.TruncateName(name, profileNameMaxLen)
	if name == "" {
		return flock.Profile{}, fmt.Errorf("pasture: %w: name is required", flock.ErrInvalidInput)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	cur := p.snap.Load()
	next := cur.with(cur.Sheep, p.clock.Now())
	next.Profile.Name = name
	p.publish(next)

	if err := p.store.UpdateProfile(ctx, p.ownerID, flock.ProfileUpdate{Name: &name}); err != nil {
		p.logger.Warn("could not save profile", "error", err)
		p.localOnly.Store(true)
	}
	return next.Profile, nil
}

// Delete removes a sheep from the store and then from the flock.
// This is permanent.
func (p *Pasture) Delete(ctx context.Context, id string) error {
	p.ioMu.Lock()
	defer p.ioMu.Unlock()

	if _, ok := p.snap.Load().Find(id); !ok {
		return fmt.Errorf("pasture: sheep %s: %w", id, flock.ErrNotFound)
	}

	// A sheep that was never flushed is not in the store yet.
	if err := p.store.Delete(ctx, id); err != nil && !errors.Is(err, flock.ErrNotFound) {
		return fmt.Errorf("pasture: delete %s: %w", id, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	cur := p.snap.Load()
	i := cur.index(id)
	if i < 0 {
		return nil
	}
	sheep := make([]flock.Sheep, 0, len(cur.Sheep)-1)
	sheep = append(sheep, cur.Sheep[:i]...)
	sheep = append(sheep, cur.Sheep[i+1:]...)
	delete(p.dirty, id)
	p.publish(cur.with(sheep, p.clock.Now()))
	p.logger.Info("sheep released", "id", id)
	return nil
}

// Tick runs one decay sweep over the flock. Sheep are evaluated in
// parallel; if ctx is cancelled the sweep is abandoned and nothing is
// published.
func (p *Pasture) Tick(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := p.snap.Load()
	if len(cur.Sheep) == 0 {
		return ctx.Err()
	}

	now := p.clock.Now()
	next := make([]flock.Sheep, len(cur.Sheep))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, s := range cur.Sheep {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			next[i] = p.engine.Decay(s, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for i := range next {
		before, after := cur.Sheep[i], next[i]
		if before != after {
			p.dirty[after.ID] = struct{}{}
		}
		if before.Status != after.Status {
			p.logger.Info("status changed", "sheep", after.Name, "from", before.Status, "to", after.Status)
		}
	}
	p.publish(cur.with(next, now))
	return nil
}

// Flush writes dirty sheep to the store in one batch. On failure the sheep
// stay dirty for the next attempt and the pasture is marked local-only.
func (p *Pasture) Flush(ctx context.Context) error {
	p.ioMu.Lock()
	defer p.ioMu.Unlock()

	p.mu.Lock()
	cur := p.snap.Load()
	batch := make([]flock.Sheep, 0, len(p.dirty))
	for _, s := range cur.Sheep {
		if _, ok := p.dirty[s.ID]; ok {
			batch = append(batch, s)
		}
	}
	clear(p.dirty)
	p.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	if err := p.store.Upsert(ctx, batch...); err != nil {
		p.mu.Lock()
		latest := p.snap.Load()
		for _, s := range batch {
			if _, ok := latest.Find(s.ID); ok {
				p.dirty[s.ID] = struct{}{}
			}
		}
		p.mu.Unlock()

		if !p.localOnly.Swap(true) {
			p.logger.Warn("store unavailable, continuing locally", "error", err)
		}
		return fmt.Errorf("pasture: flush %s: %w", p.ownerID, err)
	}

	if p.localOnly.Swap(false) {
		p.logger.Info("store reachable again")
	}
	p.logger.Debug("flushed", "sheep", len(batch))
	return nil
}
