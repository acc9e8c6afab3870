package pasture

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sheepfold/internal/engine"
)

// Config holds the scheduling intervals.
type Config struct {
	TickInterval    time.Duration // How often decay is evaluated
	FlushInterval   time.Duration // How often dirty sheep are written
	ShutdownTimeout time.Duration // Budget for the final flush
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval:    30 * time.Second,
		FlushInterval:   5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Manager keeps the open pastures and runs the scheduling loop.
type Manager struct {
	config Config
	engine *engine.Engine
	store  Store
	clock  Clock
	logger *log.Logger

	mu       sync.Mutex
	pastures map[string]*Pasture
	loading  map[string]*loadCall
}

// loadCall lets concurrent Opens of one owner share a single store load.
type loadCall struct {
	done chan struct{}
	p    *Pasture
	err  error
}

// NewManager creates a manager. Pastures are loaded lazily by Open.
func NewManager(cfg Config, eng *engine.Engine, store Store, opts ...Option) *Manager {
	def := DefaultConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}

	m := &Manager{
		config:   cfg,
		engine:   eng,
		store:    store,
		clock:    SystemClock{},
		logger:   log.Default(),
		pastures: make(map[string]*Pasture),
		loading:  make(map[string]*loadCall),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Engine returns the engine shared by all pastures.
func (m *Manager) Engine() *engine.Engine {
	return m.engine
}

// Open returns the owner's pasture, loading it on first use.
func (m *Manager) Open(ctx context.Context, ownerID string) (*Pasture, error) {
	ownerID = strings.TrimSpace(ownerID)

	m.mu.Lock()
	if p, ok := m.pastures[ownerID]; ok {
		m.mu.Unlock()
		return p, nil
	}
	if call, ok := m.loading[ownerID]; ok {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.p, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &loadCall{done: make(chan struct{})}
	m.loading[ownerID] = call
	m.mu.Unlock()

	call.p, call.err = Load(ctx, ownerID, m.engine, m.store, m.clock, m.logger)

	m.mu.Lock()
	delete(m.loading, ownerID)
	if call.err == nil {
		m.pastures[ownerID] = call.p
		m.logger.Info("pasture opened", "owner", ownerID, "sheep", call.p.Snapshot().Len())
	}
	m.mu.Unlock()
	close(call.done)

	return call.p, call.err
}

// Owners lists the owners with an open pasture, sorted.
func (m *Manager) Owners() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	owners := make([]string, 0, len(m.pastures))
	for id := range m.pastures {
		owners = append(owners, id)
	}
	sort.Strings(owners)
	return owners
}

func (m *Manager) all() []*Pasture {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Pasture, 0, len(m.pastures))
	for _, p := range m.pastures {
		out = append(out, p)
	}
	return out
}

// TickAll runs one decay sweep over every open pasture.
func (m *Manager) TickAll(ctx context.Context) error {
	for _, p := range m.all() {
		if err := p.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}

// FlushAll flushes every open pasture. Failures are logged by the pasture;
// the joined error is returned.
func (m *Manager) FlushAll(ctx context.Context) error {
	var errs []error
	for _, p := range m.all() {
		if err := p.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run ticks and flushes until ctx is cancelled, then makes a final
// best-effort flush bounded by ShutdownTimeout.
func (m *Manager) Run(ctx context.Context) error {
	tick := time.NewTicker(m.config.TickInterval)
	defer tick.Stop()
	flush := time.NewTicker(m.config.FlushInterval)
	defer flush.Stop()

	m.logger.Info("pasture loop started", "tick", m.config.TickInterval, "flush", m.config.FlushInterval)

	for {
		select {
		case <-ctx.Done():
			return m.shutdown()
		case <-tick.C:
			if err := m.TickAll(ctx); err != nil && ctx.Err() == nil {
				m.logger.Error("tick failed", "error", err)
			}
		case <-flush.C:
			// Errors already logged per pasture; sheep stay dirty.
			_ = m.FlushAll(ctx)
		}
	}
}

func (m *Manager) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.config.ShutdownTimeout)
	defer cancel()

	if err := m.FlushAll(ctx); err != nil {
		m.logger.Warn("final flush incomplete", "error", err)
		return fmt.Errorf("pasture: final flush: %w", err)
	}
	m.logger.Info("pasture loop stopped")
	return nil
}
