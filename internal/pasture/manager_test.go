package pasture

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/sheepfold/internal/config"
	"github.com/vovakirdan/sheepfold/internal/engine"
)

func newTestManager(cfg Config) (*Manager, *memStore, *fakeClock) {
	store := newMemStore()
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	eng := engine.New(config.DefaultRules(), engine.WithRandom(neverRandom{}), engine.WithLocation(time.UTC))
	m := NewManager(cfg, eng, store, WithClock(clock), WithLogger(quietLogger))
	return m, store, clock
}

func TestManagerOpenSharesPasture(t *testing.T) {
	m, _, _ := newTestManager(Config{})
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*Pasture, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := m.Open(ctx, "owner-1")
			if err != nil {
				t.Errorf("Open() failed: %v", err)
				return
			}
			results[i] = p
		}()
	}
	wg.Wait()

	for _, p := range results[1:] {
		if p != results[0] {
			t.Fatal("concurrent opens returned different pastures")
		}
	}
	if owners := m.Owners(); len(owners) != 1 || owners[0] != "owner-1" {
		t.Errorf("Owners() = %v", owners)
	}
}

func TestManagerTickAndFlushAll(t *testing.T) {
	m, store, clock := newTestManager(Config{})
	ctx := context.Background()

	a, _ := m.Open(ctx, "a")
	b, _ := m.Open(ctx, "b")
	sa, _ := a.Adopt("Dolly")
	sb, _ := b.Adopt("Molly")

	clock.Advance(24 * time.Hour)
	if err := m.TickAll(ctx); err != nil {
		t.Fatalf("TickAll() failed: %v", err)
	}
	if err := m.FlushAll(ctx); err != nil {
		t.Fatalf("FlushAll() failed: %v", err)
	}

	for _, id := range []string{sa.ID, sb.ID} {
		s, ok := store.stored(id)
		if !ok || s.Health != 87 {
			t.Errorf("stored %s = %+v", id, s)
		}
	}
}

func TestManagerRunFinalFlush(t *testing.T) {
	m, store, _ := newTestManager(Config{
		TickInterval:    time.Hour,
		FlushInterval:   time.Hour,
		ShutdownTimeout: time.Second,
	})
	ctx, cancel := context.WithCancel(context.Background())

	p, err := m.Open(ctx, "owner-1")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	s, _ := p.Adopt("Dolly")

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop")
	}

	if _, ok := store.stored(s.ID); !ok {
		t.Error("final flush did not persist the adopted sheep")
	}
}

func TestManagerRunReportsFailedFinalFlush(t *testing.T) {
	m, store, _ := newTestManager(Config{TickInterval: time.Hour, FlushInterval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())

	p, _ := m.Open(ctx, "owner-1")
	p.Adopt("Dolly")
	store.setFail(true)

	cancel()
	if err := m.Run(ctx); err == nil {
		t.Error("expected final flush error")
	}
	if p.Dirty() != 1 {
		t.Errorf("dirty = %d, expected sheep kept for retry", p.Dirty())
	}
}
