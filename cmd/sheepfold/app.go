package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sheepfold/internal/config"
	"github.com/vovakirdan/sheepfold/internal/engine"
	"github.com/vovakirdan/sheepfold/internal/flock"
	"github.com/vovakirdan/sheepfold/internal/pasture"
	"github.com/vovakirdan/sheepfold/internal/storage"
)

// app bundles what every command needs: logger, rules, engine and store.
type app struct {
	logger  *log.Logger
	engine  *engine.Engine
	store   *storage.Store
	manager *pasture.Manager
}

// newApp wires the application from the global flags. Logs go to out.
func newApp(out io.Writer, cfg pasture.Config) (*app, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          "sheepfold",
		Level:           level,
	})

	rules, err := config.LoadRules(flagRules)
	if err != nil {
		return nil, err
	}

	loc := time.Local
	if flagTZ != "" {
		if loc, err = time.LoadLocation(flagTZ); err != nil {
			return nil, fmt.Errorf("invalid --tz %q: %w", flagTZ, err)
		}
	}

	store, err := storage.Open(flagDB)
	if err != nil {
		return nil, err
	}

	eng := engine.New(rules, engine.WithLocation(loc))
	return &app{
		logger:  logger,
		engine:  eng,
		store:   store,
		manager: pasture.NewManager(cfg, eng, store, pasture.WithLogger(logger)),
	}, nil
}

// Close flushes open pastures and closes the store.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.manager.FlushAll(ctx); err != nil {
		a.logger.Warn("some changes were not saved", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store", "error", err)
	}
}

// ownerID resolves the owner from --owner, then $USER.
func ownerID() string {
	if o := strings.TrimSpace(flagOwner); o != "" {
		return o
	}
	if u := strings.TrimSpace(os.Getenv("USER")); u != "" {
		return u
	}
	return "guest"
}

// openOwn opens the current owner's pasture.
func (a *app) openOwn(ctx context.Context) (*pasture.Pasture, error) {
	return a.manager.Open(ctx, ownerID())
}

// findSheep looks a sheep up by id, then by name ignoring case.
func findSheep(r *pasture.Roster, ref string) (flock.Sheep, error) {
	ref = strings.TrimSpace(ref)
	if s, ok := r.Find(ref); ok {
		return s, nil
	}

	var (
		match flock.Sheep
		n     int
	)
	for _, s := range r.Sheep {
		if strings.EqualFold(s.Name, ref) {
			match = s
			n++
		}
	}
	switch n {
	case 0:
		return flock.Sheep{}, fmt.Errorf("no sheep called %q: %w", ref, flock.ErrNotFound)
	case 1:
		return match, nil
	default:
		return flock.Sheep{}, fmt.Errorf("%d sheep are called %q, use the id: %w", n, ref, flock.ErrInvalidInput)
	}
}
