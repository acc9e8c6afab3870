package main

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// serveThenFlush runs loop and serve together. serve must return once ctx is
// done and its own shutdown has finished; only then is loop's context
// cancelled, so requests drained during shutdown reach the final flush.
func serveThenFlush(ctx context.Context, loop, serve func(context.Context) error) error {
	loopCtx, cancelLoop := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelLoop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop(loopCtx) })
	g.Go(func() error {
		defer cancelLoop()
		return serve(gctx)
	})
	return g.Wait()
}
