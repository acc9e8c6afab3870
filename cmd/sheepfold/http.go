package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/sheepfold/internal/httpapi"
	"github.com/vovakirdan/sheepfold/internal/pasture"
	"github.com/vovakirdan/sheepfold/internal/scene"
)

var (
	flagHTTPAddr string
	flagAdminKey string
)

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Start the JSON API",
	Long: `Serve pastures over HTTP as JSON. Every owner is addressed by id
under /owners/{id}/. Requests carrying the admin key in the
X-Sheepfold-Admin header pray without the daily limit.

Examples:
  sheepfold http --addr :8080
  SHEEPFOLD_ADMIN_KEY=secret sheepfold http`,
	Args: cobra.NoArgs,
	RunE: runHTTP,
}

func init() {
	httpCmd.Flags().StringVar(&flagHTTPAddr, "addr", ":8080", "HTTP listen address")
	httpCmd.Flags().StringVar(&flagAdminKey, "admin-key", "", "Shared secret for admin requests (empty disables them)")
}

func runHTTP(cmd *cobra.Command, _ []string) error {
	a, err := newApp(os.Stderr, pasture.DefaultConfig())
	if err != nil {
		return err
	}
	defer a.store.Close()

	srv := &http.Server{
		Addr: flagHTTPAddr,
		Handler: httpapi.NewRouter(httpapi.Options{
			Manager:  a.manager,
			AdminKey: flagAdminKey,
			Logger:   a.logger.WithPrefix("http"),
			Params:   scene.DefaultParams(),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serveThenFlush(ctx, a.manager.Run, func(ctx context.Context) error {
		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("starting HTTP server", "address", flagHTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server: %w", err)
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutting down...")
		return srv.Shutdown(shutdownCtx)
	})
}
