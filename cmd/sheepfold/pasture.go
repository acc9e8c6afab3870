package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/vovakirdan/sheepfold/internal/pasture"
	"github.com/vovakirdan/sheepfold/internal/platform/tui"
	"github.com/vovakirdan/sheepfold/internal/scene"
)

var flagLogFile string

var pastureCmd = &cobra.Command{
	Use:   "pasture",
	Short: "Open your pasture",
	Long: `Open your pasture in the terminal. The landscape is drawn from your
owner id and your sheep graze on it while you care for them.

Controls:
  Up/Down    - Select a sheep
  P/Space    - Pray
  A          - Adopt a lamb
  R          - Rename the selected sheep
  N          - Edit its note
  X          - Release it
  S          - Change your shepherd name
  ?          - Help
  Q/Ctrl+C   - Quit

Examples:
  sheepfold pasture
  sheepfold pasture --owner alice --admin`,
	Args: cobra.NoArgs,
	RunE: runPasture,
}

func init() {
	pastureCmd.Flags().StringVar(&flagLogFile, "log-file", "~/.sheepfold/pasture.log", "Where to write logs while the pasture is open (empty = discard)")
}

func runPasture(cmd *cobra.Command, _ []string) error {
	// The terminal belongs to the view, so logs go to a file.
	logOut, closeLog, err := openLogFile(flagLogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := newApp(logOut, pasture.DefaultConfig())
	if err != nil {
		return err
	}
	defer a.store.Close()

	p, err := a.openOwn(cmd.Context())
	if err != nil {
		return err
	}

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width, height = w, h
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Run flushes every open pasture once ctx ends.
		return a.manager.Run(ctx)
	})
	g.Go(func() error {
		defer cancel()
		return tui.Run(p, tui.Options{
			Admin:  flagAdmin,
			Params: scene.DefaultParams(),
			Width:  width,
			Height: height,
		})
	})
	return g.Wait()
}

// openLogFile opens path for appending, expanding a leading ~.
func openLogFile(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, err
		}
		path = filepath.Join(home, path[1:])
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
