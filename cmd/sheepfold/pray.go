package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/sheepfold/internal/engine"
	"github.com/vovakirdan/sheepfold/internal/pasture"
	"github.com/vovakirdan/sheepfold/internal/platform/tui"
)

var prayCmd = &cobra.Command{
	Use:   "pray <sheep>",
	Short: "Pray for a sheep",
	Long: `Pray for a sheep by name or id. Living sheep are healed and grow in
care; a dead sheep takes one step of the resurrection ritual.

Examples:
  sheepfold pray Dolly
  sheepfold pray Dolly --admin   # ignore the daily limit`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPray,
}

func runPray(cmd *cobra.Command, args []string) error {
	a, err := newApp(os.Stderr, pasture.DefaultConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.openOwn(cmd.Context())
	if err != nil {
		return err
	}
	s, err := findSheep(p.Snapshot(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	next, out, err := p.Pray(s.ID, engine.PrayOptions{Admin: flagAdmin})
	if err != nil {
		return err
	}
	fmt.Println(tui.Describe(a.engine, next, out))
	return nil
}
