package main

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/sheepfold/internal/flock"
	"github.com/vovakirdan/sheepfold/internal/pasture"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your flock",
	Long:  `Shows every sheep in your pasture with its stage, health and prayers today.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(os.Stderr, pasture.DefaultConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.openOwn(cmd.Context())
	if err != nil {
		return err
	}
	r := p.Snapshot()
	prof := p.Profile()

	if r.Len() == 0 {
		fmt.Printf("%s's pasture is empty.\n", prof.Name)
		fmt.Println("Run 'sheepfold adopt <name>' to adopt a lamb.")
		return nil
	}

	fmt.Printf("%s's flock:\n\n", prof.Name)

	// Calculate column widths
	maxNameLen := 4 // "Name" header
	for _, s := range r.Sheep {
		if n := utf8.RuneCountInString(s.Name); n > maxNameLen {
			maxNameLen = n
		}
	}

	eng := a.engine
	limit := eng.Rules().Care.DailyLimit
	fmt.Printf("  %-*s  %-14s  %6s  %-22s  %s\n", maxNameLen, "Name", "Stage", "Health", "Condition", "Prayers")
	fmt.Printf("  %-*s  %-14s  %6s  %-22s  %s\n", maxNameLen, "----", "-----", "------", "---------", "-------")
	for _, s := range r.Sheep {
		prayers := fmt.Sprintf("%d/%d", eng.EffectivePrayedCount(s, r.At), limit)
		if s.Status == flock.StatusDead {
			prayers = fmt.Sprintf("rite %d/%d", eng.EffectiveResurrection(s, r.At), eng.Rules().Resurrection.DaysRequired)
		}
		fmt.Printf("  %-*s  %-14s  %5.0f%%  %-22s  %s\n",
			maxNameLen, s.Name,
			eng.StageInfo(s.Stage).Name,
			s.Health,
			flock.StatusText(s),
			prayers,
		)
	}

	if p.LocalOnly() {
		fmt.Println()
		fmt.Println("Note: the record store was unreachable, changes may not be saved.")
	}
	return nil
}
