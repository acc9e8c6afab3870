package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/sheepfold/internal/flock"
	"github.com/vovakirdan/sheepfold/internal/pasture"
)

var profileCmd = &cobra.Command{
	Use:   "profile [name]",
	Short: "Show or change your shepherd name",
	Long: `Without arguments, shows your profile and a summary of your flock.
With a name, renames your profile.

Examples:
  sheepfold profile
  sheepfold profile "Good Shepherd"`,
	RunE: runProfile,
}

func runProfile(cmd *cobra.Command, args []string) error {
	a, err := newApp(os.Stderr, pasture.DefaultConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.openOwn(cmd.Context())
	if err != nil {
		return err
	}

	if len(args) > 0 {
		prof, err := p.Rename(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Printf("You are now known as %s.\n", prof.Name)
		return nil
	}

	prof := p.Profile()
	counts := p.Snapshot().Counts()
	fmt.Printf("Shepherd:  %s (%s)\n", prof.Name, prof.OwnerID)
	if !prof.CreatedAt.IsZero() {
		fmt.Printf("Since:     %s\n", prof.CreatedAt.Format("2006-01-02"))
	}
	fmt.Printf("Flock:     %d healthy, %d sick, %d injured, %d resting\n",
		counts[flock.StatusHealthy],
		counts[flock.StatusSick],
		counts[flock.StatusInjured],
		counts[flock.StatusDead],
	)
	return nil
}
