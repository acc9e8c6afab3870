package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/sheepfold/internal/pasture"
)

var adoptCmd = &cobra.Command{
	Use:   "adopt <name>",
	Short: "Adopt a new lamb",
	Long: `Adopt a lamb and give it a name. Names are trimmed and cut to the
maximum length from the care rules.

Examples:
  sheepfold adopt Dolly
  sheepfold adopt "Little Bo"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdopt,
}

func runAdopt(cmd *cobra.Command, args []string) error {
	a, err := newApp(os.Stderr, pasture.DefaultConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.openOwn(cmd.Context())
	if err != nil {
		return err
	}
	s, err := p.Adopt(strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Printf("Welcome, %s! (%s)\n", s.Name, s.ID)
	fmt.Println("Pray for your lamb with 'sheepfold pray " + s.Name + "'.")
	return nil
}
