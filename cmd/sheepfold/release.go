package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/sheepfold/internal/pasture"
)

var flagYes bool

var releaseCmd = &cobra.Command{
	Use:   "release <sheep>",
	Short: "Release a sheep for good",
	Long: `Remove a sheep from your pasture. This cannot be undone.

Examples:
  sheepfold release Dolly
  sheepfold release Dolly --yes`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRelease,
}

func init() {
	releaseCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")
}

func runRelease(cmd *cobra.Command, args []string) error {
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

	if !flagYes {
		fmt.Printf("Release %s for good? [y/N] ", s.Name)
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if ans := strings.ToLower(strings.TrimSpace(answer)); ans != "y" && ans != "yes" {
			fmt.Println("Kept.")
			return nil
		}
	}

	if err := p.Delete(cmd.Context(), s.ID); err != nil {
		return err
	}
	fmt.Printf("%s was released.\n", s.Name)
	return nil
}
