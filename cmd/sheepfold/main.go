// sheepfold is a shepherd's pasture for the terminal: adopt sheep, pray for
// them every day and watch them grow against a landscape drawn from your name.
//
// Usage:
//
//	sheepfold pasture            - Open your pasture in the terminal
//	sheepfold adopt <name>       - Adopt a lamb
//	sheepfold list               - List your flock
//	sheepfold pray <sheep>       - Pray for a sheep
//	sheepfold edit <sheep>       - Rename or annotate a sheep
//	sheepfold release <sheep>    - Release a sheep for good
//	sheepfold profile [name]     - Show or change your shepherd name
//	sheepfold scene [identity]   - Print a generated landscape
//	sheepfold serve              - Start the SSH server
//	sheepfold http               - Start the JSON API
//	sheepfold notify             - Dispatch due plan reminders
//
// Global flags fall back to SHEEPFOLD_* environment variables, and a .env
// file in the working directory is loaded first:
//
//	--db <dsn>          - Database (default: ~/.sheepfold/sheep.db, or postgres://...)
//	--rules <path>      - Care rules YAML
//	--owner <id>        - Owner id (default: $USER)
//	--tz <zone>         - Time zone for the day boundary (default: local)
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const envPrefix = "SHEEPFOLD_"

var (
	// Global flags
	flagDB       string
	flagRules    string
	flagOwner    string
	flagTZ       string
	flagLogLevel string
	flagAdmin    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sheepfold",
	Short: "Sheepfold - tend a flock of sheep in your terminal",
	Long: `Sheepfold is a quiet care game. Adopt lambs, pray for them a few
times a day and they grow into faithful sheep and golden rams. Neglected
sheep weaken, fall sick and may die; a dead sheep can be brought back by
a ritual of prayer on consecutive days.

Examples:
  sheepfold pasture
  sheepfold adopt Dolly
  sheepfold pray Dolly
  sheepfold serve --ssh :23235
  sheepfold http --addr :8080`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnv,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagDB, "db", "~/.sheepfold/sheep.db", "Database path or DSN (sqlite:// or postgres://)")
	pf.StringVar(&flagRules, "rules", "", "Path to a care rules YAML file")
	pf.StringVar(&flagOwner, "owner", "", "Owner id (default: $USER)")
	pf.StringVar(&flagTZ, "tz", "", "IANA time zone for the day boundary (default: local)")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.BoolVar(&flagAdmin, "admin", false, "Pray without the daily limit")

	rootCmd.AddCommand(pastureCmd)
	rootCmd.AddCommand(adoptCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(prayCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(sceneCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(httpCmd)
	rootCmd.AddCommand(notifyCmd)
}

// loadEnv reads .env and fills every flag not given on the command line
// from its SHEEPFOLD_* variable (--log-level reads SHEEPFOLD_LOG_LEVEL).
func loadEnv(cmd *cobra.Command, _ []string) error {
	// A missing .env is fine.
	_ = godotenv.Load()

	var firstErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || firstErr != nil {
			return
		}
		name := envPrefix + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if v, ok := os.LookupEnv(name); ok {
			if err := cmd.Flags().Set(f.Name, v); err != nil {
				firstErr = fmt.Errorf("%s: %w", name, err)
			}
		}
	})
	return firstErr
}
