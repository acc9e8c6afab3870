package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/sheepfold/internal/engine"
	"github.com/vovakirdan/sheepfold/internal/flock"
	"github.com/vovakirdan/sheepfold/internal/pasture"
)

var (
	flagEditName     string
	flagEditNote     string
	flagEditMaturity string
	flagPlanTime     string
	flagPlanLocation string
	flagPlanContent  string
	flagPlanClear    bool
)

var editCmd = &cobra.Command{
	Use:   "edit <sheep>",
	Short: "Rename or annotate a sheep",
	Long: `Change the name, note, maturity or plan of a sheep. Only the flags
you pass are changed. Plan times use RFC 3339.

Examples:
  sheepfold edit Dolly --name Molly
  sheepfold edit Dolly --note "likes clover"
  sheepfold edit Dolly --plan-time 2026-11-02T18:00:00+01:00 --plan-location chapel`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEdit,
}

func init() {
	f := editCmd.Flags()
	f.StringVar(&flagEditName, "name", "", "New name")
	f.StringVar(&flagEditNote, "note", "", "Free-form note")
	f.StringVar(&flagEditMaturity, "maturity", "", "Maturity label")
	f.StringVar(&flagPlanTime, "plan-time", "", "Plan time (RFC 3339)")
	f.StringVar(&flagPlanLocation, "plan-location", "", "Plan location")
	f.StringVar(&flagPlanContent, "plan-content", "", "Plan content")
	f.BoolVar(&flagPlanClear, "clear-plan", false, "Remove the plan")
}

func runEdit(cmd *cobra.Command, args []string) error {
	ann, err := annotationFromFlags(cmd)
	if err != nil {
		return err
	}

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
	if ann.Plan != nil && !flagPlanClear {
		ann.Plan = mergePlan(cmd, s.Plan, *ann.Plan)
	}

	next, err := p.Annotate(s.ID, ann)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s.\n", next.Name)
	return nil
}

// annotationFromFlags collects only the flags that were set.
func annotationFromFlags(cmd *cobra.Command) (engine.Annotation, error) {
	var ann engine.Annotation
	f := cmd.Flags()
	if f.Changed("name") {
		ann.Name = &flagEditName
	}
	if f.Changed("note") {
		ann.Note = &flagEditNote
	}
	if f.Changed("maturity") {
		ann.Maturity = &flagEditMaturity
	}

	switch {
	case flagPlanClear:
		ann.Plan = &flock.Plan{}
	case f.Changed("plan-time"), f.Changed("plan-location"), f.Changed("plan-content"):
		plan := flock.Plan{Location: flagPlanLocation, Content: flagPlanContent}
		if f.Changed("plan-time") {
			t, err := time.Parse(time.RFC3339, flagPlanTime)
			if err != nil {
				return ann, fmt.Errorf("invalid --plan-time: %w", flock.ErrInvalidInput)
			}
			plan.Time = &t
		}
		ann.Plan = &plan
	}

	if ann == (engine.Annotation{}) {
		return ann, errors.New("nothing to change, pass at least one flag")
	}
	return ann, nil
}

// mergePlan keeps the current plan fields that were not given on the command line.
func mergePlan(cmd *cobra.Command, cur, upd flock.Plan) *flock.Plan {
	f := cmd.Flags()
	if !f.Changed("plan-time") {
		upd.Time = cur.Time
	}
	if !f.Changed("plan-location") {
		upd.Location = cur.Location
	}
	if !f.Changed("plan-content") {
		upd.Content = cur.Content
	}
	return &upd
}
