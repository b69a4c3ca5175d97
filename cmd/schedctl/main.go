/*
main.go - schedctl, the operator CLI

PURPOSE:
  One-shot operations against a scheduler database without running the
  server:

    schedctl run --db fleet.db --office LA --week 2026-09-07
    schedctl run --db fleet.db --office LA --week 2026-09-07 --save
    schedctl seed --db fleet.db --scenario west-coast-week

  `run` executes the pipeline and prints the plan; with --save it also
  persists the run record and assignments, exactly as the HTTP trigger
  would. `seed` loads one of the demo scenarios.

SEE ALSO:
  - api/scenarios.go: the scenario catalog
*/
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fleetline/loan-scheduler/api"
	"github.com/fleetline/loan-scheduler/schedule"
	"github.com/fleetline/loan-scheduler/store/sqlite"
)

func main() {
	root := &cobra.Command{
		Use:   "schedctl",
		Short: "Operate the fleet loan scheduler from the command line",
	}
	root.AddCommand(newRunCmd(), newSeedCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		dbPath string
		office string
		week   string
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one scheduling run and print the plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			weekStart, ok := schedule.ParseDay(week)
			if !ok {
				return fmt.Errorf("--week must be an ISO date (YYYY-MM-DD), got %q", week)
			}
			store, err := sqlite.New(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := context.Background()
			if save {
				handler := api.NewHandler(store)
				record, _, err := handler.ExecuteRun(ctx, schedule.Office(office), weekStart, handler.Options)
				if err != nil {
					return err
				}
				assignments, err := store.AssignmentsByRun(ctx, record.ID)
				if err != nil {
					return err
				}
				fmt.Printf("run %s: %d vehicles, %d candidates\n", record.ID, record.Vehicles, record.Candidates)
				return printPlan(assignments)
			}

			engine := schedule.NewEngine(store)
			result, err := engine.Run(ctx, schedule.Office(office), weekStart)
			if err != nil {
				return err
			}
			fmt.Printf("dry run: %d vehicles, %d candidates\n", result.Vehicles, result.Candidates)
			return printPlan(result.Assignments)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "fleet.db", "SQLite database path")
	cmd.Flags().StringVar(&office, "office", "", "office to schedule")
	cmd.Flags().StringVar(&week, "week", "", "week start date (Monday, YYYY-MM-DD)")
	cmd.Flags().BoolVar(&save, "save", false, "persist the run and its assignments")
	cmd.MarkFlagRequired("office")
	cmd.MarkFlagRequired("week")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var (
		dbPath   string
		scenario string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Reset the database and load a demo scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sqlite.New(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			handler := api.NewHandler(store)
			if err := handler.SeedScenario(context.Background(), scenario); err != nil {
				return err
			}
			fmt.Printf("seeded scenario %s into %s\n", scenario, dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "fleet.db", "SQLite database path")
	cmd.Flags().StringVar(&scenario, "scenario", "west-coast-week", "scenario ID")
	return cmd
}

func printPlan(assignments []schedule.Assignment) error {
	if len(assignments) == 0 {
		fmt.Println("no assignments")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VIN\tPARTNER\tMAKE\tMODEL\tSTART\tEND\tSCORE")
	for _, a := range assignments {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			a.VIN, a.PersonID, a.Make, a.Model, a.StartDay, a.EndDay, a.Score)
	}
	return w.Flush()
}
