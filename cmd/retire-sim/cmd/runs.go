package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpgo/retirement-simulator/internal/output"
	"github.com/rpgo/retirement-simulator/internal/store"
)

var (
	runsDB       string
	runsScenario string
	runsLimit    int
)

func init() {
	runsCmd.PersistentFlags().StringVar(&runsDB, "db", "retire-sim.db", "sqlite database path")
	runsListCmd.Flags().StringVar(&runsScenario, "scenario", "", "filter by scenario id")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded simulation runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.NewSQLite(runsDB)
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background(), runsScenario, runsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
			return nil
		}
		for _, r := range runs {
			line := fmt.Sprintf("%s  %s  %s  %s", r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.ScenarioID, r.Status)
			if r.ErrorMessage != "" {
				line += "  " + r.ErrorMessage
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.NewSQLite(runsDB)
		if err != nil {
			return err
		}
		defer db.Close()

		run, err := db.GetRun(context.Background(), args[0])
		if err != nil {
			return err
		}
		data, err := output.ConsoleFormatter{}.Format(run)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}
