package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rpgo/retirement-simulator/internal/config"
	"github.com/rpgo/retirement-simulator/internal/output"
	"github.com/rpgo/retirement-simulator/internal/simulation"
	"github.com/rpgo/retirement-simulator/internal/store"
)

var (
	simTrials  int
	simSeed    string
	simMonths  int
	simExplain bool
	simMonthly bool
	simFormat  string
	simOut     string
	simDB      string
	simVerbose bool
)

func init() {
	simulateCmd.Flags().IntVar(&simTrials, "trials", 0, "stochastic trial count (0 uses the scenario's setting)")
	simulateCmd.Flags().StringVar(&simSeed, "seed", "", "random seed override")
	simulateCmd.Flags().IntVar(&simMonths, "months", 0, "horizon override in months")
	simulateCmd.Flags().BoolVar(&simExplain, "explain", false, "keep full per-module audit records")
	simulateCmd.Flags().BoolVar(&simMonthly, "monthly", false, "keep the per-month balance series")
	simulateCmd.Flags().StringVar(&simFormat, "format", "console", "output format (console, json)")
	simulateCmd.Flags().StringVar(&simOut, "out", "", "write output to a file instead of stdout")
	simulateCmd.Flags().StringVar(&simDB, "db", "", "sqlite database to record the run in")
	simulateCmd.Flags().BoolVar(&simVerbose, "verbose", false, "log engine progress to stderr")
	rootCmd.AddCommand(simulateCmd)
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <input.yaml>",
	Short: "Run a simulation from an input file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := config.NewInputParser().LoadFromFile(args[0])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("months") {
			input.Settings.Months = simMonths
		}

		formatter := output.GetFormatterByName(simFormat)
		if formatter == nil {
			return fmt.Errorf("unknown format %q", simFormat)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var logger simulation.Logger = simulation.NopLogger{}
		if simVerbose {
			logger = stderrLogger{}
		}
		engine := simulation.NewEngine(logger)

		run, runErr := engine.Run(ctx, input, simulation.Options{
			Seed:    simSeed,
			Trials:  simTrials,
			Explain: simExplain,
			Monthly: simMonthly,
		})

		if simDB != "" {
			db, err := store.NewSQLite(simDB)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer db.Close()
			if err := db.SaveRun(context.Background(), run); err != nil {
				return fmt.Errorf("save run: %w", err)
			}
		}

		data, err := formatter.Format(run)
		if err != nil {
			return err
		}
		if simOut != "" {
			if err := os.WriteFile(simOut, data, 0644); err != nil {
				return err
			}
		} else {
			fmt.Fprint(cmd.OutOrStdout(), string(data))
		}
		return runErr
	},
}

// stderrLogger adapts the standard library logger to the engine interface.
type stderrLogger struct{}

func (stderrLogger) Debugf(format string, args ...any) { log.Printf("DEBUG "+format, args...) }
func (stderrLogger) Infof(format string, args ...any)  { log.Printf("INFO "+format, args...) }
func (stderrLogger) Warnf(format string, args ...any)  { log.Printf("WARN "+format, args...) }
func (stderrLogger) Errorf(format string, args ...any) { log.Printf("ERROR "+format, args...) }
