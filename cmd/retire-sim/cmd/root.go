package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "retire-sim",
	Short: "A month-by-month retirement finance simulator",
	Long: `retire-sim projects household finances through retirement, one month at
a time.

It provides tools for:
  - Deterministic and Monte Carlo market return modeling
  - Social Security benefit estimation from earnings history
  - Lot-level cost basis accounting across tax buckets
  - Guardrail spending rules, Roth conversions, and RMDs
  - Full per-module explainability for any simulated month`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
