package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfigueroa/lifecast/core"
	"github.com/mfigueroa/lifecast/internal/contract"
)

// tableCmd bridges the projection into a survivorship table.
var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Build a survivorship table for a target period.",
	Long: `Reconstruct central death rates from the fitted model at the target period's
index value and bridge them into a survivorship table.

Rates convert to one-year death probabilities under a constant force of
mortality, the terminal probability closes at one, and survivors recurse down
from the radix. The target period may sit in the fitted history or anywhere
inside the projection horizon.

Examples:
  # Table at the last fitted period
  lifecast table -d deaths.csv -e exposures.csv

  # Table twenty periods into the projection
  lifecast table -d deaths.csv -e exposures.csv --target-period 2045

  # Different cohort size
  lifecast table -d deaths.csv -e exposures.csv --radix 10000`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTable(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot build life table", err)
		}
	},
}
