package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfigueroa/lifecast/core"
	"github.com/mfigueroa/lifecast/internal/contract"
)

// projectCmd extrapolates the fitted time index.
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project the mortality time index as a random walk with drift.",
	Long: `Estimate drift and volatility from the fitted time index and extrapolate it
over the requested horizon.

The central path continues the historical drift deterministically. With
--simulations above zero, a Monte Carlo ensemble adds 95% interval bounds
around the central path. The seed makes ensembles reproducible regardless of
the worker count.

Examples:
  # Thirty-year central projection with simulation bands
  lifecast project -d deaths.csv -e exposures.csv

  # Longer horizon, bigger ensemble
  lifecast project -d deaths.csv -e exposures.csv --horizon 50 --simulations 10000

  # Export the projected index
  lifecast project -d deaths.csv -e exposures.csv -o json --output-file index.json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteProject(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot project time index", err)
		}
	},
}
