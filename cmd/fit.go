package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfigueroa/lifecast/core"
	"github.com/mfigueroa/lifecast/internal/contract"
)

// fitCmd fits the Lee-Carter factor model.
var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit the Lee-Carter factor model to the mortality surface.",
	Long: `Decompose the log-mortality surface into an age profile, an age sensitivity
vector and a one-dimensional time index via singular value decomposition.

The fitted model satisfies the standard identifiability constraints: the
sensitivity vector sums to one and the time index sums to zero. Use
--reestimate to refit the index so model-implied deaths match observed death
totals per period; combine with --graduate at your own risk, since smoothing
decouples rates from death counts.

Examples:
  # Fit on raw rates
  lifecast fit -d deaths.csv -e exposures.csv

  # Fit on a graduated surface
  lifecast fit -d deaths.csv -e exposures.csv --graduate

  # Re-estimate the index, failing hard if any period has no root
  lifecast fit -d deaths.csv -e exposures.csv --reestimate --kt-fallback fail

  # Export the model components
  lifecast fit -d deaths.csv -e exposures.csv -o parquet --output-file model.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFit(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot fit factor model", err)
		}
	},
}
