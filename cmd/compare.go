package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfigueroa/lifecast/core"
	"github.com/mfigueroa/lifecast/internal/contract"
)

// compareCmd lines the model table up against a regulatory table.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the projected table against a regulatory table.",
	Long: `Bridge the model into a survivorship table at the target period and line it
up against a regulatory mortality table, age by age.

The comparison reports the ratio and difference of death probabilities over
the overlapping ages plus an overall RMSE, which is the usual first check
before adopting model rates for reserving.

Examples:
  # Compare at the last fitted period
  lifecast compare -d deaths.csv -e exposures.csv --regulatory cso2017.csv

  # Compare a projected period
  lifecast compare -d deaths.csv -e exposures.csv --regulatory cso2017.csv --target-period 2040

  # Export per-age ratios
  lifecast compare -d deaths.csv -e exposures.csv --regulatory cso2017.csv -o csv --output-file ratios.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCompare(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot compare tables", err)
		}
	},
}
