package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfigueroa/lifecast/core"
	"github.com/mfigueroa/lifecast/internal/contract"
)

// graduateCmd smooths the empirical mortality surface.
var graduateCmd = &cobra.Command{
	Use:   "graduate",
	Short: "Smooth raw mortality rates with a Whittaker-Henderson penalty.",
	Long: `Build the empirical mortality surface and smooth every period column with
Whittaker-Henderson graduation.

The smoother trades fidelity to the raw rates against the roughness of the
curve, controlled by --lambda and --diff-order. Ages are weighted by their
exposure unless --uniform-weights is set, so thinly observed old ages lean
harder on the penalty.

Examples:
  # Graduate with the default penalty
  lifecast graduate -d deaths.csv -e exposures.csv

  # Stronger smoothing with a third-order penalty
  lifecast graduate -d deaths.csv -e exposures.csv --lambda 1e7 --diff-order 3

  # Export the full smoothed surface
  lifecast graduate -d deaths.csv -e exposures.csv -o csv --output-file graduated.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteGraduate(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot graduate rates", err)
		}
	},
}
