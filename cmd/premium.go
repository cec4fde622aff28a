package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfigueroa/lifecast/core"
	"github.com/mfigueroa/lifecast/internal/contract"
)

// premiumCmd prices net premiums off a bridged table.
var premiumCmd = &cobra.Command{
	Use:   "premium",
	Short: "Price net premiums off the projected life table.",
	Long: `Compute commutation functions from the bridged survivorship table and price
the standard net premium menu per unit sum assured: whole life, term
insurance, pure endowment, endowment, whole-life annuity-due, and the level
net annual premium for the term cover.

Benefits pay at the end of the year of death; premiums are due at the start
of each year while the insured survives.

Examples:
  # Quote at the defaults (age 40, 20-year term, 5% interest)
  lifecast premium -d deaths.csv -e exposures.csv

  # Different risk profile and rate
  lifecast premium -d deaths.csv -e exposures.csv --issue-age 55 --term 10 --interest 0.03

  # Price off a projected table
  lifecast premium -d deaths.csv -e exposures.csv --target-period 2040`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePremium(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot price premiums", err)
		}
	},
}
