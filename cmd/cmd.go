// Package cmd defines the command-line interface for lifecast.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfigueroa/lifecast/internal/contract"
	"github.com/mfigueroa/lifecast/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(graduateCmd)
	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(premiumCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(versionCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("deaths", "d", "", "Death counts file (long-format CSV or HMD text)")
	rootCmd.PersistentFlags().StringP("exposures", "e", "", "Exposure-to-risk file (long-format CSV or HMD text)")
	rootCmd.PersistentFlags().StringP("population", "p", string(schema.TotalPopulation), "Sub-population: male or female or total")
	rootCmd.PersistentFlags().Int("period-min", 0, "First calendar period to include")
	rootCmd.PersistentFlags().Int("period-max", 9999, "Last calendar period to include")
	rootCmd.PersistentFlags().Int("age-cap", contract.DefaultAgeCap, "Ages above this aggregate into an open group")
	rootCmd.PersistentFlags().Bool("graduate", false, "Smooth the rate surface before fitting")
	rootCmd.PersistentFlags().Float64("lambda", contract.DefaultLambda, "Whittaker-Henderson smoothing strength (0 = no smoothing)")
	rootCmd.PersistentFlags().Int("diff-order", contract.DefaultDiffOrder, "Order of the difference penalty")
	rootCmd.PersistentFlags().Bool("uniform-weights", false, "Weight every age equally instead of by exposure")
	rootCmd.PersistentFlags().Bool("reestimate", false, "Refit the time index against observed death totals")
	rootCmd.PersistentFlags().String("kt-fallback", string(schema.SVDFallback), "When re-estimation finds no root: svd or fail")
	rootCmd.PersistentFlags().Int("horizon", contract.DefaultHorizon, "Number of future periods to project")
	rootCmd.PersistentFlags().Int("simulations", contract.DefaultSimulations, "Monte Carlo sample size for projection intervals")
	rootCmd.PersistentFlags().Uint64("seed", contract.DefaultSeed, "Random seed for reproducible simulations")
	rootCmd.PersistentFlags().Int("target-period", 0, "Period to build tables for (0 = last fitted period)")
	rootCmd.PersistentFlags().Float64("radix", contract.DefaultRadix, "Starting cohort size for survivorship tables")
	rootCmd.PersistentFlags().Float64("interest", contract.DefaultInterest, "Annual interest rate for commutation values")
	rootCmd.PersistentFlags().Int("issue-age", 40, "Issue age for premium quotes")
	rootCmd.PersistentFlags().Int("term", 20, "Coverage term in years for premium quotes")
	rootCmd.PersistentFlags().String("regulatory", "", "Regulatory mortality table CSV for comparison")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().StringP("output", "o", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}
}
