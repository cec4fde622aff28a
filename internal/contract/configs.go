package contract

import (
	"runtime"

	"github.com/mfigueroa/lifecast/schema"
)

// Default values for configuration.
const (
	DefaultAgeCap      = 100
	DefaultLambda      = 1e5
	DefaultDiffOrder   = 2
	DefaultHorizon     = 30
	DefaultSimulations = 1000
	DefaultSeed        = 42
	DefaultRadix       = 100_000.0
	DefaultInterest    = 0.05
	DefaultPrecision   = 4
	MaxPrecision       = 8
	MaxDiffOrder       = 4
)

// DefaultWorkers is the default number of concurrent workers to use for the
// embarrassingly parallel stages (per-period smoothing, Monte Carlo paths).
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the pipeline.
// This struct remains the "final, validated" config.
type Config struct {
	// Dataset builder inputs
	DeathsFile    string            // Long-format CSV of death counts
	ExposuresFile string            // Long-format CSV of exposures
	Population    schema.Population // Sub-population selector
	PeriodMin     int               // First period to include
	PeriodMax     int               // Last period to include
	AgeCap        int               // Ages above this aggregate into an open group

	// Graduation
	Graduate         bool
	Lambda           float64
	DiffOrder        int
	WeightByExposure bool

	// Factor model fit
	Reestimate bool
	Fallback   schema.FallbackPolicy

	// Projection
	Horizon     int
	Simulations int
	Seed        uint64

	// Bridge / actuarial layer
	TargetPeriod int     // Future period for table/premium/compare commands
	Radix        float64 // Starting cohort size for survivorship tables
	Interest     float64 // Annual interest rate for commutation values
	IssueAge     int     // Issue age for premium quotes
	Term         int     // Coverage term in years for premium quotes

	// Regulatory comparison
	RegulatoryFile string

	// Execution and output
	Workers    int
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	Output     schema.OutputMode
	OutputFile string
	UseEmojis  bool
	UseColors  bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config
// file). Viper unmarshals into this struct.
type ConfigRawInput struct {
	Deaths     string `mapstructure:"deaths"`
	Exposures  string `mapstructure:"exposures"`
	Population string `mapstructure:"population"`
	PeriodMin  int    `mapstructure:"period-min"`
	PeriodMax  int    `mapstructure:"period-max"`
	AgeCap     int    `mapstructure:"age-cap"`

	Graduate       bool    `mapstructure:"graduate"`
	Lambda         float64 `mapstructure:"lambda"`
	DiffOrder      int     `mapstructure:"diff-order"`
	UniformWeights bool    `mapstructure:"uniform-weights"`

	Reestimate bool   `mapstructure:"reestimate"`
	KtFallback string `mapstructure:"kt-fallback"`

	Horizon     int    `mapstructure:"horizon"`
	Simulations int    `mapstructure:"simulations"`
	Seed        uint64 `mapstructure:"seed"`

	TargetPeriod int     `mapstructure:"target-period"`
	Radix        float64 `mapstructure:"radix"`
	Interest     float64 `mapstructure:"interest"`
	IssueAge     int     `mapstructure:"issue-age"`
	Term         int     `mapstructure:"term"`

	Regulatory string `mapstructure:"regulatory"`

	Workers    int    `mapstructure:"workers"`
	Precision  int    `mapstructure:"precision"`
	Width      int    `mapstructure:"width"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Emoji      string `mapstructure:"emoji"`
	Color      string `mapstructure:"color"`
}

// ProcessAndValidate populates cfg from the raw input, rejecting invalid
// values before any computation begins.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if input.Deaths == "" || input.Exposures == "" {
		return ConfigErrorf("both --deaths and --exposures input files are required")
	}
	cfg.DeathsFile = input.Deaths
	cfg.ExposuresFile = input.Exposures

	pop := schema.Population(input.Population)
	if _, ok := schema.ValidPopulations[pop]; !ok {
		return ConfigErrorf("unknown population %q (valid: male, female, total)", input.Population)
	}
	cfg.Population = pop

	if input.PeriodMin > input.PeriodMax {
		return ConfigErrorf("period-min %d exceeds period-max %d", input.PeriodMin, input.PeriodMax)
	}
	cfg.PeriodMin = input.PeriodMin
	cfg.PeriodMax = input.PeriodMax

	if input.AgeCap < 1 {
		return ConfigErrorf("age-cap must be positive, got %d", input.AgeCap)
	}
	cfg.AgeCap = input.AgeCap

	if input.Lambda < 0 {
		return ConfigErrorf("lambda must be non-negative, got %g", input.Lambda)
	}
	cfg.Lambda = input.Lambda
	if input.DiffOrder < 1 || input.DiffOrder > MaxDiffOrder {
		return ConfigErrorf("diff-order must be in [1, %d], got %d", MaxDiffOrder, input.DiffOrder)
	}
	cfg.DiffOrder = input.DiffOrder
	cfg.Graduate = input.Graduate
	cfg.WeightByExposure = !input.UniformWeights

	cfg.Reestimate = input.Reestimate
	fallback := schema.FallbackPolicy(input.KtFallback)
	if _, ok := schema.ValidFallbackPolicies[fallback]; !ok {
		return ConfigErrorf("unknown kt-fallback %q (valid: svd, fail)", input.KtFallback)
	}
	cfg.Fallback = fallback

	if input.Horizon < 1 {
		return ConfigErrorf("horizon must be positive, got %d", input.Horizon)
	}
	cfg.Horizon = input.Horizon
	if input.Simulations < 1 {
		return ConfigErrorf("simulations must be positive, got %d", input.Simulations)
	}
	cfg.Simulations = input.Simulations
	cfg.Seed = input.Seed

	cfg.TargetPeriod = input.TargetPeriod
	if input.Radix <= 0 {
		return ConfigErrorf("radix must be positive, got %g", input.Radix)
	}
	cfg.Radix = input.Radix
	if input.Interest < 0 || input.Interest > 1 {
		return ConfigErrorf("interest must be a decimal in [0, 1] (e.g. 0.05 for 5%%), got %g", input.Interest)
	}
	cfg.Interest = input.Interest
	cfg.IssueAge = input.IssueAge
	if input.Term < 0 {
		return ConfigErrorf("term must be non-negative, got %d", input.Term)
	}
	cfg.Term = input.Term
	cfg.RegulatoryFile = input.Regulatory

	if input.Workers < 1 {
		cfg.Workers = DefaultWorkers
	} else {
		cfg.Workers = input.Workers
	}
	cfg.Precision = input.Precision
	if cfg.Precision < 1 {
		cfg.Precision = 1
	}
	if cfg.Precision > MaxPrecision {
		cfg.Precision = MaxPrecision
	}
	cfg.Width = input.Width

	output := schema.OutputMode(input.Output)
	if _, ok := schema.ValidOutputModes[output]; !ok {
		return ConfigErrorf("unknown output mode %q (valid: text, csv, json, parquet)", input.Output)
	}
	cfg.Output = output
	cfg.OutputFile = input.OutputFile

	cfg.UseEmojis = ParseBoolFlag(input.Emoji)
	cfg.UseColors = ParseBoolFlag(input.Color)

	return nil
}
