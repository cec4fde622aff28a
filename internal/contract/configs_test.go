package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfigueroa/lifecast/schema"
)

// validInput returns a raw input that passes validation; tests mutate single
// fields to probe individual checks.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Deaths:      "deaths.csv",
		Exposures:   "exposures.csv",
		Population:  "total",
		PeriodMin:   1990,
		PeriodMax:   2020,
		AgeCap:      DefaultAgeCap,
		Lambda:      DefaultLambda,
		DiffOrder:   DefaultDiffOrder,
		KtFallback:  "svd",
		Horizon:     DefaultHorizon,
		Simulations: DefaultSimulations,
		Seed:        DefaultSeed,
		Radix:       DefaultRadix,
		Interest:    DefaultInterest,
		IssueAge:    40,
		Term:        20,
		Workers:     2,
		Precision:   DefaultPrecision,
		Output:      "text",
		Emoji:       "yes",
		Color:       "yes",
	}
}

// TestProcessAndValidate checks that a well-formed input populates the
// config faithfully.
func TestProcessAndValidate(t *testing.T) {
	var cfg Config
	require.NoError(t, ProcessAndValidate(&cfg, validInput()))

	assert.Equal(t, "deaths.csv", cfg.DeathsFile)
	assert.Equal(t, schema.TotalPopulation, cfg.Population)
	assert.Equal(t, 1990, cfg.PeriodMin)
	assert.Equal(t, schema.SVDFallback, cfg.Fallback)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.True(t, cfg.WeightByExposure)
	assert.True(t, cfg.UseEmojis)
	assert.Equal(t, 2, cfg.Workers)
}

// TestProcessAndValidateRejections checks each configuration guard.
func TestProcessAndValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConfigRawInput)
	}{
		{"missing deaths", func(in *ConfigRawInput) { in.Deaths = "" }},
		{"missing exposures", func(in *ConfigRawInput) { in.Exposures = "" }},
		{"unknown population", func(in *ConfigRawInput) { in.Population = "canine" }},
		{"inverted period window", func(in *ConfigRawInput) { in.PeriodMin = 2021; in.PeriodMax = 2020 }},
		{"zero age cap", func(in *ConfigRawInput) { in.AgeCap = 0 }},
		{"negative lambda", func(in *ConfigRawInput) { in.Lambda = -1 }},
		{"diff order too small", func(in *ConfigRawInput) { in.DiffOrder = 0 }},
		{"diff order too large", func(in *ConfigRawInput) { in.DiffOrder = MaxDiffOrder + 1 }},
		{"unknown fallback", func(in *ConfigRawInput) { in.KtFallback = "retry" }},
		{"zero horizon", func(in *ConfigRawInput) { in.Horizon = 0 }},
		{"zero simulations", func(in *ConfigRawInput) { in.Simulations = 0 }},
		{"zero radix", func(in *ConfigRawInput) { in.Radix = 0 }},
		{"interest above one", func(in *ConfigRawInput) { in.Interest = 1.5 }},
		{"negative term", func(in *ConfigRawInput) { in.Term = -1 }},
		{"unknown output mode", func(in *ConfigRawInput) { in.Output = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			var cfg Config
			assert.ErrorIs(t, ProcessAndValidate(&cfg, input), ErrConfig)
		})
	}
}

// TestProcessAndValidateDefaults checks the worker fallback and the
// precision clamp.
func TestProcessAndValidateDefaults(t *testing.T) {
	input := validInput()
	input.Workers = 0
	input.Precision = 99

	var cfg Config
	require.NoError(t, ProcessAndValidate(&cfg, input))
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, MaxPrecision, cfg.Precision)

	input = validInput()
	input.Precision = 0
	require.NoError(t, ProcessAndValidate(&cfg, input))
	assert.Equal(t, 1, cfg.Precision)
}
