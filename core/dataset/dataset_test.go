package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfigueroa/lifecast/internal/contract"
	"github.com/mfigueroa/lifecast/internal/loader"
	"github.com/mfigueroa/lifecast/schema"
)

// rec is a shorthand for building loader records in tests.
func rec(period, age int, value float64) loader.Record {
	return loader.Record{Period: period, Age: age, Value: value}
}

// TestBuildJoinsDeathsAndExposures checks the basic join and rate grid.
func TestBuildJoinsDeathsAndExposures(t *testing.T) {
	deaths := []loader.Record{
		rec(2000, 60, 10), rec(2000, 61, 20),
		rec(2001, 60, 12), rec(2001, 61, 24),
	}
	exposures := []loader.Record{
		rec(2000, 60, 1000), rec(2000, 61, 1000),
		rec(2001, 60, 1000), rec(2001, 61, 1000),
	}

	m, err := Build(deaths, exposures, nil, Options{Population: schema.TotalPopulation, AgeCap: 100})
	require.NoError(t, err)

	assert.Equal(t, []int{60, 61}, m.Ages)
	assert.Equal(t, []int{2000, 2001}, m.Periods)
	assert.InDelta(t, 0.010, m.Rates.At(0, 0), 1e-12)
	assert.InDelta(t, 0.024, m.Rates.At(1, 1), 1e-12)
	assert.InDelta(t, 20.0, m.Deaths.At(1, 0), 1e-12)
	assert.InDelta(t, 1000.0, m.Exposures.At(0, 1), 1e-12)
}

// TestBuildAgeCapSumsCounts verifies that the open age group sums deaths and
// exposures before recomputing the rate, instead of averaging rates.
func TestBuildAgeCapSumsCounts(t *testing.T) {
	deaths := []loader.Record{
		rec(2000, 89, 5),
		rec(2000, 90, 10),
		rec(2000, 91, 30),
		rec(2000, 92, 20),
	}
	exposures := []loader.Record{
		rec(2000, 89, 100),
		rec(2000, 90, 100),
		rec(2000, 91, 100),
		rec(2000, 92, 50),
	}

	m, err := Build(deaths, exposures, nil, Options{AgeCap: 90})
	require.NoError(t, err)

	require.Equal(t, []int{89, 90}, m.Ages)
	// Open group: (10+30+20)/(100+100+50), not the mean of 0.1, 0.3, 0.4.
	assert.InDelta(t, 60.0/250.0, m.Rates.At(1, 0), 1e-12)
	assert.InDelta(t, 60.0, m.Deaths.At(1, 0), 1e-12)
	assert.InDelta(t, 250.0, m.Exposures.At(1, 0), 1e-12)
}

// TestBuildProvidedRates checks that source-supplied rates are kept below the
// cap and recomputed for the open group.
func TestBuildProvidedRates(t *testing.T) {
	deaths := []loader.Record{rec(2000, 60, 10), rec(2000, 90, 10), rec(2000, 95, 10)}
	exposures := []loader.Record{rec(2000, 60, 1000), rec(2000, 90, 100), rec(2000, 95, 100)}
	rates := []loader.Record{rec(2000, 60, 0.0100), rec(2000, 90, 0.1), rec(2000, 95, 0.1)}

	m, err := Build(deaths, exposures, rates, Options{AgeCap: 90})
	require.NoError(t, err)

	assert.InDelta(t, 0.0100, m.Rates.At(0, 0), 1e-12)
	// Open group ignores the provided per-age rates.
	assert.InDelta(t, 20.0/200.0, m.Rates.At(1, 0), 1e-12)
}

// TestBuildValidationFailures exercises the error taxonomy for bad inputs.
func TestBuildValidationFailures(t *testing.T) {
	tests := []struct {
		name      string
		deaths    []loader.Record
		exposures []loader.Record
		rates     []loader.Record
		wantIn    string
	}{
		{
			name:      "NaN value",
			deaths:    []loader.Record{rec(2000, 60, math.NaN())},
			exposures: []loader.Record{rec(2000, 60, 1000)},
			wantIn:    "NaN",
		},
		{
			name:      "zero exposure",
			deaths:    []loader.Record{rec(2000, 60, 5)},
			exposures: []loader.Record{rec(2000, 60, 0)},
			wantIn:    "exposure",
		},
		{
			name:      "negative exposure",
			deaths:    []loader.Record{rec(2000, 60, 5)},
			exposures: []loader.Record{rec(2000, 60, -10)},
			wantIn:    "exposure",
		},
		{
			name:      "zero deaths give zero rate",
			deaths:    []loader.Record{rec(2000, 60, 0)},
			exposures: []loader.Record{rec(2000, 60, 1000)},
			wantIn:    "rate",
		},
		{
			name:      "rate diverges from deaths over exposure",
			deaths:    []loader.Record{rec(2000, 60, 10)},
			exposures: []loader.Record{rec(2000, 60, 1000)},
			rates:     []loader.Record{rec(2000, 60, 0.02)},
			wantIn:    "inconsistent",
		},
		{
			name:      "misaligned cells",
			deaths:    []loader.Record{rec(2000, 60, 10)},
			exposures: []loader.Record{rec(2001, 60, 1000)},
			wantIn:    "missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.deaths, tt.exposures, tt.rates, Options{AgeCap: 100})
			require.Error(t, err)
			assert.ErrorIs(t, err, contract.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantIn)
		})
	}
}

// TestBuildEmptyInput checks that empty sources are rejected up front.
func TestBuildEmptyInput(t *testing.T) {
	_, err := Build(nil, nil, nil, Options{AgeCap: 100})
	assert.ErrorIs(t, err, contract.ErrValidation)
}

// TestBuildBadAgeCap checks config validation.
func TestBuildBadAgeCap(t *testing.T) {
	_, err := Build([]loader.Record{rec(2000, 60, 1)}, []loader.Record{rec(2000, 60, 1)}, nil, Options{AgeCap: 0})
	assert.ErrorIs(t, err, contract.ErrConfig)
}
