package project

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/mfigueroa/lifecast/internal/contract"
	"github.com/mfigueroa/lifecast/schema"
)

// testModel builds a fitted model with the given index series over periods
// starting at 2000.
func testModel(kt []float64) *schema.FactorModel {
	periods := make([]int, len(kt))
	for t := range kt {
		periods[t] = 2000 + t
	}
	return &schema.FactorModel{
		Ages:    []int{60, 61, 62},
		Periods: periods,
		Ax:      []float64{-5, -4.5, -4},
		Bx:      []float64{0.5, 0.3, 0.2},
		Kt:      kt,
	}
}

// TestNewDriftAndSigma checks the parameter estimates on a known series.
func TestNewDriftAndSigma(t *testing.T) {
	// First differences: -1, -3, -1, -3; drift = -2, centered diffs
	// +1, -1, +1, -1 with sample variance 4/3.
	model := testModel([]float64{4, 3, 0, -1, -4})

	p, err := New(model, Options{Horizon: 5})
	require.NoError(t, err)

	assert.InDelta(t, -2.0, p.Drift, 1e-12)
	assert.InDelta(t, math.Sqrt(4.0/3.0), p.Sigma, 1e-12)
	assert.Nil(t, p.Paths)
}

// TestNewCentralPath checks the deterministic extrapolation and labels.
func TestNewCentralPath(t *testing.T) {
	model := testModel([]float64{4, 2, 0, -2, -4})

	p, err := New(model, Options{Horizon: 3})
	require.NoError(t, err)

	assert.Equal(t, []int{2005, 2006, 2007}, p.Periods)
	assert.InDelta(t, -6.0, p.Central[0], 1e-12)
	assert.InDelta(t, -8.0, p.Central[1], 1e-12)
	assert.InDelta(t, -10.0, p.Central[2], 1e-12)
	// A perfectly linear index has zero innovation variance.
	assert.InDelta(t, 0.0, p.Sigma, 1e-12)
}

// TestNewRejectsBadOptions checks option and history guards.
func TestNewRejectsBadOptions(t *testing.T) {
	model := testModel([]float64{1, 0, -1})

	_, err := New(model, Options{Horizon: 0})
	assert.ErrorIs(t, err, contract.ErrConfig)

	_, err = New(model, Options{Horizon: 5, Simulations: -1})
	assert.ErrorIs(t, err, contract.ErrConfig)

	short := testModel([]float64{1, -1})
	_, err = New(short, Options{Horizon: 5})
	assert.ErrorIs(t, err, contract.ErrValidation)
}

// TestSimulationReproducible checks that the same seed gives the same
// ensemble regardless of worker count.
func TestSimulationReproducible(t *testing.T) {
	model := testModel([]float64{4, 3, 0, -1, -4})
	opts := Options{Horizon: 10, Simulations: 50, Seed: 7}

	opts.Workers = 1
	p1, err := New(model, opts)
	require.NoError(t, err)

	opts.Workers = 8
	p2, err := New(model, opts)
	require.NoError(t, err)

	for s := range opts.Simulations {
		for h := range opts.Horizon {
			assert.Equal(t, p1.Paths.At(s, h), p2.Paths.At(s, h))
		}
	}
}

// TestSimulationVarianceGrowsLinearly checks that the cross-path variance
// scales like h*sigma^2, the random-walk signature.
func TestSimulationVarianceGrowsLinearly(t *testing.T) {
	model := testModel([]float64{4, 3, 0, -1, -4})
	p, err := New(model, Options{Horizon: 40, Simulations: 4000, Seed: 42, Workers: 4})
	require.NoError(t, err)

	variance := func(h int) float64 {
		col := make([]float64, p.Simulations)
		for s := range p.Simulations {
			col[s] = p.Paths.At(s, h)
		}
		return stat.Variance(col, nil)
	}

	sigma2 := p.Sigma * p.Sigma
	// Compare at horizons 10, 20 and 40 with generous Monte Carlo slack.
	for _, h := range []int{9, 19, 39} {
		want := float64(h+1) * sigma2
		assert.InEpsilon(t, want, variance(h), 0.15, "horizon %d", h+1)
	}
}

// TestQuantileOrdering checks the interval bounds straddle the central path
// on average.
func TestQuantileOrdering(t *testing.T) {
	model := testModel([]float64{4, 3, 0, -1, -4})
	p, err := New(model, Options{Horizon: 10, Simulations: 2000, Seed: 1, Workers: 2})
	require.NoError(t, err)

	lo, err := p.Quantile(0.025)
	require.NoError(t, err)
	hi, err := p.Quantile(0.975)
	require.NoError(t, err)

	for h := range p.Horizon {
		assert.Less(t, lo[h], hi[h], "horizon %d", h)
		assert.Less(t, lo[h], p.Central[h])
		assert.Greater(t, hi[h], p.Central[h])
	}

	_, err = p.Quantile(1.5)
	assert.ErrorIs(t, err, contract.ErrConfig)
}

// TestQuantileWithoutSimulations checks the guard for central-only runs.
func TestQuantileWithoutSimulations(t *testing.T) {
	model := testModel([]float64{1, 0, -1})
	p, err := New(model, Options{Horizon: 5})
	require.NoError(t, err)

	_, err = p.Quantile(0.5)
	assert.ErrorIs(t, err, contract.ErrValidation)
}

// TestIndexAt checks lookup across history and projection.
func TestIndexAt(t *testing.T) {
	model := testModel([]float64{4, 2, 0, -2, -4})
	p, err := New(model, Options{Horizon: 3})
	require.NoError(t, err)

	k, err := p.IndexAt(2001)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, k, 1e-12)

	k, err = p.IndexAt(2006)
	require.NoError(t, err)
	assert.InDelta(t, -8.0, k, 1e-12)

	_, err = p.IndexAt(2050)
	assert.ErrorIs(t, err, contract.ErrValidation)
}

// TestBridge checks the survivorship bridge: terminal closure, monotone
// survivors and the constant-force conversion.
func TestBridge(t *testing.T) {
	model := testModel([]float64{4, 2, 0, -2, -4})
	p, err := New(model, Options{Horizon: 3})
	require.NoError(t, err)

	table, err := p.Bridge(2004, 100_000)
	require.NoError(t, err)

	n := len(table.Ages)
	assert.Equal(t, model.Ages, table.Ages)
	assert.Equal(t, 1.0, table.Qx[n-1])
	assert.Equal(t, 100_000.0, table.Lx[0])
	for i := 1; i < n; i++ {
		assert.LessOrEqual(t, table.Lx[i], table.Lx[i-1])
	}

	// The age profile rises with age, so death probabilities do too.
	for i := 1; i < n; i++ {
		assert.Greater(t, table.Qx[i], table.Qx[i-1])
	}

	// Constant force conversion at the first age.
	m := model.FittedRate(0, -4)
	assert.InDelta(t, 1-math.Exp(-m), table.Qx[0], 1e-12)
}

// TestBridgeQuantile checks that quantile bridges order pessimistic above
// optimistic mortality and reject requests the ensemble cannot answer.
func TestBridgeQuantile(t *testing.T) {
	model := testModel([]float64{4, 3, 0, -1, -4})
	p, err := New(model, Options{Horizon: 3, Simulations: 500, Seed: 3, Workers: 2})
	require.NoError(t, err)

	optimistic, err := p.BridgeQuantile(2006, 0.1, 100_000)
	require.NoError(t, err)
	pessimistic, err := p.BridgeQuantile(2006, 0.9, 100_000)
	require.NoError(t, err)
	central, err := p.Bridge(2006, 100_000)
	require.NoError(t, err)

	// Positive sensitivities: a lower index quantile means lighter
	// mortality at every non-terminal age.
	for i := 0; i < len(model.Ages)-1; i++ {
		assert.Less(t, optimistic.Qx[i], central.Qx[i])
		assert.Greater(t, pessimistic.Qx[i], central.Qx[i])
	}

	// Historical periods have no ensemble column.
	_, err = p.BridgeQuantile(2002, 0.5, 100_000)
	assert.ErrorIs(t, err, contract.ErrValidation)

	noSims, err := New(model, Options{Horizon: 3})
	require.NoError(t, err)
	_, err = noSims.BridgeQuantile(2006, 0.5, 100_000)
	assert.ErrorIs(t, err, contract.ErrValidation)
}
