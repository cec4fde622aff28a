// Package project extrapolates a fitted time index forward as a random walk
// with drift and turns index paths into future mortality assumptions.
package project

import (
	"math"
	"sort"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mfigueroa/lifecast/core/lifetable"
	"github.com/mfigueroa/lifecast/internal/contract"
	"github.com/mfigueroa/lifecast/schema"
)

// Options controls the projection.
type Options struct {
	Horizon     int    // Number of future periods to project
	Simulations int    // Monte Carlo sample size; 0 disables simulation
	Seed        uint64 // Base seed; path s draws from Seed+s
	Workers     int
}

// Projection holds the drift estimate, the deterministic central path and,
// when simulations were requested, the Monte Carlo index paths.
type Projection struct {
	Model       *schema.FactorModel
	Horizon     int
	Simulations int
	Seed        uint64

	Drift float64 // Mean annual change of the fitted index
	Sigma float64 // Innovation standard deviation (sample, n-1 denominator)

	Periods []int      // Future period labels, last fitted period + 1..Horizon
	Central []float64  // Central path, k_T + h*Drift
	Paths   *mat.Dense // Simulations x Horizon, nil when Simulations == 0
}

// New estimates the random-walk parameters from the model's fitted index and
// generates the central path plus an optional simulated ensemble.
//
// Drift is the telescoped mean first difference, (k_T - k_1)/(T-1). Sigma is
// the sample standard deviation of the drift-adjusted first differences.
// Both need at least three fitted periods to be meaningful.
func New(model *schema.FactorModel, opts Options) (*Projection, error) {
	if opts.Horizon <= 0 {
		return nil, contract.ConfigErrorf("projection horizon %d is not positive", opts.Horizon)
	}
	if opts.Simulations < 0 {
		return nil, contract.ConfigErrorf("simulation count %d is negative", opts.Simulations)
	}
	nPeriods := model.NPeriods()
	if nPeriods < 3 {
		return nil, contract.ValidationErrorf("need at least 3 fitted periods to estimate drift volatility, got %d", nPeriods)
	}

	kt := model.Kt
	drift := (kt[nPeriods-1] - kt[0]) / float64(nPeriods-1)

	diffs := make([]float64, nPeriods-1)
	for t := 1; t < nPeriods; t++ {
		diffs[t-1] = kt[t] - kt[t-1] - drift
	}
	sigma := math.Sqrt(stat.Variance(diffs, nil))

	p := &Projection{
		Model:       model,
		Horizon:     opts.Horizon,
		Simulations: opts.Simulations,
		Seed:        opts.Seed,
		Drift:       drift,
		Sigma:       sigma,
		Periods:     make([]int, opts.Horizon),
		Central:     make([]float64, opts.Horizon),
	}

	lastPeriod := model.Periods[nPeriods-1]
	lastKt := kt[nPeriods-1]
	for h := range opts.Horizon {
		p.Periods[h] = lastPeriod + h + 1
		p.Central[h] = lastKt + float64(h+1)*drift
	}

	if opts.Simulations > 0 {
		p.Paths = simulatePaths(p, max(opts.Workers, 1))
	}
	return p, nil
}

// simulatePaths draws the Monte Carlo ensemble. Each path accumulates
// independent standard normal innovations scaled by Sigma on top of the
// central path. Path s seeds its own generator with Seed+s, so results are
// identical regardless of the worker count.
func simulatePaths(p *Projection, workers int) *mat.Dense {
	paths := mat.NewDense(p.Simulations, p.Horizon, nil)

	jobs := make(chan int, p.Simulations)
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for s := range jobs {
				normal := distuv.Normal{
					Mu:    0,
					Sigma: 1,
					Src:   rand.NewSource(p.Seed + uint64(s)),
				}
				var cum float64
				for h := range p.Horizon {
					cum += p.Sigma * normal.Rand()
					paths.Set(s, h, p.Central[h]+cum)
				}
			}
		})
	}
	for s := range p.Simulations {
		jobs <- s
	}
	close(jobs)
	wg.Wait()
	return paths
}

// Quantile returns the per-horizon empirical quantile of the simulated index
// paths, for probability in (0, 1).
func (p *Projection) Quantile(prob float64) ([]float64, error) {
	if p.Paths == nil {
		return nil, contract.ValidationErrorf("projection was run without simulations")
	}
	if prob <= 0 || prob >= 1 {
		return nil, contract.ConfigErrorf("quantile probability %g must lie in (0, 1)", prob)
	}

	out := make([]float64, p.Horizon)
	column := make([]float64, p.Simulations)
	for h := range p.Horizon {
		for s := range p.Simulations {
			column[s] = p.Paths.At(s, h)
		}
		sort.Float64s(column)
		out[h] = stat.Quantile(prob, stat.Empirical, column, nil)
	}
	return out, nil
}

// IndexAt resolves a period label to an index value, looking first at the
// fitted history and then at the central projection.
func (p *Projection) IndexAt(period int) (float64, error) {
	for t, label := range p.Model.Periods {
		if label == period {
			return p.Model.Kt[t], nil
		}
	}
	for h, label := range p.Periods {
		if label == period {
			return p.Central[h], nil
		}
	}
	return 0, contract.ValidationErrorf("period %d is outside the fitted history %d..%d and the projection %d..%d",
		period, p.Model.Periods[0], p.Model.Periods[p.Model.NPeriods()-1], p.Periods[0], p.Periods[p.Horizon-1])
}

// Bridge builds a survivorship table for a target period from the
// model-implied central death rates at that period's index value.
func (p *Projection) Bridge(period int, radix float64) (*lifetable.Table, error) {
	k, err := p.IndexAt(period)
	if err != nil {
		return nil, err
	}
	return p.bridgeAt(k, radix)
}

// BridgeQuantile builds a survivorship table for a projected period from the
// requested quantile of the simulated index ensemble instead of the central
// path. With a positive sensitivity vector, low index quantiles give an
// optimistic (light-mortality) table and high quantiles a pessimistic one.
func (p *Projection) BridgeQuantile(period int, prob, radix float64) (*lifetable.Table, error) {
	quantiles, err := p.Quantile(prob)
	if err != nil {
		return nil, err
	}
	for h, label := range p.Periods {
		if label == period {
			return p.bridgeAt(quantiles[h], radix)
		}
	}
	return nil, contract.ValidationErrorf("period %d is outside the projection %d..%d",
		period, p.Periods[0], p.Periods[p.Horizon-1])
}

// bridgeAt converts the model-implied rates at an index value into a table.
func (p *Projection) bridgeAt(k, radix float64) (*lifetable.Table, error) {
	mx := make([]float64, p.Model.NAges())
	for i := range mx {
		mx[i] = p.Model.FittedRate(i, k)
	}
	return lifetable.FromCentralRates(p.Model.Ages, mx, radix)
}
