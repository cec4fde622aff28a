// Package graduate removes sampling noise from mortality surfaces with
// Whittaker-Henderson smoothing: penalized least squares in log-rate space,
// applied independently to each period column.
package graduate

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/mfigueroa/lifecast/internal/contract"
	"github.com/mfigueroa/lifecast/schema"
)

// Options controls the smoothing problem. Lambda trades fidelity against
// smoothness: 0 reproduces the input exactly, large values approach a
// weighted polynomial of degree DiffOrder-1.
type Options struct {
	Lambda           float64
	DiffOrder        int  // Order of the difference penalty (2 penalizes curvature)
	WeightByExposure bool // Weight each age by person-years so well-observed ages dominate
	Workers          int  // Concurrent period columns; <=1 means sequential
}

// Smooth graduates every period column of the input and returns the smoothed
// surface along with diagnostics. The input is not modified; deaths and
// exposures are carried through so the result satisfies the same structural
// contract as the raw matrix.
func Smooth(data *schema.MortalityMatrix, opts Options) (*schema.GraduatedSurface, *schema.GraduationReport, error) {
	if opts.Lambda < 0 {
		return nil, nil, contract.ConfigErrorf("lambda must be non-negative, got %g", opts.Lambda)
	}
	if opts.DiffOrder < 1 {
		return nil, nil, contract.ConfigErrorf("difference order must be at least 1, got %d", opts.DiffOrder)
	}
	nAges, nPeriods := data.NAges(), data.NPeriods()
	if nAges <= opts.DiffOrder {
		return nil, nil, contract.ConfigErrorf("need more than %d ages for a difference penalty of order %d, got %d", opts.DiffOrder, opts.DiffOrder, nAges)
	}

	logRates := mat.NewDense(nAges, nPeriods, nil)
	for i := range nAges {
		for j := range nPeriods {
			logRates.Set(i, j, math.Log(data.Rates.At(i, j)))
		}
	}

	smoothed := mat.NewDense(nAges, nPeriods, nil)
	errs := make([]error, nPeriods)

	// Period columns are independent, so fan them out across a bounded
	// worker pool. Each worker writes to a unique column, which is safe.
	workers := max(opts.Workers, 1)
	jobs := make(chan int, nPeriods)
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for j := range jobs {
				column := colSlice(logRates, j)
				weights := columnWeights(data, j, opts.WeightByExposure)
				g, err := smoothColumn(column, weights, opts.Lambda, opts.DiffOrder)
				if err != nil {
					errs[j] = contract.NumericErrorf("period %d: %v", data.Periods[j], err)
					continue
				}
				for i, v := range g {
					smoothed.Set(i, j, v)
				}
			}
		})
	}
	for j := range nPeriods {
		jobs <- j
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}

	// Exponentiate back to rate space, which guarantees positivity.
	rates := mat.NewDense(nAges, nPeriods, nil)
	for i := range nAges {
		for j := range nPeriods {
			rates.Set(i, j, math.Exp(smoothed.At(i, j)))
		}
	}

	surface := &schema.GraduatedSurface{
		Ages:      data.Ages,
		Periods:   data.Periods,
		Rates:     rates,
		RawRates:  data.Rates,
		Deaths:    data.Deaths,
		Exposures: data.Exposures,
		Lambda:    opts.Lambda,
		DiffOrder: opts.DiffOrder,
	}
	return surface, buildReport(logRates, smoothed, data.Periods, opts), nil
}

// smoothColumn solves the penalized least-squares problem for one log-rate
// vector m with weights w:
//
//	minimize (g-m)'W(g-m) + lambda * g'D'Dg
//
// via the normal equations (W + lambda*D'D) g = W m. The system matrix is
// symmetric positive definite and banded with bandwidth 2z+1, so it is
// factorized with a banded Cholesky rather than a full decomposition.
func smoothColumn(m, w []float64, lambda float64, z int) ([]float64, error) {
	n := len(m)
	if len(w) != n {
		return nil, contract.ValidationErrorf("weight vector length %d does not match %d ages", len(w), n)
	}

	if lambda == 0 {
		// No penalty: W g = W m, so the data passes through untouched as
		// long as the weight matrix is invertible.
		for i, wi := range w {
			if wi <= 0 {
				return nil, contract.NumericErrorf("age index %d has weight %g and lambda = 0: system is singular", i, wi)
			}
		}
		out := make([]float64, n)
		copy(out, m)
		return out, nil
	}

	// Assemble A = W + lambda*D'D directly in symmetric band storage.
	// D is the (n-z) x n difference operator whose rows hold the
	// alternating-sign binomial coefficients of order z.
	c := diffCoefficients(z)
	band := make([]float64, n*(z+1))
	for r := 0; r+z < n; r++ {
		for j1 := 0; j1 <= z; j1++ {
			for j2 := j1; j2 <= z; j2++ {
				i := r + j1
				band[i*(z+1)+(j2-j1)] += lambda * c[j1] * c[j2]
			}
		}
	}
	for i, wi := range w {
		if wi < 0 {
			return nil, contract.ValidationErrorf("negative weight %g at age index %d", wi, i)
		}
		band[i*(z+1)] += wi
	}

	a := mat.NewSymBandDense(n, z, band)
	var chol mat.BandCholesky
	if ok := chol.Factorize(a); !ok {
		return nil, contract.NumericErrorf("weight-plus-penalty system is not positive definite (lambda=%g, order=%d); check for degenerate weights", lambda, z)
	}

	rhs := mat.NewVecDense(n, nil)
	for i := range n {
		rhs.SetVec(i, w[i]*m[i])
	}
	var g mat.VecDense
	if err := chol.SolveVecTo(&g, rhs); err != nil {
		return nil, contract.NumericErrorf("banded solve failed: %v", err)
	}

	out := make([]float64, n)
	copy(out, g.RawVector().Data)
	return out, nil
}

// diffCoefficients returns the alternating-sign binomial coefficients of a
// z-th order difference: (-1)^j * C(z, j) for j = 0..z.
func diffCoefficients(z int) []float64 {
	c := make([]float64, z+1)
	c[0] = 1
	for j := 1; j <= z; j++ {
		c[j] = -c[j-1] * float64(z-j+1) / float64(j)
	}
	return c
}

// Roughness measures a column's noise as the sum of squared z-th differences.
// Used for reporting only.
func Roughness(column []float64, z int) float64 {
	d := make([]float64, len(column))
	copy(d, column)
	for range z {
		for i := 0; i+1 < len(d); i++ {
			d[i] = d[i+1] - d[i]
		}
		d = d[:len(d)-1]
	}
	var total float64
	for _, v := range d {
		total += v * v
	}
	return total
}

// SurfaceRoughness sums the per-column roughness of a rate grid in log space.
func SurfaceRoughness(rates *mat.Dense, z int) float64 {
	rows, cols := rates.Dims()
	var total float64
	column := make([]float64, rows)
	for j := range cols {
		for i := range rows {
			column[i] = math.Log(rates.At(i, j))
		}
		total += Roughness(column, z)
	}
	return total
}

// columnWeights returns the smoothing weights for one period: exposures when
// weighting is enabled, a uniform vector otherwise. A zero weight means the
// age is smoothed purely from neighboring structure.
func columnWeights(data *schema.MortalityMatrix, j int, byExposure bool) []float64 {
	n := data.NAges()
	w := make([]float64, n)
	for i := range n {
		if byExposure {
			w[i] = data.Exposures.At(i, j)
		} else {
			w[i] = 1
		}
	}
	return w
}

// colSlice copies one column of a dense matrix.
func colSlice(m *mat.Dense, j int) []float64 {
	rows, _ := m.Dims()
	out := make([]float64, rows)
	for i := range rows {
		out[i] = m.At(i, j)
	}
	return out
}

// buildReport assembles the before/after diagnostics for one smoothing run.
func buildReport(logRaw, logSmoothed *mat.Dense, periods []int, opts Options) *schema.GraduationReport {
	rows, cols := logRaw.Dims()

	var rawRoughness, smoothRoughness float64
	resids := make([]float64, 0, rows*cols)
	column := make([]float64, rows)
	for j := range cols {
		for i := range rows {
			column[i] = logRaw.At(i, j)
			resids = append(resids, logSmoothed.At(i, j)-logRaw.At(i, j))
		}
		rawRoughness += Roughness(column, opts.DiffOrder)
		for i := range rows {
			column[i] = logSmoothed.At(i, j)
		}
		smoothRoughness += Roughness(column, opts.DiffOrder)
	}

	return &schema.GraduationReport{
		Lambda:        opts.Lambda,
		DiffOrder:     opts.DiffOrder,
		RawRoughness:  rawRoughness,
		Roughness:     smoothRoughness,
		ResidualMean:  stat.Mean(resids, nil),
		ResidualStd:   math.Sqrt(stat.Variance(resids, nil)),
		PeriodResids:  resids,
		PeriodLabels:  periods,
		PeriodColumns: cols,
	}
}
