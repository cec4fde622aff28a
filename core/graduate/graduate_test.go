package graduate

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/mfigueroa/lifecast/internal/contract"
	"github.com/mfigueroa/lifecast/schema"
)

// testMatrix builds a small single-period matrix whose log rates follow the
// given values, with unit exposures unless overridden.
func testMatrix(logRates []float64, exposures []float64) *schema.MortalityMatrix {
	n := len(logRates)
	ages := make([]int, n)
	rates := mat.NewDense(n, 1, nil)
	deaths := mat.NewDense(n, 1, nil)
	expo := mat.NewDense(n, 1, nil)
	for i := range n {
		ages[i] = 50 + i
		r := math.Exp(logRates[i])
		e := 1.0
		if exposures != nil {
			e = exposures[i]
		}
		rates.Set(i, 0, r)
		expo.Set(i, 0, e)
		deaths.Set(i, 0, r*e)
	}
	return &schema.MortalityMatrix{
		Ages:      ages,
		Periods:   []int{2000},
		Rates:     rates,
		Deaths:    deaths,
		Exposures: expo,
	}
}

// noisyQuadratic returns a quadratic log-rate curve with deterministic
// alternating noise.
func noisyQuadratic(n int, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range n {
		x := float64(i)
		noise := amplitude
		if i%2 == 1 {
			noise = -amplitude
		}
		out[i] = -6 + 0.05*x + 0.001*x*x + noise
	}
	return out
}

// TestSmoothZeroLambdaIsIdentity checks the lambda = 0 fast path.
func TestSmoothZeroLambdaIsIdentity(t *testing.T) {
	data := testMatrix(noisyQuadratic(12, 0.05), nil)

	surface, report, err := Smooth(data, Options{Lambda: 0, DiffOrder: 2, Workers: 2})
	require.NoError(t, err)

	for i := range data.Ages {
		assert.InDelta(t, data.Rates.At(i, 0), surface.Rates.At(i, 0), 1e-12)
	}
	assert.InDelta(t, report.RawRoughness, report.Roughness, 1e-12)
}

// TestSmoothReducesRoughness checks that the penalty actually smooths and
// that roughness is monotone non-increasing in lambda.
func TestSmoothReducesRoughness(t *testing.T) {
	data := testMatrix(noisyQuadratic(20, 0.1), nil)

	prev := math.Inf(1)
	for _, lambda := range []float64{1, 100, 1e4, 1e6} {
		surface, _, err := Smooth(data, Options{Lambda: lambda, DiffOrder: 2, Workers: 1})
		require.NoError(t, err)
		rough := SurfaceRoughness(surface.Rates, 2)
		assert.LessOrEqual(t, rough, prev+1e-12, "lambda=%g", lambda)
		prev = rough
	}

	raw := SurfaceRoughness(data.Rates, 2)
	assert.Less(t, prev, raw)
}

// TestSmoothStrongPenaltyApproachesLinear checks that a huge second-order
// penalty forces the column toward a straight line in log space.
func TestSmoothStrongPenaltyApproachesLinear(t *testing.T) {
	data := testMatrix(noisyQuadratic(15, 0.2), nil)

	surface, _, err := Smooth(data, Options{Lambda: 1e12, DiffOrder: 2, Workers: 1})
	require.NoError(t, err)

	// Second differences of the graduated log column should be near zero.
	logCol := make([]float64, len(data.Ages))
	for i := range logCol {
		logCol[i] = math.Log(surface.Rates.At(i, 0))
	}
	assert.Less(t, Roughness(logCol, 2), 1e-6)
}

// TestSmoothZeroWeightAges checks that zero-exposure ages are filled from
// neighboring structure without error when lambda is positive.
func TestSmoothZeroWeightAges(t *testing.T) {
	exposures := []float64{1, 1, 1, 0, 1, 1, 1, 1, 1, 1}
	data := testMatrix(noisyQuadratic(10, 0.05), exposures)
	// Patch the zero-exposure cell so dataset-level invariants are not the
	// subject here; Smooth must still produce finite positive output.
	data.Deaths.Set(3, 0, 0)

	surface, _, err := Smooth(data, Options{Lambda: 100, DiffOrder: 2, WeightByExposure: true, Workers: 1})
	require.NoError(t, err)
	for i := range data.Ages {
		v := surface.Rates.At(i, 0)
		assert.False(t, math.IsNaN(v))
		assert.Greater(t, v, 0.0)
	}
}

// TestSmoothZeroWeightWithZeroLambdaFails checks the singular system error.
func TestSmoothZeroWeightWithZeroLambdaFails(t *testing.T) {
	exposures := []float64{1, 1, 0, 1, 1, 1}
	data := testMatrix(noisyQuadratic(6, 0.05), exposures)

	_, _, err := Smooth(data, Options{Lambda: 0, DiffOrder: 2, WeightByExposure: true, Workers: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrNumeric)
	assert.Contains(t, err.Error(), "singular")
}

// TestSmoothRejectsShortColumns checks the age-count guard.
func TestSmoothRejectsShortColumns(t *testing.T) {
	data := testMatrix(noisyQuadratic(2, 0.01), nil)
	_, _, err := Smooth(data, Options{Lambda: 10, DiffOrder: 2, Workers: 1})
	assert.ErrorIs(t, err, contract.ErrConfig)
}

// TestDiffCoefficients checks the alternating-sign binomial rows.
func TestDiffCoefficients(t *testing.T) {
	tests := []struct {
		z    int
		want []float64
	}{
		{1, []float64{1, -1}},
		{2, []float64{1, -2, 1}},
		{3, []float64{1, -3, 3, -1}},
		{4, []float64{1, -4, 6, -4, 1}},
	}
	for _, tt := range tests {
		got := diffCoefficients(tt.z)
		require.Len(t, got, len(tt.want))
		for i := range tt.want {
			assert.InDelta(t, tt.want[i], got[i], 1e-12, "z=%d j=%d", tt.z, i)
		}
	}
}

// TestRoughnessFlatLine checks that straight lines have zero roughness under
// a second-order difference.
func TestRoughnessFlatLine(t *testing.T) {
	line := []float64{1, 2, 3, 4, 5, 6}
	assert.InDelta(t, 0, Roughness(line, 2), 1e-12)
	assert.Greater(t, Roughness([]float64{1, 3, 2, 5, 1, 6}, 2), 0.0)
}

// TestSmoothColumnMatchesDirectSolve cross-checks the banded solver against
// a dense normal-equations solve on a small system.
func TestSmoothColumnMatchesDirectSolve(t *testing.T) {
	m := noisyQuadratic(8, 0.1)
	w := []float64{1, 2, 1, 0.5, 1, 3, 1, 1}
	lambda := 50.0
	z := 2

	g, err := smoothColumn(m, w, lambda, z)
	require.NoError(t, err)

	// Dense reference: A = W + lambda*D'D, solve A g = W m.
	n := len(m)
	d := mat.NewDense(n-z, n, nil)
	c := diffCoefficients(z)
	for r := 0; r+z < n; r++ {
		for j := 0; j <= z; j++ {
			d.Set(r, r+j, c[j])
		}
	}
	a := mat.NewDense(n, n, nil)
	a.Mul(d.T(), d)
	a.Scale(lambda, a)
	for i := range n {
		a.Set(i, i, a.At(i, i)+w[i])
	}
	rhs := mat.NewVecDense(n, nil)
	for i := range n {
		rhs.SetVec(i, w[i]*m[i])
	}
	var want mat.VecDense
	require.NoError(t, want.SolveVec(a, rhs))

	for i := range n {
		assert.InDelta(t, want.AtVec(i), g[i], 1e-8, "index %d", i)
	}
}

// FuzzSmoothColumn checks that smoothing any well-posed column never
// increases roughness and never produces NaN.
func FuzzSmoothColumn(f *testing.F) {
	f.Add(100.0, int64(1))
	f.Add(0.5, int64(7))
	f.Add(1e8, int64(42))
	f.Fuzz(func(t *testing.T, lambda float64, seed int64) {
		if math.IsNaN(lambda) || math.IsInf(lambda, 0) || lambda < 0 || lambda > 1e12 {
			t.Skip("outside the validated lambda range")
		}
		rng := rand.New(rand.NewSource(seed))

		n := 12
		m := make([]float64, n)
		w := make([]float64, n)
		for i := range n {
			m[i] = -5 + 0.08*float64(i) + 0.3*rng.NormFloat64()
			w[i] = 0.5 + rng.Float64()
		}

		g, err := smoothColumn(m, w, lambda, 2)
		require.NoError(t, err)
		for _, v := range g {
			require.False(t, math.IsNaN(v))
		}
		// The smoother minimizes fit + lambda*roughness, so taking
		// g = m bounds the achievable roughness from above.
		assert.LessOrEqual(t, Roughness(g, 2), Roughness(m, 2)*(1+1e-9))
	})
}

// TestSmoothConvergesToFlatMean checks that alternating noise around a flat
// true rate is pulled toward the flat mean as lambda grows: the squared
// deviation of the graduated log rates from the mean shrinks monotonically.
func TestSmoothConvergesToFlatMean(t *testing.T) {
	n := 12
	logRates := make([]float64, n)
	for i := range n {
		if i%2 == 0 {
			logRates[i] = -5 + 0.3
		} else {
			logRates[i] = -5 - 0.3
		}
	}
	data := testMatrix(logRates, nil)

	deviation := func(lambda float64) float64 {
		surface, _, err := Smooth(data, Options{Lambda: lambda, DiffOrder: 2, Workers: 1})
		require.NoError(t, err)
		var dev float64
		for i := range n {
			d := math.Log(surface.Rates.At(i, 0)) - (-5)
			dev += d * d
		}
		return dev
	}

	prev := math.Inf(1)
	for _, lambda := range []float64{0, 1, 100, 1e4, 1e6} {
		dev := deviation(lambda)
		assert.LessOrEqual(t, dev, prev+1e-9, "deviation grew at lambda %g", lambda)
		prev = dev
	}

	// lambda = 0 passes the noise through untouched: 12 * 0.3^2.
	assert.InDelta(t, 1.08, deviation(0), 1e-9)
	// The strong-penalty limit is the least-squares line, which sits
	// close to the flat mean.
	assert.Less(t, prev, 0.03)
}
