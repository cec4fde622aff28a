// Package leecarter fits the Lee-Carter (1992) mortality model: a rank-1
// decomposition of the log-mortality surface into an age profile, an age
// sensitivity vector and a one-dimensional time index.
package leecarter

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mfigueroa/lifecast/internal/contract"
	"github.com/mfigueroa/lifecast/schema"
)

// Tolerance for the post-fit identifiability checks.
const constraintTol = 1e-9

// Options controls the fit.
type Options struct {
	// Reestimate refits the time index so model-implied deaths match
	// observed deaths per period, instead of keeping the log-space SVD
	// optimum. Ill-posed on graduated surfaces (see Fit).
	Reestimate bool

	// Fallback decides what happens when re-estimation fails to converge
	// on a period: keep the SVD index for that period, or abort.
	Fallback schema.FallbackPolicy
}

// Fit decomposes the surface's log rates as ln m = a + b*k + residual and
// enforces the identifiability constraints sum(b) = 1 and sum(k) = 0.
//
// Re-estimation solves, per period, for the k matching observed death
// totals. The objective is monotone in k only while every b entry is
// positive; graduation can flip signs and make it non-monotone, which is why
// surfaces carry a Smoothed flag. On a smoothed surface the caller should
// treat re-estimated output with suspicion or disable it.
func Fit(surface schema.MortalitySurface, opts Options) (*schema.FactorModel, error) {
	ages := surface.AgeLabels()
	periods := surface.PeriodLabels()
	nAges, nPeriods := len(ages), len(periods)
	if nAges == 0 || nPeriods == 0 {
		return nil, contract.ValidationErrorf("empty surface: %d ages, %d periods", nAges, nPeriods)
	}

	rates := surface.RateMatrix()
	logRates := mat.NewDense(nAges, nPeriods, nil)
	for i := range nAges {
		for j := range nPeriods {
			r := rates.At(i, j)
			if r <= 0 || math.IsNaN(r) {
				return nil, contract.ValidationErrorf("rate %g at age %d, period %d is not positive", r, ages[i], periods[j])
			}
			logRates.Set(i, j, math.Log(r))
		}
	}

	// Age profile: row means of the log-rate surface.
	ax := make([]float64, nAges)
	for i := range nAges {
		var sum float64
		for j := range nPeriods {
			sum += logRates.At(i, j)
		}
		ax[i] = sum / float64(nPeriods)
	}

	// Centered surface.
	centered := mat.NewDense(nAges, nPeriods, nil)
	for i := range nAges {
		for j := range nPeriods {
			centered.Set(i, j, logRates.At(i, j)-ax[i])
		}
	}

	bx, kt, explained, err := leadingTriplet(centered)
	if err != nil {
		return nil, err
	}

	// Identifiability: rescale so sum(b) = 1, then shift so sum(k) = 0,
	// absorbing the shift into the age profile so a + b*k still
	// reconstructs the leading component exactly.
	if err := applyConstraints(ax, bx, kt); err != nil {
		return nil, err
	}

	model := &schema.FactorModel{
		Ages:              ages,
		Periods:           periods,
		Ax:                ax,
		Bx:                bx,
		Kt:                kt,
		ExplainedVariance: explained,
	}

	if opts.Reestimate {
		fallbacks, err := reestimateIndex(model, surface, opts.Fallback)
		if err != nil {
			return nil, err
		}
		model.Reestimated = true
		model.FallbackPeriods = fallbacks
	}

	if err := checkInvariants(model); err != nil {
		return nil, err
	}
	return model, nil
}

// Diagnostics computes log-space goodness-of-fit metrics for a fitted model
// against the surface it was fitted on.
func Diagnostics(model *schema.FactorModel, surface schema.MortalitySurface) schema.FitDiagnostics {
	rates := surface.RateMatrix()
	nAges, nPeriods := len(model.Ages), len(model.Periods)

	var sumSq, sumAbs, maxAbs float64
	for i := range nAges {
		for j := range nPeriods {
			fitted := model.Ax[i] + model.Bx[i]*model.Kt[j]
			e := math.Log(rates.At(i, j)) - fitted
			sumSq += e * e
			sumAbs += math.Abs(e)
			maxAbs = math.Max(maxAbs, math.Abs(e))
		}
	}
	n := float64(nAges * nPeriods)
	return schema.FitDiagnostics{
		ExplainedVariance: model.ExplainedVariance,
		RMSE:              math.Sqrt(sumSq / n),
		MaxAbsError:       maxAbs,
		MeanAbsError:      sumAbs / n,
	}
}

// leadingTriplet extracts the raw sensitivity and index vectors from the
// leading singular triplet of the centered log-rate surface, plus the
// fraction of variance the triplet explains.
func leadingTriplet(centered *mat.Dense) (bx, kt []float64, explained float64, err error) {
	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, nil, 0, contract.NumericErrorf("SVD of centered log-rate surface failed to converge")
	}

	values := svd.Values(nil)
	var total float64
	for _, s := range values {
		total += s * s
	}
	if total == 0 {
		return nil, nil, 0, contract.NumericErrorf("centered log-rate surface has no variance to decompose")
	}
	explained = values[0] * values[0] / total

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	nAges, nPeriods := centered.Dims()
	bx = make([]float64, nAges)
	for i := range nAges {
		bx[i] = u.At(i, 0)
	}
	kt = make([]float64, nPeriods)
	for t := range nPeriods {
		kt[t] = values[0] * v.At(t, 0)
	}
	return bx, kt, explained, nil
}

// applyConstraints normalizes the decomposition in place. The product b*k is
// invariant under reciprocal rescaling, so dividing b by its sum and
// multiplying k by the same amount picks the sum(b)=1 representative; if the
// sum is negative both vectors flip sign first. Centering k to sum zero
// shifts its mean into the age profile. A sensitivity sum at or near zero
// has no sum-one representative; rescaling would blow the vector up to
// non-finite entries, so it is rejected instead.
func applyConstraints(ax, bx, kt []float64) error {
	var bxSum float64
	for _, b := range bx {
		bxSum += b
	}
	if math.Abs(bxSum) < constraintTol {
		return contract.NumericErrorf("sensitivity vector sums to %g; decomposition has no sum-one representative", bxSum)
	}
	if bxSum < 0 {
		for i := range bx {
			bx[i] = -bx[i]
		}
		for t := range kt {
			kt[t] = -kt[t]
		}
		bxSum = -bxSum
	}
	for i := range bx {
		bx[i] /= bxSum
	}
	for t := range kt {
		kt[t] *= bxSum
	}

	var ktMean float64
	for _, k := range kt {
		ktMean += k
	}
	ktMean /= float64(len(kt))
	for t := range kt {
		kt[t] -= ktMean
	}
	for i := range ax {
		ax[i] += bx[i] * ktMean
	}
	return nil
}

// checkInvariants verifies the post-fit contract: sum(b)=1, sum(k)=0, no NaN
// anywhere.
func checkInvariants(model *schema.FactorModel) error {
	var bxSum, ktSum float64
	for _, b := range model.Bx {
		if math.IsNaN(b) {
			return contract.NumericErrorf("NaN in fitted sensitivity vector")
		}
		bxSum += b
	}
	for _, k := range model.Kt {
		if math.IsNaN(k) {
			return contract.NumericErrorf("NaN in fitted time index")
		}
		ktSum += k
	}
	for _, a := range model.Ax {
		if math.IsNaN(a) {
			return contract.NumericErrorf("NaN in fitted age profile")
		}
	}
	if math.Abs(bxSum-1) > constraintTol {
		return contract.NumericErrorf("sensitivity vector sums to %v, want 1", bxSum)
	}
	if math.Abs(ktSum) > constraintTol*float64(len(model.Kt)) {
		return contract.NumericErrorf("time index sums to %v, want 0", ktSum)
	}
	return nil
}
