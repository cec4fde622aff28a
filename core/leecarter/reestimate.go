package leecarter

import (
	"math"

	"github.com/mfigueroa/lifecast/internal/contract"
	"github.com/mfigueroa/lifecast/schema"
)

const (
	// Search interval for the per-period index root. Wide enough that any
	// plausible mortality level falls inside; exp(a + b*k) overflows long
	// before |k| reaches this.
	bracketLo = -500.0
	bracketHi = 500.0

	// Grid size for the sign-change scan when the outer bracket fails.
	scanPoints = 201

	rootTol  = 1e-10
	rootIter = 200
)

// reestimateIndex refits each period's index value so that model-implied
// deaths sum(exposure * exp(a + b*k)) match the observed death total for the
// period, then re-centers the index to sum zero. Returns the labels of
// periods that fell back to their SVD values.
func reestimateIndex(model *schema.FactorModel, surface schema.MortalitySurface, policy schema.FallbackPolicy) ([]int, error) {
	deaths := surface.DeathMatrix()
	exposures := surface.ExposureMatrix()
	if deaths == nil || exposures == nil {
		return nil, contract.ValidationErrorf("re-estimation needs death and exposure matrices")
	}

	nAges, nPeriods := model.NAges(), model.NPeriods()
	var fallbacks []int
	for t := range nPeriods {
		var observed float64
		for i := range nAges {
			observed += deaths.At(i, t)
		}
		if observed <= 0 {
			return nil, contract.ValidationErrorf("period %d has non-positive death total %g", model.Periods[t], observed)
		}

		// Residual between model-implied and observed deaths as a
		// function of the index value. Strictly increasing in k when
		// every Bx entry is positive.
		f := func(k float64) float64 {
			var implied float64
			for i := range nAges {
				implied += exposures.At(i, t) * math.Exp(model.Ax[i]+model.Bx[i]*k)
			}
			return implied - observed
		}

		k, ok := solvePeriod(f)
		if !ok {
			switch policy {
			case schema.FailFallback:
				return nil, contract.NumericErrorf("index re-estimation found no root for period %d", model.Periods[t])
			default:
				fallbacks = append(fallbacks, model.Periods[t])
				continue
			}
		}
		model.Kt[t] = k
	}

	// Re-center; the shift is absorbed into the age profile so fitted
	// rates are unchanged.
	var mean float64
	for _, k := range model.Kt {
		mean += k
	}
	mean /= float64(nPeriods)
	for t := range model.Kt {
		model.Kt[t] -= mean
	}
	for i := range model.Ax {
		model.Ax[i] += model.Bx[i] * mean
	}
	return fallbacks, nil
}

// solvePeriod finds a root of f inside the search interval. It first tries
// the full [bracketLo, bracketHi] bracket, which succeeds whenever f is
// monotone (all-positive sensitivities). Graduated input can make f
// non-monotone, so on failure it scans a uniform grid for any sign change
// and bisects inside the first sub-interval that has one.
func solvePeriod(f func(float64) float64) (float64, bool) {
	fLo, fHi := f(bracketLo), f(bracketHi)
	if fLo == 0 {
		return bracketLo, true
	}
	if fHi == 0 {
		return bracketHi, true
	}
	if fLo*fHi < 0 {
		return bisect(f, bracketLo, bracketHi, fLo), true
	}

	step := (bracketHi - bracketLo) / float64(scanPoints-1)
	prev, fPrev := bracketLo, fLo
	for p := 1; p < scanPoints; p++ {
		x := bracketLo + float64(p)*step
		fx := f(x)
		if fx == 0 {
			return x, true
		}
		if fPrev*fx < 0 {
			return bisect(f, prev, x, fPrev), true
		}
		prev, fPrev = x, fx
	}
	return 0, false
}

// bisect assumes f(lo) and f(hi) straddle zero and returns the midpoint of
// the final interval.
func bisect(f func(float64) float64, lo, hi, fLo float64) float64 {
	for range rootIter {
		mid := (lo + hi) / 2
		fMid := f(mid)
		if fMid == 0 || (hi-lo)/2 < rootTol*(1+math.Abs(mid)) {
			return mid
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo, fLo = mid, fMid
		}
	}
	return (lo + hi) / 2
}
