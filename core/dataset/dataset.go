// Package dataset builds aligned mortality matrices from raw per-(age,
// period) death and exposure observations, validating consistency before the
// numerical stages run.
package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/mfigueroa/lifecast/internal/contract"
	"github.com/mfigueroa/lifecast/internal/loader"
	"github.com/mfigueroa/lifecast/schema"
)

// Relative tolerance between a provided rate and deaths/exposure.
const rateTolerance = 0.01

// Options controls how raw observations are assembled into a matrix.
type Options struct {
	Population schema.Population // Recorded on the output for reporting
	AgeCap     int               // Ages above this aggregate into an open group
}

// cell keys a single (period, age) observation.
type cell struct {
	period int
	age    int
}

// Build joins death and exposure records on (age, period) and produces an
// immutable MortalityMatrix. rates may be nil, in which case the rate grid
// is deaths/exposure; when a source supplies its own rate grid (e.g. HMD
// central rates) it is carried through and checked against deaths/exposure.
//
// Ages above opts.AgeCap are aggregated by summing deaths and exposures
// across the tail, then recomputing the open-group rate as the ratio of the
// sums. Averaging already-computed rates would ignore exposure weighting and
// is deliberately not done here.
func Build(deaths, exposures, rates []loader.Record, opts Options) (*schema.MortalityMatrix, error) {
	if opts.AgeCap < 1 {
		return nil, contract.ConfigErrorf("age cap must be positive, got %d", opts.AgeCap)
	}
	if len(deaths) == 0 || len(exposures) == 0 {
		return nil, contract.ValidationErrorf("empty input: %d death records, %d exposure records", len(deaths), len(exposures))
	}

	dx := aggregateCapped(deaths, opts.AgeCap)
	ex := aggregateCapped(exposures, opts.AgeCap)

	ages, periods, err := alignLabels(dx, ex)
	if err != nil {
		return nil, err
	}

	nAges, nPeriods := len(ages), len(periods)
	dxGrid := mat.NewDense(nAges, nPeriods, nil)
	exGrid := mat.NewDense(nAges, nPeriods, nil)
	mxGrid := mat.NewDense(nAges, nPeriods, nil)

	// Optional provided rates: keep below-cap cells, recompute the open
	// group from the aggregated counts.
	var mxProvided map[cell]float64
	if rates != nil {
		mxProvided = make(map[cell]float64, len(rates))
		for _, r := range rates {
			if r.Age < opts.AgeCap {
				mxProvided[cell{r.Period, r.Age}] = r.Value
			}
		}
	}

	for i, age := range ages {
		for j, period := range periods {
			key := cell{period, age}
			d, dok := dx[key]
			e, eok := ex[key]
			if !dok || !eok {
				return nil, contract.ValidationErrorf("no joined observation for age %d, period %d", age, period)
			}
			dxGrid.Set(i, j, d)
			exGrid.Set(i, j, e)

			if m, ok := mxProvided[key]; ok {
				mxGrid.Set(i, j, m)
			} else if e != 0 {
				mxGrid.Set(i, j, d/e)
			} else {
				mxGrid.Set(i, j, math.NaN())
			}
		}
	}

	out := &schema.MortalityMatrix{
		Population: string(opts.Population),
		Ages:       ages,
		Periods:    periods,
		Rates:      mxGrid,
		Deaths:     dxGrid,
		Exposures:  exGrid,
	}
	if err := validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// aggregateCapped sums record values per (period, age) with the tail above
// the cap folded into the cap age. Summation is correct for both death
// counts and exposures; NaN inputs propagate and are caught by validation.
func aggregateCapped(records []loader.Record, ageCap int) map[cell]float64 {
	agg := make(map[cell]float64, len(records))
	for _, r := range records {
		age := r.Age
		if age > ageCap {
			age = ageCap
		}
		agg[cell{r.Period, age}] += r.Value
	}
	return agg
}

// alignLabels derives sorted age and period vectors and requires the two
// sources to cover exactly the same cells.
func alignLabels(dx, ex map[cell]float64) ([]int, []int, error) {
	if len(dx) != len(ex) {
		return nil, nil, contract.ValidationErrorf("death and exposure sources disagree: %d vs %d cells after join", len(dx), len(ex))
	}

	ageSet := make(map[int]struct{})
	periodSet := make(map[int]struct{})
	for key := range dx {
		if _, ok := ex[key]; !ok {
			return nil, nil, contract.ValidationErrorf("exposure source missing age %d, period %d", key.age, key.period)
		}
		ageSet[key.age] = struct{}{}
		periodSet[key.period] = struct{}{}
	}

	ages := make([]int, 0, len(ageSet))
	for a := range ageSet {
		ages = append(ages, a)
	}
	sort.Ints(ages)

	periods := make([]int, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Ints(periods)

	return ages, periods, nil
}

// validate enforces the MortalityMatrix invariants: no NaN after the join,
// strictly positive rates and exposures, and rate consistent with
// deaths/exposure within 1% relative tolerance on every cell. Each failure
// names the offending age and period.
func validate(m *schema.MortalityMatrix) error {
	for i, age := range m.Ages {
		for j, period := range m.Periods {
			d := m.Deaths.At(i, j)
			e := m.Exposures.At(i, j)
			mx := m.Rates.At(i, j)

			if math.IsNaN(d) || math.IsNaN(e) || math.IsNaN(mx) {
				return contract.ValidationErrorf("NaN at age %d, period %d; check source coverage for that range", age, period)
			}
			if e <= 0 {
				return contract.ValidationErrorf("non-positive exposure %g at age %d, period %d", e, age, period)
			}
			if mx <= 0 {
				return contract.ValidationErrorf("non-positive rate %g at age %d, period %d; log transform requires positive rates (graduation or a narrower range may help)", mx, age, period)
			}

			recomputed := d / e
			relErr := math.Abs(mx-recomputed) / (mx + 1e-12)
			if relErr > rateTolerance {
				return contract.ValidationErrorf("rate %g inconsistent with deaths/exposure %g (relative error %.4f) at age %d, period %d", mx, recomputed, relErr, age, period)
			}
		}
	}
	return nil
}
