// Package lifetable builds survivorship tables from mortality assumptions
// and derives commutation functions, net premiums and table comparisons from
// them.
package lifetable

import (
	"math"

	"github.com/mfigueroa/lifecast/internal/contract"
)

// Table is a single-decrement life table. All slices are parallel to Ages.
type Table struct {
	Ages  []int     // Consecutive integer ages
	Qx    []float64 // Probability of death within the year; terminal entry is 1
	Px    []float64 // Survival probability, 1 - Qx
	Lx    []float64 // Survivors at exact age, starting from Radix
	Dx    []float64 // Deaths during the year, Lx * Qx
	Radix float64
}

// FromDeathProbabilities builds a table by recursion from one-year death
// probabilities. The terminal probability is forced to 1 so the cohort
// closes out.
func FromDeathProbabilities(ages []int, qx []float64, radix float64) (*Table, error) {
	n := len(ages)
	if n == 0 {
		return nil, contract.ValidationErrorf("empty age range")
	}
	if len(qx) != n {
		return nil, contract.ValidationErrorf("got %d death probabilities for %d ages", len(qx), n)
	}
	if radix <= 0 {
		return nil, contract.ConfigErrorf("radix %g is not positive", radix)
	}
	for i := 1; i < n; i++ {
		if ages[i] != ages[i-1]+1 {
			return nil, contract.ValidationErrorf("ages are not consecutive at %d", ages[i])
		}
	}

	t := &Table{
		Ages:  ages,
		Qx:    make([]float64, n),
		Px:    make([]float64, n),
		Lx:    make([]float64, n),
		Dx:    make([]float64, n),
		Radix: radix,
	}
	copy(t.Qx, qx)
	t.Qx[n-1] = 1

	t.Lx[0] = radix
	for i := range n {
		q := t.Qx[i]
		if q < 0 || q > 1 || math.IsNaN(q) {
			return nil, contract.ValidationErrorf("death probability %g at age %d is outside [0, 1]", q, ages[i])
		}
		t.Px[i] = 1 - q
		t.Dx[i] = t.Lx[i] * q
		if i+1 < n {
			t.Lx[i+1] = t.Lx[i] * t.Px[i]
		}
	}
	return t, nil
}

// FromCentralRates converts central death rates to one-year death
// probabilities under a constant force of mortality within each year,
// q = 1 - exp(-m), then builds the table. This is not interchangeable with
// the actuarial approximation q = m/(1 + m/2).
func FromCentralRates(ages []int, mx []float64, radix float64) (*Table, error) {
	if len(mx) != len(ages) {
		return nil, contract.ValidationErrorf("got %d rates for %d ages", len(mx), len(ages))
	}
	qx := make([]float64, len(mx))
	for i, m := range mx {
		if m < 0 || math.IsNaN(m) {
			return nil, contract.ValidationErrorf("central rate %g at age %d is negative", m, ages[i])
		}
		qx[i] = 1 - math.Exp(-m)
	}
	return FromDeathProbabilities(ages, qx, radix)
}

// NAges returns the number of ages in the table.
func (t *Table) NAges() int { return len(t.Ages) }

// Validate re-checks the table invariants: survivors non-increasing,
// probabilities in range, terminal closure.
func (t *Table) Validate() error {
	n := t.NAges()
	if n == 0 {
		return contract.ValidationErrorf("empty table")
	}
	if t.Qx[n-1] != 1 {
		return contract.ValidationErrorf("terminal death probability is %g, want 1", t.Qx[n-1])
	}
	for i := range n {
		if t.Qx[i] < 0 || t.Qx[i] > 1 {
			return contract.ValidationErrorf("death probability %g at age %d is outside [0, 1]", t.Qx[i], t.Ages[i])
		}
		if i > 0 && t.Lx[i] > t.Lx[i-1] {
			return contract.ValidationErrorf("survivors increase at age %d", t.Ages[i])
		}
	}
	var totalDeaths float64
	for _, d := range t.Dx {
		totalDeaths += d
	}
	if math.Abs(totalDeaths-t.Radix) > 1e-9*t.Radix {
		return contract.ValidationErrorf("deaths sum to %g, want radix %g; cohort does not close", totalDeaths, t.Radix)
	}
	return nil
}

// Subset returns the table restricted to [fromAge, toAge], re-closing the
// terminal probability at the new last age. Survivor counts keep their
// original scale so the subset stays consistent with the parent.
func (t *Table) Subset(fromAge, toAge int) (*Table, error) {
	lo, err := t.ageIndex(fromAge)
	if err != nil {
		return nil, err
	}
	hi, err := t.ageIndex(toAge)
	if err != nil {
		return nil, err
	}
	if lo > hi {
		return nil, contract.ValidationErrorf("age range %d..%d is inverted", fromAge, toAge)
	}

	n := hi - lo + 1
	sub := &Table{
		Ages:  append([]int(nil), t.Ages[lo:hi+1]...),
		Qx:    append([]float64(nil), t.Qx[lo:hi+1]...),
		Px:    append([]float64(nil), t.Px[lo:hi+1]...),
		Lx:    append([]float64(nil), t.Lx[lo:hi+1]...),
		Dx:    append([]float64(nil), t.Dx[lo:hi+1]...),
		Radix: t.Lx[lo],
	}
	sub.Qx[n-1] = 1
	sub.Px[n-1] = 0
	sub.Dx[n-1] = sub.Lx[n-1]
	return sub, nil
}

// CurtateExpectation returns the curtate life expectancy at the given age,
// the expected number of whole years remaining.
func (t *Table) CurtateExpectation(age int) (float64, error) {
	idx, err := t.ageIndex(age)
	if err != nil {
		return 0, err
	}
	if t.Lx[idx] == 0 {
		return 0, nil
	}
	var sum float64
	for i := idx + 1; i < t.NAges(); i++ {
		sum += t.Lx[i]
	}
	return sum / t.Lx[idx], nil
}

// CompleteExpectation approximates the complete life expectancy as the
// curtate value plus a half year.
func (t *Table) CompleteExpectation(age int) (float64, error) {
	e, err := t.CurtateExpectation(age)
	if err != nil {
		return 0, err
	}
	return e + 0.5, nil
}

func (t *Table) ageIndex(age int) (int, error) {
	for i, a := range t.Ages {
		if a == age {
			return i, nil
		}
	}
	return 0, contract.ValidationErrorf("age %d is not in the table (%d..%d)", age, t.Ages[0], t.Ages[len(t.Ages)-1])
}
