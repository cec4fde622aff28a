// Package schema has configs, models and shared types for all parts of lifecast.
package schema

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MortalitySurface is the structural contract shared by raw and graduated
// mortality data. The Lee-Carter fitter accepts any value satisfying it, so
// graduation stays an optional stage rather than a hard dependency.
type MortalitySurface interface {
	// AgeLabels returns the ordered integer ages (row labels).
	AgeLabels() []int

	// PeriodLabels returns the ordered integer periods (column labels).
	PeriodLabels() []int

	// RateMatrix returns the central death rate grid (ages x periods).
	RateMatrix() *mat.Dense

	// DeathMatrix returns the death count grid (ages x periods).
	DeathMatrix() *mat.Dense

	// ExposureMatrix returns the person-years exposure grid (ages x periods).
	ExposureMatrix() *mat.Dense

	// Smoothed reports whether the rates were graduated. Re-estimating the
	// time index against observed deaths is ill-posed on smoothed rates.
	Smoothed() bool
}

// MortalityMatrix holds three aligned grids of mortality observations with
// ages as rows and periods as columns. It is built once by the dataset
// builder and never mutated afterward.
type MortalityMatrix struct {
	Population string     // Sub-population the data was filtered to (e.g. "male")
	Ages       []int      // Ordered age labels (rows)
	Periods    []int      // Ordered period labels (columns)
	Rates      *mat.Dense // Central death rates m = deaths/exposure
	Deaths     *mat.Dense // Death counts
	Exposures  *mat.Dense // Exposure in person-years
}

// AgeLabels implements MortalitySurface.
func (m *MortalityMatrix) AgeLabels() []int { return m.Ages }

// PeriodLabels implements MortalitySurface.
func (m *MortalityMatrix) PeriodLabels() []int { return m.Periods }

// RateMatrix implements MortalitySurface.
func (m *MortalityMatrix) RateMatrix() *mat.Dense { return m.Rates }

// DeathMatrix implements MortalitySurface.
func (m *MortalityMatrix) DeathMatrix() *mat.Dense { return m.Deaths }

// ExposureMatrix implements MortalitySurface.
func (m *MortalityMatrix) ExposureMatrix() *mat.Dense { return m.Exposures }

// Smoothed implements MortalitySurface. Raw data is never smoothed.
func (m *MortalityMatrix) Smoothed() bool { return false }

// NAges returns the number of age rows.
func (m *MortalityMatrix) NAges() int { return len(m.Ages) }

// NPeriods returns the number of period columns.
func (m *MortalityMatrix) NPeriods() int { return len(m.Periods) }

// Rate returns the central death rate for a single (age, period) cell.
func (m *MortalityMatrix) Rate(age, period int) (float64, error) {
	i, err := IndexOfLabel(m.Ages, age, "age")
	if err != nil {
		return 0, err
	}
	j, err := IndexOfLabel(m.Periods, period, "period")
	if err != nil {
		return 0, err
	}
	return m.Rates.At(i, j), nil
}

// GraduatedSurface is a mortality surface whose rate grid was replaced by a
// Whittaker-Henderson smoothed version. Deaths and exposures are carried
// through from the input unchanged, so the surface satisfies the same
// structural contract as MortalityMatrix.
type GraduatedSurface struct {
	Ages      []int
	Periods   []int
	Rates     *mat.Dense // Smoothed central death rates
	RawRates  *mat.Dense // Original rates, kept for diagnostics
	Deaths    *mat.Dense
	Exposures *mat.Dense
	Lambda    float64 // Smoothing strength used
	DiffOrder int     // Difference-penalty order used
}

// AgeLabels implements MortalitySurface.
func (g *GraduatedSurface) AgeLabels() []int { return g.Ages }

// PeriodLabels implements MortalitySurface.
func (g *GraduatedSurface) PeriodLabels() []int { return g.Periods }

// RateMatrix implements MortalitySurface.
func (g *GraduatedSurface) RateMatrix() *mat.Dense { return g.Rates }

// DeathMatrix implements MortalitySurface.
func (g *GraduatedSurface) DeathMatrix() *mat.Dense { return g.Deaths }

// ExposureMatrix implements MortalitySurface.
func (g *GraduatedSurface) ExposureMatrix() *mat.Dense { return g.Exposures }

// Smoothed implements MortalitySurface.
func (g *GraduatedSurface) Smoothed() bool { return true }

// IndexOfLabel finds the position of a label in an ordered label vector.
// The kind string ("age" or "period") is only used for error context.
func IndexOfLabel(labels []int, label int, kind string) (int, error) {
	for i, l := range labels {
		if l == label {
			return i, nil
		}
	}
	if len(labels) == 0 {
		return 0, fmt.Errorf("%s %d not found: empty label vector", kind, label)
	}
	return 0, fmt.Errorf("%s %d not in data (range: %d-%d)", kind, label, labels[0], labels[len(labels)-1])
}
