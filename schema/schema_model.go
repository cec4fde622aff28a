package schema

import "math"

// FactorModel is a fitted Lee-Carter decomposition of a log-mortality
// surface: ln m[age,period] = Ax[age] + Bx[age]*Kt[period] + residual.
//
// Identifiability constraints hold after fitting: sum(Bx) = 1 and
// sum(Kt) = 0 within floating tolerance. The model is read-only once built.
type FactorModel struct {
	Ages    []int     // Age labels, parallel to Ax and Bx
	Periods []int     // Period labels, parallel to Kt
	Ax      []float64 // Age profile: mean log-mortality per age
	Bx      []float64 // Age sensitivity to the time index, sums to 1
	Kt      []float64 // Time index of the mortality level, sums to 0

	// ExplainedVariance is the fraction of centered log-rate variance
	// captured by the leading singular triplet.
	ExplainedVariance float64

	// Reestimated reports whether Kt was refit to match observed death
	// totals rather than taken straight from the SVD. FallbackPeriods
	// lists periods where the refit found no root and the SVD value was
	// kept instead.
	Reestimated     bool
	FallbackPeriods []int
}

// NAges returns the number of age rows in the fitted surface.
func (f *FactorModel) NAges() int { return len(f.Ages) }

// NPeriods returns the number of fitted periods.
func (f *FactorModel) NPeriods() int { return len(f.Periods) }

// FittedRate reconstructs the model-implied central death rate for an age
// index and an arbitrary time-index value. Used by both the in-sample fit
// and the projector, which supplies extrapolated index values.
func (f *FactorModel) FittedRate(ageIdx int, kt float64) float64 {
	return math.Exp(f.Ax[ageIdx] + f.Bx[ageIdx]*kt)
}

// FitDiagnostics carries goodness-of-fit metrics for reporting.
type FitDiagnostics struct {
	ExplainedVariance float64 `json:"explained_variance"`
	RMSE              float64 `json:"rmse"`           // Log-space root mean squared error
	MaxAbsError       float64 `json:"max_abs_error"`  // Log-space worst-cell error
	MeanAbsError      float64 `json:"mean_abs_error"` // Log-space mean absolute error
}

// PremiumQuote is a flat view of the standard net premium values for one
// issue age, term and interest rate, shaped for tabular and JSON output.
type PremiumQuote struct {
	IssueAge         int     `json:"issue_age"`
	Term             int     `json:"term"`
	Interest         float64 `json:"interest"`
	WholeLife        float64 `json:"whole_life"`
	TermInsurance    float64 `json:"term_insurance"`
	PureEndowment    float64 `json:"pure_endowment"`
	Endowment        float64 `json:"endowment"`
	AnnuityDue       float64 `json:"annuity_due"`
	NetAnnualPremium float64 `json:"net_annual_premium"`
}

// GraduationReport carries per-period smoothing diagnostics. Reporting only;
// no stage branches on these values.
type GraduationReport struct {
	Lambda        float64   `json:"lambda"`
	DiffOrder     int       `json:"diff_order"`
	RawRoughness  float64   `json:"raw_roughness"`       // Sum of squared z-th differences before smoothing
	Roughness     float64   `json:"graduated_roughness"` // Same metric after smoothing
	ResidualMean  float64   `json:"residual_mean"`
	ResidualStd   float64   `json:"residual_std"`
	PeriodResids  []float64 `json:"-"` // Flattened (g - m) residuals across all periods
	PeriodLabels  []int     `json:"-"`
	PeriodColumns int       `json:"periods"`
}
