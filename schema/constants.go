package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// Population represents the sub-population selector for the dataset.
	Population string

	// FallbackPolicy controls what happens when time-index re-estimation
	// fails to converge on a period.
	FallbackPolicy string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All sub-populations supported.
const (
	MalePopulation   Population = "male"
	FemalePopulation Population = "female"
	TotalPopulation  Population = "total" // default
)

// Re-estimation fallback policies. SVDFallback keeps the SVD-only index for
// periods that failed to converge; FailFallback aborts the fit instead.
const (
	SVDFallback  FallbackPolicy = "svd" // default
	FailFallback FallbackPolicy = "fail"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidPopulations lists all valid sub-population selectors.
var ValidPopulations = map[Population]struct{}{
	MalePopulation:   {},
	FemalePopulation: {},
	TotalPopulation:  {},
}

// ValidFallbackPolicies lists all valid re-estimation fallback policies.
var ValidFallbackPolicies = map[FallbackPolicy]struct{}{
	SVDFallback:  {},
	FailFallback: {},
}
