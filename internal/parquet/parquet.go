// Package parquet provides data structures and functions for exporting
// mortality pipeline results to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
)

// ModelComponent is a long-format row of a fitted factor model: one labeled
// value per component, so age and period vectors share a single schema.
type ModelComponent struct {
	// Component names the vector the value belongs to: ax, bx or kt
	Component string `parquet:"component,snappy"`

	// Label is the age for ax/bx rows and the period for kt rows
	Label int32 `parquet:"label,snappy"`

	Value float64 `parquet:"value,snappy"`
}

// GraduatedRate is one cell of the smoothed mortality surface alongside its
// raw counterpart.
type GraduatedRate struct {
	Age       int32   `parquet:"age,snappy"`
	Period    int32   `parquet:"period,snappy"`
	RawRate   float64 `parquet:"raw_rate,snappy"`
	Graduated float64 `parquet:"graduated_rate,snappy"`
}

// ProjectedIndex is one horizon step of the index forecast. The quantile
// bounds are nullable because simulation is optional.
type ProjectedIndex struct {
	Period  int32    `parquet:"period,snappy"`
	Central float64  `parquet:"central,snappy"`
	Lower   *float64 `parquet:"lower,optional,snappy"`
	Upper   *float64 `parquet:"upper,optional,snappy"`
}

// LifeTableRow is one age of a survivorship table.
type LifeTableRow struct {
	Age       int32   `parquet:"age,snappy"`
	Qx        float64 `parquet:"qx,snappy"`
	Px        float64 `parquet:"px,snappy"`
	Survivors float64 `parquet:"lx,snappy"`
	Deaths    float64 `parquet:"dx,snappy"`
}

// ComparisonRow is one age of a model-versus-reference table comparison.
type ComparisonRow struct {
	Age        int32   `parquet:"age,snappy"`
	BaseQx     float64 `parquet:"base_qx,snappy"`
	OtherQx    float64 `parquet:"other_qx,snappy"`
	Ratio      float64 `parquet:"ratio,snappy"`
	Difference float64 `parquet:"difference,snappy"`
}

// WriteModelComponentsParquet writes fitted model components to a Parquet file.
func WriteModelComponentsParquet(data []ModelComponent, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteGraduatedRatesParquet writes graduated surface cells to a Parquet file.
func WriteGraduatedRatesParquet(data []GraduatedRate, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteProjectedIndexParquet writes the index forecast to a Parquet file.
func WriteProjectedIndexParquet(data []ProjectedIndex, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteLifeTableParquet writes a survivorship table to a Parquet file.
func WriteLifeTableParquet(data []LifeTableRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteComparisonParquet writes a table comparison to a Parquet file.
func WriteComparisonParquet(data []ComparisonRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes any row slice to a Parquet file using struct schema
// inference from the row type's tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}
