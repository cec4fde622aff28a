package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/mfigueroa/lifecast/internal/contract"
	"github.com/mfigueroa/lifecast/internal/parquet"
	"github.com/mfigueroa/lifecast/schema"
)

// PrintGraduationResults outputs the smoothed surface with its diagnostics,
// dispatching based on the output format configured. Text mode shows the
// most recent periods that fit the terminal; structured modes carry every
// cell.
func PrintGraduationResults(surface *schema.GraduatedSurface, report *schema.GraduationReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForGraduation(surface, report, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForGraduation(surface, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := printParquetResultsForGraduation(surface, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGraduationTable(surface, report, cfg, fmtFloat, duration, w)
		}, "Wrote graduation table")
	}
	return nil
}

// writeGraduationTable renders graduated rates for the most recent periods
// plus the smoothing summary.
func writeGraduationTable(surface *schema.GraduatedSurface, report *schema.GraduationReport, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	nPeriods := len(surface.Periods)
	shown := min(nPeriods, maxPeriodColumns(cfg, cfg.Precision+8))
	first := nPeriods - shown

	headers := []string{"Age"}
	for _, period := range surface.Periods[first:] {
		headers = append(headers, strconv.Itoa(period))
	}

	table := tablewriter.NewWriter(writer)
	table.Header(headers)
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, age := range surface.Ages {
		row := []string{strconv.Itoa(age)}
		for j := first; j < nPeriods; j++ {
			row = append(row, fmtFloat(surface.Rates.At(i, j)))
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if shown < nPeriods {
		if _, err := fmt.Fprintf(writer, "Showing %d of %d periods; use csv/json/parquet output for the full surface\n", shown, nPeriods); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "Smoothing: lambda=%g order=%d | roughness %s -> %s | residual mean %s std %s\n",
		report.Lambda, report.DiffOrder,
		fmtFloat(report.RawRoughness), fmtFloat(report.Roughness),
		fmtFloat(report.ResidualMean), fmtFloat(report.ResidualStd)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Graduation completed in %v with %d workers\n", duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}

// printJSONResultsForGraduation writes the full surface with the report.
func printJSONResultsForGraduation(surface *schema.GraduatedSurface, report *schema.GraduationReport, cfg *contract.Config) error {
	type JSONGraduatedCell struct {
		Age       int     `json:"age"`
		Period    int     `json:"period"`
		RawRate   float64 `json:"raw_rate"`
		Graduated float64 `json:"graduated_rate"`
	}
	type JSONGraduationResult struct {
		Report *schema.GraduationReport `json:"report"`
		Cells  []JSONGraduatedCell      `json:"cells"`
	}

	result := JSONGraduationResult{Report: report}
	for i, age := range surface.Ages {
		for j, period := range surface.Periods {
			result.Cells = append(result.Cells, JSONGraduatedCell{
				Age:       age,
				Period:    period,
				RawRate:   surface.RawRates.At(i, j),
				Graduated: surface.Rates.At(i, j),
			})
		}
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, result)
	}, "Wrote JSON graduation results")
}

// printCSVResultsForGraduation writes every surface cell in long format.
func printCSVResultsForGraduation(surface *schema.GraduatedSurface, cfg *contract.Config, fmtFloat func(float64) string) error {
	header := []string{"age", "period", "raw_rate", "graduated_rate"}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for i, age := range surface.Ages {
				for j, period := range surface.Periods {
					rec := []string{
						strconv.Itoa(age),
						strconv.Itoa(period),
						fmtFloat(surface.RawRates.At(i, j)),
						fmtFloat(surface.Rates.At(i, j)),
					}
					if err := csvWriter.Write(rec); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}, "Wrote CSV graduation results")
}

// printParquetResultsForGraduation writes every surface cell to the
// configured Parquet file.
func printParquetResultsForGraduation(surface *schema.GraduatedSurface, cfg *contract.Config) error {
	path, err := requireParquetPath(cfg)
	if err != nil {
		return err
	}
	var rows []parquet.GraduatedRate
	for i, age := range surface.Ages {
		for j, period := range surface.Periods {
			rows = append(rows, parquet.GraduatedRate{
				Age:       int32(age),
				Period:    int32(period),
				RawRate:   surface.RawRates.At(i, j),
				Graduated: surface.Rates.At(i, j),
			})
		}
	}
	if err := parquet.WriteGraduatedRatesParquet(rows, path); err != nil {
		return err
	}
	logParquetWritten("Parquet graduation results", path)
	return nil
}
