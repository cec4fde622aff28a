package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/mfigueroa/lifecast/core/lifetable"
	"github.com/mfigueroa/lifecast/internal/contract"
	"github.com/mfigueroa/lifecast/internal/parquet"
	"github.com/mfigueroa/lifecast/schema"
)

// PrintComparisonResults outputs a model-versus-regulatory table comparison,
// dispatching based on the output format configured.
func PrintComparisonResults(cmp *lifetable.Comparison, period int, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForComparison(cmp, period, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForComparison(cmp, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := printParquetResultsForComparison(cmp, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComparisonTable(cmp, period, cfg, fmtFloat, duration, w)
		}, "Wrote comparison table")
	}
	return nil
}

// writeComparisonTable renders per-age ratios with the RMSE summary.
func writeComparisonTable(cmp *lifetable.Comparison, period int, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	t := tablewriter.NewWriter(writer)
	t.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Header.Formatting.AutoFormat = tw.Off
		tcfg.Row.Alignment.Global = tw.AlignRight
	})
	t.Header([]string{"Age", "Reference qx", "Model qx", "Ratio", "Difference"})

	var data [][]string
	for i, age := range cmp.Ages {
		data = append(data, []string{
			strconv.Itoa(age),
			fmtFloat(cmp.BaseQx[i]),
			fmtFloat(cmp.OtherQx[i]),
			fmtFloat(cmp.Ratio[i]),
			fmtFloat(cmp.Difference[i]),
		})
	}
	if err := t.Bulk(data); err != nil {
		return err
	}
	if err := t.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Compared %d ages at period %d, RMSE %s\n",
		len(cmp.Ages), period, fmtFloat(cmp.RMSE)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Comparison completed in %v with %d workers\n", duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}

// printJSONResultsForComparison writes the comparison with its target period.
func printJSONResultsForComparison(cmp *lifetable.Comparison, period int, cfg *contract.Config) error {
	type JSONComparisonRow struct {
		Age        int     `json:"age"`
		BaseQx     float64 `json:"base_qx"`
		OtherQx    float64 `json:"other_qx"`
		Ratio      float64 `json:"ratio"`
		Difference float64 `json:"difference"`
	}
	type JSONComparisonResult struct {
		Period int                 `json:"period"`
		RMSE   float64             `json:"rmse"`
		Rows   []JSONComparisonRow `json:"rows"`
	}

	result := JSONComparisonResult{Period: period, RMSE: cmp.RMSE}
	for i, age := range cmp.Ages {
		result.Rows = append(result.Rows, JSONComparisonRow{
			Age:        age,
			BaseQx:     cmp.BaseQx[i],
			OtherQx:    cmp.OtherQx[i],
			Ratio:      cmp.Ratio[i],
			Difference: cmp.Difference[i],
		})
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, result)
	}, "Wrote JSON comparison results")
}

// printCSVResultsForComparison writes one row per compared age.
func printCSVResultsForComparison(cmp *lifetable.Comparison, cfg *contract.Config, fmtFloat func(float64) string) error {
	header := []string{"age", "base_qx", "other_qx", "ratio", "difference"}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for i, age := range cmp.Ages {
				rec := []string{
					strconv.Itoa(age),
					fmtFloat(cmp.BaseQx[i]),
					fmtFloat(cmp.OtherQx[i]),
					fmtFloat(cmp.Ratio[i]),
					fmtFloat(cmp.Difference[i]),
				}
				if err := csvWriter.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV comparison results")
}

// printParquetResultsForComparison writes one row per compared age to the
// configured Parquet file.
func printParquetResultsForComparison(cmp *lifetable.Comparison, cfg *contract.Config) error {
	path, err := requireParquetPath(cfg)
	if err != nil {
		return err
	}
	rows := make([]parquet.ComparisonRow, len(cmp.Ages))
	for i, age := range cmp.Ages {
		rows[i] = parquet.ComparisonRow{
			Age:        int32(age),
			BaseQx:     cmp.BaseQx[i],
			OtherQx:    cmp.OtherQx[i],
			Ratio:      cmp.Ratio[i],
			Difference: cmp.Difference[i],
		}
	}
	if err := parquet.WriteComparisonParquet(rows, path); err != nil {
		return err
	}
	logParquetWritten("Parquet comparison results", path)
	return nil
}
