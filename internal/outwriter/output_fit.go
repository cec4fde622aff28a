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

// PrintFitResults outputs a fitted factor model, dispatching based on the
// output format configured.
func PrintFitResults(model *schema.FactorModel, diag schema.FitDiagnostics, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForFit(model, diag, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForFit(model, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := printParquetResultsForFit(model, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFitTables(model, diag, cfg, fmtFloat, duration, w)
		}, "Wrote fit tables")
	}
	return nil
}

// writeFitTables renders the age components and the time index as two
// human-readable tables, followed by the diagnostics summary.
func writeFitTables(model *schema.FactorModel, diag schema.FitDiagnostics, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	ageTable := tablewriter.NewWriter(writer)
	ageTable.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Header.Formatting.AutoFormat = tw.Off
		tcfg.Row.Alignment.Global = tw.AlignRight
	})
	ageTable.Header([]string{"Age", "Profile (ax)", "Sensitivity (bx)"})
	var ageRows [][]string
	for i, age := range model.Ages {
		ageRows = append(ageRows, []string{
			strconv.Itoa(age),
			fmtFloat(model.Ax[i]),
			fmtFloat(model.Bx[i]),
		})
	}
	if err := ageTable.Bulk(ageRows); err != nil {
		return err
	}
	if err := ageTable.Render(); err != nil {
		return err
	}

	indexTable := tablewriter.NewWriter(writer)
	indexTable.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Header.Formatting.AutoFormat = tw.Off
		tcfg.Row.Alignment.Global = tw.AlignRight
	})
	indexTable.Header([]string{"Period", "Index (kt)"})
	var indexRows [][]string
	for t, period := range model.Periods {
		indexRows = append(indexRows, []string{
			strconv.Itoa(period),
			fmtFloat(model.Kt[t]),
		})
	}
	if err := indexTable.Bulk(indexRows); err != nil {
		return err
	}
	if err := indexTable.Render(); err != nil {
		return err
	}

	label := contract.GetColorLabel(model.ExplainedVariance)
	if !cfg.UseColors {
		label = contract.GetPlainLabel(model.ExplainedVariance)
	}
	if _, err := fmt.Fprintf(writer, "Explained variance: %s (%s) | log-space RMSE: %s | max abs error: %s\n",
		fmtFloat(diag.ExplainedVariance), label, fmtFloat(diag.RMSE), fmtFloat(diag.MaxAbsError)); err != nil {
		return err
	}
	if model.Reestimated {
		if _, err := fmt.Fprintf(writer, "Time index re-estimated against death totals (%d fallback periods)\n", len(model.FallbackPeriods)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "Fit completed in %v with %d workers\n", duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}

// printJSONResultsForFit handles opening the file and calling the JSON writer.
func printJSONResultsForFit(model *schema.FactorModel, diag schema.FitDiagnostics, cfg *contract.Config) error {
	type JSONFitResult struct {
		*schema.FactorModel
		Diagnostics schema.FitDiagnostics `json:"diagnostics"`
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, JSONFitResult{FactorModel: model, Diagnostics: diag})
	}, "Wrote JSON fit results")
}

// printCSVResultsForFit writes the model in long format: one labeled value
// per component row.
func printCSVResultsForFit(model *schema.FactorModel, cfg *contract.Config, fmtFloat func(float64) string) error {
	header := []string{"component", "label", "value"}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, row := range modelComponents(model) {
				rec := []string{row.Component, strconv.Itoa(int(row.Label)), fmtFloat(row.Value)}
				if err := csvWriter.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV fit results")
}

// printParquetResultsForFit writes the long-format component rows to the
// configured Parquet file.
func printParquetResultsForFit(model *schema.FactorModel, cfg *contract.Config) error {
	path, err := requireParquetPath(cfg)
	if err != nil {
		return err
	}
	if err := parquet.WriteModelComponentsParquet(modelComponents(model), path); err != nil {
		return err
	}
	logParquetWritten("Parquet fit results", path)
	return nil
}

// modelComponents flattens the model vectors into long-format rows.
func modelComponents(model *schema.FactorModel) []parquet.ModelComponent {
	rows := make([]parquet.ModelComponent, 0, 2*len(model.Ages)+len(model.Periods))
	for i, age := range model.Ages {
		rows = append(rows, parquet.ModelComponent{Component: "ax", Label: int32(age), Value: model.Ax[i]})
	}
	for i, age := range model.Ages {
		rows = append(rows, parquet.ModelComponent{Component: "bx", Label: int32(age), Value: model.Bx[i]})
	}
	for t, period := range model.Periods {
		rows = append(rows, parquet.ModelComponent{Component: "kt", Label: int32(period), Value: model.Kt[t]})
	}
	return rows
}
