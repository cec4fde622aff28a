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

// PrintTableResults outputs a survivorship table, dispatching based on the
// output format configured.
func PrintTableResults(table *lifetable.Table, period int, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForTable(table, period, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForTable(table, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := printParquetResultsForTable(table, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLifeTable(table, period, cfg, fmtFloat, duration, w)
		}, "Wrote life table")
	}
	return nil
}

// writeLifeTable renders the table with a survivor-count summary.
func writeLifeTable(table *lifetable.Table, period int, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	t := tablewriter.NewWriter(writer)
	t.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Header.Formatting.AutoFormat = tw.Off
		tcfg.Row.Alignment.Global = tw.AlignRight
	})
	t.Header([]string{"Age", "qx", "px", "lx", "dx"})

	var data [][]string
	for i, age := range table.Ages {
		data = append(data, []string{
			strconv.Itoa(age),
			fmtFloat(table.Qx[i]),
			fmtFloat(table.Px[i]),
			fmtFloat(table.Lx[i]),
			fmtFloat(table.Dx[i]),
		})
	}
	if err := t.Bulk(data); err != nil {
		return err
	}
	if err := t.Render(); err != nil {
		return err
	}

	expectancy, err := table.CompleteExpectation(table.Ages[0])
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Period %d, radix %s, life expectancy at age %d: %s years\n",
		period, fmtFloat(table.Radix), table.Ages[0], fmtFloat(expectancy)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Table built in %v with %d workers\n", duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}

// printJSONResultsForTable writes the table with its target period.
func printJSONResultsForTable(table *lifetable.Table, period int, cfg *contract.Config) error {
	type JSONLifeTableRow struct {
		Age       int     `json:"age"`
		Qx        float64 `json:"qx"`
		Px        float64 `json:"px"`
		Survivors float64 `json:"lx"`
		Deaths    float64 `json:"dx"`
	}
	type JSONLifeTableResult struct {
		Period int                `json:"period"`
		Radix  float64            `json:"radix"`
		Rows   []JSONLifeTableRow `json:"rows"`
	}

	result := JSONLifeTableResult{Period: period, Radix: table.Radix}
	for i, age := range table.Ages {
		result.Rows = append(result.Rows, JSONLifeTableRow{
			Age:       age,
			Qx:        table.Qx[i],
			Px:        table.Px[i],
			Survivors: table.Lx[i],
			Deaths:    table.Dx[i],
		})
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, result)
	}, "Wrote JSON life table")
}

// printCSVResultsForTable writes one row per age.
func printCSVResultsForTable(table *lifetable.Table, cfg *contract.Config, fmtFloat func(float64) string) error {
	header := []string{"age", "qx", "px", "lx", "dx"}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for i, age := range table.Ages {
				rec := []string{
					strconv.Itoa(age),
					fmtFloat(table.Qx[i]),
					fmtFloat(table.Px[i]),
					fmtFloat(table.Lx[i]),
					fmtFloat(table.Dx[i]),
				}
				if err := csvWriter.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV life table")
}

// printParquetResultsForTable writes one row per age to the configured
// Parquet file.
func printParquetResultsForTable(table *lifetable.Table, cfg *contract.Config) error {
	path, err := requireParquetPath(cfg)
	if err != nil {
		return err
	}
	rows := make([]parquet.LifeTableRow, table.NAges())
	for i, age := range table.Ages {
		rows[i] = parquet.LifeTableRow{
			Age:       int32(age),
			Qx:        table.Qx[i],
			Px:        table.Px[i],
			Survivors: table.Lx[i],
			Deaths:    table.Dx[i],
		}
	}
	if err := parquet.WriteLifeTableParquet(rows, path); err != nil {
		return err
	}
	logParquetWritten("Parquet life table", path)
	return nil
}
