package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/mfigueroa/lifecast/core/project"
	"github.com/mfigueroa/lifecast/internal/contract"
	"github.com/mfigueroa/lifecast/internal/parquet"
	"github.com/mfigueroa/lifecast/schema"
)

// Simulation interval bounds shown alongside the central path.
const (
	lowerQuantile = 0.025
	upperQuantile = 0.975
)

// PrintProjectionResults outputs the index forecast, dispatching based on the
// output format configured.
func PrintProjectionResults(proj *project.Projection, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	rows, err := projectionRows(proj)
	if err != nil {
		return err
	}

	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForProjection(proj, rows, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForProjection(rows, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := printParquetResultsForProjection(rows, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProjectionTable(proj, rows, cfg, fmtFloat, duration, w)
		}, "Wrote projection table")
	}
	return nil
}

// projectionRows assembles one row per horizon step, with interval bounds
// when the projection carries simulations.
func projectionRows(proj *project.Projection) ([]parquet.ProjectedIndex, error) {
	rows := make([]parquet.ProjectedIndex, proj.Horizon)
	for h := range proj.Horizon {
		rows[h] = parquet.ProjectedIndex{
			Period:  int32(proj.Periods[h]),
			Central: proj.Central[h],
		}
	}
	if proj.Paths == nil {
		return rows, nil
	}

	lower, err := proj.Quantile(lowerQuantile)
	if err != nil {
		return nil, err
	}
	upper, err := proj.Quantile(upperQuantile)
	if err != nil {
		return nil, err
	}
	for h := range proj.Horizon {
		lo, hi := lower[h], upper[h]
		rows[h].Lower = &lo
		rows[h].Upper = &hi
	}
	return rows, nil
}

// writeProjectionTable renders the forecast table plus the random-walk
// parameter summary.
func writeProjectionTable(proj *project.Projection, rows []parquet.ProjectedIndex, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	headers := []string{"Period", "Central (kt)"}
	if proj.Paths != nil {
		headers = append(headers, "2.5%", "97.5%")
	}

	table := tablewriter.NewWriter(writer)
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Header.Formatting.AutoFormat = tw.Off
		tcfg.Row.Alignment.Global = tw.AlignRight
	})
	table.Header(headers)

	var data [][]string
	for _, r := range rows {
		row := []string{strconv.Itoa(int(r.Period)), fmtFloat(r.Central)}
		if r.Lower != nil && r.Upper != nil {
			row = append(row, fmtFloat(*r.Lower), fmtFloat(*r.Upper))
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Random walk: drift=%s sigma=%s", fmtFloat(proj.Drift), fmtFloat(proj.Sigma)); err != nil {
		return err
	}
	if proj.Paths != nil {
		if _, err := fmt.Fprintf(writer, " | %d simulations, seed %d", proj.Simulations, proj.Seed); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "\nProjection completed in %v with %d workers\n", duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}

// printJSONResultsForProjection writes the parameters and the per-horizon rows.
func printJSONResultsForProjection(proj *project.Projection, rows []parquet.ProjectedIndex, cfg *contract.Config) error {
	type JSONProjectedIndex struct {
		Period  int      `json:"period"`
		Central float64  `json:"central"`
		Lower   *float64 `json:"lower,omitempty"`
		Upper   *float64 `json:"upper,omitempty"`
	}
	type JSONProjectionResult struct {
		Drift       float64              `json:"drift"`
		Sigma       float64              `json:"sigma"`
		Simulations int                  `json:"simulations"`
		Seed        uint64               `json:"seed"`
		Index       []JSONProjectedIndex `json:"index"`
	}

	result := JSONProjectionResult{
		Drift:       proj.Drift,
		Sigma:       proj.Sigma,
		Simulations: proj.Simulations,
		Seed:        proj.Seed,
	}
	for _, r := range rows {
		result.Index = append(result.Index, JSONProjectedIndex{
			Period:  int(r.Period),
			Central: r.Central,
			Lower:   r.Lower,
			Upper:   r.Upper,
		})
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, result)
	}, "Wrote JSON projection results")
}

// printCSVResultsForProjection writes the per-horizon rows; interval columns
// are empty when simulation is off.
func printCSVResultsForProjection(rows []parquet.ProjectedIndex, cfg *contract.Config, fmtFloat func(float64) string) error {
	header := []string{"period", "central", "lower", "upper"}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, r := range rows {
				rec := []string{strconv.Itoa(int(r.Period)), fmtFloat(r.Central), "", ""}
				if r.Lower != nil && r.Upper != nil {
					rec[2] = fmtFloat(*r.Lower)
					rec[3] = fmtFloat(*r.Upper)
				}
				if err := csvWriter.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV projection results")
}

// printParquetResultsForProjection writes the per-horizon rows to the
// configured Parquet file.
func printParquetResultsForProjection(rows []parquet.ProjectedIndex, cfg *contract.Config) error {
	path, err := requireParquetPath(cfg)
	if err != nil {
		return err
	}
	if err := parquet.WriteProjectedIndexParquet(rows, path); err != nil {
		return err
	}
	logParquetWritten("Parquet projection results", path)
	return nil
}
