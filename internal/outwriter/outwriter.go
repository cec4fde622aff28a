// Package outwriter has output and writer logic for all result kinds.
package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/mfigueroa/lifecast/internal/contract"
)

// writeWithFile handles the common pattern of opening a file, writing to it,
// and cleaning up. It accepts a writer function that takes an io.Writer and
// returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// createFormatters creates the common formatter closures used across multiple
// output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	numFmt := "%.*f"
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf(numFmt, precision, v)
	}
	return fmtFloat, intFmt
}

// requireParquetPath checks that Parquet output has a destination file, since
// the format cannot stream to stdout.
func requireParquetPath(cfg *contract.Config) (string, error) {
	if cfg.OutputFile == "" {
		return "", contract.ConfigErrorf("parquet output requires --output-file")
	}
	return cfg.OutputFile, nil
}

// logParquetWritten reports a completed Parquet export on stderr, mirroring
// the file-output message writeWithFile emits.
func logParquetWritten(what, path string) {
	fmt.Fprintf(os.Stderr, "💾 Wrote %s to %s\n", what, path)
}

// getTableWidth resolves the terminal width for table layouts: an explicit
// override wins, then the detected terminal size, then a conservative default
// for narrow terminals and CI.
func getTableWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80
	}
	return detected
}

// maxPeriodColumns caps how many period columns a text-mode surface table
// shows, based on the available width. Structured outputs always carry the
// full surface.
func maxPeriodColumns(cfg *contract.Config, cellWidth int) int {
	available := getTableWidth(cfg) - 10 // age column plus borders
	columns := available / cellWidth
	if columns < 1 {
		return 1
	}
	return columns
}
