package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/mfigueroa/lifecast/internal/contract"
	"github.com/mfigueroa/lifecast/schema"
)

// PrintPremiumResults outputs a net premium quote, dispatching based on the
// output format configured. Parquet is not offered here: a single quote has
// no columnar payload, so it falls through to the table writer.
func PrintPremiumResults(quote schema.PremiumQuote, period int, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := printJSONResultsForPremium(quote, period, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printCSVResultsForPremium(quote, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePremiumTable(quote, period, cfg, fmtFloat, duration, w)
		}, "Wrote premium quote")
	}
	return nil
}

// writePremiumTable renders the quote as a name/value table.
func writePremiumTable(quote schema.PremiumQuote, period int, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	t := tablewriter.NewWriter(writer)
	t.Header([]string{"Quantity", "Value"})
	t.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	data := [][]string{
		{"Whole life insurance", fmtFloat(quote.WholeLife)},
		{fmt.Sprintf("Term insurance (%dy)", quote.Term), fmtFloat(quote.TermInsurance)},
		{fmt.Sprintf("Pure endowment (%dy)", quote.Term), fmtFloat(quote.PureEndowment)},
		{fmt.Sprintf("Endowment (%dy)", quote.Term), fmtFloat(quote.Endowment)},
		{"Whole life annuity-due", fmtFloat(quote.AnnuityDue)},
		{"Net annual premium", fmtFloat(quote.NetAnnualPremium)},
	}
	if err := t.Bulk(data); err != nil {
		return err
	}
	if err := t.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Issue age %d, period %d, interest %s per unit sum assured\n",
		quote.IssueAge, period, fmtFloat(quote.Interest)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Pricing completed in %v with %d workers\n", duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}

// printJSONResultsForPremium writes the quote with its target period.
func printJSONResultsForPremium(quote schema.PremiumQuote, period int, cfg *contract.Config) error {
	type JSONPremiumResult struct {
		Period int `json:"period"`
		schema.PremiumQuote
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, JSONPremiumResult{Period: period, PremiumQuote: quote})
	}, "Wrote JSON premium quote")
}

// printCSVResultsForPremium writes the quote as a single record.
func printCSVResultsForPremium(quote schema.PremiumQuote, cfg *contract.Config, fmtFloat func(float64) string) error {
	header := []string{
		"issue_age", "term", "interest",
		"whole_life", "term_insurance", "pure_endowment", "endowment",
		"annuity_due", "net_annual_premium",
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			return csvWriter.Write([]string{
				fmt.Sprintf("%d", quote.IssueAge),
				fmt.Sprintf("%d", quote.Term),
				fmtFloat(quote.Interest),
				fmtFloat(quote.WholeLife),
				fmtFloat(quote.TermInsurance),
				fmtFloat(quote.PureEndowment),
				fmtFloat(quote.Endowment),
				fmtFloat(quote.AnnuityDue),
				fmtFloat(quote.NetAnnualPremium),
			})
		})
	}, "Wrote CSV premium quote")
}
