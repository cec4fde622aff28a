// Package loader reads raw demographic observations from disk: long-format
// CSV tables of deaths and exposures, HMD-style fixed-column text files, and
// regulatory mortality tables.
package loader

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mfigueroa/lifecast/internal/contract"
	"github.com/mfigueroa/lifecast/schema"
)

// Record is one raw observation keyed by (period, age). Value is a death
// count or a person-years exposure depending on the source file.
type Record struct {
	Period int
	Age    int
	Value  float64
}

// LoadLongCSV reads a long-format CSV with header columns
// period,age,population,value and returns the records matching the requested
// sub-population inside the period window. Unparseable cells are validation
// errors, not skipped rows.
func LoadLongCSV(path string, pop schema.Population, periodMin, periodMax int) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, contract.ValidationErrorf("%s: no data rows", path)
	}

	cols, err := indexColumns(rows[0], "period", "age", "population", "value")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var records []Record
	for i, row := range rows[1:] {
		if !strings.EqualFold(row[cols["population"]], string(pop)) {
			continue
		}
		period, err := strconv.Atoi(strings.TrimSpace(row[cols["period"]]))
		if err != nil {
			return nil, contract.ValidationErrorf("%s line %d: bad period %q", path, i+2, row[cols["period"]])
		}
		if period < periodMin || period > periodMax {
			continue
		}
		age, err := strconv.Atoi(strings.TrimSpace(row[cols["age"]]))
		if err != nil {
			return nil, contract.ValidationErrorf("%s line %d: bad age %q", path, i+2, row[cols["age"]])
		}
		value, err := parseValue(row[cols["value"]])
		if err != nil {
			return nil, contract.ValidationErrorf("%s line %d: bad value %q", path, i+2, row[cols["value"]])
		}
		records = append(records, Record{Period: period, Age: age, Value: value})
	}
	return records, nil
}

// LoadHMD reads an HMD-style text file: two header lines, then
// whitespace-separated columns Year Age Female Male Total. The open age
// interval is written with a trailing '+' (e.g. "110+") and missing values
// as ".". One sex column is extracted.
func LoadHMD(path string, pop schema.Population, periodMin, periodMax int) ([]Record, error) {
	col, err := hmdColumn(pop)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var records []Record
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo <= 2 {
			continue // title line and column header
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 5 {
			return nil, contract.ValidationErrorf("%s line %d: expected 5 columns, got %d", path, lineNo, len(fields))
		}
		period, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, contract.ValidationErrorf("%s line %d: bad year %q", path, lineNo, fields[0])
		}
		if period < periodMin || period > periodMax {
			continue
		}
		age, err := strconv.Atoi(strings.TrimSuffix(fields[1], "+"))
		if err != nil {
			return nil, contract.ValidationErrorf("%s line %d: bad age %q", path, lineNo, fields[1])
		}
		value, err := parseValue(fields[col])
		if err != nil {
			return nil, contract.ValidationErrorf("%s line %d: bad value %q", path, lineNo, fields[col])
		}
		records = append(records, Record{Period: period, Age: age, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return records, nil
}

// RegulatoryRates reads a regulatory mortality table CSV with header columns
// age,qx_male,qx_female and returns the ages with the death probabilities of
// the requested sex.
func RegulatoryRates(path string, pop schema.Population) ([]int, []float64, error) {
	if pop == schema.TotalPopulation {
		return nil, nil, contract.ConfigErrorf("regulatory tables publish per-sex rates; choose male or female")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, nil, contract.ValidationErrorf("%s: no data rows", path)
	}

	qxCol := fmt.Sprintf("qx_%s", pop)
	cols, err := indexColumns(rows[0], "age", qxCol)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	ages := make([]int, 0, len(rows)-1)
	qx := make([]float64, 0, len(rows)-1)
	for i, row := range rows[1:] {
		age, err := strconv.Atoi(strings.TrimSpace(row[cols["age"]]))
		if err != nil {
			return nil, nil, contract.ValidationErrorf("%s line %d: bad age %q", path, i+2, row[cols["age"]])
		}
		q, err := parseValue(row[cols[qxCol]])
		if err != nil || math.IsNaN(q) {
			return nil, nil, contract.ValidationErrorf("%s line %d: bad rate %q", path, i+2, row[cols[qxCol]])
		}
		ages = append(ages, age)
		qx = append(qx, q)
	}
	return ages, qx, nil
}

// indexColumns maps required header names to their positions,
// case-insensitively.
func indexColumns(header []string, required ...string) (map[string]int, error) {
	cols := make(map[string]int, len(required))
	for _, want := range required {
		found := false
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				cols[want] = i
				found = true
				break
			}
		}
		if !found {
			return nil, contract.ValidationErrorf("missing column %q in header %v", want, header)
		}
	}
	return cols, nil
}

// parseValue parses a numeric cell. The HMD missing marker "." becomes NaN
// so the dataset builder can reject it with cell-level context.
func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "." {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// hmdColumn returns the field index of a sex column in an HMD row
// (Year Age Female Male Total).
func hmdColumn(pop schema.Population) (int, error) {
	switch pop {
	case schema.FemalePopulation:
		return 2, nil
	case schema.MalePopulation:
		return 3, nil
	case schema.TotalPopulation:
		return 4, nil
	default:
		return 0, contract.ConfigErrorf("unknown population %q", pop)
	}
}
