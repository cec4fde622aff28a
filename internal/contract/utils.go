package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Fit quality label constants.
const (
	ExcellentValue = "Excellent" // Leading component captures nearly all variance
	GoodValue      = "Good"
	FairValue      = "Fair"
	PoorValue      = "Poor" // Rank-1 structure is a questionable description
)

// Color variables for console output.
var (
	ExcellentColor = color.New(color.FgGreen, color.Bold)
	GoodColor      = color.New(color.FgCyan)
	FairColor      = color.New(color.FgYellow)
	PoorColor      = color.New(color.FgRed, color.Bold)
)

// GetPlainLabel returns a plain text label grading a fraction-of-variance
// value. This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(explained float64) string {
	switch {
	case explained >= 0.95:
		return ExcellentValue
	case explained >= 0.85:
		return GoodValue
	case explained >= 0.70:
		return FairValue
	default:
		return PoorValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the
// appropriate color.
func GetColorLabel(explained float64) string {
	text := GetPlainLabel(explained)

	switch text {
	case ExcellentValue:
		return ExcellentColor.Sprint(text)
	case GoodValue:
		return GoodColor.Sprint(text)
	case FairValue:
		return FairColor.Sprint(text)
	default: // "Poor"
		return PoorColor.Sprint(text)
	}
}

// ParseBoolFlag interprets the yes/no style string flags used for emoji and
// color toggles.
func ParseBoolFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "1", "on":
		return true
	default:
		return false
	}
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogWarnf logs a formatted warning message to stderr.
func LogWarnf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn "+format+"\n", args...)
}

// SelectOutputFile returns the file to write results to: the named file if
// set, stdout otherwise.
func SelectOutputFile(outputFile string) (*os.File, error) {
	if outputFile == "" {
		return os.Stdout, nil
	}
	file, err := os.Create(outputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, nil
}

// ProcessProfilingConfig validates the profiling prefix and fills in the
// profile settings.
func ProcessProfilingConfig(profile *ProfileConfig, prefix string) error {
	if prefix == "" {
		profile.Enabled = false
		return nil
	}
	if strings.ContainsAny(prefix, " \t") {
		return ConfigErrorf("profile prefix must not contain whitespace")
	}
	profile.Enabled = true
	profile.Prefix = prefix
	return nil
}
