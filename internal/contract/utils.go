package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Fit label constants.
const (
	ExactValue = "Exact" // Exact or near-exact match
	CloseValue = "Close" // Close fit
	FairValue  = "Fair"  // Usable but noticeably off
	PoorValue  = "Poor"  // Target largely missed
)

// Color variables for console output.
var (
	ExactColor = color.New(color.FgGreen, color.Bold) // exactColor marks a near-perfect ration.
	CloseColor = color.New(color.FgCyan)              // closeColor marks a good everyday fit.
	FairColor  = color.New(color.FgYellow)            // fairColor marks a fit worth reviewing.
	PoorColor  = color.New(color.FgRed, color.Bold)   // poorColor marks a ration that misses the target.
)

// GetPlainLabel returns a plain text label describing how well the winning
// ration matches the target, based on its weighted RMSE. Lower is better.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(rmse float64) string {
	switch {
	case rmse < 1:
		return ExactValue
	case rmse < 10:
		return CloseValue
	case rmse < 50:
		return FairValue
	default:
		return PoorValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the
// appropriate color.
func GetColorLabel(rmse float64) string {
	text := GetPlainLabel(rmse)

	switch text {
	case ExactValue:
		return ExactColor.Sprint(text)
	case CloseValue:
		return CloseColor.Sprint(text)
	case FairValue:
		return FairColor.Sprint(text)
	default: // "Poor"
		return PoorColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based
// on the provided file path. It returns os.Stdout for an empty path.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
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

// GetDBFilePath returns the path to the SQLite DB file for catalog storage.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".rationer_catalog.db"
	}
	return filepath.Join(homeDir, ".rationer_catalog.db")
}

// TruncateName truncates a product name to a maximum width with an
// ellipsis suffix. Requires maxWidth > 3 so there is room for both the
// "..." and at least one character of content.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
