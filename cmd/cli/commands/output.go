package commands

import (
	"fmt"
	"io"

	"github.com/jakechorley/shift-rules/pkg/core/model"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

func statusColor(status model.OverallStatus) string {
	switch status {
	case model.StatusFailed:
		return colorRed
	case model.StatusWarning:
		return colorYellow
	default:
		return colorGreen
	}
}

func severityColor(severity model.Severity) string {
	switch severity {
	case model.SeverityError:
		return colorRed
	case model.SeverityWarning:
		return colorYellow
	default:
		return colorDim
	}
}

// confidenceColor flags suggestions that could not be staffed
func confidenceColor(confidence, shortageConfidence float64) string {
	switch {
	case confidence <= shortageConfidence:
		return colorRed
	case confidence < 0.6:
		return colorYellow
	default:
		return colorGreen
	}
}

func printResult(w io.Writer, result model.ValidationResult) {
	fmt.Fprintf(w, "Status: %s%s%s\n", statusColor(result.OverallStatus), result.OverallStatus, colorReset)
	if len(result.Violations) == 0 {
		fmt.Fprintln(w, "No violations.")
		return
	}

	fmt.Fprintf(w, "\nViolations (%d):\n", len(result.Violations))
	for _, v := range result.Violations {
		fmt.Fprintf(w, "  %s%-7s%s %-25s %s\n", severityColor(v.Severity), v.Severity, colorReset, v.Rule, v.Message)
	}
}
