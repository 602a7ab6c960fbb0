// Package report renders a scan result as text, JSON, or SARIF.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/model"
)

// Reporter writes a scan result to w.
type Reporter interface {
	Write(w io.Writer, result *model.ScanResult) error
}

// ForFormat returns the reporter for a format name.
func ForFormat(format string) (Reporter, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return &TextReporter{}, nil
	case "json":
		return &JSONReporter{}, nil
	case "sarif":
		return &SARIFReporter{}, nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// TextReporter prints findings grouped by file with a severity tally.
type TextReporter struct{}

func (r *TextReporter) Write(w io.Writer, result *model.ScanResult) error {
	if len(result.Findings) == 0 {
		fmt.Fprintln(w, "No findings.")
		return nil
	}

	byFile := map[string][]model.Finding{}
	var order []string
	for _, f := range result.Findings {
		if _, ok := byFile[f.File]; !ok {
			order = append(order, f.File)
		}
		byFile[f.File] = append(byFile[f.File], f)
	}

	for _, file := range order {
		fmt.Fprintf(w, "%s\n", file)
		for _, f := range byFile[file] {
			fmt.Fprintf(w, "  %s:%d [%s/%s] %s: %s\n",
				file, f.Line, strings.ToUpper(string(f.Severity)), f.Confidence, f.DetectorID, f.Message)
			if f.Snippet != "" {
				fmt.Fprintf(w, "      %s\n", strings.TrimSpace(f.Snippet))
			}
			if f.Recommendation != "" {
				fmt.Fprintf(w, "      fix: %s\n", f.Recommendation)
			}
		}
		fmt.Fprintln(w)
	}

	tally := map[model.Severity]int{}
	for _, f := range result.Findings {
		tally[f.Severity]++
	}
	fmt.Fprintf(w, "%d finding(s): %d critical, %d high, %d medium, %d low\n",
		len(result.Findings),
		tally[model.SeverityCritical], tally[model.SeverityHigh],
		tally[model.SeverityMedium], tally[model.SeverityLow])
	fmt.Fprintf(w, "scanned %d file(s), %d skipped\n",
		result.Summary.FilesScanned, result.Summary.FilesSkipped)
	return nil
}
