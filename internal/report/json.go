package report

import (
	"encoding/json"
	"io"

	"github.com/dehvCurtis/rustdefend/internal/model"
)

// JSONReporter emits the ScanResult verbatim as indented JSON.
type JSONReporter struct{}

func (r *JSONReporter) Write(w io.Writer, result *model.ScanResult) error {
	out := *result
	if out.Findings == nil {
		out.Findings = []model.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&out)
}
