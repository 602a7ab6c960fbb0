package plugins

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
)

// solCheckedArithmeticUnwrap flags checked_* arithmetic immediately
// unwrapped: the overflow branch becomes a panic, defeating the point of
// checking.
type solCheckedArithmeticUnwrap struct{}

func (d *solCheckedArithmeticUnwrap) Meta() model.DetectorInfo {
	return model.DetectorInfo{
		ID:          "SOL-010",
		Name:        "checked-arithmetic-unwrap",
		Description: "Detects checked arithmetic whose result is unwrapped, turning overflow into a panic",
		Severity:    model.SeverityMedium,
		Confidence:  model.ConfidenceHigh,
		Chain:       model.ChainSolana,
	}
}

func (d *solCheckedArithmeticUnwrap) Detect(ctx *analysis.FileContext) []model.Finding {
	var findings []model.Finding
	for i := range ctx.File.Functions {
		fn := &ctx.File.Functions[i]
		if fn.IsTest() {
			continue
		}
		if !strings.Contains(fn.Body, "checked_") {
			continue
		}
		visitBodyLines(fn, func(line int, text string) {
			if !strings.Contains(text, "checked_") {
				return
			}
			if strings.Contains(text, ".unwrap()") || strings.Contains(text, ".expect(") {
				findings = append(findings, finding(d.Meta(), ctx, fn, line,
					fmt.Sprintf("checked arithmetic unwrapped in function '%s'; overflow becomes a panic", fn.Name),
					"Propagate the None case with ok_or(...)? instead of unwrap/expect"))
			}
		})
	}
	return findings
}
