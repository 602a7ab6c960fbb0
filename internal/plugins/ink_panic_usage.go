package plugins

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
)

// inkPanicUsage flags unwrap/expect/panic! inside ink! messages and
// constructors. A panic traps the whole call and burns the caller's gas
// instead of returning a typed error.
type inkPanicUsage struct{}

func (d *inkPanicUsage) Meta() model.DetectorInfo {
	return model.DetectorInfo{
		ID:          "INK-007",
		Name:        "panic-in-message",
		Description: "Detects unwrap/expect/panic! in ink! messages and constructors",
		Severity:    model.SeverityHigh,
		Confidence:  model.ConfidenceHigh,
		Chain:       model.ChainInk,
	}
}

func (d *inkPanicUsage) Detect(ctx *analysis.FileContext) []model.Finding {
	var findings []model.Finding
	for i := range ctx.File.Functions {
		fn := &ctx.File.Functions[i]
		if fn.IsTest() {
			continue
		}
		if !fn.HasAttr("ink(message)") && !fn.HasAttr("ink(constructor)") {
			continue
		}
		visitBodyLines(fn, func(line int, text string) {
			panics := strings.Contains(text, ".unwrap()") ||
				strings.Contains(text, ".expect(") ||
				strings.Contains(text, "panic!(") ||
				strings.Contains(text, "unreachable!(")
			if !panics {
				return
			}
			// unwrap_or / unwrap_or_else / unwrap_or_default are fine.
			if strings.Contains(text, "unwrap_or") {
				return
			}
			findings = append(findings, finding(d.Meta(), ctx, fn, line,
				fmt.Sprintf("Message '%s' panics instead of returning an error", fn.Name),
				"Return Result<_, Error> and map the failure with ok_or/map_err"))
		})
	}
	return findings
}
