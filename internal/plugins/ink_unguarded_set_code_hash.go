package plugins

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
)

// inkUnguardedSetCodeHash flags set_code_hash reachable without a caller
// check. set_code_hash swaps the contract's code in place, so an unguarded
// call site hands over the whole contract.
type inkUnguardedSetCodeHash struct{}

func (d *inkUnguardedSetCodeHash) Meta() model.DetectorInfo {
	return model.DetectorInfo{
		ID:          "INK-009",
		Name:        "unguarded-set-code-hash",
		Description: "Detects set_code_hash calls without a preceding caller check",
		Severity:    model.SeverityCritical,
		Confidence:  model.ConfidenceHigh,
		Chain:       model.ChainInk,
		Check:       model.CheckOwner,
	}
}

func (d *inkUnguardedSetCodeHash) Detect(ctx *analysis.FileContext) []model.Finding {
	var findings []model.Finding
	for i := range ctx.File.Functions {
		fn := &ctx.File.Functions[i]
		if fn.IsTest() {
			continue
		}
		if !strings.Contains(fn.Body, "set_code_hash") {
			continue
		}
		if strings.Contains(fn.Body, "caller()") || strings.Contains(fn.Body, "only_owner") ||
			strings.Contains(fn.Body, "ensure_owner") {
			continue
		}
		line := fn.StartLine
		visitBodyLines(fn, func(l int, text string) {
			if strings.Contains(text, "set_code_hash") && line == fn.StartLine {
				line = l
			}
		})
		findings = append(findings, finding(d.Meta(), ctx, fn, line,
			fmt.Sprintf("Function '%s' calls set_code_hash without verifying the caller", fn.Name),
			"Require self.env().caller() == self.owner before swapping the code hash"))
	}
	return findings
}
