package plugins

import (
	"fmt"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
)

// inkIntegerOverflow flags unchecked arithmetic inside ink! contracts.
type inkIntegerOverflow struct{}

func (d *inkIntegerOverflow) Meta() model.DetectorInfo {
	return model.DetectorInfo{
		ID:          "INK-001",
		Name:        "integer-overflow",
		Description: "Detects unchecked arithmetic operations in ink! contract logic",
		Severity:    model.SeverityMedium,
		Confidence:  model.ConfidenceMedium,
		Chain:       model.ChainInk,
		Check:       model.CheckInputValidation,
	}
}

func (d *inkIntegerOverflow) Detect(ctx *analysis.FileContext) []model.Finding {
	var findings []model.Finding
	for i := range ctx.File.Functions {
		fn := &ctx.File.Functions[i]
		if fn.IsTest() || isPackFunction(fn.Name) {
			continue
		}
		for _, hit := range uncheckedArithmetic(fn) {
			if guardedBefore(fn, hit) {
				continue
			}
			f := finding(d.Meta(), ctx, fn, hit.line,
				fmt.Sprintf("Unchecked arithmetic '%s %s %s' in function '%s' may overflow",
					hit.left, hit.op, hit.right, fn.Name),
				"Use checked_add/checked_sub and surface the overflow as a contract error")
			if hit.division {
				f.Confidence = model.ConfidenceLow
			}
			f.Column = columnOf(ctx, hit.line, hit.op)
			findings = append(findings, f)
		}
	}
	return findings
}
