package plugins

import (
	"fmt"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
)

// solIntegerOverflow flags unchecked arithmetic in program logic. Solana
// programs are compiled in release mode where integer overflow wraps
// silently, so balance math must use the checked_* family.
type solIntegerOverflow struct{}

func (d *solIntegerOverflow) Meta() model.DetectorInfo {
	return model.DetectorInfo{
		ID:          "SOL-003",
		Name:        "integer-overflow",
		Description: "Detects unchecked arithmetic operations on integer types",
		Severity:    model.SeverityCritical,
		Confidence:  model.ConfidenceMedium,
		Chain:       model.ChainSolana,
		Check:       model.CheckInputValidation,
	}
}

func (d *solIntegerOverflow) Detect(ctx *analysis.FileContext) []model.Finding {
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
				"Use checked_add/checked_sub/checked_mul and handle the None case")
			// Division cannot overflow, only divide by zero.
			if hit.division {
				f.Confidence = model.ConfidenceLow
			}
			f.Column = columnOf(ctx, hit.line, hit.op)
			findings = append(findings, f)
		}
	}
	return findings
}
