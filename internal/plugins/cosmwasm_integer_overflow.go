package plugins

import (
	"fmt"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
)

// cwIntegerOverflow flags unchecked arithmetic on plain integers in contract
// logic. Variables of cosmwasm-std's Uint128/Uint256 family are excluded:
// those types panic on overflow rather than wrapping.
type cwIntegerOverflow struct{}

func (d *cwIntegerOverflow) Meta() model.DetectorInfo {
	return model.DetectorInfo{
		ID:          "CW-001",
		Name:        "integer-overflow",
		Description: "Detects unchecked arithmetic on primitive integer types",
		Severity:    model.SeverityHigh,
		Confidence:  model.ConfidenceMedium,
		Chain:       model.ChainCosmWasm,
		Check:       model.CheckInputValidation,
	}
}

func (d *cwIntegerOverflow) Detect(ctx *analysis.FileContext) []model.Finding {
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
			if ctx.Types.IsSafeArithmeticType(rootIdent(hit.left)) ||
				ctx.Types.IsSafeArithmeticType(rootIdent(hit.right)) {
				continue
			}
			f := finding(d.Meta(), ctx, fn, hit.line,
				fmt.Sprintf("Unchecked arithmetic '%s %s %s' in function '%s' may overflow",
					hit.left, hit.op, hit.right, fn.Name),
				"Use checked_add/checked_sub or the Uint128 type, which errors on overflow")
			if hit.division {
				f.Confidence = model.ConfidenceLow
			}
			f.Column = columnOf(ctx, hit.line, hit.op)
			findings = append(findings, f)
		}
	}
	return findings
}
