package plugins

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
)

// nearIntegerOverflow flags unchecked arithmetic in contract methods. NEAR
// contracts built with `overflow-checks = true` panic on overflow, so the
// severity here stays moderate: the bug is a denial of service, not silent
// corruption.
type nearIntegerOverflow struct{}

func (d *nearIntegerOverflow) Meta() model.DetectorInfo {
	return model.DetectorInfo{
		ID:          "NEAR-001",
		Name:        "integer-overflow",
		Description: "Detects unchecked arithmetic that can abort or wrap depending on build profile",
		Severity:    model.SeverityMedium,
		Confidence:  model.ConfidenceMedium,
		Chain:       model.ChainNear,
		Check:       model.CheckInputValidation,
	}
}

func (d *nearIntegerOverflow) Detect(ctx *analysis.FileContext) []model.Finding {
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
				fmt.Sprintf("Unchecked arithmetic '%s %s %s' in function '%s'",
					hit.left, hit.op, hit.right, fn.Name),
				"Use checked_add/checked_sub and return a contract error instead of panicking")
			if hit.division {
				f.Confidence = model.ConfidenceLow
			}
			// Balance math on yoctoNEAR amounts is the dangerous case.
			if !strings.Contains(strings.ToLower(hit.left), "balance") &&
				!strings.Contains(strings.ToLower(hit.right), "balance") &&
				!strings.Contains(strings.ToLower(hit.left), "amount") &&
				!strings.Contains(strings.ToLower(hit.right), "amount") {
				f.Severity = model.SeverityLow
			}
			f.Column = columnOf(ctx, hit.line, hit.op)
			findings = append(findings, f)
		}
	}
	return findings
}
