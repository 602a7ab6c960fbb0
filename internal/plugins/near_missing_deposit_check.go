package plugins

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
)

// nearMissingDepositCheck flags #[payable] methods that never look at
// attached_deposit. Accepting NEAR without accounting for it either strands
// funds or lets callers skip payment entirely.
type nearMissingDepositCheck struct{}

func (d *nearMissingDepositCheck) Meta() model.DetectorInfo {
	return model.DetectorInfo{
		ID:          "NEAR-005",
		Name:        "missing-deposit-check",
		Description: "Detects #[payable] methods that ignore the attached deposit",
		Severity:    model.SeverityMedium,
		Confidence:  model.ConfidenceMedium,
		Chain:       model.ChainNear,
	}
}

func (d *nearMissingDepositCheck) Detect(ctx *analysis.FileContext) []model.Finding {
	var findings []model.Finding
	for i := range ctx.File.Functions {
		fn := &ctx.File.Functions[i]
		if fn.IsTest() || !fn.HasAttr("payable") {
			continue
		}
		if strings.Contains(fn.Body, "attached_deposit") {
			continue
		}
		// Delegation to a helper that does the accounting.
		if bodyContainsAny(fn, "assert_one_yocto", "require_deposit", "refund_deposit") {
			continue
		}
		findings = append(findings, finding(d.Meta(), ctx, fn, fn.StartLine,
			fmt.Sprintf("Payable method '%s' never checks env::attached_deposit()", fn.Name),
			"Read env::attached_deposit() and validate or refund the attached amount"))
	}
	return findings
}
