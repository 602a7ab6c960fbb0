package plugins

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
)

// solMissingOwner flags functions that read or deserialize account data
// without comparing the account's owner against the program id. A spoofed
// account owned by another program can otherwise masquerade as state.
type solMissingOwner struct{}

func (d *solMissingOwner) Meta() model.DetectorInfo {
	return model.DetectorInfo{
		ID:          "SOL-002",
		Name:        "missing-owner-check",
		Description: "Detects account data access without verifying the account owner",
		Severity:    model.SeverityHigh,
		Confidence:  model.ConfidenceMedium,
		Chain:       model.ChainSolana,
		Check:       model.CheckOwner,
	}
}

func (d *solMissingOwner) Detect(ctx *analysis.FileContext) []model.Finding {
	if isFrameworkPath(ctx.Path) {
		return nil
	}
	var findings []model.Finding
	for i := range ctx.File.Functions {
		fn := &ctx.File.Functions[i]
		if fn.IsTest() || isInternalHelperName(fn.Name) || isUtilityName(fn.Name) {
			continue
		}
		// Anchor's Account<'info, T> enforces ownership at deserialization.
		if strings.Contains(fn.Signature, "Account<") || strings.Contains(fn.Signature, "Context<") {
			continue
		}
		hasAccountParam := false
		for _, p := range fn.Params {
			if strings.Contains(p.Type, "AccountInfo") && !strings.Contains(p.Type, "[") {
				hasAccountParam = true
				break
			}
		}
		if !hasAccountParam {
			continue
		}
		readsData := bodyContainsAny(fn, "try_borrow_data", "try_borrow_mut_data", ".data.borrow", "try_from_slice", "unpack")
		if !readsData {
			continue
		}
		checksOwner := strings.Contains(fn.Body, "owner") &&
			bodyContainsAny(fn, "program_id", "key", "id()")
		if checksOwner {
			continue
		}
		findings = append(findings, finding(d.Meta(), ctx, fn, fn.StartLine,
			fmt.Sprintf("Function '%s' reads account data without verifying the account owner", fn.Name),
			"Compare `account.owner` against the expected program id before trusting account data"))
	}
	return findings
}
