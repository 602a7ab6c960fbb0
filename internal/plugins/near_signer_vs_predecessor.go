package plugins

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
)

// nearSignerVsPredecessor flags access control built on signer_account_id.
// The signer is the origin of the whole transaction chain; in a cross-contract
// call a malicious intermediate contract inherits the victim's signer, so
// authorization must use predecessor_account_id.
type nearSignerVsPredecessor struct{}

func (d *nearSignerVsPredecessor) Meta() model.DetectorInfo {
	return model.DetectorInfo{
		ID:          "NEAR-002",
		Name:        "signer-instead-of-predecessor",
		Description: "Detects authorization decisions based on signer_account_id",
		Severity:    model.SeverityHigh,
		Confidence:  model.ConfidenceHigh,
		Chain:       model.ChainNear,
	}
}

func (d *nearSignerVsPredecessor) Detect(ctx *analysis.FileContext) []model.Finding {
	var findings []model.Finding
	for i := range ctx.File.Functions {
		fn := &ctx.File.Functions[i]
		if fn.IsTest() {
			continue
		}
		if !strings.Contains(fn.Body, "signer_account_id") {
			continue
		}
		visitBodyLines(fn, func(line int, text string) {
			if !strings.Contains(text, "signer_account_id") {
				return
			}
			// Only flag comparisons: logging or event fields are fine.
			if !strings.Contains(text, "==") && !strings.Contains(text, "!=") &&
				!strings.Contains(text, "assert") && !strings.Contains(text, "require!") {
				return
			}
			findings = append(findings, finding(d.Meta(), ctx, fn, line,
				fmt.Sprintf("Function '%s' authorizes using signer_account_id", fn.Name),
				"Use env::predecessor_account_id() for access control; the signer can be relayed through a malicious contract"))
		})
	}
	return findings
}
