package plugins

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
)

// nearMissingPrivateCallback flags promise callbacks exposed as public
// methods. Without #[private], anyone can invoke the callback directly and
// fake the result of the cross-contract call it was meant to resolve.
type nearMissingPrivateCallback struct{}

func (d *nearMissingPrivateCallback) Meta() model.DetectorInfo {
	return model.DetectorInfo{
		ID:          "NEAR-003",
		Name:        "missing-private-callback",
		Description: "Detects promise callback methods without the #[private] attribute",
		Severity:    model.SeverityHigh,
		Confidence:  model.ConfidenceHigh,
		Chain:       model.ChainNear,
	}
}

func (d *nearMissingPrivateCallback) Detect(ctx *analysis.FileContext) []model.Finding {
	var findings []model.Finding
	for i := range ctx.File.Functions {
		fn := &ctx.File.Functions[i]
		if fn.IsTest() {
			continue
		}
		if !isCallbackName(fn.Name) && !strings.Contains(fn.Signature, "PromiseResult") &&
			!strings.Contains(fn.Signature, "#[callback") {
			continue
		}
		if fn.HasAttr("private") {
			continue
		}
		// Manual guard inside the body counts.
		if strings.Contains(fn.Body, "predecessor_account_id") &&
			strings.Contains(fn.Body, "current_account_id") {
			continue
		}
		findings = append(findings, finding(d.Meta(), ctx, fn, fn.StartLine,
			fmt.Sprintf("Callback '%s' is publicly callable; missing #[private]", fn.Name),
			"Add #[private] so only the contract account itself can invoke the callback"))
	}
	return findings
}

func isCallbackName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "on_") ||
		strings.HasPrefix(lower, "callback_") ||
		strings.HasSuffix(lower, "_callback")
}
