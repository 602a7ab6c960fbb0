package plugins

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
)

// inkMissingCallerCheck flags #[ink(message)] methods that mutate contract
// storage without comparing self.env().caller() against anything.
type inkMissingCallerCheck struct{}

func (d *inkMissingCallerCheck) Meta() model.DetectorInfo {
	return model.DetectorInfo{
		ID:          "INK-002",
		Name:        "missing-caller-check",
		Description: "Detects state-mutating ink! messages without a caller check",
		Severity:    model.SeverityHigh,
		Confidence:  model.ConfidenceMedium,
		Chain:       model.ChainInk,
		Check:       model.CheckOwner,
	}
}

func (d *inkMissingCallerCheck) Detect(ctx *analysis.FileContext) []model.Finding {
	var findings []model.Finding
	for i := range ctx.File.Functions {
		fn := &ctx.File.Functions[i]
		if fn.IsTest() || !fn.HasAttr("ink(message)") {
			continue
		}
		// Only &mut self messages can touch storage.
		if !strings.Contains(fn.Signature, "&mut self") {
			continue
		}
		if strings.Contains(fn.Body, "caller()") || strings.Contains(fn.Body, "ensure_owner") ||
			strings.Contains(fn.Body, "only_owner") {
			continue
		}
		if !mutatesSelfState(fn.Body) {
			continue
		}
		// Messages any user may legitimately call on their own state.
		if isUserFacingMessageName(fn.Name) {
			continue
		}
		findings = append(findings, finding(d.Meta(), ctx, fn, fn.StartLine,
			fmt.Sprintf("Message '%s' mutates contract state without checking self.env().caller()", fn.Name),
			"Compare self.env().caller() against the stored owner before mutating state"))
	}
	return findings
}

func mutatesSelfState(body string) bool {
	if !strings.Contains(body, "self.") {
		return false
	}
	for _, frag := range []string{"= ", ".insert(", ".remove(", ".set(", ".push(", ".take("} {
		if strings.Contains(body, frag) {
			return true
		}
	}
	return false
}

// isUserFacingMessageName covers per-account operations where the caller acts
// on their own entry: token transfers, approvals, deposits.
func isUserFacingMessageName(name string) bool {
	lower := strings.ToLower(name)
	for _, frag := range []string{"transfer", "approve", "deposit", "withdraw_own",
		"claim", "register", "subscribe"} {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
