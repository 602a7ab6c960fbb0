package plugins

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
	"github.com/dehvCurtis/rustdefend/internal/rustsrc"
)

// cwMissingSenderCheck flags execute handlers that mutate storage without
// ever consulting info.sender. Any address can then invoke privileged state
// transitions.
type cwMissingSenderCheck struct{}

func (d *cwMissingSenderCheck) Meta() model.DetectorInfo {
	return model.DetectorInfo{
		ID:          "CW-003",
		Name:        "missing-sender-check",
		Description: "Detects execute handlers mutating storage without checking info.sender",
		Severity:    model.SeverityCritical,
		Confidence:  model.ConfidenceMedium,
		Chain:       model.ChainCosmWasm,
		Check:       model.CheckSigner,
	}
}

func (d *cwMissingSenderCheck) Detect(ctx *analysis.FileContext) []model.Finding {
	var findings []model.Finding
	for i := range ctx.File.Functions {
		fn := &ctx.File.Functions[i]
		if fn.IsTest() || isInternalHelperName(fn.Name) {
			continue
		}
		if !isExecuteHandler(fn) {
			continue
		}
		mutatesStorage := bodyContainsAny(fn, ".save(", ".update(", ".remove(")
		if !mutatesStorage {
			continue
		}
		if strings.Contains(fn.Body, "sender") {
			continue
		}
		// Instantiate and query entry points have no authorization story here.
		if strings.Contains(strings.ToLower(fn.Name), "instantiate") ||
			strings.Contains(strings.ToLower(fn.Name), "query") {
			continue
		}
		findings = append(findings, finding(d.Meta(), ctx, fn, fn.StartLine,
			fmt.Sprintf("Execute handler '%s' mutates storage without checking info.sender", fn.Name),
			"Compare info.sender against the stored admin/owner before mutating state"))
	}
	return findings
}

// isExecuteHandler matches the entry point dispatching ExecuteMsg and the
// per-variant handlers it calls (which conventionally take MessageInfo).
func isExecuteHandler(fn *rustsrc.Function) bool {
	if strings.Contains(fn.Signature, "ExecuteMsg") {
		return true
	}
	lower := strings.ToLower(fn.Name)
	if !strings.HasPrefix(lower, "execute") && !strings.HasPrefix(lower, "try_") {
		return false
	}
	return strings.Contains(fn.Signature, "MessageInfo") || strings.Contains(fn.Signature, "DepsMut")
}
