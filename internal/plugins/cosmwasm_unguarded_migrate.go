package plugins

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
)

// cwUnguardedMigrate flags migrate entry points that neither authorize the
// caller nor check the stored contract version. An open migrate lets anyone
// replace contract state wholesale.
type cwUnguardedMigrate struct{}

// migrateAuthPatterns and migrateVersionPatterns are the accepted guard
// shapes; either one is enough to consider migrate protected.
var migrateAuthPatterns = []string{
	"info.sender", "sender ==", "is_admin", "assert_owner", "only_owner", "ensure_eq!",
}

var migrateVersionPatterns = []string{
	"get_contract_version", "set_contract_version", "CONTRACT_VERSION", "cw2::",
}

func (d *cwUnguardedMigrate) Meta() model.DetectorInfo {
	return model.DetectorInfo{
		ID:          "CW-010",
		Name:        "unguarded-migrate",
		Description: "Detects migrate entry points without authorization or version checks",
		Severity:    model.SeverityMedium,
		Confidence:  model.ConfidenceMedium,
		Chain:       model.ChainCosmWasm,
	}
}

func (d *cwUnguardedMigrate) Detect(ctx *analysis.FileContext) []model.Finding {
	var findings []model.Finding
	for i := range ctx.File.Functions {
		fn := &ctx.File.Functions[i]
		if fn.IsTest() {
			continue
		}
		if !strings.EqualFold(fn.Name, "migrate") && !fn.HasAttr("migrate") {
			continue
		}
		if bodyContainsAny(fn, migrateAuthPatterns...) || bodyContainsAny(fn, migrateVersionPatterns...) {
			continue
		}
		findings = append(findings, finding(d.Meta(), ctx, fn, fn.StartLine,
			fmt.Sprintf("Migrate entry point '%s' has no authorization or version check", fn.Name),
			"Gate migrate on the stored admin and verify cw2 contract version before mutating state"))
	}
	return findings
}
