package plugins

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
	"github.com/dehvCurtis/rustdefend/internal/rustsrc"
)

// solMissingSigner flags functions that mutate account state through raw
// AccountInfo parameters without verifying is_signer.
type solMissingSigner struct{}

func (d *solMissingSigner) Meta() model.DetectorInfo {
	return model.DetectorInfo{
		ID:          "SOL-001",
		Name:        "missing-signer-check",
		Description: "Detects functions accepting AccountInfo without verifying is_signer",
		Severity:    model.SeverityCritical,
		Confidence:  model.ConfidenceHigh,
		Chain:       model.ChainSolana,
		Check:       model.CheckSigner,
	}
}

func (d *solMissingSigner) Detect(ctx *analysis.FileContext) []model.Finding {
	// Framework internals handle signer checks architecturally.
	if isFrameworkPath(ctx.Path) {
		return nil
	}

	var findings []model.Finding
	for i := range ctx.File.Functions {
		fn := &ctx.File.Functions[i]
		if fn.IsTest() || isInternalHelperName(fn.Name) || isDispatchHandlerName(fn.Name) ||
			isCpiWrapperName(fn.Name) || isUtilityName(fn.Name) {
			continue
		}
		// Anchor's typed accounts enforce the constraint at deserialization.
		if strings.Contains(fn.Signature, "Signer") || strings.Contains(fn.Signature, "Context<") ||
			strings.Contains(fn.Body, "Signer<") {
			continue
		}

		params := unvalidatedAccountParams(fn)
		if len(params) == 0 {
			continue
		}
		hasSignerCheck := bodyContainsAny(fn, "is_signer", "has_signer")
		hasMutations := bodyContainsAny(fn, "try_borrow_mut", "borrow_mut", "serialize", "invoke")
		if hasSignerCheck || !hasMutations {
			continue
		}

		quoted := make([]string, len(params))
		for j, p := range params {
			quoted[j] = "'" + p + "'"
		}
		findings = append(findings, finding(d.Meta(), ctx, fn, fn.StartLine,
			fmt.Sprintf("Function '%s' accepts AccountInfo %s without verifying is_signer",
				fn.Name, strings.Join(quoted, ", ")),
			"Add `if !account.is_signer { return Err(...) }` or use Anchor's `Signer<'info>` type"))
	}
	return findings
}

// unvalidatedAccountParams returns the AccountInfo parameter names that look
// like authority accounts (not program ids, sysvars, or data accounts).
func unvalidatedAccountParams(fn *rustsrc.Function) []string {
	var out []string
	for _, p := range fn.Params {
		if !strings.Contains(p.Type, "AccountInfo") {
			continue
		}
		// &[AccountInfo] is the standard instruction account array.
		if strings.Contains(p.Type, "[") || strings.Contains(p.Type, "Vec") {
			continue
		}
		if isNonSignerParamName(p.Name) {
			continue
		}
		out = append(out, p.Name)
	}
	return out
}

func isFrameworkPath(path string) bool {
	for _, frag := range []string{"spl-token", "spl_token", "anchor-lang", "anchor_lang",
		"anchor-spl", "anchor_spl", "solana-program", "solana_program"} {
		if strings.Contains(path, frag) {
			return true
		}
	}
	return false
}

// isInternalHelperName: underscored and inner_/do_/impl_/handle_ helpers are
// checked at their call sites, not inside.
func isInternalHelperName(name string) bool {
	return strings.HasPrefix(name, "_") ||
		strings.HasPrefix(name, "inner_") ||
		strings.HasPrefix(name, "do_") ||
		strings.HasPrefix(name, "impl_") ||
		strings.HasPrefix(name, "handle_")
}

// isDispatchHandlerName: SPL-style sub-processors are dispatched from a
// process_instruction entry that validates the signer first.
func isDispatchHandlerName(name string) bool {
	lower := strings.ToLower(name)
	if lower == "process_instruction" {
		return false
	}
	return strings.HasPrefix(lower, "process_") || strings.HasPrefix(lower, "execute_")
}

// isCpiWrapperName: CPI wrappers forward authority through invoke_signed;
// signer validation is the caller's job.
func isCpiWrapperName(name string) bool {
	lower := strings.ToLower(name)
	switch lower {
	case "transfer", "burn", "mint_to", "freeze", "thaw", "approve", "revoke",
		"close", "close_account", "set_authority", "create_account", "topup":
		return true
	}
	return strings.HasPrefix(lower, "transfer_") ||
		strings.HasPrefix(lower, "burn_") ||
		strings.HasPrefix(lower, "mint_") ||
		strings.HasPrefix(lower, "create_") ||
		strings.HasPrefix(lower, "close_") ||
		strings.HasPrefix(lower, "set_") ||
		strings.HasSuffix(lower, "_tokens") ||
		strings.HasSuffix(lower, "_account") ||
		strings.HasSuffix(lower, "_fees")
}

// isUtilityName: serialization and parsing helpers are not entry points.
func isUtilityName(name string) bool {
	lower := strings.ToLower(name)
	for _, frag := range []string{"serialize", "deserialize", "pack", "unpack",
		"parse", "validate", "verify", "check", "from_account", "to_account"} {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// isNonSignerParamName: iterators, program ids, sysvars, and data accounts
// are never expected to sign.
func isNonSignerParamName(name string) bool {
	lower := strings.ToLower(name)
	for _, frag := range []string{"program", "system", "rent", "clock", "token",
		"mint", "metadata", "associated", "sysvar", "pda", "vault", "pool",
		"config", "state", "data", "dest", "source"} {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
