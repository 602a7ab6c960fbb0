package plugins

import (
	"fmt"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
	"github.com/dehvCurtis/rustdefend/internal/rustsrc"
)

// cwMissingAddressValidation flags handlers that store a caller-supplied
// address string without passing it through deps.api.addr_validate. Malformed
// or wrong-chain addresses then live in state permanently.
type cwMissingAddressValidation struct{}

func (d *cwMissingAddressValidation) Meta() model.DetectorInfo {
	return model.DetectorInfo{
		ID:          "CW-004",
		Name:        "missing-address-validation",
		Description: "Detects caller-supplied addresses stored without addr_validate",
		Severity:    model.SeverityMedium,
		Confidence:  model.ConfidenceMedium,
		Chain:       model.ChainCosmWasm,
		Check:       model.CheckInputValidation,
	}
}

func (d *cwMissingAddressValidation) Detect(ctx *analysis.FileContext) []model.Finding {
	var findings []model.Finding
	for i := range ctx.File.Functions {
		fn := &ctx.File.Functions[i]
		if fn.IsTest() {
			continue
		}
		if strings.Contains(fn.Body, "addr_validate") || strings.Contains(fn.Body, "addr_humanize") {
			continue
		}
		addressParams := addressStringParams(fn)
		if len(addressParams) == 0 {
			continue
		}
		stored := false
		for _, p := range addressParams {
			if paramFlowsIntoStorage(fn.Body, p) {
				stored = true
				break
			}
		}
		if !stored {
			continue
		}
		findings = append(findings, finding(d.Meta(), ctx, fn, fn.StartLine,
			fmt.Sprintf("Function '%s' stores address parameter without deps.api.addr_validate", fn.Name),
			"Validate with `deps.api.addr_validate(&addr)?` before persisting"))
	}
	return findings
}

// addressStringParams returns String-typed parameters whose names suggest an
// address. Addr-typed parameters were already validated at deserialization.
func addressStringParams(fn *rustsrc.Function) []string {
	var out []string
	for _, p := range fn.Params {
		if !strings.Contains(p.Type, "String") && !strings.Contains(p.Type, "str") {
			continue
		}
		lower := strings.ToLower(p.Name)
		for _, frag := range []string{"addr", "address", "recipient", "owner", "admin", "contract"} {
			if strings.Contains(lower, frag) {
				out = append(out, p.Name)
				break
			}
		}
	}
	return out
}

func paramFlowsIntoStorage(body, param string) bool {
	for _, sink := range []string{".save(", ".update(", "Addr::unchecked"} {
		idx := 0
		for {
			i := strings.Index(body[idx:], sink)
			if i < 0 {
				break
			}
			i += idx
			// Look at the rest of the statement for the parameter name.
			end := strings.IndexByte(body[i:], ';')
			if end < 0 {
				end = len(body) - i
			}
			if strings.Contains(body[i:i+end], param) {
				return true
			}
			idx = i + len(sink)
		}
	}
	return false
}
