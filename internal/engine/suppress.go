package engine

import (
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/config"
	"github.com/dehvCurtis/rustdefend/internal/model"
	"github.com/dehvCurtis/rustdefend/internal/rustsrc"
)

// inlineDirective is the suppression marker looked for in source comments:
// a bare marker suppresses everything on that line, `rustdefend-ignore[ID]`
// (comma-separable) suppresses only the listed detectors.
const inlineDirective = "rustdefend-ignore"

// inlineSuppressed honors the directive on the finding's line or the line
// directly above it.
func inlineSuppressed(file *rustsrc.File, f model.Finding) bool {
	for _, line := range []int{f.Line, f.Line - 1} {
		if line < 1 {
			continue
		}
		if directiveMatches(file.Line(line), f.DetectorID) {
			return true
		}
	}
	return false
}

func directiveMatches(text, detectorID string) bool {
	i := strings.Index(text, inlineDirective)
	if i < 0 {
		return false
	}
	rest := text[i+len(inlineDirective):]
	if !strings.HasPrefix(rest, "[") {
		return true // blanket
	}
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return false
	}
	for _, id := range strings.Split(rest[1:end], ",") {
		if strings.TrimSpace(id) == detectorID {
			return true
		}
	}
	return false
}

// callerSuppressed drops a finding when its detector declares a check
// category and every caller of the flagged function already performs that
// check. Functions with no callers are potential entry points and are never
// suppressed this way.
func (e *Engine) callerSuppressed(fctx *analysis.FileContext, f model.Finding) bool {
	if f.FunctionName == "" {
		return false
	}
	d, ok := e.registry.Lookup(f.DetectorID)
	if !ok {
		return false
	}
	kind := d.Meta().Check
	if kind == model.CheckNone {
		return false
	}
	return analysis.EveryCallerHasCheck(fctx.Graph, f.FunctionName, kind)
}

// applyConfigFilters drops findings by ignored detector id and by the
// severity/confidence floors. Runs after dedupe so the counter reflects
// distinct findings.
func applyConfigFilters(findings []model.Finding, cfg config.ProjectConfig) ([]model.Finding, int) {
	minSev, hasSev := cfg.MinSeverityLevel()
	minConf, hasConf := cfg.MinConfidenceLevel()

	var out []model.Finding
	dropped := 0
	for _, f := range findings {
		switch {
		case cfg.DetectorIgnored(f.DetectorID):
			dropped++
		case hasSev && !model.SeverityGTE(f.Severity, minSev):
			dropped++
		case hasConf && !model.ConfidenceGTE(f.Confidence, minConf):
			dropped++
		default:
			out = append(out, f)
		}
	}
	return out, dropped
}
