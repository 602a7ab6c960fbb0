package plugins

import (
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
	"github.com/dehvCurtis/rustdefend/internal/rustsrc"
	"github.com/dehvCurtis/rustdefend/internal/util"
)

// finding builds a Finding from detector metadata and a location.
func finding(meta model.DetectorInfo, ctx *analysis.FileContext, fn *rustsrc.Function, line int, message, recommendation string) model.Finding {
	col := 1
	if fn != nil && line == fn.StartLine {
		col = fn.StartCol
	}
	name := ""
	if fn != nil {
		name = fn.Name
	}
	return model.Finding{
		DetectorID:     meta.ID,
		Name:           meta.Name,
		Severity:       meta.Severity,
		Confidence:     meta.Confidence,
		Chain:          meta.Chain,
		File:           ctx.RelPath,
		Line:           line,
		Column:         col,
		Message:        message,
		Snippet:        ctx.File.SnippetAt(line),
		Recommendation: recommendation,
		FunctionName:   name,
	}
}

// visitBodyLines walks a function body line by line with absolute file line
// numbers, skipping comment-only lines.
func visitBodyLines(fn *rustsrc.Function, visit func(line int, text string)) {
	for i, text := range strings.Split(fn.Body, "\n") {
		trimmed := strings.TrimSpace(text)
		if !strings.HasPrefix(trimmed, "//") {
			visit(fn.BodyLine+i, text)
		}
	}
}

// bodyContainsAny reports whether the body holds any of the given patterns.
func bodyContainsAny(fn *rustsrc.Function, patterns ...string) bool {
	for _, p := range patterns {
		if strings.Contains(fn.Body, p) {
			return true
		}
	}
	return false
}

func columnOf(ctx *analysis.FileContext, line int, needle string) int {
	return util.ColumnOf(ctx.Source, line, needle)
}
