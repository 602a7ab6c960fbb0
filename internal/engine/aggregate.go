package engine

import (
	"sort"

	"github.com/dehvCurtis/rustdefend/internal/model"
	"github.com/dehvCurtis/rustdefend/internal/util"
)

// identity is the dedup key. Two detectors (or the same detector reached via
// two chains of a multi-chain crate) reporting the same thing at the same
// place collapse to one finding.
type identity struct {
	detector string
	file     string
	line     int
	column   int
	message  string
}

func dedupe(findings []model.Finding) []model.Finding {
	seen := map[identity]bool{}
	var out []model.Finding
	for _, f := range findings {
		k := identity{
			detector: f.DetectorID,
			file:     f.File,
			line:     f.Line,
			column:   f.Column,
			message:  util.HashStrings(f.Message),
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}
	return out
}

// sortFindings orders by severity (most severe first), then file, line,
// column, detector id. Total order: equal inputs always serialize the same.
func sortFindings(findings []model.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if ra, rb := model.SeverityRank(a.Severity), model.SeverityRank(b.Severity); ra != rb {
			return ra > rb
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.DetectorID < b.DetectorID
	})
}
