package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dehvCurtis/rustdefend/internal/model"
)

const baselineVersion = "1"

// snippetPrefixLen bounds the snippet part of a fingerprint so findings
// survive trailing edits to a long line.
const snippetPrefixLen = 60

// Fingerprint identifies a finding across runs without line numbers, so that
// unrelated edits shifting code up or down do not resurface accepted
// findings.
type Fingerprint struct {
	DetectorID    string `json:"detectorId"`
	RelativeFile  string `json:"file"`
	ContextName   string `json:"context"`
	SnippetPrefix string `json:"snippet"`
}

// FingerprintOf derives the stable identity of a finding. The context name is
// the first 'single-quoted' name in the message, which detectors use for the
// enclosing function or flagged parameter.
func FingerprintOf(f model.Finding) Fingerprint {
	snippet := strings.ToLower(strings.TrimSpace(f.Snippet))
	if len(snippet) > snippetPrefixLen {
		snippet = snippet[:snippetPrefixLen]
	}
	return Fingerprint{
		DetectorID:    f.DetectorID,
		RelativeFile:  f.File,
		ContextName:   quotedName(f.Message),
		SnippetPrefix: snippet,
	}
}

func quotedName(message string) string {
	open := strings.IndexByte(message, '\'')
	if open < 0 {
		return ""
	}
	rest := message[open+1:]
	end := strings.IndexByte(rest, '\'')
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// Baseline is the accepted-findings set a scan diffs against.
type Baseline struct {
	Version      string        `json:"version"`
	GeneratedAt  time.Time     `json:"generatedAt"`
	Fingerprints []Fingerprint `json:"fingerprints"`
}

// SaveBaseline writes the fingerprints of the given findings atomically.
func SaveBaseline(path string, findings []model.Finding) error {
	b := Baseline{Version: baselineVersion, GeneratedAt: time.Now().UTC()}
	seen := map[Fingerprint]bool{}
	for _, f := range findings {
		fp := FingerprintOf(f)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		b.Fingerprints = append(b.Fingerprints, fp)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".rustdefend-baseline-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadBaseline reads a baseline file. A missing file is an empty baseline;
// an unreadable or corrupt one is an error, since the path was given
// explicitly.
func LoadBaseline(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Baseline{Version: baselineVersion}, nil
	}
	if err != nil {
		return nil, err
	}
	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Diff returns the findings absent from the baseline plus the count of
// suppressed known ones.
func (b *Baseline) Diff(findings []model.Finding) ([]model.Finding, int) {
	if len(b.Fingerprints) == 0 {
		return findings, 0
	}
	known := make(map[Fingerprint]bool, len(b.Fingerprints))
	for _, fp := range b.Fingerprints {
		known[fp] = true
	}
	var out []model.Finding
	suppressed := 0
	for _, f := range findings {
		if known[FingerprintOf(f)] {
			suppressed++
			continue
		}
		out = append(out, f)
	}
	return out, suppressed
}
