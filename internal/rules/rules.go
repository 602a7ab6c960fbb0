package rules

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/logging"
	"github.com/dehvCurtis/rustdefend/internal/model"
	"github.com/dehvCurtis/rustdefend/internal/plugins"
)

// Rule is one declarative [[rules]] record from a rule file. Pattern matching
// runs over function bodies line by line.
type Rule struct {
	ID             string   `toml:"id"`
	Name           string   `toml:"name"`
	Severity       string   `toml:"severity"`
	Confidence     string   `toml:"confidence"`
	Chain          string   `toml:"chain"`
	Pattern        string   `toml:"pattern"`
	Regex          bool     `toml:"regex"`
	SafePatterns   []string `toml:"safe_patterns"`
	Message        string   `toml:"message"`
	Recommendation string   `toml:"recommendation"`
	ExcludeTests   *bool    `toml:"exclude_tests"`
}

type ruleFile struct {
	Rules []Rule `toml:"rules"`
}

// Load reads a rule file and returns one detector per valid rule. An
// unreadable or undecodable file is a configuration error; an individually
// invalid rule is skipped with a warning so the rest of the file still
// applies.
func Load(path string) ([]plugins.Detector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	var rf ruleFile
	if err := toml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rule file %s: %w", path, err)
	}
	var out []plugins.Detector
	for _, r := range rf.Rules {
		d, err := NewDetector(r)
		if err != nil {
			logging.L().Warnw("skipping invalid rule", "file", path, "id", r.ID, "error", err)
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// ruleDetector adapts one Rule to the detector interface.
type ruleDetector struct {
	meta         model.DetectorInfo
	match        func(line string) bool
	safe         []string
	excludeTests bool
	rec          string
	message      string
}

// NewDetector validates a rule and builds its detector. The zero chain means
// the rule applies to every ecosystem.
func NewDetector(r Rule) (plugins.Detector, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("rule missing id")
	}
	if r.Pattern == "" {
		return nil, fmt.Errorf("rule %s missing pattern", r.ID)
	}

	sev := model.SeverityMedium
	if r.Severity != "" {
		s, ok := model.ParseSeverity(r.Severity)
		if !ok {
			return nil, fmt.Errorf("rule %s: unknown severity %q", r.ID, r.Severity)
		}
		sev = s
	}
	conf := model.ConfidenceMedium
	if r.Confidence != "" {
		c, ok := model.ParseConfidence(r.Confidence)
		if !ok {
			return nil, fmt.Errorf("rule %s: unknown confidence %q", r.ID, r.Confidence)
		}
		conf = c
	}
	var chain model.Chain
	if r.Chain != "" {
		c, ok := model.ParseChain(r.Chain)
		if !ok {
			return nil, fmt.Errorf("rule %s: unknown chain %q", r.ID, r.Chain)
		}
		chain = c
	}

	var match func(string) bool
	if r.Regex {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: bad regex: %w", r.ID, err)
		}
		match = re.MatchString
	} else {
		pattern := r.Pattern
		match = func(line string) bool { return strings.Contains(line, pattern) }
	}

	name := r.Name
	if name == "" {
		name = r.ID
	}
	message := r.Message
	if message == "" {
		message = fmt.Sprintf("pattern %q matched", r.Pattern)
	}
	excludeTests := true
	if r.ExcludeTests != nil {
		excludeTests = *r.ExcludeTests
	}

	return &ruleDetector{
		meta: model.DetectorInfo{
			ID:          r.ID,
			Name:        name,
			Description: message,
			Severity:    sev,
			Confidence:  conf,
			Chain:       chain,
		},
		match:        match,
		safe:         r.SafePatterns,
		excludeTests: excludeTests,
		message:      message,
		rec:          r.Recommendation,
	}, nil
}

func (d *ruleDetector) Meta() model.DetectorInfo { return d.meta }

func (d *ruleDetector) Detect(ctx *analysis.FileContext) []model.Finding {
	var findings []model.Finding
	for i := range ctx.File.Functions {
		fn := &ctx.File.Functions[i]
		if d.excludeTests && fn.IsTest() {
			continue
		}
		for off, text := range strings.Split(fn.Body, "\n") {
			if !d.match(text) {
				continue
			}
			if d.lineIsSafe(text) {
				continue
			}
			line := fn.BodyLine + off
			findings = append(findings, model.Finding{
				DetectorID:     d.meta.ID,
				Name:           d.meta.Name,
				Severity:       d.meta.Severity,
				Confidence:     d.meta.Confidence,
				Chain:          ctx.Chain,
				File:           ctx.RelPath,
				Line:           line,
				Column:         1,
				Message:        fmt.Sprintf("%s in function '%s'", d.message, fn.Name),
				Snippet:        ctx.File.SnippetAt(line),
				Recommendation: d.rec,
				FunctionName:   fn.Name,
			})
		}
	}
	return findings
}

func (d *ruleDetector) lineIsSafe(line string) bool {
	for _, p := range d.safe {
		if strings.Contains(line, p) {
			return true
		}
	}
	return false
}
