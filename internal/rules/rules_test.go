package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/model"
	"github.com/dehvCurtis/rustdefend/internal/rustsrc"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func contextFor(t *testing.T, source string) *analysis.FileContext {
	t.Helper()
	file, err := rustsrc.Parse("/proj/src/lib.rs", source)
	require.NoError(t, err)
	return analysis.NewFileContext("/proj", "/proj/src/lib.rs", file, model.ChainSolana)
}

func TestLoadValidRules(t *testing.T) {
	path := writeRules(t, `
[[rules]]
id = "CUSTOM-001"
name = "no-todo"
severity = "low"
pattern = "todo!"
message = "todo! left in contract code"

[[rules]]
id = "CUSTOM-002"
pattern = "dbg!"
chain = "solana"
`)
	detectors, err := Load(path)
	require.NoError(t, err)
	require.Len(t, detectors, 2)
	assert.Equal(t, "CUSTOM-001", detectors[0].Meta().ID)
	assert.Equal(t, model.SeverityLow, detectors[0].Meta().Severity)
	assert.Equal(t, model.ChainSolana, detectors[1].Meta().Chain)
}

func TestLoadMalformedFileIsError(t *testing.T) {
	path := writeRules(t, `[[rules] this is not toml`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFileIsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestInvalidRuleSkippedOthersKept(t *testing.T) {
	path := writeRules(t, `
[[rules]]
id = "BAD-001"
pattern = "("
regex = true

[[rules]]
id = "GOOD-001"
pattern = "unsafe"
`)
	detectors, err := Load(path)
	require.NoError(t, err)
	require.Len(t, detectors, 1)
	assert.Equal(t, "GOOD-001", detectors[0].Meta().ID)
}

func TestRuleMissingIDRejected(t *testing.T) {
	_, err := NewDetector(Rule{Pattern: "x"})
	require.Error(t, err)
	_, err = NewDetector(Rule{ID: "R-1"})
	require.Error(t, err)
}

func TestSubstringMatch(t *testing.T) {
	d, err := NewDetector(Rule{ID: "R-1", Pattern: "transmute", Message: "transmute used"})
	require.NoError(t, err)

	ctx := contextFor(t, `
pub fn convert(x: u64) -> i64 {
    let y = unsafe { std::mem::transmute(x) };
    y
}
`)
	findings := d.Detect(ctx)
	require.Len(t, findings, 1)
	assert.Equal(t, "R-1", findings[0].DetectorID)
	assert.Equal(t, 3, findings[0].Line)
	assert.Contains(t, findings[0].Message, "convert")
	assert.Equal(t, model.ChainSolana, findings[0].Chain)
}

func TestRegexMatch(t *testing.T) {
	d, err := NewDetector(Rule{ID: "R-2", Pattern: `env::log\(`, Regex: true})
	require.NoError(t, err)

	ctx := contextFor(t, `
pub fn announce(msg: String) {
    env::log(msg.as_bytes());
}
`)
	require.Len(t, d.Detect(ctx), 1)
}

func TestSafePatternSuppressesMatch(t *testing.T) {
	d, err := NewDetector(Rule{
		ID:           "R-3",
		Pattern:      ".unwrap()",
		SafePatterns: []string{"unwrap_or"},
	})
	require.NoError(t, err)

	ctx := contextFor(t, `
pub fn read(map: &Map) -> u64 {
    map.get("k").unwrap()
}
`)
	require.Len(t, d.Detect(ctx), 1)

	clean := contextFor(t, `
pub fn read(map: &Map) -> u64 {
    map.get("k").unwrap_or(0).unwrap()
}
`)
	assert.Empty(t, d.Detect(clean))
}

func TestExcludeTestsDefault(t *testing.T) {
	d, err := NewDetector(Rule{ID: "R-4", Pattern: "panic!"})
	require.NoError(t, err)

	ctx := contextFor(t, `
#[test]
fn test_failure_path() {
    panic!("expected");
}
`)
	assert.Empty(t, d.Detect(ctx))

	include := false
	d2, err := NewDetector(Rule{ID: "R-5", Pattern: "panic!", ExcludeTests: &include})
	require.NoError(t, err)
	assert.NotEmpty(t, d2.Detect(ctx))
}
