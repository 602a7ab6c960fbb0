package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehvCurtis/rustdefend/internal/model"
)

func TestFingerprintIgnoresLineNumbers(t *testing.T) {
	a := model.Finding{
		DetectorID: "SOL-003",
		File:       "src/lib.rs",
		Line:       10,
		Message:    "Unchecked arithmetic 'balance - amount' in function 'withdraw' may overflow",
		Snippet:    "    balance - amount",
	}
	b := a
	b.Line = 42
	assert.Equal(t, FingerprintOf(a), FingerprintOf(b))
}

func TestFingerprintContextName(t *testing.T) {
	f := model.Finding{Message: "Function 'update_config' reads account data without verifying the account owner"}
	assert.Equal(t, "update_config", FingerprintOf(f).ContextName)

	noQuote := model.Finding{Message: "no quoted name here"}
	assert.Equal(t, "", FingerprintOf(noQuote).ContextName)
}

func TestFingerprintSnippetPrefixBounded(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'A'
	}
	f := model.Finding{Snippet: string(long)}
	fp := FingerprintOf(f)
	assert.Len(t, fp.SnippetPrefix, snippetPrefixLen)
	assert.Equal(t, "a", fp.SnippetPrefix[:1], "snippet is lowercased")
}

func TestBaselineSaveLoadDiff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	known := model.Finding{
		DetectorID: "SOL-003", File: "src/lib.rs", Line: 3,
		Message: "Unchecked arithmetic 'balance - amount' in function 'withdraw' may overflow",
		Snippet: "    balance - amount",
	}
	require.NoError(t, SaveBaseline(path, []model.Finding{known}))

	b, err := LoadBaseline(path)
	require.NoError(t, err)
	require.Len(t, b.Fingerprints, 1)

	// Same finding shifted down three lines: still suppressed.
	shifted := known
	shifted.Line = 6
	fresh := model.Finding{
		DetectorID: "SOL-001", File: "src/lib.rs", Line: 2,
		Message: "Function 'update_config' accepts AccountInfo 'authority' without verifying is_signer",
		Snippet: "pub fn update_config(authority: &AccountInfo) {",
	}
	out, suppressed := b.Diff([]model.Finding{shifted, fresh})
	require.Len(t, out, 1)
	assert.Equal(t, "SOL-001", out[0].DetectorID)
	assert.Equal(t, 1, suppressed)
}

func TestLoadBaselineMissingIsEmpty(t *testing.T) {
	b, err := LoadBaseline(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, b.Fingerprints)
}

func TestLoadBaselineCorruptIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	require.NoError(t, os.WriteFile(path, []byte("{bad"), 0o644))
	_, err := LoadBaseline(path)
	require.Error(t, err)
}

func TestBaselineEndToEnd(t *testing.T) {
	root := writeProject(t, solanaManifest, map[string]string{
		"src/lib.rs": vulnerableWithdraw,
	})
	baselinePath := filepath.Join(t.TempDir(), "baseline.json")

	first := scan(t, root, Options{SaveBaselinePath: baselinePath})
	require.Len(t, first.Findings, 1)

	// Insert lines above the finding so its line number moves.
	shifted := "// header comment\n// another line\n" + vulnerableWithdraw
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "lib.rs"), []byte(shifted), 0o644))

	second := scan(t, root, Options{BaselinePath: baselinePath})
	assert.Empty(t, second.Findings, "baselined finding must stay suppressed across line shifts")
	assert.Equal(t, 1, second.Summary.BaselineDropped)
}

func TestDedupeAndSortOrder(t *testing.T) {
	findings := []model.Finding{
		{DetectorID: "A", File: "b.rs", Line: 5, Severity: model.SeverityLow, Message: "m"},
		{DetectorID: "A", File: "a.rs", Line: 9, Severity: model.SeverityCritical, Message: "m"},
		{DetectorID: "A", File: "b.rs", Line: 5, Severity: model.SeverityLow, Message: "m"},
		{DetectorID: "A", File: "a.rs", Line: 2, Severity: model.SeverityCritical, Message: "m"},
	}
	out := dedupe(findings)
	require.Len(t, out, 3)

	sortFindings(out)
	assert.Equal(t, 2, out[0].Line)
	assert.Equal(t, 9, out[1].Line)
	assert.Equal(t, model.SeverityLow, out[2].Severity)
}
