package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChainAliases(t *testing.T) {
	cases := map[string]Chain{
		"solana": ChainSolana, "SOL": ChainSolana,
		"cosmwasm": ChainCosmWasm, "cw": ChainCosmWasm, "cosmos": ChainCosmWasm,
		"near": ChainNear,
		"ink":  ChainInk,
		"ink!": ChainInk, "polkadot": ChainInk,
	}
	for in, want := range cases {
		got, ok := ParseChain(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseChain("ethereum")
	assert.False(t, ok)
}

func TestParseSeverityAliases(t *testing.T) {
	for in, want := range map[string]Severity{
		"critical": SeverityCritical, "crit": SeverityCritical,
		"HIGH": SeverityHigh, "med": SeverityMedium, "l": SeverityLow,
	} {
		got, ok := ParseSeverity(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseSeverity("urgent")
	assert.False(t, ok)
}

func TestSeverityOrdering(t *testing.T) {
	assert.True(t, SeverityGTE(SeverityCritical, SeverityHigh))
	assert.True(t, SeverityGTE(SeverityMedium, SeverityMedium))
	assert.False(t, SeverityGTE(SeverityLow, SeverityMedium))
	assert.Greater(t, SeverityRank(SeverityCritical), SeverityRank(SeverityLow))
}

func TestConfidenceOrdering(t *testing.T) {
	assert.True(t, ConfidenceGTE(ConfidenceHigh, ConfidenceMedium))
	assert.False(t, ConfidenceGTE(ConfidenceLow, ConfidenceMedium))
}
