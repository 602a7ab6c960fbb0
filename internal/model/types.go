package model

import "strings"

// Chain identifies a target contract ecosystem. Each detector is registered
// for exactly one chain; a source file is scanned only with detectors of the
// chains its crate was classified as.
type Chain string

const (
	ChainSolana   Chain = "solana"
	ChainCosmWasm Chain = "cosmwasm"
	ChainNear     Chain = "near"
	ChainInk      Chain = "ink"
)

// AllChains lists every supported ecosystem in registry order.
func AllChains() []Chain {
	return []Chain{ChainSolana, ChainCosmWasm, ChainNear, ChainInk}
}

// ParseChain accepts the loose spellings used on the command line.
func ParseChain(s string) (Chain, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "solana", "sol":
		return ChainSolana, true
	case "cosmwasm", "cw", "cosmos":
		return ChainCosmWasm, true
	case "near":
		return ChainNear, true
	case "ink", "ink!", "polkadot":
		return ChainInk, true
	}
	return "", false
}

func (c Chain) Display() string {
	switch c {
	case ChainSolana:
		return "Solana"
	case ChainCosmWasm:
		return "CosmWasm"
	case ChainNear:
		return "NEAR"
	case ChainInk:
		return "ink!"
	}
	return string(c)
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityOrder = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// ParseSeverity accepts loose spellings ("crit", "med", "h").
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical", "crit":
		return SeverityCritical, true
	case "high", "h":
		return SeverityHigh, true
	case "medium", "med", "m":
		return SeverityMedium, true
	case "low", "l":
		return SeverityLow, true
	}
	return "", false
}

// SeverityGTE reports whether a ranks at or above b.
func SeverityGTE(a, b Severity) bool {
	return severityOrder[a] >= severityOrder[b]
}

// SeverityRank returns the ordering weight, higher is more severe.
func SeverityRank(s Severity) int { return severityOrder[s] }

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

var confidenceOrder = map[Confidence]int{
	ConfidenceLow:    1,
	ConfidenceMedium: 2,
	ConfidenceHigh:   3,
}

func ParseConfidence(s string) (Confidence, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "h":
		return ConfidenceHigh, true
	case "medium", "med", "m":
		return ConfidenceMedium, true
	case "low", "l":
		return ConfidenceLow, true
	}
	return "", false
}

func ConfidenceGTE(a, b Confidence) bool {
	return confidenceOrder[a] >= confidenceOrder[b]
}

// CheckCategory names the security check a detector looks for. Detectors that
// declare a category participate in call-graph suppression: a finding is
// dropped when every caller of the flagged function already performs a check
// of that category.
type CheckCategory string

const (
	CheckNone            CheckCategory = ""
	CheckSigner          CheckCategory = "signer"
	CheckOwner           CheckCategory = "owner"
	CheckInputValidation CheckCategory = "input-validation"
)

// DetectorInfo is the static metadata of a detector or custom rule.
type DetectorInfo struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Severity    Severity      `json:"severity"`
	Confidence  Confidence    `json:"confidence"`
	Chain       Chain         `json:"chain"`
	Check       CheckCategory `json:"check,omitempty"`
}

// Finding is one reported potential issue. Immutable once produced.
type Finding struct {
	DetectorID     string     `json:"detectorId"`
	Name           string     `json:"name"`
	Severity       Severity   `json:"severity"`
	Confidence     Confidence `json:"confidence"`
	Chain          Chain      `json:"chain"`
	File           string     `json:"file"`
	Line           int        `json:"line"`
	Column         int        `json:"column,omitempty"`
	Message        string     `json:"message"`
	Snippet        string     `json:"snippet,omitempty"`
	Recommendation string     `json:"recommendation,omitempty"`

	// FunctionName is the enclosing function, when known. Used by the
	// call-graph suppression stage and the baseline fingerprint.
	FunctionName string `json:"functionName,omitempty"`
}

// ScanSummary counts what happened during a scan, for diagnostics only.
type ScanSummary struct {
	FilesScanned    int `json:"filesScanned"`
	FilesSkipped    int `json:"filesSkipped"`
	ParseFailures   int `json:"parseFailures"`
	CacheHits       int `json:"cacheHits"`
	InlineDropped   int `json:"inlineDropped"`
	CallerDropped   int `json:"callerDropped"`
	ConfigDropped   int `json:"configDropped"`
	DetectorErrors  int `json:"detectorErrors"`
	BaselineDropped int `json:"baselineDropped"`
}

// ScanResult is the terminal output of a scan: the ordered finding set plus
// the summary counters.
type ScanResult struct {
	Findings []Finding   `json:"findings"`
	Summary  ScanSummary `json:"summary"`
}
