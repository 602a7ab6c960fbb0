package report

import (
	"encoding/json"
	"io"

	"github.com/dehvCurtis/rustdefend/internal/model"
)

// SARIFReporter emits SARIF 2.1.0 with one run, rule metadata for every
// detector that produced a finding, and note/warning/error level mapping.
// Confidence and chain ride in each result's properties bag.
type SARIFReporter struct{}

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name,omitempty"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID     string            `json:"ruleId"`
	Level      string            `json:"level"`
	Message    sarifMessage      `json:"message"`
	Locations  []sarifLocation   `json:"locations"`
	Properties map[string]string `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

func sarifLevel(s model.Severity) string {
	switch s {
	case model.SeverityLow:
		return "note"
	case model.SeverityMedium:
		return "warning"
	default:
		return "error"
	}
}

func (r *SARIFReporter) Write(w io.Writer, result *model.ScanResult) error {
	seenRule := map[string]bool{}
	var rulesMeta []sarifRule
	results := []sarifResult{}
	for _, f := range result.Findings {
		if !seenRule[f.DetectorID] {
			seenRule[f.DetectorID] = true
			rulesMeta = append(rulesMeta, sarifRule{
				ID:               f.DetectorID,
				Name:             f.Name,
				ShortDescription: sarifMessage{Text: f.Name},
			})
		}
		results = append(results, sarifResult{
			RuleID:  f.DetectorID,
			Level:   sarifLevel(f.Severity),
			Message: sarifMessage{Text: f.Message},
			Locations: []sarifLocation{{PhysicalLocation: sarifPhysical{
				ArtifactLocation: sarifArtifact{URI: f.File},
				Region:           sarifRegion{StartLine: f.Line, StartColumn: f.Column},
			}}},
			Properties: map[string]string{
				"confidence": string(f.Confidence),
				"chain":      string(f.Chain),
			},
		})
	}

	log := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:  "rustdefend",
				Rules: rulesMeta,
			}},
			Results: results,
		}},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&log)
}
