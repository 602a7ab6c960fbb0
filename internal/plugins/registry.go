package plugins

import (
	"fmt"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/logging"
	"github.com/dehvCurtis/rustdefend/internal/model"
)

// Detector produces findings for one vulnerability class. Implementations
// must be pure: no shared mutable state, no tree mutation, identical output
// for identical input regardless of execution order.
type Detector interface {
	Meta() model.DetectorInfo
	Detect(ctx *analysis.FileContext) []model.Finding
}

// Registry holds detectors keyed by identifier. Construct one per scan and
// pass it by value through the pipeline; there is no global registry.
type Registry struct {
	detectors []Detector
	byID      map[string]Detector
}

func NewRegistry() *Registry {
	return &Registry{byID: map[string]Detector{}}
}

// Register adds a detector. A duplicate identifier is a configuration error
// reported at startup, never a runtime finding.
func (r *Registry) Register(d Detector) error {
	id := d.Meta().ID
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("duplicate detector id %q", id)
	}
	r.byID[id] = d
	r.detectors = append(r.detectors, d)
	return nil
}

// RegisterBuiltin installs the built-in detector set. Identifiers are
// distinct by construction, so registration cannot fail here.
func (r *Registry) RegisterBuiltin() {
	builtins := []Detector{
		&solMissingSigner{},
		&solMissingOwner{},
		&solIntegerOverflow{},
		&solCheckedArithmeticUnwrap{},
		&cwIntegerOverflow{},
		&cwMissingSenderCheck{},
		&cwMissingAddressValidation{},
		&cwUnguardedMigrate{},
		&nearIntegerOverflow{},
		&nearSignerVsPredecessor{},
		&nearMissingPrivateCallback{},
		&nearMissingDepositCheck{},
		&inkIntegerOverflow{},
		&inkMissingCallerCheck{},
		&inkPanicUsage{},
		&inkUnguardedSetCodeHash{},
	}
	for _, d := range builtins {
		if err := r.Register(d); err != nil {
			panic(err) // unreachable with distinct builtin ids
		}
	}
}

// Detectors returns the registered set in registration order.
func (r *Registry) Detectors() []Detector { return r.detectors }

// Lookup returns the detector with the given id.
func (r *Registry) Lookup(id string) (Detector, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Select narrows the set to detectors matching the chain and the optional
// severity/id filters. A detector with an empty chain (custom rules without
// a chain constraint) matches every chain.
func (r *Registry) Select(chain model.Chain, severities []model.Severity, ids []string) []Detector {
	var out []Detector
	for _, d := range r.detectors {
		meta := d.Meta()
		if meta.Chain != "" && meta.Chain != chain {
			continue
		}
		if len(severities) > 0 && !containsSeverity(severities, meta.Severity) {
			continue
		}
		if len(ids) > 0 && !containsID(ids, meta.ID) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Run executes each detector over the file context. A panic inside one
// detector is recovered and attributed to it; the others still run.
func Run(detectors []Detector, ctx *analysis.FileContext) (findings []model.Finding, errs int) {
	for _, d := range detectors {
		fs := func() (fs []model.Finding) {
			defer func() {
				if rec := recover(); rec != nil {
					errs++
					logging.L().Warnw("detector failed",
						"detector", d.Meta().ID, "file", ctx.RelPath, "error", rec)
					fs = nil
				}
			}()
			return d.Detect(ctx)
		}()
		findings = append(findings, fs...)
	}
	return findings, errs
}

func containsSeverity(list []model.Severity, s model.Severity) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsID(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
