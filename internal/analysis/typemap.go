package analysis

import (
	"regexp"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/rustsrc"
)

// safeArithmeticTypes are numeric wrappers whose arithmetic cannot silently
// wrap: they abort or return errors on overflow.
var safeArithmeticTypes = []string{
	"Uint128", "Uint256", "Uint512", "Uint64",
	"U128", "U256", "U512",
	"Decimal", "Decimal256", "SignedDecimal", "SignedDecimal256",
	"Int128", "Int256", "Int512",
}

// TypeMap captures explicit type annotations visible in the source: local
// `let x: T` declarations, typed parameters, and safe-type imports. It is an
// approximation, not inference; unannotated values are simply absent.
type TypeMap struct {
	Vars          map[string]string
	ImportedTypes []string
}

var letAnnotation = regexp.MustCompile(`\blet\s+(?:mut\s+)?([a-z_][a-z0-9_]*)\s*:\s*([A-Za-z_][\w:<>, ]*)`)
var useStatement = regexp.MustCompile(`(?m)^\s*use\s+([^;]+);`)

// BuildTypeMap extracts annotations from every function body plus the
// file-level use statements.
func BuildTypeMap(file *rustsrc.File) *TypeMap {
	tm := &TypeMap{Vars: map[string]string{}}

	for _, m := range useStatement.FindAllStringSubmatch(file.Source, -1) {
		for _, safe := range safeArithmeticTypes {
			if strings.Contains(m[1], safe) {
				tm.ImportedTypes = append(tm.ImportedTypes, safe)
			}
		}
	}

	for i := range file.Functions {
		fn := &file.Functions[i]
		for _, p := range fn.Params {
			if p.Type != "" {
				tm.Vars[strings.TrimPrefix(p.Name, "mut ")] = p.Type
			}
		}
		for _, m := range letAnnotation.FindAllStringSubmatch(fn.Body, -1) {
			tm.Vars[m[1]] = strings.TrimSpace(m[2])
		}
	}
	return tm
}

// IsSafeArithmeticType reports whether the named variable has a declared
// overflow-safe numeric type.
func (tm *TypeMap) IsSafeArithmeticType(varName string) bool {
	typ, ok := tm.Vars[varName]
	if !ok {
		return false
	}
	for _, safe := range safeArithmeticTypes {
		if strings.Contains(typ, safe) {
			return true
		}
	}
	return false
}

// HasSafeTypeImports reports whether the file imports any overflow-safe
// numeric type at all.
func (tm *TypeMap) HasSafeTypeImports() bool { return len(tm.ImportedTypes) > 0 }
