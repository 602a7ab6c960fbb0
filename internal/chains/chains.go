// Package chains classifies compilation units (crates) into target
// ecosystems by inspecting Cargo.toml dependency names.
package chains

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dehvCurtis/rustdefend/internal/model"
)

// signatureDeps maps well-known dependency names to the ecosystem they imply.
var signatureDeps = map[string]model.Chain{
	"anchor-lang":             model.ChainSolana,
	"anchor-spl":              model.ChainSolana,
	"solana-program":          model.ChainSolana,
	"solana-sdk":              model.ChainSolana,
	"cosmwasm-std":            model.ChainCosmWasm,
	"cosmwasm-storage":        model.ChainCosmWasm,
	"cw-storage-plus":         model.ChainCosmWasm,
	"sylvia":                  model.ChainCosmWasm,
	"near-sdk":                model.ChainNear,
	"near-contract-standards": model.ChainNear,
	"ink":                     model.ChainInk,
	"ink_lang":                model.ChainInk,
	"ink_storage":             model.ChainInk,
	"ink_env":                 model.ChainInk,
}

type manifest struct {
	Package   *struct{ Name string `toml:"name"` } `toml:"package"`
	Workspace *struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
	Dependencies    map[string]toml.Primitive `toml:"dependencies"`
	DevDependencies map[string]toml.Primitive `toml:"dev-dependencies"`
}

// Map associates each crate root directory with its classified chains.
// Built once per scan, read-only thereafter.
type Map struct {
	byCrateRoot map[string][]model.Chain
}

// Build classifies every unit reachable from root. For workspace projects it
// resolves each [workspace] member (with dir/* glob expansion) individually,
// so sibling crates of different ecosystems never share detectors.
func Build(root string) *Map {
	m := &Map{byCrateRoot: map[string][]model.Chain{}}

	manifestPath, ok := findManifest(root)
	if !ok {
		return m
	}
	mf, err := readManifest(manifestPath)
	if err != nil {
		return m
	}
	wsRoot := filepath.Dir(manifestPath)

	if mf.Workspace != nil {
		for _, member := range mf.Workspace.Members {
			for _, dir := range expandMember(wsRoot, member) {
				memberManifest := filepath.Join(dir, "Cargo.toml")
				if mm, err := readManifest(memberManifest); err == nil {
					m.byCrateRoot[normalize(dir)] = detect(mm)
				}
			}
		}
	}
	// A root that is itself a package (or a plain single crate) is a unit too.
	if mf.Package != nil || len(m.byCrateRoot) == 0 {
		m.byCrateRoot[normalize(wsRoot)] = detect(mf)
	}
	return m
}

// ForFile returns the chains of the crate owning path, walking up to the
// nearest Cargo.toml. An empty slice means the unit is unclassified.
func (m *Map) ForFile(path string) []model.Chain {
	crateRoot, ok := crateRootOf(path)
	if !ok {
		return nil
	}
	return m.byCrateRoot[normalize(crateRoot)]
}

// Union returns every chain classified anywhere in the project, in stable
// order. Empty when nothing matched.
func (m *Map) Union() []model.Chain {
	seen := map[model.Chain]bool{}
	for _, chains := range m.byCrateRoot {
		for _, c := range chains {
			seen[c] = true
		}
	}
	var out []model.Chain
	for _, c := range model.AllChains() {
		if seen[c] {
			out = append(out, c)
		}
	}
	return out
}

// Units returns the number of classified crate roots.
func (m *Map) Units() int { return len(m.byCrateRoot) }

func detect(mf *manifest) []model.Chain {
	seen := map[model.Chain]bool{}
	for _, deps := range []map[string]toml.Primitive{mf.Dependencies, mf.DevDependencies} {
		for name := range deps {
			if chain, ok := signatureDeps[name]; ok {
				seen[chain] = true
			}
		}
	}
	var out []model.Chain
	for _, c := range model.AllChains() {
		if seen[c] {
			out = append(out, c)
		}
	}
	return out
}

func readManifest(path string) (*manifest, error) {
	var mf manifest
	if _, err := toml.DecodeFile(path, &mf); err != nil {
		return nil, err
	}
	return &mf, nil
}

func findManifest(path string) (string, bool) {
	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}
	for {
		candidate := filepath.Join(dir, "Cargo.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func crateRootOf(path string) (string, bool) {
	dir := filepath.Dir(path)
	for {
		if _, err := os.Stat(filepath.Join(dir, "Cargo.toml")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// expandMember resolves a [workspace] member entry. Only the common
// "dir/*" glob shape is expanded; anything more exotic is skipped.
func expandMember(wsRoot, member string) []string {
	if !strings.ContainsAny(member, "*?") {
		dir := filepath.Join(wsRoot, member)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return []string{dir}
		}
		return nil
	}
	if !strings.HasSuffix(member, "/*") {
		return nil
	}
	base := filepath.Join(wsRoot, strings.TrimSuffix(member, "/*"))
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, filepath.Join(base, e.Name()))
		}
	}
	return out
}

func normalize(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.ToSlash(path)
}
