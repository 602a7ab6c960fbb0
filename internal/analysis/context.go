package analysis

import (
	"path/filepath"

	"github.com/dehvCurtis/rustdefend/internal/model"
	"github.com/dehvCurtis/rustdefend/internal/rustsrc"
)

// FileContext carries everything a detector may inspect for one file: the
// syntax tree, the original text, the chain being scanned, and the intra-file
// call graph. Built once per file per scan and discarded afterwards.
// Detectors must treat it as read-only.
type FileContext struct {
	Path    string
	RelPath string
	Source  string
	File    *rustsrc.File
	Chain   model.Chain
	Graph   CallGraph
	Types   *TypeMap
}

// NewFileContext assembles the per-file scan context.
func NewFileContext(root, path string, file *rustsrc.File, chain model.Chain) *FileContext {
	rel := path
	if r, err := filepath.Rel(root, path); err == nil {
		rel = r
	}
	return &FileContext{
		Path:    filepath.ToSlash(path),
		RelPath: filepath.ToSlash(rel),
		Source:  file.Source,
		File:    file,
		Chain:   chain,
		Graph:   BuildCallGraph(file),
		Types:   BuildTypeMap(file),
	}
}
