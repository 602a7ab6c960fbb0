package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/dehvCurtis/rustdefend/internal/analysis"
	"github.com/dehvCurtis/rustdefend/internal/cache"
	"github.com/dehvCurtis/rustdefend/internal/chains"
	"github.com/dehvCurtis/rustdefend/internal/config"
	"github.com/dehvCurtis/rustdefend/internal/logging"
	"github.com/dehvCurtis/rustdefend/internal/model"
	"github.com/dehvCurtis/rustdefend/internal/plugins"
	"github.com/dehvCurtis/rustdefend/internal/rustsrc"
	"github.com/dehvCurtis/rustdefend/internal/util"
)

// Options carries everything a scan needs beyond the root path. The CLI
// builds one from flags and project config; tests build them directly.
type Options struct {
	// Chains overrides crate classification when non-empty.
	Chains []model.Chain
	// Severities / DetectorIDs narrow detector selection.
	Severities  []model.Severity
	DetectorIDs []string
	// Rules holds custom rule detectors already loaded from a rule file.
	Rules []plugins.Detector

	Config config.ProjectConfig

	BaselinePath     string
	SaveBaselinePath string

	Incremental  bool
	CachePath    string
	CacheVersion string

	Jobs int
}

// Engine runs the scan pipeline: classify, discover, analyze per file in a
// worker pool, suppress, aggregate, then baseline.
type Engine struct {
	registry *plugins.Registry
	opts     Options
}

// New builds an engine with the built-in detector set plus any custom rules.
// A rule id colliding with a built-in is a configuration error.
func New(opts Options) (*Engine, error) {
	reg := plugins.NewRegistry()
	reg.RegisterBuiltin()
	for _, d := range opts.Rules {
		if err := reg.Register(d); err != nil {
			return nil, err
		}
	}
	return &Engine{registry: reg, opts: opts}, nil
}

// Registry exposes the assembled detector set (for `detectors list`).
func (e *Engine) Registry() *plugins.Registry { return e.registry }

// fileResult is the per-file outcome a worker hands back to the aggregator.
type fileResult struct {
	findings []model.Finding

	scanned     bool
	skipped     bool
	parseFailed bool
	cacheHit    bool

	inlineDropped  int
	callerDropped  int
	detectorErrors int

	storeRel  string
	storeHash string
}

// Scan analyzes every Rust source file under root and returns the ordered
// finding set. An unreadable root or baseline is an error; anything scoped to
// a single file degrades to a summary counter.
func (e *Engine) Scan(ctx context.Context, root string) (*model.ScanResult, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	chainMap := chains.Build(root)
	files, ignored := discoverFiles(root, e.opts.Config)

	var store *cache.Cache
	cachePath := e.opts.CachePath
	if cachePath == "" {
		cachePath = filepath.Join(root, cache.DefaultFileName)
	}
	if e.opts.Incremental {
		store = cache.Load(cachePath, e.opts.CacheVersion)
	}

	results := make([]fileResult, len(files))
	jobs := e.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs > len(files) && len(files) > 0 {
		jobs = len(files)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = e.scanFile(root, files[i], chainMap, store)
			}
		}()
	}
	for i := range files {
		select {
		case <-ctx.Done():
			close(indexes)
			wg.Wait()
			return nil, ctx.Err()
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	var summary model.ScanSummary
	summary.FilesSkipped = ignored
	var findings []model.Finding
	for i := range results {
		r := &results[i]
		findings = append(findings, r.findings...)
		if r.scanned {
			summary.FilesScanned++
		}
		if r.skipped {
			summary.FilesSkipped++
		}
		if r.parseFailed {
			summary.ParseFailures++
		}
		if r.cacheHit {
			summary.CacheHits++
		}
		summary.InlineDropped += r.inlineDropped
		summary.CallerDropped += r.callerDropped
		summary.DetectorErrors += r.detectorErrors
		if store != nil && r.storeRel != "" {
			store.Store(r.storeRel, r.storeHash, r.findings)
		}
	}

	findings = dedupe(findings)
	findings, configDropped := applyConfigFilters(findings, e.opts.Config)
	summary.ConfigDropped = configDropped
	sortFindings(findings)

	if e.opts.SaveBaselinePath != "" {
		if err := SaveBaseline(e.opts.SaveBaselinePath, findings); err != nil {
			return nil, fmt.Errorf("save baseline: %w", err)
		}
	}
	if e.opts.BaselinePath != "" {
		b, err := LoadBaseline(e.opts.BaselinePath)
		if err != nil {
			return nil, fmt.Errorf("load baseline: %w", err)
		}
		var suppressed int
		findings, suppressed = b.Diff(findings)
		summary.BaselineDropped = suppressed
	}

	if store != nil {
		if err := store.Save(cachePath); err != nil {
			logging.L().Warnw("cache not saved", "path", cachePath, "error", err)
		}
	}

	return &model.ScanResult{Findings: findings, Summary: summary}, nil
}

// scanFile runs the per-file stages: classification, cache lookup, parse,
// detectors for each of the unit's chains, then content-derived suppression.
func (e *Engine) scanFile(root, path string, chainMap *chains.Map, store *cache.Cache) fileResult {
	var res fileResult

	unitChains := e.opts.Chains
	if len(unitChains) == 0 {
		unitChains = chainMap.ForFile(path)
	}
	if len(unitChains) == 0 {
		res.skipped = true
		return res
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logging.L().Warnw("unreadable source file", "path", path, "error", err)
		res.skipped = true
		return res
	}
	rel := relSlash(root, path)
	hash := util.ContentHash(data)

	if store != nil {
		if cached, ok := store.Lookup(rel, hash); ok {
			res.scanned = true
			res.cacheHit = true
			res.findings = cached
			return res
		}
	}

	file, err := rustsrc.Parse(path, string(data))
	if err != nil {
		logging.L().Debugw("parse failure", "path", rel, "error", err)
		res.parseFailed = true
		return res
	}

	res.scanned = true
	for _, chain := range unitChains {
		fctx := analysis.NewFileContext(root, path, file, chain)
		detectors := e.registry.Select(chain, e.opts.Severities, e.opts.DetectorIDs)
		fs, errs := plugins.Run(detectors, fctx)
		res.detectorErrors += errs
		res.findings = append(res.findings, e.suppress(fctx, fs, &res)...)
	}
	if store != nil {
		res.storeRel, res.storeHash = rel, hash
	}
	return res
}

// skipDirs are never descended into during discovery.
var skipDirs = map[string]bool{
	"target": true, "tests": true, "fuzz": true,
	"node_modules": true, ".git": true,
}

// discoverFiles walks root collecting .rs files, honoring the fixed skip list
// and the project's ignore_files globs. Returns the files plus the count of
// glob-ignored ones.
func discoverFiles(root string, cfg config.ProjectConfig) ([]string, int) {
	var out []string
	ignored := 0
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(d.Name()) != ".rs" || strings.HasSuffix(d.Name(), "_test.rs") {
			return nil
		}
		if cfg.FileIgnored(relSlash(root, path)) {
			ignored++
			return nil
		}
		out = append(out, path)
		return nil
	})
	return out, ignored
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func (e *Engine) suppress(fctx *analysis.FileContext, findings []model.Finding, res *fileResult) []model.Finding {
	var out []model.Finding
	for _, f := range findings {
		if inlineSuppressed(fctx.File, f) {
			res.inlineDropped++
			continue
		}
		if e.callerSuppressed(fctx, f) {
			res.callerDropped++
			continue
		}
		out = append(out, f)
	}
	return out
}
