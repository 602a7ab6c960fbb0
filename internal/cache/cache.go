package cache

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/dehvCurtis/rustdefend/internal/logging"
	"github.com/dehvCurtis/rustdefend/internal/model"
	"github.com/dehvCurtis/rustdefend/internal/util"
)

// DefaultFileName is the cache file written under the scan root.
const DefaultFileName = ".rustdefend-cache.json"

// Entry stores the findings produced for one file at a given content hash.
type Entry struct {
	Hash     string          `json:"sha256"`
	Findings []model.Finding `json:"findings"`
}

// Cache maps relative file paths to their last scan result. Validity is tied
// to the file's content hash and the scanner/ruleset version, never to
// modification times.
type Cache struct {
	Version string           `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// VersionKey combines the scanner release with a hash of the active rule set so
// that editing a rule file invalidates every entry.
func VersionKey(scannerVersion string, ruleFileContent []byte) string {
	return util.HashStrings(scannerVersion, util.ContentHash(ruleFileContent))
}

// New returns an empty cache bound to a version key.
func New(version string) *Cache {
	return &Cache{Version: version, Entries: map[string]Entry{}}
}

// Load reads the cache file. Any integrity problem (missing file, corrupt
// JSON, version mismatch) degrades to an empty cache; stale entries must
// never surface as scan results.
func Load(path, version string) *Cache {
	data, err := os.ReadFile(path)
	if err != nil {
		return New(version)
	}
	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		logging.L().Warnw("discarding corrupt cache", "path", path, "error", err)
		return New(version)
	}
	if c.Version != version || c.Entries == nil {
		return New(version)
	}
	return &c
}

// Lookup returns the cached findings for relPath iff the stored hash matches
// the current content hash exactly.
func (c *Cache) Lookup(relPath, hash string) ([]model.Finding, bool) {
	e, ok := c.Entries[relPath]
	if !ok || e.Hash != hash {
		return nil, false
	}
	return e.Findings, true
}

// Store records the findings for relPath at the given content hash.
func (c *Cache) Store(relPath, hash string, findings []model.Finding) {
	c.Entries[relPath] = Entry{Hash: hash, Findings: findings}
}

// Save writes the cache atomically: the JSON goes to a temp file in the same
// directory, then a rename replaces the old cache in one step.
func (c *Cache) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".rustdefend-cache-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
