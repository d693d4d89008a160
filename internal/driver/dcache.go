package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"emerge/internal/diag"
	"emerge/internal/ir"
	"emerge/internal/project"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 2

// DiskCache stores the outcome of a check under the digest of its inputs.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is everything needed to answer a check without binding.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	// Paths in FileSet order; spans in Diagnostics refer to these ids.
	FilePaths []string

	Diagnostics []diag.Diagnostic
	// Errors counts every error reported, including those the bag dropped.
	Errors    int
	Snapshots []ir.Snapshot
}

// OpenDiskCache opens the cache under $XDG_CACHE_HOME/app (or ~/.cache/app).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache opens a cache rooted at dir, creating it when needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "units", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	committed = true
	return nil
}

// Get reads and deserializes a payload from the disk cache.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// restore fills res from the cache. Entries from another schema or over
// other paths are treated as misses; an undecodable entry is dropped.
func (c *DiskCache) restore(res *Result) (bool, error) {
	if c == nil {
		return false, nil
	}
	var payload DiskPayload
	ok, err := c.Get(res.Digest, &payload)
	if err != nil {
		_ = os.Remove(c.pathFor(res.Digest))
		return false, nil
	}
	if !ok || payload.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	paths := make([]string, len(res.Files))
	for i, id := range res.Files {
		paths[i] = res.FileSet.Get(id).Path
	}
	if !slices.Equal(paths, payload.FilePaths) {
		return false, nil
	}
	for _, d := range payload.Diagnostics {
		res.Bag.Add(d)
	}
	res.Errors = payload.Errors
	for i := range payload.Snapshots {
		res.Snapshots = append(res.Snapshots, &payload.Snapshots[i])
	}
	return true, nil
}

func (c *DiskCache) store(res *Result) error {
	if c == nil {
		return nil
	}
	payload := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		FilePaths:   make([]string, len(res.Files)),
		Diagnostics: slices.Clone(res.Bag.Items()),
		Errors:      res.Errors,
	}
	for i, id := range res.Files {
		payload.FilePaths[i] = res.FileSet.Get(id).Path
	}
	for _, s := range res.Snapshots {
		payload.Snapshots = append(payload.Snapshots, *s)
	}
	return c.Put(res.Digest, payload)
}
