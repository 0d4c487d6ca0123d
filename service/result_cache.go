package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ludo-technologies/rsscn/internal/version"
)

// ResultCacheFileName is the file the cache is persisted to inside its directory
const ResultCacheFileName = "results.msgpack"

// resultCacheEntry is one persisted analysis result
type resultCacheEntry struct {
	Analysis  string    `msgpack:"analysis"`
	Payload   []byte    `msgpack:"payload"`
	CreatedAt time.Time `msgpack:"created_at"`
}

// ResultCache stores per-file analysis results on disk, keyed by a hash of the
// file content, the analysis options and the tool version. It is safe for
// concurrent use.
type ResultCache struct {
	mu      sync.RWMutex
	dir     string
	entries map[string]resultCacheEntry
	dirty   bool
}

// NewResultCache opens the cache stored in dir. A missing or corrupt cache file
// yields an empty cache.
func NewResultCache(dir string) *ResultCache {
	c := &ResultCache{
		dir:     dir,
		entries: make(map[string]resultCacheEntry),
	}
	_ = c.load()
	return c
}

// ResultCacheKey derives the key for one analysis of one file. Options are
// sorted so their order does not matter.
func ResultCacheKey(analysis, filePath string, content []byte, options ...string) string {
	opts := append([]string(nil), options...)
	sort.Strings(opts)

	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00", version.Version, analysis, filepath.Clean(filePath))
	h.Write(content)
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(opts, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}

// Get decodes the cached value for key into out. Returns false on a miss or
// when the payload no longer decodes into out.
func (c *ResultCache) Get(key string, out interface{}) bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	return msgpack.Unmarshal(entry.Payload, out) == nil
}

// Put stores value under key
func (c *ResultCache) Put(key, analysis string, value interface{}) error {
	if c == nil {
		return nil
	}
	payload, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = resultCacheEntry{
		Analysis:  analysis,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	c.dirty = true
	return nil
}

// Len returns the number of entries in the cache
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]resultCacheEntry)
	c.dirty = true
}

// Path returns the cache file location
func (c *ResultCache) Path() string {
	return filepath.Join(c.dir, ResultCacheFileName)
}

// Save writes the cache to disk if it changed since it was loaded.
// The file is replaced atomically.
func (c *ResultCache) Save() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".results-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	tmpName := tmp.Name()

	if err := msgpack.NewEncoder(tmp).Encode(c.entries); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := os.Rename(tmpName, c.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	c.dirty = false
	return nil
}

func (c *ResultCache) load() error {
	f, err := os.Open(c.Path())
	if err != nil {
		return err
	}
	defer f.Close()

	entries := make(map[string]resultCacheEntry)
	if err := msgpack.NewDecoder(f).Decode(&entries); err != nil {
		return fmt.Errorf("failed to decode cache: %w", err)
	}
	c.entries = entries
	return nil
}

// ResultCacheAware is implemented by services that can reuse results from a
// previous run
type ResultCacheAware interface {
	SetResultCache(cache *ResultCache)
}
