package service

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/ludo-technologies/rsscn/internal/analyzer"
	"github.com/ludo-technologies/rsscn/internal/parser"
)

// FileParseResult holds the parse result for a single file.
type FileParseResult struct {
	Content     []byte
	ParseResult *parser.ParseResult
	CFGs        []*analyzer.FunctionCFG // nil if not computed
	ParseErr    error
	CFGErr      error
}

// ParseCache stores pre-parsed files for sharing across analysis services.
// After Seal() is called the cache is read-only and safe for concurrent access
// without locks.
type ParseCache struct {
	results map[string]*FileParseResult
	sealed  bool
}

// NewParseCache creates a new empty ParseCache.
func NewParseCache() *ParseCache {
	return &ParseCache{
		results: make(map[string]*FileParseResult),
	}
}

// Put stores a parse result. Ignored after Seal().
func (c *ParseCache) Put(filePath string, result *FileParseResult) {
	if c.sealed {
		return
	}
	c.results[filePath] = result
}

// Seal marks the cache as read-only.
func (c *ParseCache) Seal() {
	c.sealed = true
}

// Get retrieves a cached parse result. Returns (result, true) on hit.
func (c *ParseCache) Get(filePath string) (*FileParseResult, bool) {
	if c == nil {
		return nil, false
	}
	r, ok := c.results[filePath]
	return r, ok
}

// Len returns the number of entries in the cache.
func (c *ParseCache) Len() int {
	return len(c.results)
}

// ParseCacheAware is implemented by services that can accept a pre-populated
// parse cache to avoid parsing a file once per analysis.
type ParseCacheAware interface {
	SetParseCache(cache *ParseCache)
}

// ParseCachePopulatorConfig controls how PopulateParseCache works.
type ParseCachePopulatorConfig struct {
	BuildCFGs   bool // also build a CFG for every function
	Concurrency int  // 0 means runtime.GOMAXPROCS(0)

	// OnFileDone is called after each file with the number of files finished
	// so far. Calls may come from several goroutines but are serialized.
	OnFileDone func(done, total int)
}

// PopulateParseCache parses all files in parallel and returns a sealed cache.
// Each goroutine creates its own parser.Parser because tree-sitter parsers
// are not safe for concurrent use.
func PopulateParseCache(ctx context.Context, files []string, cfg ParseCachePopulatorConfig) *ParseCache {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	results := make([]*FileParseResult, len(files))

	var wg sync.WaitGroup
	var progressMu sync.Mutex
	done := 0
	sem := make(chan struct{}, concurrency)

	for i, filePath := range files {
		wg.Add(1)
		go func(idx int, fp string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = parseFile(ctx, parser.New(), fp, cfg.BuildCFGs)

			if cfg.OnFileDone != nil {
				progressMu.Lock()
				done++
				cfg.OnFileDone(done, len(files))
				progressMu.Unlock()
			}
		}(i, filePath)
	}

	wg.Wait()

	cache := NewParseCache()
	for i, fp := range files {
		cache.Put(fp, results[i])
	}
	cache.Seal()

	return cache
}

// parseFile reads and parses one file with p, optionally building CFGs
func parseFile(ctx context.Context, p *parser.Parser, filePath string, buildCFGs bool) *FileParseResult {
	r := &FileParseResult{}

	content, err := os.ReadFile(filePath)
	if err != nil {
		r.ParseErr = fmt.Errorf("failed to read file %s: %w", filePath, err)
		return r
	}
	r.Content = content

	parseResult, err := p.Parse(ctx, content)
	if err != nil {
		r.ParseErr = fmt.Errorf("parse error: %w", err)
		return r
	}
	r.ParseResult = parseResult

	if buildCFGs && parseResult.AST != nil {
		cfgs, err := analyzer.NewCFGBuilder().BuildAll(parseResult.AST)
		if err != nil {
			r.CFGErr = fmt.Errorf("CFG construction failed: %w", err)
		}
		r.CFGs = cfgs
	}

	return r
}

// loadFile returns the cached result for filePath, or parses it on a miss.
// A cached entry without CFGs is completed when buildCFGs is set.
func loadFile(ctx context.Context, cache *ParseCache, p *parser.Parser, filePath string, buildCFGs bool) *FileParseResult {
	if r, ok := cache.Get(filePath); ok {
		if !buildCFGs || r.CFGs != nil || r.ParseErr != nil || r.ParseResult == nil {
			return r
		}
		completed := *r
		completed.CFGs, completed.CFGErr = analyzer.NewCFGBuilder().BuildAll(r.ParseResult.AST)
		return &completed
	}
	return parseFile(ctx, p, filePath, buildCFGs)
}
