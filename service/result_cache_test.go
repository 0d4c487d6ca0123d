package service

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/rsscn/domain"
)

func TestResultCacheKey(t *testing.T) {
	content := []byte("fn main() {}")
	base := ResultCacheKey("dead_code", "src/main.rs", content, "a", "b")

	assert.Len(t, base, 64)
	assert.Equal(t, base, ResultCacheKey("dead_code", "src/main.rs", content, "b", "a"), "option order is ignored")
	assert.Equal(t, base, ResultCacheKey("dead_code", "src/./main.rs", content, "a", "b"), "paths are cleaned")

	assert.NotEqual(t, base, ResultCacheKey("exit_points", "src/main.rs", content, "a", "b"))
	assert.NotEqual(t, base, ResultCacheKey("dead_code", "src/lib.rs", content, "a", "b"))
	assert.NotEqual(t, base, ResultCacheKey("dead_code", "src/main.rs", []byte("fn main() { }"), "a", "b"))
	assert.NotEqual(t, base, ResultCacheKey("dead_code", "src/main.rs", content, "a"))
}

func TestResultCache_PutGet(t *testing.T) {
	cache := NewResultCache(t.TempDir())
	value := domain.FileExitPoints{
		FilePath: "lib.rs",
		Functions: []domain.FunctionExitPoints{
			{Name: "f", Returns: 2, HasMultipleReturns: true, Counts: map[string]int{"return": 2}},
		},
	}

	require.NoError(t, cache.Put("k", exitPointAnalysis, value))
	assert.Equal(t, 1, cache.Len())

	var got domain.FileExitPoints
	require.True(t, cache.Get("k", &got))
	assert.Equal(t, value, got)

	assert.False(t, cache.Get("other", &got))

	// A payload that does not decode into the target is a miss
	var wrong int
	assert.False(t, cache.Get("k", &wrong))

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestResultCache_SaveAndReload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")

	cache := NewResultCache(dir)
	require.NoError(t, cache.Save(), "saving a clean cache is a no-op")
	_, err := os.Stat(cache.Path())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, cache.Put("k", deadCodeAnalysis, []string{"a", "b"}))
	require.NoError(t, cache.Save())
	assert.FileExists(t, filepath.Join(dir, ResultCacheFileName))

	reloaded := NewResultCache(dir)
	var got []string
	require.True(t, reloaded.Get("k", &got))
	assert.Equal(t, []string{"a", "b"}, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestResultCache_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ResultCacheFileName), []byte("not msgpack"), 0o644))

	cache := NewResultCache(dir)
	assert.Equal(t, 0, cache.Len())
}

func TestResultCache_Nil(t *testing.T) {
	var cache *ResultCache
	var out string
	assert.False(t, cache.Get("k", &out))
	assert.NoError(t, cache.Put("k", "a", "v"))
	assert.NoError(t, cache.Save())
}

func TestResultCache_Concurrent(t *testing.T) {
	cache := NewResultCache(t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := ResultCacheKey("dead_code", "f.rs", []byte{byte(i)})
			assert.NoError(t, cache.Put(key, "dead_code", i))
			var got int
			assert.True(t, cache.Get(key, &got))
			assert.Equal(t, i, got)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 8, cache.Len())
}
