package app

import (
	"context"
	"fmt"
	"os"

	"github.com/ludo-technologies/rsscn/domain"
	svc "github.com/ludo-technologies/rsscn/service"
)

// prepareServices parses files once up front when the service accepts a
// parse cache and attaches the result cache when it accepts one. Progress is
// reported per parsed file.
func prepareServices(
	ctx context.Context,
	service interface{},
	files []string,
	buildCFGs bool,
	progress domain.ProgressManager,
	resultCache *svc.ResultCache,
) {
	if aware, ok := service.(svc.ResultCacheAware); ok && resultCache != nil {
		aware.SetResultCache(resultCache)
	}

	aware, ok := service.(svc.ParseCacheAware)
	if !ok {
		return
	}

	cfg := svc.ParseCachePopulatorConfig{BuildCFGs: buildCFGs}
	if progress != nil {
		progress.Initialize(len(files))
		progress.Start()
		cfg.OnFileDone = progress.Update
	}

	cache := svc.PopulateParseCache(ctx, files, cfg)

	if progress != nil {
		progress.Complete(ctx.Err() == nil)
	}
	aware.SetParseCache(cache)
}

// saveResultCache persists the result cache. A failed save only warns.
func saveResultCache(cache *svc.ResultCache) {
	if cache == nil {
		return
	}
	if err := cache.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save result cache %s: %v\n", cache.Path(), err)
	}
}
