package mcp

import (
	"github.com/ludo-technologies/rsscn/app"
	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/internal/config"
	"github.com/ludo-technologies/rsscn/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	fileReader domain.FileReader
	config     *config.Config
	configPath string
}

// NewDependencies constructs the dependency set with sane defaults.
func NewDependencies(cfg *config.Config, configPath string) *Dependencies {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	return &Dependencies{
		fileReader: service.NewFileReader(),
		config:     cfg,
		configPath: configPath,
	}
}

// Config exposes the loaded configuration snapshot.
func (d *Dependencies) Config() *config.Config {
	return d.config
}

// ConfigPath returns the configured config file path (may be empty to trigger discovery).
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// BuildDeadCodeUseCase assembles a dead code use case. Results never leave
// the process, so the report writer is the default one.
func (d *Dependencies) BuildDeadCodeUseCase() (*app.DeadCodeUseCase, error) {
	return app.NewDeadCodeUseCaseBuilder().
		WithService(service.NewDeadCodeService()).
		WithFileReader(d.fileReader).
		WithFormatter(service.NewDeadCodeFormatter()).
		WithConfigLoader(service.NewDeadCodeConfigurationLoader()).
		WithResultCache(d.resultCache()).
		Build()
}

// BuildExitPointUseCase assembles an exit point use case.
func (d *Dependencies) BuildExitPointUseCase() (*app.ExitPointUseCase, error) {
	return app.NewExitPointUseCaseBuilder().
		WithService(service.NewExitPointService()).
		WithFileReader(d.fileReader).
		WithFormatter(service.NewExitPointFormatter()).
		WithConfigLoader(service.NewExitPointConfigurationLoader()).
		WithResultCache(d.resultCache()).
		Build()
}

// BuildCFGUseCase assembles a CFG use case.
func (d *Dependencies) BuildCFGUseCase() *app.CFGUseCase {
	return app.NewCFGUseCase(service.NewCFGService(), d.fileReader, service.NewCFGFormatter())
}

// resultCache opens the result cache when the server configuration enables it
func (d *Dependencies) resultCache() *service.ResultCache {
	if d.config == nil || !d.config.Cache.Enabled {
		return nil
	}
	return service.NewResultCache(d.config.Cache.Directory)
}
