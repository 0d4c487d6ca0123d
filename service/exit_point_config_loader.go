package service

import (
	"fmt"

	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/internal/config"
	"github.com/ludo-technologies/rsscn/internal/parser"
)

// ExitPointConfigurationLoaderImpl maps the [exits] configuration onto exit point requests
type ExitPointConfigurationLoaderImpl struct{}

func NewExitPointConfigurationLoader() *ExitPointConfigurationLoaderImpl {
	return &ExitPointConfigurationLoaderImpl{}
}

// LoadConfig loads exit point configuration from the specified file
func (cl *ExitPointConfigurationLoaderImpl) LoadConfig(path string) (*domain.ExitPointRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return cl.configToRequest(cfg), nil
}

// LoadDefaultConfig discovers configuration above targetPath, falling back to defaults
func (cl *ExitPointConfigurationLoaderImpl) LoadDefaultConfig(targetPath string) *domain.ExitPointRequest {
	cfg, err := loadProjectConfig("", targetPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return cl.configToRequest(cfg)
}

// MergeConfig lets every non-zero override win
func (cl *ExitPointConfigurationLoaderImpl) MergeConfig(base *domain.ExitPointRequest, override *domain.ExitPointRequest) *domain.ExitPointRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base

	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}
	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}
	if override.OnlyMultiple {
		merged.OnlyMultiple = true
	}
	if override.ReportTail != nil {
		merged.ReportTail = override.ReportTail
	}
	if override.SortBy != "" {
		merged.SortBy = override.SortBy
	}
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}
	if len(override.IncludePatterns) > 0 {
		merged.IncludePatterns = override.IncludePatterns
	}
	if len(override.ExcludePatterns) > 0 {
		merged.ExcludePatterns = override.ExcludePatterns
	}
	if override.DivergingMacros != nil {
		merged.DivergingMacros = override.DivergingMacros
	}
	if override.DivergingFunctions != nil {
		merged.DivergingFunctions = override.DivergingFunctions
	}

	return &merged
}

func (cl *ExitPointConfigurationLoaderImpl) configToRequest(cfg *config.Config) *domain.ExitPointRequest {
	if cfg == nil {
		return domain.DefaultExitPointRequest()
	}

	var sortBy domain.ExitPointSortCriteria
	switch cfg.Exits.SortBy {
	case "name":
		sortBy = domain.ExitPointSortByName
	case "exits":
		sortBy = domain.ExitPointSortByExits
	default:
		sortBy = domain.ExitPointSortByLocation
	}

	return &domain.ExitPointRequest{
		OutputFormat:       outputFormatFromConfig(cfg.Output.Format),
		OnlyMultiple:       cfg.Exits.OnlyMultiple,
		ReportTail:         domain.BoolPtr(cfg.Exits.ReportTail),
		SortBy:             sortBy,
		Recursive:          cfg.Analysis.Recursive,
		IncludePatterns:    cfg.Analysis.IncludePatterns,
		ExcludePatterns:    cfg.Analysis.ExcludePatterns,
		DivergingMacros:    cfg.Types.DivergingMacros,
		DivergingFunctions: cfg.Types.DivergingFunctions,
	}
}

// ExitPointConfigurationLoaderWithFlags lets only explicitly set CLI flags override the configuration file
type ExitPointConfigurationLoaderWithFlags struct {
	loader *ExitPointConfigurationLoaderImpl
	flags  *config.FlagTracker
}

func NewExitPointConfigurationLoaderWithFlags(explicitFlags map[string]bool) *ExitPointConfigurationLoaderWithFlags {
	return &ExitPointConfigurationLoaderWithFlags{
		loader: NewExitPointConfigurationLoader(),
		flags:  config.NewFlagTrackerWithFlags(explicitFlags),
	}
}

func (cl *ExitPointConfigurationLoaderWithFlags) LoadConfig(path string) (*domain.ExitPointRequest, error) {
	return cl.loader.LoadConfig(path)
}

func (cl *ExitPointConfigurationLoaderWithFlags) LoadDefaultConfig(targetPath string) *domain.ExitPointRequest {
	return cl.loader.LoadDefaultConfig(targetPath)
}

// MergeConfig merges CLI flags with configuration file, respecting explicit flags
func (cl *ExitPointConfigurationLoaderWithFlags) MergeConfig(base *domain.ExitPointRequest, override *domain.ExitPointRequest) *domain.ExitPointRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base

	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}
	if formatFlagSet(cl.flags.GetAll()) || merged.OutputFormat == "" {
		merged.OutputFormat = override.OutputFormat
	}
	merged.OutputWriter = override.OutputWriter
	merged.OutputPath = override.OutputPath
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	merged.OnlyMultiple = cl.flags.MergeBool(merged.OnlyMultiple, override.OnlyMultiple, "only-multiple")
	if cl.flags.WasSet("no-tail") {
		merged.ReportTail = override.ReportTail
	}
	merged.SortBy = domain.ExitPointSortCriteria(cl.flags.MergeString(string(merged.SortBy), string(override.SortBy), "sort"))

	merged.Recursive = cl.flags.MergeBool(merged.Recursive, override.Recursive, "recursive")
	merged.IncludePatterns = cl.flags.MergeStringSlice(merged.IncludePatterns, override.IncludePatterns, "include")
	merged.ExcludePatterns = cl.flags.MergeStringSlice(merged.ExcludePatterns, override.ExcludePatterns, "exclude")
	if cl.flags.WasSet("diverging-macro") {
		merged.DivergingMacros = extendDiverging(merged.DivergingMacros, override.DivergingMacros, parser.DefaultDivergingMacros)
	}
	if cl.flags.WasSet("diverging-fn") {
		merged.DivergingFunctions = extendDiverging(merged.DivergingFunctions, override.DivergingFunctions, parser.DefaultDivergingFunctions)
	}

	return &merged
}
