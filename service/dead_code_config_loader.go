package service

import (
	"fmt"

	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/internal/config"
)

// DeadCodeConfigurationLoaderImpl implements the DeadCodeConfigurationLoader interface
type DeadCodeConfigurationLoaderImpl struct{}

// NewDeadCodeConfigurationLoader creates a new dead code configuration loader service
func NewDeadCodeConfigurationLoader() *DeadCodeConfigurationLoaderImpl {
	return &DeadCodeConfigurationLoaderImpl{}
}

// LoadConfig loads dead code configuration from the specified file
func (cl *DeadCodeConfigurationLoaderImpl) LoadConfig(path string) (*domain.DeadCodeRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return cl.configToRequest(cfg), nil
}

// LoadDefaultConfig discovers .rsscn.toml or Cargo metadata above targetPath.
// Hardcoded defaults are returned when discovery fails.
func (cl *DeadCodeConfigurationLoaderImpl) LoadDefaultConfig(targetPath string) *domain.DeadCodeRequest {
	cfg, err := loadProjectConfig("", targetPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return cl.configToRequest(cfg)
}

// MergeConfig merges CLI values over the configuration file. Without flag
// tracking every non-zero override wins.
func (cl *DeadCodeConfigurationLoaderImpl) MergeConfig(base *domain.DeadCodeRequest, override *domain.DeadCodeRequest) *domain.DeadCodeRequest {
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
	if override.ShowContext != nil {
		merged.ShowContext = override.ShowContext
	}
	if override.ContextLines > 0 {
		merged.ContextLines = override.ContextLines
	}
	if override.MinSeverity != "" {
		merged.MinSeverity = override.MinSeverity
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

// configToRequest converts a config.Config to domain.DeadCodeRequest
func (cl *DeadCodeConfigurationLoaderImpl) configToRequest(cfg *config.Config) *domain.DeadCodeRequest {
	if cfg == nil {
		return domain.DefaultDeadCodeRequest()
	}

	var minSeverity domain.DeadCodeSeverity
	switch cfg.DeadCode.MinSeverity {
	case "critical":
		minSeverity = domain.DeadCodeSeverityCritical
	case "info":
		minSeverity = domain.DeadCodeSeverityInfo
	default:
		minSeverity = domain.DeadCodeSeverityWarning
	}

	var sortBy domain.DeadCodeSortCriteria
	switch cfg.DeadCode.SortBy {
	case "line":
		sortBy = domain.DeadCodeSortByLine
	case "file":
		sortBy = domain.DeadCodeSortByFile
	case "function":
		sortBy = domain.DeadCodeSortByFunction
	default:
		sortBy = domain.DeadCodeSortBySeverity
	}

	return &domain.DeadCodeRequest{
		OutputFormat:       outputFormatFromConfig(cfg.Output.Format),
		ShowContext:        domain.BoolPtr(cfg.DeadCode.ShowContext),
		ContextLines:       cfg.DeadCode.ContextLines,
		MinSeverity:        minSeverity,
		SortBy:             sortBy,
		Recursive:          cfg.Analysis.Recursive,
		IncludePatterns:    cfg.Analysis.IncludePatterns,
		ExcludePatterns:    cfg.Analysis.ExcludePatterns,
		DivergingMacros:    cfg.Types.DivergingMacros,
		DivergingFunctions: cfg.Types.DivergingFunctions,
	}
}
