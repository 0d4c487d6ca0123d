package service

import (
	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/internal/config"
	"github.com/ludo-technologies/rsscn/internal/parser"
)

// DeadCodeConfigurationLoaderWithFlags lets only explicitly set CLI flags override the configuration file
type DeadCodeConfigurationLoaderWithFlags struct {
	loader *DeadCodeConfigurationLoaderImpl
	flags  *config.FlagTracker
}

// NewDeadCodeConfigurationLoaderWithFlags creates a dead code configuration loader that tracks explicit flags
func NewDeadCodeConfigurationLoaderWithFlags(explicitFlags map[string]bool) *DeadCodeConfigurationLoaderWithFlags {
	return &DeadCodeConfigurationLoaderWithFlags{
		loader: NewDeadCodeConfigurationLoader(),
		flags:  config.NewFlagTrackerWithFlags(explicitFlags),
	}
}

func (cl *DeadCodeConfigurationLoaderWithFlags) LoadConfig(path string) (*domain.DeadCodeRequest, error) {
	return cl.loader.LoadConfig(path)
}

func (cl *DeadCodeConfigurationLoaderWithFlags) LoadDefaultConfig(targetPath string) *domain.DeadCodeRequest {
	return cl.loader.LoadDefaultConfig(targetPath)
}

// MergeConfig merges CLI flags with configuration file, respecting explicit flags
func (cl *DeadCodeConfigurationLoaderWithFlags) MergeConfig(base *domain.DeadCodeRequest, override *domain.DeadCodeRequest) *domain.DeadCodeRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base

	// Paths and destinations always come from the command
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

	if cl.flags.WasSet("show-context") {
		merged.ShowContext = override.ShowContext
	}
	merged.ContextLines = cl.flags.MergeInt(merged.ContextLines, override.ContextLines, "context-lines")
	merged.MinSeverity = domain.DeadCodeSeverity(cl.flags.MergeString(string(merged.MinSeverity), string(override.MinSeverity), "min-severity"))
	merged.SortBy = domain.DeadCodeSortCriteria(cl.flags.MergeString(string(merged.SortBy), string(override.SortBy), "sort"))

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
