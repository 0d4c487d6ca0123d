package service

import (
	"fmt"

	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/internal/config"
	"github.com/ludo-technologies/rsscn/internal/parser"
)

// CheckConfigurationLoaderImpl reads the gate settings. Disabling dead code
// detection in the configuration turns dead code findings into ignored ones.
type CheckConfigurationLoaderImpl struct {
	flags *config.FlagTracker
}

// NewCheckConfigurationLoader creates a check configuration loader. explicitFlags
// may be nil, in which case every override value wins.
func NewCheckConfigurationLoader(explicitFlags map[string]bool) *CheckConfigurationLoaderImpl {
	cl := &CheckConfigurationLoaderImpl{}
	if explicitFlags != nil {
		cl.flags = config.NewFlagTrackerWithFlags(explicitFlags)
	}
	return cl
}

func (cl *CheckConfigurationLoaderImpl) LoadConfig(path string) (*domain.CheckRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return cl.configToRequest(cfg), nil
}

func (cl *CheckConfigurationLoaderImpl) LoadDefaultConfig(targetPath string) *domain.CheckRequest {
	cfg, err := loadProjectConfig("", targetPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return cl.configToRequest(cfg)
}

// MergeConfig applies command line values over the configuration
func (cl *CheckConfigurationLoaderImpl) MergeConfig(base *domain.CheckRequest, override *domain.CheckRequest) *domain.CheckRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base
	merged.Paths = override.Paths
	merged.OutputWriter = override.OutputWriter
	merged.Quiet = override.Quiet
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	if cl.flags == nil {
		if override.FailOn != "" {
			merged.FailOn = override.FailOn
		}
		merged.AllowDeadCode = merged.AllowDeadCode || override.AllowDeadCode
		if override.MaxReturns > 0 {
			merged.MaxReturns = override.MaxReturns
		}
		return &merged
	}

	merged.FailOn = domain.DeadCodeSeverity(cl.flags.MergeString(string(merged.FailOn), string(override.FailOn), "fail-on"))
	merged.AllowDeadCode = cl.flags.MergeBool(merged.AllowDeadCode, override.AllowDeadCode, "allow-dead-code")
	merged.MaxReturns = cl.flags.MergeInt(merged.MaxReturns, override.MaxReturns, "max-returns")
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

func (cl *CheckConfigurationLoaderImpl) configToRequest(cfg *config.Config) *domain.CheckRequest {
	req := domain.DefaultCheckRequest()
	req.AllowDeadCode = !cfg.DeadCode.Enabled
	req.MaxReturns = cfg.Exits.MaxReturns
	req.Recursive = cfg.Analysis.Recursive
	req.IncludePatterns = cfg.Analysis.IncludePatterns
	req.ExcludePatterns = cfg.Analysis.ExcludePatterns
	req.DivergingMacros = cfg.Types.DivergingMacros
	req.DivergingFunctions = cfg.Types.DivergingFunctions
	return req
}
