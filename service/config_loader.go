package service

import (
	"slices"

	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/internal/config"
)

// loadProjectConfig loads configPath when given, otherwise the configuration
// discovered upward from targetPath
func loadProjectConfig(configPath, targetPath string) (*config.Config, error) {
	return config.LoadConfigWithTarget(configPath, targetPath)
}

// outputFormatFromConfig converts output.format; unknown values fall back to text
func outputFormatFromConfig(format string) domain.OutputFormat {
	switch format {
	case "json":
		return domain.OutputFormatJSON
	case "yaml", "yml":
		return domain.OutputFormatYAML
	case "csv":
		return domain.OutputFormatCSV
	default:
		return domain.OutputFormatText
	}
}

// formatFlagSet reports whether any output format flag was given on the command line
func formatFlagSet(flags map[string]bool) bool {
	for _, name := range []string{"format", "json", "yaml", "csv"} {
		if config.WasExplicitlySet(flags, name) {
			return true
		}
	}
	return false
}

// extendDiverging appends names given on the command line to the configured
// list, or to the defaults when the configuration leaves it unset
func extendDiverging(configured, extra, defaults []string) []string {
	out := slices.Clone(orDefault(configured, defaults))
	for _, name := range extra {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}
