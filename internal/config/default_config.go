package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/pelletier/go-toml/v2"

	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/internal/parser"
)

// defaultConfigTmpl contains the embedded default configuration template
//
//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

// DefaultConfigValues holds all values used to render the default config template.
type DefaultConfigValues struct {
	IncludePatterns []string
	ExcludePatterns []string

	DivergingMacros    []string
	DivergingFunctions []string

	DeadCodeMinSeverity  string
	DeadCodeSortBy       string
	DeadCodeContextLines int

	ExitsSortBy string
	MaxReturns  int

	CFGFormat       string
	OutputFormat    string
	OutputDirectory string
	CacheDirectory  string
}

// newDefaultConfigValues creates a DefaultConfigValues populated from the package defaults
func newDefaultConfigValues() DefaultConfigValues {
	return DefaultConfigValues{
		IncludePatterns: domain.DefaultIncludePatterns(),
		ExcludePatterns: domain.DefaultExcludePatterns(),

		DivergingMacros:    parser.DefaultDivergingMacros,
		DivergingFunctions: parser.DefaultDivergingFunctions,

		DeadCodeMinSeverity:  DefaultDeadCodeMinSeverity,
		DeadCodeSortBy:       DefaultDeadCodeSortBy,
		DeadCodeContextLines: DefaultDeadCodeContextLines,

		ExitsSortBy: DefaultExitsSortBy,
		MaxReturns:  domain.DefaultMaxReturns,

		CFGFormat:       DefaultCFGFormat,
		OutputFormat:    DefaultOutputFormat,
		OutputDirectory: domain.DefaultReportDirectory,
		CacheDirectory:  DefaultCacheDirectory,
	}
}

// GenerateDefaultConfigTOML renders the commented .rsscn.toml written by `rsscn init`
func GenerateDefaultConfigTOML() (string, error) {
	tmpl, err := template.New("default_config").Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDefaultConfigValues()); err != nil {
		return "", fmt.Errorf("failed to render default config template: %w", err)
	}

	return buf.String(), nil
}

// LoadDefaultConfigFromTOML parses the rendered default config back into a Config
func LoadDefaultConfigFromTOML() (*Config, error) {
	configTOML, err := GenerateDefaultConfigTOML()
	if err != nil {
		return nil, err
	}

	var tomlCfg RsscnTomlConfig
	if err := toml.Unmarshal([]byte(configTOML), &tomlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse default config: %w", err)
	}

	cfg := DefaultConfig()
	NewTomlConfigLoader().mergeTomlConfig(cfg, &tomlCfg)
	return cfg, nil
}
