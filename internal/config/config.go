package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/internal/parser"
)

// Default dead code detection settings
const (
	// DefaultDeadCodeMinSeverity defines the minimum severity level to report
	DefaultDeadCodeMinSeverity = "warning"

	// DefaultDeadCodeContextLines defines the number of context lines to show
	DefaultDeadCodeContextLines = 3

	// DefaultDeadCodeSortBy defines the default sorting criteria
	DefaultDeadCodeSortBy = "severity"

	// MaxDeadCodeContextLines bounds dead_code.context_lines
	MaxDeadCodeContextLines = 20
)

// Default exit point and CFG settings
const (
	DefaultExitsSortBy    = "location"
	DefaultCFGFormat      = "dot"
	DefaultOutputFormat   = "text"
	DefaultCacheDirectory = ".rsscn/cache"
)

// Config represents the main configuration structure
type Config struct {
	// Analysis holds file discovery settings
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`

	// Types configures the never-type oracle
	Types TypesConfig `mapstructure:"types" yaml:"types"`

	// DeadCode holds dead code detection configuration
	DeadCode DeadCodeConfig `mapstructure:"dead_code" yaml:"dead_code"`

	// Exits holds exit point reporting configuration
	Exits ExitsConfig `mapstructure:"exits" yaml:"exits"`

	// CFG holds graph rendering configuration
	CFG CFGConfig `mapstructure:"cfg" yaml:"cfg"`

	// Output holds output formatting configuration
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// Cache holds result cache configuration
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`
}

// AnalysisConfig holds general analysis configuration
type AnalysisConfig struct {
	// IncludePatterns specifies file patterns to include
	IncludePatterns []string `mapstructure:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns specifies file patterns to exclude
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// Recursive controls whether to analyze directories recursively
	Recursive bool `mapstructure:"recursive" yaml:"recursive"`
}

// TypesConfig lists the calls treated as diverging. A nil list selects the built-in defaults.
type TypesConfig struct {
	DivergingMacros    []string `mapstructure:"diverging_macros" yaml:"diverging_macros"`
	DivergingFunctions []string `mapstructure:"diverging_functions" yaml:"diverging_functions"`
}

// DeadCodeConfig holds configuration for dead code detection
type DeadCodeConfig struct {
	// Enabled controls whether dead code detection is performed
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// MinSeverity is the minimum severity level to report
	MinSeverity string `mapstructure:"min_severity" yaml:"min_severity"`

	// SortBy specifies how to sort results: severity, line, file, function
	SortBy string `mapstructure:"sort_by" yaml:"sort_by"`

	// ShowContext prints the statement that ends control flow before each finding
	ShowContext bool `mapstructure:"show_context" yaml:"show_context"`

	// ContextLines bounds the number of context lines shown
	ContextLines int `mapstructure:"context_lines" yaml:"context_lines"`
}

// ExitsConfig holds configuration for exit point reporting
type ExitsConfig struct {
	// ReportTail includes tail expressions and tail statements in reports
	ReportTail bool `mapstructure:"report_tail" yaml:"report_tail"`

	// OnlyMultiple reports only functions with more than one way out
	OnlyMultiple bool `mapstructure:"only_multiple" yaml:"only_multiple"`

	// SortBy specifies how to sort functions: location, name, exits
	SortBy string `mapstructure:"sort_by" yaml:"sort_by"`

	// MaxReturns is the explicit return budget enforced by check; 0 disables it
	MaxReturns int `mapstructure:"max_returns" yaml:"max_returns"`
}

// CFGConfig holds configuration for the cfg command
type CFGConfig struct {
	// Format is the default graph output: dot, text (depth-first trace) or json
	Format string `mapstructure:"format" yaml:"format"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the report format: text, json, yaml, csv
	Format string `mapstructure:"format" yaml:"format"`

	// Directory receives reports written with --output-dir style flags
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// CacheConfig holds configuration for the on-disk result cache
type CacheConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			IncludePatterns: domain.DefaultIncludePatterns(),
			ExcludePatterns: domain.DefaultExcludePatterns(),
			Recursive:       true,
		},
		Types: TypesConfig{},
		DeadCode: DeadCodeConfig{
			Enabled:      true,
			MinSeverity:  DefaultDeadCodeMinSeverity,
			SortBy:       DefaultDeadCodeSortBy,
			ShowContext:  false,
			ContextLines: DefaultDeadCodeContextLines,
		},
		Exits: ExitsConfig{
			ReportTail:   true,
			OnlyMultiple: false,
			SortBy:       DefaultExitsSortBy,
			MaxReturns:   domain.DefaultMaxReturns,
		},
		CFG: CFGConfig{
			Format: DefaultCFGFormat,
		},
		Output: OutputConfig{
			Format:    DefaultOutputFormat,
			Directory: domain.DefaultReportDirectory,
		},
		Cache: CacheConfig{
			Enabled:   false,
			Directory: DefaultCacheDirectory,
		},
	}
}

// LoadConfig loads an explicit configuration file of any type viper supports.
// A Cargo.toml is read through its [package.metadata.rsscn] table. An empty
// path discovers configuration from the current directory.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return NewTomlConfigLoader().LoadConfig(".")
	}

	if filepath.Base(configPath) == domain.CargoManifestName {
		cfg, err := NewTomlConfigLoader().LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}

	config := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(configPath)
	if strings.HasSuffix(configPath, ".toml") {
		v.SetConfigType("toml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigWithTarget loads configPath when given, otherwise discovers
// .rsscn.toml or Cargo.toml upward from targetPath
func LoadConfigWithTarget(configPath, targetPath string) (*Config, error) {
	if configPath != "" {
		return LoadConfig(configPath)
	}
	if targetPath == "" {
		targetPath = "."
	}
	return NewTomlConfigLoader().LoadConfig(targetPath)
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
		"csv":  true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, csv", c.Output.Format)
	}

	validCFGFormats := map[string]bool{
		"dot":  true,
		"text": true,
		"json": true,
		"yaml": true,
		"csv":  true,
	}
	if !validCFGFormats[c.CFG.Format] {
		return fmt.Errorf("invalid cfg.format '%s', must be one of: dot, text, json, yaml, csv", c.CFG.Format)
	}

	if len(c.Analysis.IncludePatterns) == 0 {
		return fmt.Errorf("analysis.include_patterns cannot be empty")
	}

	if err := c.validateDeadCodeConfig(); err != nil {
		return err
	}

	validExitSort := map[string]bool{
		"location": true,
		"name":     true,
		"exits":    true,
	}
	if !validExitSort[c.Exits.SortBy] {
		return fmt.Errorf("invalid exits.sort_by '%s', must be one of: location, name, exits", c.Exits.SortBy)
	}
	if c.Exits.MaxReturns < 0 {
		return fmt.Errorf("exits.max_returns must be >= 0, got %d", c.Exits.MaxReturns)
	}

	if c.Cache.Enabled && c.Cache.Directory == "" {
		return fmt.Errorf("cache.directory cannot be empty when the cache is enabled")
	}

	return nil
}

// validateDeadCodeConfig validates the dead code configuration
func (c *Config) validateDeadCodeConfig() error {
	validSeverities := map[string]bool{
		"critical": true,
		"warning":  true,
		"info":     true,
	}
	if !validSeverities[c.DeadCode.MinSeverity] {
		return fmt.Errorf("invalid dead_code.min_severity '%s', must be one of: critical, warning, info", c.DeadCode.MinSeverity)
	}

	if c.DeadCode.ContextLines < 0 {
		return fmt.Errorf("dead_code.context_lines must be >= 0, got %d", c.DeadCode.ContextLines)
	}
	if c.DeadCode.ContextLines > MaxDeadCodeContextLines {
		return fmt.Errorf("dead_code.context_lines cannot exceed %d, got %d", MaxDeadCodeContextLines, c.DeadCode.ContextLines)
	}

	validSortBy := map[string]bool{
		"severity": true,
		"line":     true,
		"file":     true,
		"function": true,
	}
	if !validSortBy[c.DeadCode.SortBy] {
		return fmt.Errorf("invalid dead_code.sort_by '%s', must be one of: severity, line, file, function", c.DeadCode.SortBy)
	}

	return nil
}

// Oracle builds the never-type oracle described by the [types] section
func (c *TypesConfig) Oracle() parser.TypeOracle {
	return parser.NewNeverOracle(c.DivergingMacros, c.DivergingFunctions)
}
