package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ludo-technologies/rsscn/domain"
)

// RsscnTomlConfig represents the structure of .rsscn.toml and of the
// [package.metadata.rsscn] table in Cargo.toml. Pointers detect unset values.
type RsscnTomlConfig struct {
	Analysis TomlAnalysisConfig `toml:"analysis"`
	Types    TomlTypesConfig    `toml:"types"`
	DeadCode TomlDeadCodeConfig `toml:"dead_code"`
	Exits    TomlExitsConfig    `toml:"exits"`
	CFG      TomlCFGConfig      `toml:"cfg"`
	Output   TomlOutputConfig   `toml:"output"`
	Cache    TomlCacheConfig    `toml:"cache"`
}

type TomlAnalysisConfig struct {
	IncludePatterns []string `toml:"include_patterns"`
	ExcludePatterns []string `toml:"exclude_patterns"`
	Recursive       *bool    `toml:"recursive"`
}

type TomlTypesConfig struct {
	DivergingMacros    []string `toml:"diverging_macros"`
	DivergingFunctions []string `toml:"diverging_functions"`
}

type TomlDeadCodeConfig struct {
	Enabled      *bool  `toml:"enabled"`
	MinSeverity  string `toml:"min_severity"`
	SortBy       string `toml:"sort_by"`
	ShowContext  *bool  `toml:"show_context"`
	ContextLines *int   `toml:"context_lines"`
}

type TomlExitsConfig struct {
	ReportTail   *bool  `toml:"report_tail"`
	OnlyMultiple *bool  `toml:"only_multiple"`
	SortBy       string `toml:"sort_by"`
	MaxReturns   *int   `toml:"max_returns"`
}

type TomlCFGConfig struct {
	Format string `toml:"format"`
}

type TomlOutputConfig struct {
	Format    string `toml:"format"`
	Directory string `toml:"directory"`
}

type TomlCacheConfig struct {
	Enabled   *bool  `toml:"enabled"`
	Directory string `toml:"directory"`
}

// cargoManifest picks the rsscn metadata out of Cargo.toml. Package metadata
// wins over workspace metadata.
type cargoManifest struct {
	Package *struct {
		Metadata struct {
			Rsscn *RsscnTomlConfig `toml:"rsscn"`
		} `toml:"metadata"`
	} `toml:"package"`
	Workspace *struct {
		Metadata struct {
			Rsscn *RsscnTomlConfig `toml:"rsscn"`
		} `toml:"metadata"`
	} `toml:"workspace"`
}

func (m *cargoManifest) rsscn() *RsscnTomlConfig {
	if m.Package != nil && m.Package.Metadata.Rsscn != nil {
		return m.Package.Metadata.Rsscn
	}
	if m.Workspace != nil && m.Workspace.Metadata.Rsscn != nil {
		return m.Workspace.Metadata.Rsscn
	}
	return nil
}

// errNoRsscnMetadata marks a Cargo.toml without an rsscn table
var errNoRsscnMetadata = errors.New("no [package.metadata.rsscn] table")

// TomlConfigLoader handles TOML configuration discovery
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a new TOML configuration loader
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// LoadConfig discovers configuration walking up from startDir. In each
// directory .rsscn.toml is preferred, then a Cargo.toml carrying an rsscn
// metadata table. Defaults are returned when nothing is found.
func (l *TomlConfigLoader) LoadConfig(startDir string) (*Config, error) {
	path, err := l.FindConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return l.LoadFile(path)
}

// LoadFile loads one .rsscn.toml or Cargo.toml and merges it into the defaults
func (l *TomlConfigLoader) LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var tomlCfg *RsscnTomlConfig
	if filepath.Base(path) == domain.CargoManifestName {
		var manifest cargoManifest
		if err := toml.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		tomlCfg = manifest.rsscn()
		if tomlCfg == nil {
			return nil, fmt.Errorf("%s: %w", path, errNoRsscnMetadata)
		}
	} else {
		tomlCfg = &RsscnTomlConfig{}
		if err := toml.Unmarshal(data, tomlCfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg := DefaultConfig()
	l.mergeTomlConfig(cfg, tomlCfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// FindConfigFile returns the nearest configuration file at or above startDir.
// startDir may name a file, in which case its directory is searched first.
func (l *TomlConfigLoader) FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		configPath := filepath.Join(dir, domain.ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		manifestPath := filepath.Join(dir, domain.CargoManifestName)
		if l.hasRsscnMetadata(manifestPath) {
			return manifestPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}

// hasRsscnMetadata reports whether a readable Cargo.toml carries an rsscn table
func (l *TomlConfigLoader) hasRsscnMetadata(manifestPath string) bool {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return false
	}
	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return false
	}
	return manifest.rsscn() != nil
}

// mergeTomlConfig copies every value set in the file over the defaults
func (l *TomlConfigLoader) mergeTomlConfig(defaults *Config, t *RsscnTomlConfig) {
	// Analysis
	if len(t.Analysis.IncludePatterns) > 0 {
		defaults.Analysis.IncludePatterns = t.Analysis.IncludePatterns
	}
	if t.Analysis.ExcludePatterns != nil {
		defaults.Analysis.ExcludePatterns = t.Analysis.ExcludePatterns
	}
	if t.Analysis.Recursive != nil {
		defaults.Analysis.Recursive = *t.Analysis.Recursive
	}

	// Types: an explicit empty list disables the defaults
	if t.Types.DivergingMacros != nil {
		defaults.Types.DivergingMacros = t.Types.DivergingMacros
	}
	if t.Types.DivergingFunctions != nil {
		defaults.Types.DivergingFunctions = t.Types.DivergingFunctions
	}

	// Dead code
	if t.DeadCode.Enabled != nil {
		defaults.DeadCode.Enabled = *t.DeadCode.Enabled
	}
	if t.DeadCode.MinSeverity != "" {
		defaults.DeadCode.MinSeverity = t.DeadCode.MinSeverity
	}
	if t.DeadCode.SortBy != "" {
		defaults.DeadCode.SortBy = t.DeadCode.SortBy
	}
	if t.DeadCode.ShowContext != nil {
		defaults.DeadCode.ShowContext = *t.DeadCode.ShowContext
	}
	if t.DeadCode.ContextLines != nil {
		defaults.DeadCode.ContextLines = *t.DeadCode.ContextLines
	}

	// Exits
	if t.Exits.ReportTail != nil {
		defaults.Exits.ReportTail = *t.Exits.ReportTail
	}
	if t.Exits.OnlyMultiple != nil {
		defaults.Exits.OnlyMultiple = *t.Exits.OnlyMultiple
	}
	if t.Exits.SortBy != "" {
		defaults.Exits.SortBy = t.Exits.SortBy
	}
	if t.Exits.MaxReturns != nil {
		defaults.Exits.MaxReturns = *t.Exits.MaxReturns
	}

	// CFG
	if t.CFG.Format != "" {
		defaults.CFG.Format = t.CFG.Format
	}

	// Output
	if t.Output.Format != "" {
		defaults.Output.Format = t.Output.Format
	}
	if t.Output.Directory != "" {
		defaults.Output.Directory = t.Output.Directory
	}

	// Cache
	if t.Cache.Enabled != nil {
		defaults.Cache.Enabled = *t.Cache.Enabled
	}
	if t.Cache.Directory != "" {
		defaults.Cache.Directory = t.Cache.Directory
	}
}

// GetSupportedConfigFiles returns the supported TOML config files in order of precedence
func (l *TomlConfigLoader) GetSupportedConfigFiles() []string {
	return []string{
		domain.ConfigFileName,    // dedicated config file (highest priority)
		domain.CargoManifestName, // with [package.metadata.rsscn] table
	}
}
