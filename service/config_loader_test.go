package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/internal/parser"
)

const projectConfig = `[analysis]
exclude_patterns = ["generated/**"]

[types]
diverging_macros = ["panic", "bail"]

[dead_code]
enabled = false
min_severity = "critical"
sort_by = "line"
show_context = true
context_lines = 5

[exits]
only_multiple = true
report_tail = false
sort_by = "exits"
max_returns = 4

[output]
format = "yaml"
`

func TestDeadCodeConfigurationLoader_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, ".rsscn.toml", projectConfig)

	req, err := NewDeadCodeConfigurationLoader().LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, domain.DeadCodeSeverityCritical, req.MinSeverity)
	assert.Equal(t, domain.DeadCodeSortByLine, req.SortBy)
	assert.True(t, domain.BoolValue(req.ShowContext, false))
	assert.Equal(t, 5, req.ContextLines)
	assert.Equal(t, domain.OutputFormatYAML, req.OutputFormat)
	assert.Equal(t, []string{"generated/**"}, req.ExcludePatterns)
	assert.Equal(t, []string{"panic", "bail"}, req.DivergingMacros)

	_, err = NewDeadCodeConfigurationLoader().LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestDeadCodeConfigurationLoader_LoadDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	createTestFile(t, dir, "Cargo.toml", "[package]\nname = \"demo\"\n\n[package.metadata.rsscn.dead_code]\nmin_severity = \"info\"\n")
	target := createTestFile(t, dir, "src/lib.rs", "fn f() {}")

	req := NewDeadCodeConfigurationLoader().LoadDefaultConfig(target)
	assert.Equal(t, domain.DeadCodeSeverityInfo, req.MinSeverity)
	assert.Equal(t, domain.DeadCodeSortBySeverity, req.SortBy)
	assert.Equal(t, 3, req.ContextLines)

	// Without any configuration the defaults apply
	req = NewDeadCodeConfigurationLoader().LoadDefaultConfig(t.TempDir())
	assert.Equal(t, domain.DeadCodeSeverityWarning, req.MinSeverity)
	assert.Nil(t, req.DivergingMacros)
}

func TestDeadCodeConfigurationLoader_MergeConfig(t *testing.T) {
	loader := NewDeadCodeConfigurationLoader()
	base := &domain.DeadCodeRequest{
		MinSeverity:  domain.DeadCodeSeverityWarning,
		SortBy:       domain.DeadCodeSortBySeverity,
		ContextLines: 3,
		OutputFormat: domain.OutputFormatText,
	}

	merged := loader.MergeConfig(base, &domain.DeadCodeRequest{
		Paths:        []string{"src"},
		MinSeverity:  domain.DeadCodeSeverityCritical,
		OutputFormat: domain.OutputFormatJSON,
	})
	assert.Equal(t, []string{"src"}, merged.Paths)
	assert.Equal(t, domain.DeadCodeSeverityCritical, merged.MinSeverity)
	assert.Equal(t, domain.DeadCodeSortBySeverity, merged.SortBy)
	assert.Equal(t, 3, merged.ContextLines)
	assert.Equal(t, domain.OutputFormatJSON, merged.OutputFormat)

	assert.Same(t, base, loader.MergeConfig(base, nil))
}

func TestDeadCodeConfigurationLoaderWithFlags_MergeConfig(t *testing.T) {
	base := &domain.DeadCodeRequest{
		OutputFormat:    domain.OutputFormatYAML,
		ShowContext:     domain.BoolPtr(true),
		ContextLines:    5,
		MinSeverity:     domain.DeadCodeSeverityCritical,
		SortBy:          domain.DeadCodeSortByLine,
		Recursive:       true,
		ExcludePatterns: []string{"generated/**"},
		DivergingMacros: []string{"panic", "bail"},
	}
	// Values the command line would carry as flag defaults
	override := &domain.DeadCodeRequest{
		Paths:           []string{"src"},
		OutputFormat:    domain.OutputFormatText,
		ShowContext:     domain.BoolPtr(false),
		ContextLines:    3,
		MinSeverity:     domain.DeadCodeSeverityWarning,
		SortBy:          domain.DeadCodeSortBySeverity,
		Recursive:       true,
		DivergingMacros: []string{"fail"},
	}

	tests := []struct {
		name  string
		flags map[string]bool
		check func(t *testing.T, merged *domain.DeadCodeRequest)
	}{
		{
			name:  "no flags keep the configuration",
			flags: map[string]bool{},
			check: func(t *testing.T, merged *domain.DeadCodeRequest) {
				assert.Equal(t, []string{"src"}, merged.Paths)
				assert.Equal(t, domain.OutputFormatYAML, merged.OutputFormat)
				assert.True(t, *merged.ShowContext)
				assert.Equal(t, 5, merged.ContextLines)
				assert.Equal(t, domain.DeadCodeSeverityCritical, merged.MinSeverity)
				assert.Equal(t, domain.DeadCodeSortByLine, merged.SortBy)
				assert.Equal(t, []string{"generated/**"}, merged.ExcludePatterns)
				assert.Equal(t, []string{"panic", "bail"}, merged.DivergingMacros)
			},
		},
		{
			name:  "explicit flags win",
			flags: map[string]bool{"json": true, "show-context": true, "min-severity": true, "context-lines": true},
			check: func(t *testing.T, merged *domain.DeadCodeRequest) {
				assert.Equal(t, domain.OutputFormatText, merged.OutputFormat)
				assert.False(t, *merged.ShowContext)
				assert.Equal(t, 3, merged.ContextLines)
				assert.Equal(t, domain.DeadCodeSeverityWarning, merged.MinSeverity)
				assert.Equal(t, domain.DeadCodeSortByLine, merged.SortBy)
			},
		},
		{
			name:  "diverging macros extend the configured list",
			flags: map[string]bool{"diverging-macro": true},
			check: func(t *testing.T, merged *domain.DeadCodeRequest) {
				assert.Equal(t, []string{"panic", "bail", "fail"}, merged.DivergingMacros)
				assert.Equal(t, []string{"panic", "bail"}, base.DivergingMacros, "base is not modified")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := NewDeadCodeConfigurationLoaderWithFlags(tt.flags).MergeConfig(base, override)
			tt.check(t, merged)
		})
	}
}

func TestExitPointConfigurationLoader(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, ".rsscn.toml", projectConfig)

	req, err := NewExitPointConfigurationLoader().LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, req.OnlyMultiple)
	assert.False(t, domain.BoolValue(req.ReportTail, true))
	assert.Equal(t, domain.ExitPointSortByExits, req.SortBy)

	defaults := NewExitPointConfigurationLoader().LoadDefaultConfig(t.TempDir())
	assert.False(t, defaults.OnlyMultiple)
	assert.True(t, domain.BoolValue(defaults.ReportTail, false))
	assert.Equal(t, domain.ExitPointSortByLocation, defaults.SortBy)
}

func TestExitPointConfigurationLoaderWithFlags_MergeConfig(t *testing.T) {
	base := &domain.ExitPointRequest{
		OnlyMultiple: true,
		ReportTail:   domain.BoolPtr(false),
		SortBy:       domain.ExitPointSortByExits,
	}
	override := &domain.ExitPointRequest{
		Paths:              []string{"src"},
		OutputFormat:       domain.OutputFormatCSV,
		ReportTail:         domain.BoolPtr(true),
		SortBy:             domain.ExitPointSortByName,
		DivergingFunctions: []string{"my::abort"},
	}

	merged := NewExitPointConfigurationLoaderWithFlags(map[string]bool{}).MergeConfig(base, override)
	assert.True(t, merged.OnlyMultiple)
	assert.False(t, *merged.ReportTail)
	assert.Equal(t, domain.ExitPointSortByExits, merged.SortBy)
	assert.Equal(t, domain.OutputFormatCSV, merged.OutputFormat, "an empty configured format takes the command's")
	assert.Nil(t, merged.DivergingFunctions)

	merged = NewExitPointConfigurationLoaderWithFlags(map[string]bool{
		"no-tail": true, "sort": true, "diverging-fn": true,
	}).MergeConfig(base, override)
	assert.True(t, *merged.ReportTail)
	assert.Equal(t, domain.ExitPointSortByName, merged.SortBy)
	assert.Equal(t, append(append([]string{}, parser.DefaultDivergingFunctions...), "my::abort"), merged.DivergingFunctions)
}

func TestCheckConfigurationLoader(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, ".rsscn.toml", projectConfig)

	base, err := NewCheckConfigurationLoader(nil).LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, base.AllowDeadCode, "dead_code.enabled = false ignores findings")
	assert.Equal(t, 4, base.MaxReturns)
	assert.Equal(t, domain.DeadCodeSeverityCritical, base.FailOn)

	override := &domain.CheckRequest{
		Paths:      []string{"src"},
		FailOn:     domain.DeadCodeSeverityWarning,
		MaxReturns: 2,
		Quiet:      true,
	}

	plain := NewCheckConfigurationLoader(nil).MergeConfig(base, override)
	assert.Equal(t, domain.DeadCodeSeverityWarning, plain.FailOn)
	assert.Equal(t, 2, plain.MaxReturns)
	assert.True(t, plain.AllowDeadCode)
	assert.True(t, plain.Quiet)

	tracked := NewCheckConfigurationLoader(map[string]bool{"max-returns": true}).MergeConfig(base, override)
	assert.Equal(t, domain.DeadCodeSeverityCritical, tracked.FailOn)
	assert.Equal(t, 2, tracked.MaxReturns)
	assert.Equal(t, []string{"src"}, tracked.Paths)

	defaults := NewCheckConfigurationLoader(nil).LoadDefaultConfig(t.TempDir())
	assert.False(t, defaults.AllowDeadCode)
	assert.Equal(t, domain.DefaultMaxReturns, defaults.MaxReturns)
}

func TestOutputFormatFromConfig(t *testing.T) {
	tests := map[string]domain.OutputFormat{
		"json":  domain.OutputFormatJSON,
		"yaml":  domain.OutputFormatYAML,
		"yml":   domain.OutputFormatYAML,
		"csv":   domain.OutputFormatCSV,
		"text":  domain.OutputFormatText,
		"":      domain.OutputFormatText,
		"bogus": domain.OutputFormatText,
	}
	for in, want := range tests {
		assert.Equal(t, want, outputFormatFromConfig(in), in)
	}
}

func TestFormatFlagSet(t *testing.T) {
	assert.False(t, formatFlagSet(nil))
	assert.False(t, formatFlagSet(map[string]bool{"sort": true}))
	assert.True(t, formatFlagSet(map[string]bool{"csv": true}))
	assert.True(t, formatFlagSet(map[string]bool{"format": true}))
}

func TestExtendDiverging(t *testing.T) {
	defaults := []string{"panic", "todo"}

	assert.Equal(t, []string{"panic", "todo", "bail"}, extendDiverging(nil, []string{"bail", "panic"}, defaults))
	assert.Equal(t, []string{"abort", "bail"}, extendDiverging([]string{"abort"}, []string{"bail"}, defaults))
	assert.Equal(t, []string{}, extendDiverging([]string{}, nil, defaults), "an empty list stays empty")
	assert.Equal(t, []string{"panic", "todo"}, defaults)
}
