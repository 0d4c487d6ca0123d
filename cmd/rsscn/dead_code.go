package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/rsscn/app"
	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/service"
)

// DeadCodeCommand represents the deadcode command
type DeadCodeCommand struct {
	// Output format flags
	json       bool
	csv        bool
	yaml       bool
	outputPath string

	showContext  bool
	contextLines int
	minSeverity  string
	sortBy       string

	// File selection
	recursive       bool
	includePatterns []string
	excludePatterns []string

	divergingMacros    []string
	divergingFunctions []string

	configFile string
	quiet      bool
}

// NewDeadCodeCommand creates a new deadcode command with defaults
func NewDeadCodeCommand() *DeadCodeCommand {
	defaults := domain.DefaultDeadCodeRequest()
	return &DeadCodeCommand{
		contextLines:    defaults.ContextLines,
		minSeverity:     string(defaults.MinSeverity),
		sortBy:          string(defaults.SortBy),
		recursive:       true,
		includePatterns: domain.DefaultIncludePatterns(),
		excludePatterns: []string{},
	}
}

// CreateCobraCommand creates the cobra command for dead code detection
func (c *DeadCodeCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deadcode [files...]",
		Short: "Find code that can never execute",
		Long: `Find statements and expressions that no path from function entry reaches.

Severities:
  critical  after return, break or continue
  warning   after a call that never returns or an infinite loop
  info      unreachable for any other reason

Examples:
  rsscn deadcode src/
  rsscn deadcode --min-severity critical --json src/
  rsscn deadcode --show-context --context-lines 1 src/lib.rs
  rsscn deadcode --diverging-macro bail --diverging-fn process::abort src/`,
		Args: cobra.ArbitraryArgs,
		RunE: c.runDeadCode,
	}

	cmd.Flags().BoolVar(&c.json, "json", false, "Generate JSON report file")
	cmd.Flags().BoolVar(&c.csv, "csv", false, "Generate CSV report file")
	cmd.Flags().BoolVar(&c.yaml, "yaml", false, "Generate YAML report file")
	cmd.Flags().StringVarP(&c.outputPath, "output", "o", "", "Write the report to this path")

	cmd.Flags().BoolVar(&c.showContext, "show-context", false, "Show the statement that ended control flow")
	cmd.Flags().IntVar(&c.contextLines, "context-lines", c.contextLines, "Lines of context kept per finding")
	cmd.Flags().StringVar(&c.minSeverity, "min-severity", c.minSeverity, "Minimum severity to report (critical|warning|info)")
	cmd.Flags().StringVar(&c.sortBy, "sort", c.sortBy, "Sort criteria (severity|line|file|function)")

	cmd.Flags().BoolVar(&c.recursive, "recursive", c.recursive, "Recursively analyze subdirectories")
	cmd.Flags().StringSliceVar(&c.includePatterns, "include", c.includePatterns, "Include file patterns")
	cmd.Flags().StringSliceVar(&c.excludePatterns, "exclude", c.excludePatterns, "Exclude file patterns")

	cmd.Flags().StringSliceVar(&c.divergingMacros, "diverging-macro", nil, "Additional macro that never returns")
	cmd.Flags().StringSliceVar(&c.divergingFunctions, "diverging-fn", nil, "Additional function path that never returns")

	cmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Configuration file path")
	cmd.Flags().BoolVarP(&c.quiet, "quiet", "q", false, "Hide the progress bar")

	return cmd
}

func (c *DeadCodeCommand) runDeadCode(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	severity, err := c.parseSeverityLevel(c.minSeverity)
	if err != nil {
		return err
	}
	sortBy, err := c.parseSortCriteria(c.sortBy)
	if err != nil {
		return err
	}

	format, extension, err := service.NewOutputFormatResolver().Determine(c.json, c.csv, c.yaml)
	if err != nil {
		return err
	}

	writer, outputPath, err := resolveReportDestination(cmd, "deadcode", format, extension, c.outputPath, c.configFile, args)
	if err != nil {
		return err
	}

	request := domain.DeadCodeRequest{
		Paths:              args,
		OutputFormat:       format,
		OutputWriter:       writer,
		OutputPath:         outputPath,
		ShowContext:        domain.BoolPtr(c.showContext),
		ContextLines:       c.contextLines,
		MinSeverity:        severity,
		SortBy:             sortBy,
		Recursive:          c.recursive,
		IncludePatterns:    c.includePatterns,
		ExcludePatterns:    c.excludePatterns,
		DivergingMacros:    c.divergingMacros,
		DivergingFunctions: c.divergingFunctions,
		ConfigPath:         c.configFile,
	}

	deadCodeService := service.NewDeadCodeService()
	if logger := newLogger(cmd); logger != nil {
		deadCodeService.SetLogger(logger)
	}

	formatter := service.NewDeadCodeFormatter()
	formatter.SetColor(service.IsInteractiveEnvironment() && writer != nil)

	useCase, err := app.NewDeadCodeUseCaseBuilder().
		WithService(deadCodeService).
		WithFileReader(service.NewFileReader()).
		WithFormatter(formatter).
		WithConfigLoader(service.NewDeadCodeConfigurationLoaderWithFlags(GetExplicitFlags(cmd))).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		WithProgress(newProgressManager(cmd, c.quiet)).
		WithResultCache(openResultCache(c.configFile, getTargetPathFromArgs(args))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to create dead code use case: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := useCase.Execute(ctx, request); err != nil {
		return handleAnalysisError(err)
	}
	return nil
}

// parseSeverityLevel converts string to domain severity level
func (c *DeadCodeCommand) parseSeverityLevel(severity string) (domain.DeadCodeSeverity, error) {
	switch strings.ToLower(severity) {
	case "critical":
		return domain.DeadCodeSeverityCritical, nil
	case "warning":
		return domain.DeadCodeSeverityWarning, nil
	case "info":
		return domain.DeadCodeSeverityInfo, nil
	default:
		return "", fmt.Errorf("invalid severity level '%s'. Valid options: critical, warning, info", severity)
	}
}

// parseSortCriteria converts string to domain sort criteria
func (c *DeadCodeCommand) parseSortCriteria(sort string) (domain.DeadCodeSortCriteria, error) {
	switch strings.ToLower(sort) {
	case "severity":
		return domain.DeadCodeSortBySeverity, nil
	case "line":
		return domain.DeadCodeSortByLine, nil
	case "file":
		return domain.DeadCodeSortByFile, nil
	case "function":
		return domain.DeadCodeSortByFunction, nil
	default:
		return "", fmt.Errorf("invalid sort criteria '%s'. Valid options: severity, line, file, function", sort)
	}
}

// handleAnalysisError returns domain errors as they are; they already carry
// their code and the failing path
func handleAnalysisError(err error) error {
	var domainErr domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return fmt.Errorf("analysis failed: %w", err)
}

// NewDeadCodeCmd creates and returns the deadcode cobra command
func NewDeadCodeCmd() *cobra.Command {
	return NewDeadCodeCommand().CreateCobraCommand()
}
