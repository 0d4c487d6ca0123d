package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/rsscn/app"
	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/service"
)

// ExitsCommand represents the exits command
type ExitsCommand struct {
	// Output format flags
	json       bool
	csv        bool
	yaml       bool
	outputPath string

	// Filtering
	onlyMultiple bool
	noTail       bool
	sortBy       string

	// File selection
	recursive       bool
	includePatterns []string
	excludePatterns []string

	// Never-type oracle
	divergingMacros    []string
	divergingFunctions []string

	configFile string
	quiet      bool
}

// NewExitsCommand creates a new exits command with defaults
func NewExitsCommand() *ExitsCommand {
	return &ExitsCommand{
		sortBy:          string(domain.ExitPointSortByLocation),
		recursive:       true,
		includePatterns: domain.DefaultIncludePatterns(),
		excludePatterns: []string{},
	}
}

// CreateCobraCommand creates the cobra command for exit point analysis
func (c *ExitsCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exits [files...]",
		Short: "Report every way control leaves each function",
		Long: `Report the exit points of every function and closure: explicit returns,
the ? operator, calls that never return and the trailing expression or
statement that ends the body.

Examples:
  rsscn exits src/
  rsscn exits --only-multiple --sort exits src/
  rsscn exits --no-tail --json src/
  rsscn exits --diverging-macro bail src/`,
		Args: cobra.ArbitraryArgs,
		RunE: c.runExits,
	}

	cmd.Flags().BoolVar(&c.json, "json", false, "Generate JSON report file")
	cmd.Flags().BoolVar(&c.csv, "csv", false, "Generate CSV report file")
	cmd.Flags().BoolVar(&c.yaml, "yaml", false, "Generate YAML report file")
	cmd.Flags().StringVarP(&c.outputPath, "output", "o", "", "Write the report to this path")

	cmd.Flags().BoolVar(&c.onlyMultiple, "only-multiple", false, "Only report functions with more than one early exit")
	cmd.Flags().BoolVar(&c.noTail, "no-tail", false, "Leave tail expressions and statements out of the report")
	cmd.Flags().StringVar(&c.sortBy, "sort", c.sortBy, "Sort criteria (location|name|exits)")

	cmd.Flags().BoolVar(&c.recursive, "recursive", c.recursive, "Recursively analyze subdirectories")
	cmd.Flags().StringSliceVar(&c.includePatterns, "include", c.includePatterns, "Include file patterns")
	cmd.Flags().StringSliceVar(&c.excludePatterns, "exclude", c.excludePatterns, "Exclude file patterns")

	cmd.Flags().StringSliceVar(&c.divergingMacros, "diverging-macro", nil, "Additional macro that never returns")
	cmd.Flags().StringSliceVar(&c.divergingFunctions, "diverging-fn", nil, "Additional function path that never returns")

	cmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Configuration file path")
	cmd.Flags().BoolVarP(&c.quiet, "quiet", "q", false, "Hide the progress bar")

	return cmd
}

func (c *ExitsCommand) runExits(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	if err := validateExitSortCriteria(c.sortBy); err != nil {
		return err
	}

	format, extension, err := service.NewOutputFormatResolver().Determine(c.json, c.csv, c.yaml)
	if err != nil {
		return err
	}

	writer, outputPath, err := resolveReportDestination(cmd, "exits", format, extension, c.outputPath, c.configFile, args)
	if err != nil {
		return err
	}

	request := domain.ExitPointRequest{
		Paths:              args,
		OutputFormat:       format,
		OutputWriter:       writer,
		OutputPath:         outputPath,
		OnlyMultiple:       c.onlyMultiple,
		ReportTail:         domain.BoolPtr(!c.noTail),
		SortBy:             domain.ExitPointSortCriteria(c.sortBy),
		Recursive:          c.recursive,
		IncludePatterns:    c.includePatterns,
		ExcludePatterns:    c.excludePatterns,
		DivergingMacros:    c.divergingMacros,
		DivergingFunctions: c.divergingFunctions,
		ConfigPath:         c.configFile,
	}

	exitService := service.NewExitPointService()
	if logger := newLogger(cmd); logger != nil {
		exitService.SetLogger(logger)
	}

	useCase, err := app.NewExitPointUseCaseBuilder().
		WithService(exitService).
		WithFileReader(service.NewFileReader()).
		WithFormatter(service.NewExitPointFormatter()).
		WithConfigLoader(service.NewExitPointConfigurationLoaderWithFlags(GetExplicitFlags(cmd))).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		WithProgress(newProgressManager(cmd, c.quiet)).
		WithResultCache(openResultCache(c.configFile, getTargetPathFromArgs(args))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to create exit point use case: %w", err)
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

func validateExitSortCriteria(sortBy string) error {
	switch domain.ExitPointSortCriteria(sortBy) {
	case domain.ExitPointSortByLocation, domain.ExitPointSortByName, domain.ExitPointSortByExits:
		return nil
	default:
		return fmt.Errorf("unsupported sort criteria '%s'. Valid options: location, name, exits", sortBy)
	}
}

// NewExitsCmd creates and returns the exits cobra command
func NewExitsCmd() *cobra.Command {
	return NewExitsCommand().CreateCobraCommand()
}
