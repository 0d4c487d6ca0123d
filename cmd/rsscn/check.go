package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/rsscn/app"
	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/service"
)

// issuesFoundError signals a completed check that found violations
type issuesFoundError struct {
	count int
}

func (e *issuesFoundError) Error() string {
	return fmt.Sprintf("found %d quality issue(s)", e.count)
}

// CheckCommand represents the check command
type CheckCommand struct {
	configFile string
	quiet      bool

	// Override flags
	maxReturns    int
	allowDeadCode bool
	failOn        string

	includePatterns []string
	excludePatterns []string

	divergingMacros    []string
	divergingFunctions []string
}

// NewCheckCommand creates a new check command
func NewCheckCommand() *CheckCommand {
	defaults := domain.DefaultCheckRequest()
	return &CheckCommand{
		maxReturns:      defaults.MaxReturns,
		failOn:          string(defaults.FailOn),
		includePatterns: domain.DefaultIncludePatterns(),
		excludePatterns: []string{},
	}
}

// CreateCobraCommand creates the cobra command for quick checking
func (c *CheckCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Quick control flow check for CI pipelines",
		Long: `Quick control flow check optimized for CI/CD pipelines.

Checks:
  dead-code    fails on unreachable code at or above --fail-on (critical by default)
  max-returns  fails functions with more explicit returns than --max-returns
               (disabled unless set here or in [exits] max_returns)

Exit codes:
  0  no issues found
  1  quality issues found
  2  analysis failed (invalid input, missing files, unparsable sources)

Examples:
  rsscn check .
  rsscn check --fail-on warning src/
  rsscn check --max-returns 3 src/
  rsscn check --allow-dead-code --max-returns 2 src/`,
		Args: cobra.ArbitraryArgs,
		RunE: c.runCheck,
	}

	cmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Configuration file path")
	cmd.Flags().BoolVarP(&c.quiet, "quiet", "q", false, "Suppress output unless issues found")

	cmd.Flags().IntVar(&c.maxReturns, "max-returns", c.maxReturns, "Maximum explicit returns per function (0 = no limit)")
	cmd.Flags().BoolVar(&c.allowDeadCode, "allow-dead-code", false, "Report dead code without failing")
	cmd.Flags().StringVar(&c.failOn, "fail-on", c.failOn, "Lowest dead code severity that fails (critical|warning|info)")

	cmd.Flags().StringSliceVar(&c.includePatterns, "include", c.includePatterns, "Include file patterns")
	cmd.Flags().StringSliceVar(&c.excludePatterns, "exclude", c.excludePatterns, "Exclude file patterns")
	cmd.Flags().StringSliceVar(&c.divergingMacros, "diverging-macro", nil, "Additional macro that never returns")
	cmd.Flags().StringSliceVar(&c.divergingFunctions, "diverging-fn", nil, "Additional function path that never returns")

	return cmd
}

// runCheck executes the quick check analysis
func (c *CheckCommand) runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	request := domain.CheckRequest{
		Paths:              args,
		OutputWriter:       cmd.ErrOrStderr(),
		Quiet:              c.quiet,
		FailOn:             domain.DeadCodeSeverity(c.failOn),
		AllowDeadCode:      c.allowDeadCode,
		MaxReturns:         c.maxReturns,
		Recursive:          true,
		IncludePatterns:    c.includePatterns,
		ExcludePatterns:    c.excludePatterns,
		DivergingMacros:    c.divergingMacros,
		DivergingFunctions: c.divergingFunctions,
		ConfigPath:         c.configFile,
	}

	deadCodeService := service.NewDeadCodeService()
	exitService := service.NewExitPointService()
	if logger := newLogger(cmd); logger != nil {
		deadCodeService.SetLogger(logger)
		exitService.SetLogger(logger)
	}

	useCase := app.NewCheckUseCase(
		deadCodeService,
		exitService,
		service.NewFileReader(),
		service.NewCheckConfigurationLoader(GetExplicitFlags(cmd)),
	).WithProgress(newProgressManager(cmd, true))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stderr := cmd.ErrOrStderr()
	if !c.quiet {
		fmt.Fprintf(stderr, "Running control flow check...\n")
	}

	response, err := useCase.Execute(ctx, request)
	if err != nil {
		return handleAnalysisError(err)
	}

	for _, msg := range response.Errors {
		fmt.Fprintf(stderr, "error: %s\n", msg)
	}

	for _, v := range response.Violations {
		fmt.Fprintf(stderr, "%s:%d: [%s] %s: %s\n", v.FilePath, v.Line, v.Rule, v.Function, v.Message)
	}

	if response.Ignored > 0 && !c.quiet {
		fmt.Fprintf(stderr, "Found %d dead code issue(s) (ignored due to --allow-dead-code)\n", response.Ignored)
	}

	if len(response.Errors) > 0 {
		return fmt.Errorf("analysis failed with %d error(s)", len(response.Errors))
	}

	if !response.Passed() {
		fmt.Fprintf(stderr, "Found %d quality issue(s)\n", len(response.Violations))
		return &issuesFoundError{count: len(response.Violations)}
	}

	if !c.quiet {
		fmt.Fprintf(stderr, "Code quality check passed\n")
	}
	return nil
}

// NewCheckCmd creates and returns the check cobra command
func NewCheckCmd() *cobra.Command {
	return NewCheckCommand().CreateCobraCommand()
}
