package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/rsscn/app"
	"github.com/ludo-technologies/rsscn/domain"
	"github.com/ludo-technologies/rsscn/internal/config"
	"github.com/ludo-technologies/rsscn/internal/parser"
	"github.com/ludo-technologies/rsscn/service"
)

// CFGCommand represents the cfg command
type CFGCommand struct {
	format     string
	outputPath string
	configFile string
	printAST   bool
}

// NewCFGCommand creates a new cfg command
func NewCFGCommand() *CFGCommand {
	return &CFGCommand{}
}

// CreateCobraCommand creates the cobra command for CFG construction
func (c *CFGCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cfg <file> [function...]",
		Short: "Build control flow graphs for the functions of a Rust file",
		Long: `Build the expression-level control flow graph of every function and
closure in a Rust file, or only of the named ones.

Functions are named by their qualified path inside the file: free functions
by name, methods as Type::method, closures as owner::{closure#N}.

Formats:
  dot   Graphviz digraph per function (default)
  text  Depth-first trace and statistics
  json, yaml, csv

The default format can be set with cfg.format in the configuration.

Examples:
  rsscn cfg src/lib.rs
  rsscn cfg src/lib.rs parse_header | dot -Tsvg > parse_header.svg
  rsscn cfg --format text src/lib.rs 'Counter::bump'
  rsscn cfg --ast src/lib.rs parse_header`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.runCFG,
	}

	cmd.Flags().StringVar(&c.format, "format", "", "Output format (dot, text, json, yaml, csv)")
	cmd.Flags().StringVarP(&c.outputPath, "output", "o", "", "Write the output to a file")
	cmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Configuration file path")
	cmd.Flags().BoolVar(&c.printAST, "ast", false, "Print the AST of the selected functions instead of their graphs")

	return cmd
}

func (c *CFGCommand) runCFG(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	filePath := args[0]
	functions := args[1:]

	if c.printAST {
		return c.printFunctionASTs(ctx, cmd, filePath, functions)
	}

	format, err := c.resolveFormat(filePath)
	if err != nil {
		return err
	}

	request := domain.CFGRequest{
		FilePath:     filePath,
		Functions:    functions,
		OutputFormat: format,
		OutputPath:   c.outputPath,
		ConfigPath:   c.configFile,
	}
	if c.outputPath == "" {
		request.OutputWriter = cmd.OutOrStdout()
	}

	cfgService := service.NewCFGService()
	if logger := newLogger(cmd); logger != nil {
		cfgService.SetLogger(logger)
	}

	useCase := app.NewCFGUseCase(cfgService, service.NewFileReader(), service.NewCFGFormatter()).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr()))

	if err := useCase.Execute(ctx, request); err != nil {
		return handleAnalysisError(err)
	}
	return nil
}

// resolveFormat applies --format over cfg.format from the configuration
func (c *CFGCommand) resolveFormat(filePath string) (domain.OutputFormat, error) {
	fallback := ""
	if cfg, err := config.LoadConfigWithTarget(c.configFile, filePath); err == nil && cfg != nil {
		fallback = cfg.CFG.Format
	} else if c.configFile != "" {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	return service.NewOutputFormatResolver().DetermineGraph(c.format, fallback)
}

// printFunctionASTs dumps the lowered AST of the selected functions
func (c *CFGCommand) printFunctionASTs(ctx context.Context, cmd *cobra.Command, filePath string, names []string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return handleAnalysisError(domain.NewFileNotFoundError(filePath, err))
	}

	result, err := parser.New().Parse(ctx, content)
	if err != nil {
		return handleAnalysisError(domain.NewParseError(filePath, err))
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	found := 0
	out := cmd.OutOrStdout()
	for _, fn := range parser.Functions(result.AST) {
		if len(wanted) > 0 && !wanted[fn.Name] {
			continue
		}
		found++
		fmt.Fprintf(out, "// %s\n", fn.Name)
		fn.Node.Accept(parser.NewPrinterVisitor(out))
	}

	if found == 0 && len(names) > 0 {
		return handleAnalysisError(domain.NewFunctionNotFoundError(names[0], filePath))
	}
	return nil
}

// NewCFGCmd creates and returns the cfg cobra command
func NewCFGCmd() *cobra.Command {
	return NewCFGCommand().CreateCobraCommand()
}
