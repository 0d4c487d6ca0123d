package domain

import (
	"context"
	"io"
)

// ExitPointSortCriteria orders functions in an exit point report
type ExitPointSortCriteria string

const (
	ExitPointSortByLocation ExitPointSortCriteria = "location"
	ExitPointSortByName     ExitPointSortCriteria = "name"
	ExitPointSortByExits    ExitPointSortCriteria = "exits"
)

// ExitPointRequest represents a request for exit point analysis
type ExitPointRequest struct {
	// Input files or directories to analyze
	Paths []string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string

	// Filtering and sorting
	OnlyMultiple bool  // report only functions with more than one way out
	ReportTail   *bool // nil = use default (true); false drops tail exits from reports
	SortBy       ExitPointSortCriteria

	// Analysis options
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Never-type oracle configuration, nil selects the built-in defaults
	DivergingMacros    []string
	DivergingFunctions []string

	// Configuration
	ConfigPath string
}

// ExitPointInfo is a single place where control leaves a function
type ExitPointInfo struct {
	Kind      string `json:"kind" yaml:"kind"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	StartCol  int    `json:"start_col" yaml:"start_col"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
	Code      string `json:"code" yaml:"code"`
}

// FunctionExitPoints holds the exit points of one function or closure
type FunctionExitPoints struct {
	Name      string `json:"name" yaml:"name"`
	FilePath  string `json:"file_path" yaml:"file_path"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`

	ExitPoints []ExitPointInfo `json:"exit_points" yaml:"exit_points"`
	Counts     map[string]int  `json:"counts" yaml:"counts"`

	// Returns is the number of explicit return expressions
	Returns            int  `json:"returns" yaml:"returns"`
	HasMultipleReturns bool `json:"has_multiple_returns" yaml:"has_multiple_returns"`
}

// FileExitPoints groups exit point results by file
type FileExitPoints struct {
	FilePath  string               `json:"file_path" yaml:"file_path"`
	Functions []FunctionExitPoints `json:"functions" yaml:"functions"`
}

// ExitPointSummary aggregates exit point statistics
type ExitPointSummary struct {
	TotalFiles                   int            `json:"total_files" yaml:"total_files"`
	TotalFunctions               int            `json:"total_functions" yaml:"total_functions"`
	TotalExitPoints              int            `json:"total_exit_points" yaml:"total_exit_points"`
	FunctionsWithMultipleReturns int            `json:"functions_with_multiple_returns" yaml:"functions_with_multiple_returns"`
	MaxReturns                   int            `json:"max_returns" yaml:"max_returns"`
	ExitPointsByKind             map[string]int `json:"exit_points_by_kind" yaml:"exit_points_by_kind"`
}

// ExitPointResponse represents the complete exit point analysis result
type ExitPointResponse struct {
	RunID   string           `json:"run_id" yaml:"run_id"`
	Files   []FileExitPoints `json:"files" yaml:"files"`
	Summary ExitPointSummary `json:"summary" yaml:"summary"`

	Warnings []string `json:"warnings" yaml:"warnings"`
	Errors   []string `json:"errors" yaml:"errors"`

	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
}

// ExitPointService defines the core business logic for exit point analysis
type ExitPointService interface {
	Analyze(ctx context.Context, req ExitPointRequest) (*ExitPointResponse, error)
	AnalyzeFile(ctx context.Context, filePath string, req ExitPointRequest) (*FileExitPoints, error)
}

// ExitPointConfigurationLoader loads exit point settings
type ExitPointConfigurationLoader interface {
	LoadConfig(path string) (*ExitPointRequest, error)
	LoadDefaultConfig(targetPath string) *ExitPointRequest
	MergeConfig(base *ExitPointRequest, override *ExitPointRequest) *ExitPointRequest
}

// ExitPointFormatter formats exit point analysis results
type ExitPointFormatter interface {
	Format(response *ExitPointResponse, format OutputFormat) (string, error)
	Write(response *ExitPointResponse, format OutputFormat, writer io.Writer) error
}

// DefaultExitPointRequest returns the default exit point settings
func DefaultExitPointRequest() *ExitPointRequest {
	return &ExitPointRequest{
		OutputFormat:    OutputFormatText,
		ReportTail:      BoolPtr(true),
		SortBy:          ExitPointSortByLocation,
		Recursive:       true,
		IncludePatterns: DefaultIncludePatterns(),
		ExcludePatterns: DefaultExcludePatterns(),
	}
}

// Validate validates the exit point request
func (req *ExitPointRequest) Validate() error {
	if len(req.Paths) == 0 {
		return NewInvalidInputError("at least one path must be specified", nil)
	}

	switch req.OutputFormat {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatCSV:
	default:
		return NewInvalidInputError("invalid output format", NewUnsupportedFormatError(string(req.OutputFormat)))
	}

	switch req.SortBy {
	case ExitPointSortByLocation, ExitPointSortByName, ExitPointSortByExits:
	default:
		return NewInvalidInputError("invalid sort criteria: "+string(req.SortBy), nil)
	}
	return nil
}
