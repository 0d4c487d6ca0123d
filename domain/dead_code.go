package domain

import (
	"context"
	"io"
)

// DeadCodeSeverity represents the severity level of dead code findings
type DeadCodeSeverity string

const (
	DeadCodeSeverityCritical DeadCodeSeverity = "critical"
	DeadCodeSeverityWarning  DeadCodeSeverity = "warning"
	DeadCodeSeverityInfo     DeadCodeSeverity = "info"
)

// DeadCodeSortCriteria represents the criteria for sorting dead code results
type DeadCodeSortCriteria string

const (
	DeadCodeSortBySeverity DeadCodeSortCriteria = "severity"
	DeadCodeSortByLine     DeadCodeSortCriteria = "line"
	DeadCodeSortByFile     DeadCodeSortCriteria = "file"
	DeadCodeSortByFunction DeadCodeSortCriteria = "function"
)

// DeadCodeRequest represents a request for dead code analysis
type DeadCodeRequest struct {
	// Input files or directories to analyze
	Paths []string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string
	ShowContext  *bool // nil = use default (false)
	ContextLines int   // lines of the control-ending statement kept per finding

	// Filtering and sorting
	MinSeverity DeadCodeSeverity
	SortBy      DeadCodeSortCriteria

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

// DeadCodeLocation represents the location of dead code
type DeadCodeLocation struct {
	FilePath  string `json:"file_path" yaml:"file_path"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
}

// DeadCodeFinding represents a single dead code detection result
type DeadCodeFinding struct {
	Location     DeadCodeLocation `json:"location" yaml:"location"`
	FunctionName string           `json:"function_name" yaml:"function_name"`

	Code        string           `json:"code" yaml:"code"`
	Reason      string           `json:"reason" yaml:"reason"`
	Severity    DeadCodeSeverity `json:"severity" yaml:"severity"`
	Description string           `json:"description" yaml:"description"`

	// Context holds the statement that ends control flow before the dead code
	Context []string `json:"context,omitempty" yaml:"context,omitempty"`

	// NodeID is the first CFG node of the dead run
	NodeID string `json:"node_id,omitempty" yaml:"node_id,omitempty"`
}

// FunctionDeadCode represents dead code analysis result for a single function
type FunctionDeadCode struct {
	Name     string `json:"name" yaml:"name"`
	FilePath string `json:"file_path" yaml:"file_path"`

	Findings []DeadCodeFinding `json:"findings" yaml:"findings"`

	// CFG metrics
	TotalNodes     int     `json:"total_nodes" yaml:"total_nodes"`
	DeadNodes      int     `json:"dead_nodes" yaml:"dead_nodes"`
	ReachableRatio float64 `json:"reachable_ratio" yaml:"reachable_ratio"`

	// Summary by severity
	CriticalCount int `json:"critical_count" yaml:"critical_count"`
	WarningCount  int `json:"warning_count" yaml:"warning_count"`
	InfoCount     int `json:"info_count" yaml:"info_count"`
}

// FileDeadCode represents dead code analysis result for a single file
type FileDeadCode struct {
	FilePath string `json:"file_path" yaml:"file_path"`

	Functions []FunctionDeadCode `json:"functions" yaml:"functions"`

	TotalFindings     int     `json:"total_findings" yaml:"total_findings"`
	TotalFunctions    int     `json:"total_functions" yaml:"total_functions"`
	AffectedFunctions int     `json:"affected_functions" yaml:"affected_functions"`
	DeadCodeRatio     float64 `json:"dead_code_ratio" yaml:"dead_code_ratio"`
}

// DeadCodeSummary represents aggregate statistics for dead code analysis
type DeadCodeSummary struct {
	TotalFiles            int `json:"total_files" yaml:"total_files"`
	TotalFunctions        int `json:"total_functions" yaml:"total_functions"`
	TotalFindings         int `json:"total_findings" yaml:"total_findings"`
	FilesWithDeadCode     int `json:"files_with_dead_code" yaml:"files_with_dead_code"`
	FunctionsWithDeadCode int `json:"functions_with_dead_code" yaml:"functions_with_dead_code"`

	CriticalFindings int `json:"critical_findings" yaml:"critical_findings"`
	WarningFindings  int `json:"warning_findings" yaml:"warning_findings"`
	InfoFindings     int `json:"info_findings" yaml:"info_findings"`

	FindingsByReason map[string]int `json:"findings_by_reason" yaml:"findings_by_reason"`

	TotalNodes       int     `json:"total_nodes" yaml:"total_nodes"`
	DeadNodes        int     `json:"dead_nodes" yaml:"dead_nodes"`
	OverallDeadRatio float64 `json:"overall_dead_ratio" yaml:"overall_dead_ratio"`
}

// DeadCodeResponse represents the complete dead code analysis result
type DeadCodeResponse struct {
	RunID   string          `json:"run_id" yaml:"run_id"`
	Files   []FileDeadCode  `json:"files" yaml:"files"`
	Summary DeadCodeSummary `json:"summary" yaml:"summary"`

	Warnings []string `json:"warnings" yaml:"warnings"`
	Errors   []string `json:"errors" yaml:"errors"`

	GeneratedAt string      `json:"generated_at" yaml:"generated_at"`
	Version     string      `json:"version" yaml:"version"`
	Config      interface{} `json:"config" yaml:"config"`
}

// DeadCodeService defines the core business logic for dead code analysis
type DeadCodeService interface {
	// Analyze performs dead code analysis on the files in req.Paths
	Analyze(ctx context.Context, req DeadCodeRequest) (*DeadCodeResponse, error)

	// AnalyzeFile analyzes a single Rust file for dead code
	AnalyzeFile(ctx context.Context, filePath string, req DeadCodeRequest) (*FileDeadCode, error)
}

// DeadCodeConfigurationLoader defines the interface for loading dead code configuration
type DeadCodeConfigurationLoader interface {
	// LoadConfig loads dead code configuration from the specified path
	LoadConfig(path string) (*DeadCodeRequest, error)

	// LoadDefaultConfig discovers configuration walking up from targetPath
	LoadDefaultConfig(targetPath string) *DeadCodeRequest

	// MergeConfig merges CLI flags with configuration file
	MergeConfig(base *DeadCodeRequest, override *DeadCodeRequest) *DeadCodeRequest
}

// DeadCodeFormatter defines the interface for formatting dead code analysis results
type DeadCodeFormatter interface {
	Format(response *DeadCodeResponse, format OutputFormat) (string, error)
	Write(response *DeadCodeResponse, format OutputFormat, writer io.Writer) error
}

// DefaultDeadCodeRequest returns the default dead code analysis settings
func DefaultDeadCodeRequest() *DeadCodeRequest {
	return &DeadCodeRequest{
		OutputFormat:    OutputFormatText,
		ShowContext:     BoolPtr(false),
		ContextLines:    3,
		MinSeverity:     DeadCodeSeverityWarning,
		SortBy:          DeadCodeSortBySeverity,
		Recursive:       true,
		IncludePatterns: DefaultIncludePatterns(),
		ExcludePatterns: DefaultExcludePatterns(),
	}
}

// Validate validates the dead code request
func (req *DeadCodeRequest) Validate() error {
	if len(req.Paths) == 0 {
		return NewInvalidInputError("at least one path must be specified", nil)
	}

	switch req.OutputFormat {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatCSV:
	default:
		return NewInvalidInputError("invalid output format", NewUnsupportedFormatError(string(req.OutputFormat)))
	}

	if req.ContextLines < 0 {
		return NewInvalidInputError("context lines cannot be negative", nil)
	}

	switch req.MinSeverity {
	case DeadCodeSeverityCritical, DeadCodeSeverityWarning, DeadCodeSeverityInfo:
	default:
		return NewInvalidInputError("invalid minimum severity level: "+string(req.MinSeverity), nil)
	}

	switch req.SortBy {
	case DeadCodeSortBySeverity, DeadCodeSortByLine, DeadCodeSortByFile, DeadCodeSortByFunction:
	default:
		return NewInvalidInputError("invalid sort criteria: "+string(req.SortBy), nil)
	}

	return nil
}

// Level returns the numeric level for comparison
func (s DeadCodeSeverity) Level() int {
	switch s {
	case DeadCodeSeverityInfo:
		return 1
	case DeadCodeSeverityWarning:
		return 2
	case DeadCodeSeverityCritical:
		return 3
	default:
		return 0
	}
}

// IsAtLeast checks if the severity is at least the specified level
func (s DeadCodeSeverity) IsAtLeast(minSeverity DeadCodeSeverity) bool {
	return s.Level() >= minSeverity.Level()
}

// CalculateSeverityCounts recounts findings by severity
func (fdc *FunctionDeadCode) CalculateSeverityCounts() {
	fdc.CriticalCount = 0
	fdc.WarningCount = 0
	fdc.InfoCount = 0

	for _, finding := range fdc.Findings {
		switch finding.Severity {
		case DeadCodeSeverityCritical:
			fdc.CriticalCount++
		case DeadCodeSeverityWarning:
			fdc.WarningCount++
		case DeadCodeSeverityInfo:
			fdc.InfoCount++
		}
	}
}

// HasFindingsAtSeverity returns true if the function has findings at or above the specified severity
func (fdc *FunctionDeadCode) HasFindingsAtSeverity(minSeverity DeadCodeSeverity) bool {
	for _, finding := range fdc.Findings {
		if finding.Severity.IsAtLeast(minSeverity) {
			return true
		}
	}
	return false
}
