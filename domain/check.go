package domain

import "io"

// CheckRequest configures the CI gate over dead code and exit points
type CheckRequest struct {
	Paths []string

	OutputWriter io.Writer
	Quiet        bool

	// FailOn is the lowest dead code severity that fails the check
	FailOn DeadCodeSeverity

	// AllowDeadCode reports dead code without failing
	AllowDeadCode bool

	// MaxReturns fails functions with more explicit returns; 0 disables the budget
	MaxReturns int

	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	DivergingMacros    []string
	DivergingFunctions []string

	ConfigPath string
}

// CheckViolation is a single reason the check failed
type CheckViolation struct {
	Rule     string `json:"rule" yaml:"rule"`
	FilePath string `json:"file_path" yaml:"file_path"`
	Line     int    `json:"line" yaml:"line"`
	Function string `json:"function" yaml:"function"`
	Message  string `json:"message" yaml:"message"`
}

// Check rule names
const (
	CheckRuleDeadCode   = "dead-code"
	CheckRuleMaxReturns = "max-returns"
)

// CheckResponse is the outcome of a check run
type CheckResponse struct {
	RunID      string           `json:"run_id" yaml:"run_id"`
	Violations []CheckViolation `json:"violations" yaml:"violations"`
	Ignored    int              `json:"ignored" yaml:"ignored"`
	Errors     []string         `json:"errors" yaml:"errors"`
}

// Passed reports whether the check found no violations
func (r *CheckResponse) Passed() bool {
	return len(r.Violations) == 0
}

// DefaultCheckRequest returns the default CI gate: fail on critical dead code
func DefaultCheckRequest() *CheckRequest {
	return &CheckRequest{
		FailOn:          DeadCodeSeverityCritical,
		MaxReturns:      DefaultMaxReturns,
		Recursive:       true,
		IncludePatterns: DefaultIncludePatterns(),
		ExcludePatterns: DefaultExcludePatterns(),
	}
}

// CheckConfigurationLoader loads the CI gate settings
type CheckConfigurationLoader interface {
	LoadConfig(path string) (*CheckRequest, error)
	LoadDefaultConfig(targetPath string) *CheckRequest
	MergeConfig(base *CheckRequest, override *CheckRequest) *CheckRequest
}
