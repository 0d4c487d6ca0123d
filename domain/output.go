package domain

import (
	"io"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
	OutputFormatDOT  OutputFormat = "dot"
)

// Extension returns the file extension used for reports in this format
func (f OutputFormat) Extension() string {
	switch f {
	case OutputFormatText:
		return "txt"
	case OutputFormatDOT:
		return "dot"
	default:
		return string(f)
	}
}

// ParseOutputFormat validates a user supplied format name
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatCSV, OutputFormatDOT:
		return f, nil
	case "":
		return OutputFormatText, nil
	default:
		return "", NewUnsupportedFormatError(s)
	}
}

// FileReader collects and reads Rust source files
type FileReader interface {
	// CollectRustFiles finds all Rust files in the given paths
	CollectRustFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)

	// ReadFile reads the content of a file
	ReadFile(path string) ([]byte, error)

	// IsValidRustFile checks if a path names a Rust source file
	IsValidRustFile(path string) bool

	// FileExists checks if a regular file exists
	FileExists(path string) (bool, error)
}

// ReportWriter abstracts writing a report to a destination.
// When outputPath is empty the report goes to writer.
type ReportWriter interface {
	Write(writer io.Writer, outputPath string, format OutputFormat, writeFunc func(io.Writer) error) error
}

// ProgressManager tracks per-file progress of a multi-file analysis
type ProgressManager interface {
	// Initialize sets the number of files to process
	Initialize(maxValue int)

	// Start shows the progress display
	Start()

	// Update reports processed files
	Update(processed, total int)

	// Complete finishes the progress display
	Complete(success bool)

	// SetWriter redirects progress output
	SetWriter(writer io.Writer)

	// IsInteractive reports whether progress is rendered
	IsInteractive() bool

	// Close releases the progress display
	Close()
}

// BoolPtr creates a pointer to a boolean value
func BoolPtr(b bool) *bool {
	return &b
}

// BoolValue dereferences a boolean pointer, returning defaultVal if nil
func BoolValue(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}
