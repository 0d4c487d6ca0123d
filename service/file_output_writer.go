package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/rsscn/domain"
)

// FileOutputWriter writes reports to files or provided writers.
type FileOutputWriter struct {
	status io.Writer // where to print status messages (typically stderr)
}

// NewFileOutputWriter creates a new FileOutputWriter.
func NewFileOutputWriter(status io.Writer) *FileOutputWriter {
	if status == nil {
		status = os.Stderr
	}
	return &FileOutputWriter{status: status}
}

// Write implements domain.ReportWriter. Parent directories of outputPath are created.
func (w *FileOutputWriter) Write(writer io.Writer, outputPath string, format domain.OutputFormat, writeFunc func(io.Writer) error) error {
	out := writer

	if outputPath != "" {
		if dir := filepath.Dir(outputPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return domain.NewOutputError(fmt.Sprintf("failed to create output directory: %s", dir), err)
			}
		}
		file, err := os.Create(outputPath)
		if err != nil {
			return domain.NewOutputError(fmt.Sprintf("failed to create output file: %s", outputPath), err)
		}
		defer file.Close()
		out = file
	}

	if out == nil {
		return domain.NewOutputError("no output destination", nil)
	}

	if err := writeFunc(out); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}

	if outputPath != "" {
		absPath, err := filepath.Abs(outputPath)
		if err != nil {
			absPath = outputPath
		}
		fmt.Fprintf(w.status, "%s report generated: %s\n", strings.ToUpper(string(format)), absPath)
	}

	return nil
}
