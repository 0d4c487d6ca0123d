package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/rsscn/domain"
)

// EncodeJSON returns an indented JSON string for the given value.
func EncodeJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", domain.NewOutputError("failed to marshal JSON", err)
	}
	return string(data), nil
}

// WriteJSON writes indented JSON for the given value to the writer.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode JSON", err)
	}
	return nil
}

// EncodeYAML returns a YAML string for the given value.
func EncodeYAML(v interface{}) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", domain.NewOutputError("failed to marshal YAML", err)
	}
	return string(data), nil
}

// WriteYAML writes YAML for the given value to the writer.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode YAML", err)
	}
	return nil
}

// EncodeCSV renders a header and records as CSV
func EncodeCSV(header []string, records [][]string) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)

	if err := writer.Write(header); err != nil {
		return "", domain.NewOutputError("failed to write CSV header", err)
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return "", domain.NewOutputError("failed to write CSV record", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", domain.NewOutputError("CSV writer error", err)
	}
	return output.String(), nil
}

// writeString writes formatted output, wrapping failures as output errors
func writeString(writer io.Writer, output string) error {
	if _, err := io.WriteString(writer, output); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

// Standard formatting constants
const (
	HeaderWidth    = 40
	LabelWidth     = 25
	SectionPadding = 2
	ItemPadding    = 4
)

// ANSI color codes for consistent color usage
const (
	ColorReset  = "\x1b[0m"
	ColorRed    = "\x1b[31m"
	ColorYellow = "\x1b[33m"
	ColorGreen  = "\x1b[32m"
	ColorCyan   = "\x1b[36m"
	ColorBold   = "\x1b[1m"
)

// FormatUtils provides shared formatting utilities
type FormatUtils struct{}

// NewFormatUtils creates a new format utilities instance
func NewFormatUtils() *FormatUtils {
	return &FormatUtils{}
}

// FormatMainHeader creates a standardized main header
func (f *FormatUtils) FormatMainHeader(title string) string {
	var builder strings.Builder
	builder.WriteString(title + "\n")
	builder.WriteString(strings.Repeat("=", HeaderWidth) + "\n\n")
	return builder.String()
}

// FormatSectionHeader creates a standardized section header
func (f *FormatUtils) FormatSectionHeader(title string) string {
	var builder strings.Builder
	builder.WriteString(strings.ToUpper(title) + "\n")
	builder.WriteString(strings.Repeat("-", len(title)) + "\n")
	return builder.String()
}

// FormatLabelWithIndent creates a formatted label with specific indentation
func (f *FormatUtils) FormatLabelWithIndent(indent int, label string, value interface{}) string {
	return fmt.Sprintf("%s%s: %v\n", strings.Repeat(" ", indent), label, value)
}

// FormatPercentage formats a ratio in [0,1] as a percentage
func (f *FormatUtils) FormatPercentage(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// GetSeverityColor returns the color for a dead code severity
func (f *FormatUtils) GetSeverityColor(severity domain.DeadCodeSeverity) string {
	switch severity {
	case domain.DeadCodeSeverityCritical:
		return ColorRed
	case domain.DeadCodeSeverityWarning:
		return ColorYellow
	case domain.DeadCodeSeverityInfo:
		return ColorCyan
	default:
		return ColorReset
	}
}

// FormatCounts renders a count map as `a=1, b=2` in key order
func (f *FormatUtils) FormatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}

// FormatListSection renders a titled bullet list, or nothing when empty
func (f *FormatUtils) FormatListSection(title string, items []string) string {
	if len(items) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(f.FormatSectionHeader(title))
	for _, item := range items {
		builder.WriteString(fmt.Sprintf("%s- %s\n", strings.Repeat(" ", SectionPadding), item))
	}
	builder.WriteString("\n")
	return builder.String()
}
