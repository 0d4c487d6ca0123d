package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/ludo-technologies/rsscn/domain"
)

// DeadCodeFormatterImpl implements the DeadCodeFormatter interface
type DeadCodeFormatterImpl struct {
	utils       *FormatUtils
	showContext bool
	color       bool
}

// NewDeadCodeFormatter creates a new dead code formatter service
func NewDeadCodeFormatter() *DeadCodeFormatterImpl {
	return &DeadCodeFormatterImpl{utils: NewFormatUtils()}
}

// SetShowContext prints the statement that ends control flow under each text finding
func (f *DeadCodeFormatterImpl) SetShowContext(show bool) {
	f.showContext = show
}

// SetColor enables ANSI colors in text output
func (f *DeadCodeFormatterImpl) SetColor(color bool) {
	f.color = color
}

// Format formats the dead code analysis response according to the specified format
func (f *DeadCodeFormatterImpl) Format(response *domain.DeadCodeResponse, format domain.OutputFormat) (string, error) {
	switch format {
	case domain.OutputFormatText:
		return f.formatText(response), nil
	case domain.OutputFormatJSON:
		return EncodeJSON(response)
	case domain.OutputFormatYAML:
		return EncodeYAML(response)
	case domain.OutputFormatCSV:
		return f.formatCSV(response)
	default:
		return "", domain.NewUnsupportedFormatError(string(format))
	}
}

// Write writes the formatted dead code output to the writer
func (f *DeadCodeFormatterImpl) Write(response *domain.DeadCodeResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	}

	output, err := f.Format(response, format)
	if err != nil {
		return err
	}
	return writeString(writer, output)
}

// formatText formats the response as human-readable text
func (f *DeadCodeFormatterImpl) formatText(response *domain.DeadCodeResponse) string {
	var output strings.Builder
	summary := response.Summary

	output.WriteString(f.utils.FormatMainHeader("Dead Code Detection Results"))

	output.WriteString(f.utils.FormatSectionHeader("Summary"))
	output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Files analyzed", summary.TotalFiles))
	output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Files with dead code", summary.FilesWithDeadCode))
	output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Functions analyzed", summary.TotalFunctions))
	output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Functions with dead code", summary.FunctionsWithDeadCode))
	output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Total findings", summary.TotalFindings))
	output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Dead nodes", fmt.Sprintf("%d of %d (%s)",
		summary.DeadNodes, summary.TotalNodes, f.utils.FormatPercentage(summary.OverallDeadRatio))))
	output.WriteString("\n")

	output.WriteString(f.utils.FormatSectionHeader("Severity Breakdown"))
	output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Critical", summary.CriticalFindings))
	output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Warning", summary.WarningFindings))
	output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Info", summary.InfoFindings))
	output.WriteString("\n")

	for _, file := range response.Files {
		output.WriteString(fmt.Sprintf("File: %s\n", file.FilePath))
		output.WriteString(strings.Repeat("=", len(file.FilePath)+6) + "\n")

		for _, function := range file.Functions {
			output.WriteString(fmt.Sprintf("\nFunction: %s\n", function.Name))
			for _, finding := range function.Findings {
				output.WriteString(f.formatFindingText(finding) + "\n")
				if f.showContext {
					for _, line := range finding.Context {
						output.WriteString(fmt.Sprintf("%s| %s\n", strings.Repeat(" ", ItemPadding), line))
					}
				}
			}
		}
		output.WriteString("\n")
	}

	output.WriteString(f.utils.FormatListSection("Warnings", response.Warnings))
	output.WriteString(f.utils.FormatListSection("Errors", response.Errors))

	return output.String()
}

// formatFindingText formats a single finding as text
func (f *DeadCodeFormatterImpl) formatFindingText(finding domain.DeadCodeFinding) string {
	severity := strings.ToUpper(string(finding.Severity))
	if f.color {
		severity = f.utils.GetSeverityColor(finding.Severity) + severity + ColorReset
	}
	return fmt.Sprintf("  [%s] Line %d-%d: %s (%s)",
		severity,
		finding.Location.StartLine,
		finding.Location.EndLine,
		finding.Description,
		finding.Reason)
}

// formatCSV formats the response as CSV
func (f *DeadCodeFormatterImpl) formatCSV(response *domain.DeadCodeResponse) (string, error) {
	header := []string{"File", "Function", "Severity", "StartLine", "EndLine", "Reason", "Description", "Code"}

	var records [][]string
	for _, file := range response.Files {
		for _, function := range file.Functions {
			for _, finding := range function.Findings {
				records = append(records, []string{
					finding.Location.FilePath,
					finding.FunctionName,
					string(finding.Severity),
					fmt.Sprintf("%d", finding.Location.StartLine),
					fmt.Sprintf("%d", finding.Location.EndLine),
					finding.Reason,
					finding.Description,
					finding.Code,
				})
			}
		}
	}

	return EncodeCSV(header, records)
}
