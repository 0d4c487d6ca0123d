package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/ludo-technologies/rsscn/domain"
)

// ExitPointFormatterImpl implements the ExitPointFormatter interface
type ExitPointFormatterImpl struct {
	utils *FormatUtils
}

// NewExitPointFormatter creates a new exit point formatter
func NewExitPointFormatter() *ExitPointFormatterImpl {
	return &ExitPointFormatterImpl{utils: NewFormatUtils()}
}

// Format formats the exit point response according to the specified format
func (f *ExitPointFormatterImpl) Format(response *domain.ExitPointResponse, format domain.OutputFormat) (string, error) {
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

// Write writes the formatted exit point output to the writer
func (f *ExitPointFormatterImpl) Write(response *domain.ExitPointResponse, format domain.OutputFormat, writer io.Writer) error {
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

func (f *ExitPointFormatterImpl) formatText(response *domain.ExitPointResponse) string {
	var output strings.Builder
	summary := response.Summary

	output.WriteString(f.utils.FormatMainHeader("Exit Point Analysis Results"))

	output.WriteString(f.utils.FormatSectionHeader("Summary"))
	output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Files analyzed", summary.TotalFiles))
	output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Functions analyzed", summary.TotalFunctions))
	output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Exit points reported", summary.TotalExitPoints))
	output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Multiple returns", summary.FunctionsWithMultipleReturns))
	output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Max returns", summary.MaxReturns))
	if len(summary.ExitPointsByKind) > 0 {
		output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "By kind", f.utils.FormatCounts(summary.ExitPointsByKind)))
	}
	output.WriteString("\n")

	for _, file := range response.Files {
		output.WriteString(fmt.Sprintf("File: %s\n", file.FilePath))
		output.WriteString(strings.Repeat("=", len(file.FilePath)+6) + "\n")

		for _, fn := range file.Functions {
			marker := ""
			if fn.HasMultipleReturns {
				marker = " [multiple returns]"
			}
			output.WriteString(fmt.Sprintf("\nFunction: %s (lines %d-%d)%s\n", fn.Name, fn.StartLine, fn.EndLine, marker))
			for _, ep := range fn.ExitPoints {
				output.WriteString(fmt.Sprintf("  %d:%d  %-15s %s\n", ep.StartLine, ep.StartCol, ep.Kind, ep.Code))
			}
		}
		output.WriteString("\n")
	}

	output.WriteString(f.utils.FormatListSection("Warnings", response.Warnings))
	output.WriteString(f.utils.FormatListSection("Errors", response.Errors))

	return output.String()
}

func (f *ExitPointFormatterImpl) formatCSV(response *domain.ExitPointResponse) (string, error) {
	header := []string{"File", "Function", "Kind", "Line", "Column", "EndLine", "Code", "MultipleReturns"}

	var records [][]string
	for _, file := range response.Files {
		for _, fn := range file.Functions {
			for _, ep := range fn.ExitPoints {
				records = append(records, []string{
					file.FilePath,
					fn.Name,
					ep.Kind,
					fmt.Sprintf("%d", ep.StartLine),
					fmt.Sprintf("%d", ep.StartCol),
					fmt.Sprintf("%d", ep.EndLine),
					ep.Code,
					fmt.Sprintf("%t", fn.HasMultipleReturns),
				})
			}
		}
	}

	return EncodeCSV(header, records)
}
