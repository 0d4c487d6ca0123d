package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/ludo-technologies/rsscn/domain"
)

// CFGFormatterImpl implements the CFGFormatter interface
type CFGFormatterImpl struct {
	utils *FormatUtils
}

// NewCFGFormatter creates a new CFG formatter
func NewCFGFormatter() *CFGFormatterImpl {
	return &CFGFormatterImpl{utils: NewFormatUtils()}
}

// Format renders the graphs. Text prints the depth-first trace of each
// function, dot prints one Graphviz digraph per function.
func (f *CFGFormatterImpl) Format(response *domain.CFGResponse, format domain.OutputFormat) (string, error) {
	switch format {
	case domain.OutputFormatText:
		return f.formatText(response), nil
	case domain.OutputFormatDOT:
		return f.formatDOT(response), nil
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

// Write writes the formatted graphs to the writer
func (f *CFGFormatterImpl) Write(response *domain.CFGResponse, format domain.OutputFormat, writer io.Writer) error {
	output, err := f.Format(response, format)
	if err != nil {
		return err
	}
	return writeString(writer, output)
}

func (f *CFGFormatterImpl) formatText(response *domain.CFGResponse) string {
	var output strings.Builder

	output.WriteString(f.utils.FormatMainHeader("Control Flow Graphs: " + response.FilePath))

	for _, fn := range response.Functions {
		output.WriteString(f.utils.FormatSectionHeader(fmt.Sprintf("%s (lines %d-%d)", fn.Name, fn.StartLine, fn.EndLine)))
		output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Nodes", fmt.Sprintf("%d (%d reachable)", fn.Stats.Nodes, fn.Stats.ReachableNodes)))
		output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Edges", fmt.Sprintf("%d (%d reachable)", fn.Stats.Edges, fn.Stats.ReachableEdges)))
		output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Complexity", fn.Stats.Complexity))
		output.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Trace", ""))
		for _, line := range strings.Split(fn.Trace, "\n") {
			output.WriteString(strings.Repeat(" ", ItemPadding) + line + "\n")
		}
		output.WriteString("\n")
	}

	output.WriteString(f.utils.FormatListSection("Warnings", response.Warnings))

	return output.String()
}

func (f *CFGFormatterImpl) formatDOT(response *domain.CFGResponse) string {
	var output strings.Builder
	for i, fn := range response.Functions {
		if i > 0 {
			output.WriteString("\n")
		}
		output.WriteString(fmt.Sprintf("// %s\n", fn.Name))
		output.WriteString(fn.Dot)
	}
	return output.String()
}

// formatCSV writes one record per edge
func (f *CFGFormatterImpl) formatCSV(response *domain.CFGResponse) (string, error) {
	header := []string{"Function", "Source", "SourceLabel", "Target", "TargetLabel", "Kind", "ExitingScopes"}

	var records [][]string
	for _, fn := range response.Functions {
		labels := make(map[int]string, len(fn.Nodes))
		for _, node := range fn.Nodes {
			labels[node.ID] = node.Label
		}
		for _, edge := range fn.Edges {
			records = append(records, []string{
				fn.Name,
				fmt.Sprintf("%d", edge.Source),
				labels[edge.Source],
				fmt.Sprintf("%d", edge.Target),
				labels[edge.Target],
				edge.Kind,
				strings.Join(edge.ExitingScopes, " "),
			})
		}
	}

	return EncodeCSV(header, records)
}
