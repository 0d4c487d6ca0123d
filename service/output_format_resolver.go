package service

import (
	"fmt"

	"github.com/ludo-technologies/rsscn/domain"
)

// OutputFormatResolver resolves output format and file extension from flags.
type OutputFormatResolver struct{}

func NewOutputFormatResolver() *OutputFormatResolver { return &OutputFormatResolver{} }

// Determine evaluates report format flags. At most one of json/csv/yaml may be
// set; with none the report is text. The extension is empty for text.
func (r *OutputFormatResolver) Determine(json, csv, yaml bool) (domain.OutputFormat, string, error) {
	selected := make([]domain.OutputFormat, 0, 1)
	if json {
		selected = append(selected, domain.OutputFormatJSON)
	}
	if csv {
		selected = append(selected, domain.OutputFormatCSV)
	}
	if yaml {
		selected = append(selected, domain.OutputFormatYAML)
	}

	switch len(selected) {
	case 0:
		return domain.OutputFormatText, "", nil
	case 1:
		return selected[0], selected[0].Extension(), nil
	default:
		return "", "", fmt.Errorf("only one output format flag can be specified")
	}
}

// DetermineGraph resolves the --format value of the cfg command, using
// fallback (normally cfg.format from the configuration) when it is empty
func (r *OutputFormatResolver) DetermineGraph(format, fallback string) (domain.OutputFormat, error) {
	if format == "" {
		format = fallback
	}
	if format == "" {
		return domain.OutputFormatDOT, nil
	}
	return domain.ParseOutputFormat(format)
}
