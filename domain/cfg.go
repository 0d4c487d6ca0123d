package domain

import (
	"context"
	"io"
)

// CFGRequest asks for the control flow graphs of the functions in one file
type CFGRequest struct {
	FilePath string

	// Functions restricts the result to these qualified names; empty selects all
	Functions []string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string

	// ConfigPath is used only to resolve the report directory
	ConfigPath string
}

// CFGNodeInfo describes one graph node
type CFGNodeInfo struct {
	ID        int    `json:"id" yaml:"id"`
	Kind      string `json:"kind" yaml:"kind"`
	Label     string `json:"label" yaml:"label"`
	Line      int    `json:"line,omitempty" yaml:"line,omitempty"`
	Reachable bool   `json:"reachable" yaml:"reachable"`
}

// CFGEdgeInfo describes one graph edge
type CFGEdgeInfo struct {
	Source int    `json:"source" yaml:"source"`
	Target int    `json:"target" yaml:"target"`
	Kind   string `json:"kind" yaml:"kind"`

	// ExitingScopes lists the loops a returning edge leaves, innermost first
	ExitingScopes []string `json:"exiting_scopes,omitempty" yaml:"exiting_scopes,omitempty"`
}

// CFGStatsInfo summarizes a graph
type CFGStatsInfo struct {
	Nodes            int `json:"nodes" yaml:"nodes"`
	Edges            int `json:"edges" yaml:"edges"`
	ReachableNodes   int `json:"reachable_nodes" yaml:"reachable_nodes"`
	ReachableEdges   int `json:"reachable_edges" yaml:"reachable_edges"`
	UnreachableNodes int `json:"unreachable_nodes" yaml:"unreachable_nodes"`
	Complexity       int `json:"complexity" yaml:"complexity"`
}

// FunctionCFGInfo is the graph of one function or closure
type FunctionCFGInfo struct {
	Name      string `json:"name" yaml:"name"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`

	Stats CFGStatsInfo  `json:"stats" yaml:"stats"`
	Nodes []CFGNodeInfo `json:"nodes" yaml:"nodes"`
	Edges []CFGEdgeInfo `json:"edges" yaml:"edges"`

	// Trace is the depth-first node trace from Entry
	Trace string `json:"trace" yaml:"trace"`

	// Dot is the Graphviz description
	Dot string `json:"-" yaml:"-"`
}

// CFGResponse is the result of CFG construction for a file
type CFGResponse struct {
	RunID     string            `json:"run_id" yaml:"run_id"`
	FilePath  string            `json:"file_path" yaml:"file_path"`
	Functions []FunctionCFGInfo `json:"functions" yaml:"functions"`

	Warnings []string `json:"warnings" yaml:"warnings"`

	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
}

// CFGService builds control flow graphs
type CFGService interface {
	Build(ctx context.Context, req CFGRequest) (*CFGResponse, error)
}

// CFGFormatter renders CFG results
type CFGFormatter interface {
	Format(response *CFGResponse, format OutputFormat) (string, error)
	Write(response *CFGResponse, format OutputFormat, writer io.Writer) error
}

// Validate validates the CFG request
func (req *CFGRequest) Validate() error {
	if req.FilePath == "" {
		return NewInvalidInputError("a file path must be specified", nil)
	}
	switch req.OutputFormat {
	case OutputFormatText, OutputFormatDOT, OutputFormatJSON, OutputFormatYAML, OutputFormatCSV:
	default:
		return NewInvalidInputError("invalid output format", NewUnsupportedFormatError(string(req.OutputFormat)))
	}
	return nil
}
