package analyzer

import (
	"strings"

	"github.com/ludo-technologies/rsscn/internal/parser"
)

// CFGNodeKind tags what a CFG node stands for
type CFGNodeKind int

const (
	// CFGNodeAST is a syntax element that has been fully evaluated
	CFGNodeAST CFGNodeKind = iota
	// CFGNodeEntry is the unique body entry
	CFGNodeEntry
	// CFGNodeExit is the unique body exit; returns and fallthrough converge here
	CFGNodeExit
	// CFGNodeDummy is a join or branch point with no source element
	CFGNodeDummy
	// CFGNodeUnreachable marks the position after a return
	CFGNodeUnreachable
)

// String returns string representation of CFGNodeKind
func (k CFGNodeKind) String() string {
	switch k {
	case CFGNodeAST:
		return "AST"
	case CFGNodeEntry:
		return "Entry"
	case CFGNodeExit:
		return "Exit"
	case CFGNodeDummy:
		return "Dummy"
	case CFGNodeUnreachable:
		return "Unreachable"
	default:
		return "unknown"
	}
}

// CFGNodeData is the payload of a CFG node. Element is set only for CFGNodeAST.
type CFGNodeData struct {
	Kind    CFGNodeKind
	Element *parser.Node
}

// Text returns the diagnostic label of the node
func (d CFGNodeData) Text() string {
	if d.Kind != CFGNodeAST {
		return d.Kind.String()
	}
	return cfgText(d.Element)
}

// cfgText renders block-like constructs by keyword and everything else by source
func cfgText(n *parser.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type {
	case parser.NodeBlock:
		return "BLOCK"
	case parser.NodeIf:
		return "IF"
	case parser.NodeWhile:
		return "WHILE"
	case parser.NodeLoop:
		return "LOOP"
	case parser.NodeFor:
		return "FOR"
	case parser.NodeMatch:
		return "MATCH"
	case parser.NodeExprStmt:
		return cfgText(n.Expr) + ";"
	default:
		return strings.TrimSpace(n.Text)
	}
}

// EdgeKind distinguishes intra-body edges from jumps to the exit
type EdgeKind int

const (
	// EdgeContained is a normal control edge inside the body
	EdgeContained EdgeKind = iota
	// EdgeReturning jumps to the body exit (return, `?` error path)
	EdgeReturning
)

// String returns string representation of EdgeKind
func (k EdgeKind) String() string {
	switch k {
	case EdgeContained:
		return "contained"
	case EdgeReturning:
		return "returning"
	default:
		return "unknown"
	}
}

// CFGEdgeData is the payload of a CFG edge. ExitingScopes lists the loops the
// edge leaves, innermost first; it is empty for contained edges.
type CFGEdgeData struct {
	Kind          EdgeKind
	ExitingScopes []*parser.Node
}

// CFGGraph is the graph type produced by the builder
type CFGGraph = Graph[CFGNodeData, CFGEdgeData]
