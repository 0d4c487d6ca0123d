package analyzer

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/rsscn/internal/parser"
)

// ControlFlowGraph is the CFG of one function or closure body.
// It is not modified after construction and may be shared between goroutines.
type ControlFlowGraph struct {
	// Owner is the function or closure the body belongs to
	Owner *parser.Node
	Body  *parser.Node
	Graph *CFGGraph
	Entry NodeIndex
	Exit  NodeIndex
}

// IsNodeReachable reports whether some node reachable from Entry stands for
// exactly this syntax element. Elements are compared by identity.
func (c *ControlFlowGraph) IsNodeReachable(element *parser.Node) bool {
	if element == nil {
		return false
	}
	for idx := range c.Graph.DepthFirstTraversal(c.Entry) {
		if c.Graph.NodeData(idx).Element == element {
			return true
		}
	}
	return false
}

// ReachableElements returns every syntax element with a node reachable from Entry
func (c *ControlFlowGraph) ReachableElements() map[*parser.Node]bool {
	reachable := make(map[*parser.Node]bool)
	for idx := range c.Graph.DepthFirstTraversal(c.Entry) {
		if el := c.Graph.NodeData(idx).Element; el != nil {
			reachable[el] = true
		}
	}
	return reachable
}

// BuildLocalIndex maps each syntax element in the graph to its nodes.
// Parameter bindings are available from the start and map to Entry.
func (c *ControlFlowGraph) BuildLocalIndex() map[*parser.Node][]NodeIndex {
	index := make(map[*parser.Node][]NodeIndex)

	if c.Owner != nil {
		for _, param := range c.Owner.Params {
			if param.Type == parser.NodeSelfParam {
				index[param] = append(index[param], c.Entry)
				continue
			}
			if param.Pattern == nil {
				continue
			}
			param.Pattern.Walk(func(n *parser.Node) bool {
				if n.Type == parser.NodePatIdent {
					index[n] = append(index[n], c.Entry)
				}
				return true
			})
		}
	}

	c.Graph.ForEachNode(func(idx NodeIndex, data CFGNodeData) {
		if data.Kind == CFGNodeAST {
			index[data.Element] = append(index[data.Element], idx)
		}
	})
	return index
}

// DepthFirstTraversalTrace lists node labels in depth-first order from Entry
func (c *ControlFlowGraph) DepthFirstTraversalTrace() string {
	var labels []string
	for idx := range c.Graph.DepthFirstTraversal(c.Entry) {
		labels = append(labels, c.Graph.NodeData(idx).Text())
	}
	return strings.Join(labels, "\n")
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// CreateDotDescription renders the whole graph in Graphviz DOT.
// Returning edges are dashed.
func (c *ControlFlowGraph) CreateDotDescription() string {
	var sb strings.Builder
	sb.WriteString("digraph {\n")
	c.Graph.ForEachNode(func(idx NodeIndex, data CFGNodeData) {
		fmt.Fprintf(&sb, "    N%d[label=\"%s\"];\n", idx, dotEscaper.Replace(data.Text()))
	})
	c.Graph.ForEachEdge(func(_ EdgeIndex, source, target NodeIndex, data CFGEdgeData) {
		if data.Kind == EdgeReturning {
			fmt.Fprintf(&sb, "    N%d -> N%d[style=dashed];\n", source, target)
			return
		}
		fmt.Fprintf(&sb, "    N%d -> N%d;\n", source, target)
	})
	sb.WriteString("}\n")
	return sb.String()
}

// CFGStats summarizes the part of a graph reachable from Entry
type CFGStats struct {
	Nodes          int `json:"nodes" yaml:"nodes"`
	Edges          int `json:"edges" yaml:"edges"`
	ReachableNodes int `json:"reachable_nodes" yaml:"reachable_nodes"`
	ReachableEdges int `json:"reachable_edges" yaml:"reachable_edges"`
	// Complexity is McCabe's E - N + 2 over the reachable subgraph
	Complexity int `json:"complexity" yaml:"complexity"`
}

// Stats computes node and edge counts and cyclomatic complexity
func (c *ControlFlowGraph) Stats() CFGStats {
	reachable := make([]bool, c.Graph.NodeCount())
	stats := CFGStats{
		Nodes: c.Graph.NodeCount(),
		Edges: c.Graph.EdgeCount(),
	}
	for idx := range c.Graph.DepthFirstTraversal(c.Entry) {
		reachable[idx] = true
		stats.ReachableNodes++
	}
	c.Graph.ForEachEdge(func(_ EdgeIndex, source, _ NodeIndex, _ CFGEdgeData) {
		if reachable[source] {
			stats.ReachableEdges++
		}
	})

	stats.Complexity = stats.ReachableEdges - stats.ReachableNodes + 2
	if stats.Complexity < 1 {
		stats.Complexity = 1
	}
	return stats
}
