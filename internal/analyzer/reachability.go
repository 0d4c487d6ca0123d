package analyzer

import (
	"time"

	"github.com/ludo-technologies/rsscn/internal/parser"
)

// ReachabilityResult contains the results of reachability analysis
type ReachabilityResult struct {
	// Reachable marks every node index visited from the start node
	Reachable []bool

	// ReachableElements contains syntax elements with at least one reachable node
	ReachableElements map[*parser.Node]bool

	// UnreachableNodes lists AST nodes that cannot be reached, in insertion order
	UnreachableNodes []NodeIndex

	// TotalNodes is the number of nodes in the graph
	TotalNodes int

	// ReachableCount is the number of reachable nodes
	ReachableCount int

	// UnreachableCount is the number of unreachable nodes of any kind
	UnreachableCount int

	// AnalysisTime is the time taken to perform the analysis
	AnalysisTime time.Duration
}

// ReachabilityAnalyzer performs reachability analysis on a ControlFlowGraph
type ReachabilityAnalyzer struct {
	cfg *ControlFlowGraph
}

// NewReachabilityAnalyzer creates a new reachability analyzer for the given CFG
func NewReachabilityAnalyzer(cfg *ControlFlowGraph) *ReachabilityAnalyzer {
	return &ReachabilityAnalyzer{cfg: cfg}
}

// AnalyzeReachability performs reachability analysis starting from the entry node
func (ra *ReachabilityAnalyzer) AnalyzeReachability() *ReachabilityResult {
	if ra.cfg == nil {
		return &ReachabilityResult{ReachableElements: map[*parser.Node]bool{}}
	}
	return ra.AnalyzeReachabilityFrom(ra.cfg.Entry)
}

// AnalyzeReachabilityFrom performs reachability analysis from a specific node
func (ra *ReachabilityAnalyzer) AnalyzeReachabilityFrom(start NodeIndex) *ReachabilityResult {
	startTime := time.Now()

	result := &ReachabilityResult{
		ReachableElements: make(map[*parser.Node]bool),
	}

	// Handle nil CFG or nil graph
	if ra.cfg == nil || ra.cfg.Graph == nil {
		result.AnalysisTime = time.Since(startTime)
		return result
	}

	graph := ra.cfg.Graph
	result.TotalNodes = graph.NodeCount()
	result.Reachable = make([]bool, result.TotalNodes)

	for idx := range graph.DepthFirstTraversal(start) {
		result.Reachable[idx] = true
		result.ReachableCount++
		if el := graph.NodeData(idx).Element; el != nil {
			result.ReachableElements[el] = true
		}
	}

	graph.ForEachNode(func(idx NodeIndex, data CFGNodeData) {
		if result.Reachable[idx] {
			return
		}
		result.UnreachableCount++
		if data.Kind == CFGNodeAST {
			result.UnreachableNodes = append(result.UnreachableNodes, idx)
		}
	})

	result.AnalysisTime = time.Since(startTime)
	return result
}

// IsReachable reports whether element has a reachable node
func (result *ReachabilityResult) IsReachable(element *parser.Node) bool {
	return result.ReachableElements[element]
}

// GetReachabilityRatio returns the ratio of reachable nodes to total nodes
func (result *ReachabilityResult) GetReachabilityRatio() float64 {
	if result.TotalNodes == 0 {
		return 1.0
	}
	return float64(result.ReachableCount) / float64(result.TotalNodes)
}

// HasUnreachableCode returns true if some source element is unreachable
func (result *ReachabilityResult) HasUnreachableCode() bool {
	return len(result.UnreachableNodes) > 0
}
