package analyzer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ludo-technologies/rsscn/internal/parser"
)

// SeverityLevel represents the severity of a dead code finding
type SeverityLevel string

const (
	// SeverityLevelCritical indicates code that is definitely unreachable
	SeverityLevelCritical SeverityLevel = "critical"

	// SeverityLevelWarning indicates code that is likely unreachable
	SeverityLevelWarning SeverityLevel = "warning"

	// SeverityLevelInfo indicates potential optimization opportunities
	SeverityLevelInfo SeverityLevel = "info"
)

// DeadCodeReason represents the reason why code is considered dead
type DeadCodeReason string

const (
	// ReasonUnreachableAfterReturn indicates code after a return expression
	ReasonUnreachableAfterReturn DeadCodeReason = "unreachable_after_return"

	// ReasonUnreachableAfterInfiniteLoop indicates code after a loop with no break
	ReasonUnreachableAfterInfiniteLoop DeadCodeReason = "unreachable_after_infinite_loop"

	// ReasonUnreachableAfterDiverging indicates code after a call that never returns,
	// such as panic! or std::process::exit
	ReasonUnreachableAfterDiverging DeadCodeReason = "unreachable_after_diverging"
)

// DeadCodeFinding represents a single dead code detection result
type DeadCodeFinding struct {
	// Function information
	FunctionName string `json:"function_name"`
	FilePath     string `json:"file_path"`

	// Location information
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`

	// Dead code details
	NodeID      string         `json:"node_id"`
	Code        string         `json:"code"`
	Reason      DeadCodeReason `json:"reason"`
	Severity    SeverityLevel  `json:"severity"`
	Description string         `json:"description"`

	// Context holds the statement that ends control flow
	Context []string `json:"context,omitempty"`
}

// DeadCodeResult contains the results of dead code analysis for a single CFG
type DeadCodeResult struct {
	// Function information
	FunctionName string `json:"function_name"`
	FilePath     string `json:"file_path"`

	// Analysis results
	Findings       []*DeadCodeFinding `json:"findings"`
	TotalNodes     int                `json:"total_nodes"`
	DeadNodes      int                `json:"dead_nodes"`
	ReachableRatio float64            `json:"reachable_ratio"`

	// Performance metrics
	AnalysisTime time.Duration `json:"analysis_time"`
}

// DeadCodeDetector reports statements a function can never execute
type DeadCodeDetector struct {
	cfg          *ControlFlowGraph
	functionName string
	filePath     string
	oracle       parser.TypeOracle
}

// DeadCodeOption configures a DeadCodeDetector
type DeadCodeOption func(*DeadCodeDetector)

// WithFilePath sets the file path reported in findings
func WithFilePath(path string) DeadCodeOption {
	return func(d *DeadCodeDetector) { d.filePath = path }
}

// WithFunctionName sets the function name reported in findings
func WithFunctionName(name string) DeadCodeOption {
	return func(d *DeadCodeDetector) { d.functionName = name }
}

// WithOracle sets the never-type oracle used for diverging calls
func WithOracle(oracle parser.TypeOracle) DeadCodeOption {
	return func(d *DeadCodeDetector) { d.oracle = oracle }
}

// NewDeadCodeDetector creates a new dead code detector for the given CFG
func NewDeadCodeDetector(cfg *ControlFlowGraph, opts ...DeadCodeOption) *DeadCodeDetector {
	d := &DeadCodeDetector{cfg: cfg}
	for _, opt := range opts {
		opt(d)
	}
	if d.oracle == nil {
		d.oracle = parser.NewNeverOracle(nil, nil)
	}
	return d
}

// Detect performs dead code detection and returns structured findings
func (dcd *DeadCodeDetector) Detect() *DeadCodeResult {
	startTime := time.Now()

	result := &DeadCodeResult{
		FunctionName: dcd.getFunctionName(),
		FilePath:     dcd.filePath,
		Findings:     make([]*DeadCodeFinding, 0),
	}

	// Handle nil or empty CFG
	if dcd.cfg == nil || dcd.cfg.Graph == nil || dcd.cfg.Body == nil {
		result.AnalysisTime = time.Since(startTime)
		return result
	}

	reach := NewReachabilityAnalyzer(dcd.cfg).AnalyzeReachability()
	result.TotalNodes = reach.TotalNodes
	result.DeadNodes = len(reach.UnreachableNodes)
	result.ReachableRatio = reach.GetReachabilityRatio()

	inGraph := make(map[*parser.Node]NodeIndex)
	dcd.cfg.Graph.ForEachNode(func(idx NodeIndex, data CFGNodeData) {
		if data.Kind != CFGNodeAST {
			return
		}
		if _, seen := inGraph[data.Element]; !seen {
			inGraph[data.Element] = idx
		}
	})

	scan := &blockScanner{
		detector: dcd,
		reach:    reach,
		inGraph:  inGraph,
		result:   result,
	}
	scan.walk(dcd.cfg.Body)

	// Sort findings by line number for consistent output
	sort.SliceStable(result.Findings, func(i, j int) bool {
		return result.Findings[i].StartLine < result.Findings[j].StartLine
	})

	result.AnalysisTime = time.Since(startTime)
	return result
}

// DetectInFunction analyzes a single CFG and returns findings
func DetectInFunction(cfg *ControlFlowGraph, opts ...DeadCodeOption) *DeadCodeResult {
	return NewDeadCodeDetector(cfg, opts...).Detect()
}

// DetectInFile analyzes every function of a file and returns the results with findings
func DetectInFile(cfgs []*FunctionCFG, filePath string, oracle parser.TypeOracle) []*DeadCodeResult {
	var results []*DeadCodeResult

	for _, fn := range cfgs {
		result := NewDeadCodeDetector(fn.CFG,
			WithFilePath(filePath),
			WithFunctionName(fn.Name),
			WithOracle(oracle),
		).Detect()

		// Only include results that have findings
		if len(result.Findings) > 0 {
			results = append(results, result)
		}
	}

	return results
}

// blockScanner walks the blocks of one body. A finding covers the rest of
// its block, so nothing below it is scanned again.
type blockScanner struct {
	detector *DeadCodeDetector
	reach    *ReachabilityResult
	inGraph  map[*parser.Node]NodeIndex
	result   *DeadCodeResult
}

func (s *blockScanner) walk(n *parser.Node) {
	if n == nil {
		return
	}
	switch n.Type {
	case parser.NodeFunction, parser.NodeClosure, parser.NodeItemStmt, parser.NodeMacroCall:
		// own graph, or not part of this graph
		return
	case parser.NodeBlock:
		s.scanBlock(n)
		return
	}
	for _, child := range n.Children {
		s.walk(child)
	}
}

func (s *blockScanner) scanBlock(block *parser.Node) {
	items := blockItems(block)

	for i, item := range items {
		present, reachable := s.itemState(item)
		if !present {
			continue
		}

		if !reachable {
			cause := s.previousItem(items, i)
			if cause == nil {
				// the whole block is dead; reported where it starts
				return
			}
			if reason, severity, ok := s.unreachableReason(cause); ok {
				s.report(items[i:], cause, reason, severity)
			}
			return
		}

		if i+1 < len(items) && s.detector.oracle.IsNever(divergingExpr(item)) && !containsReturnOrLoop(item) {
			s.report(items[i+1:], item, ReasonUnreachableAfterDiverging, SeverityLevelWarning)
			s.walk(item)
			return
		}

		s.walk(item)
	}
}

// itemState reports whether any element of item is in the graph and
// whether control reaches any of them. Elements are added after their
// operands, so a loop that never exits is still entered.
func (s *blockScanner) itemState(item *parser.Node) (present, reachable bool) {
	item.Walk(func(n *parser.Node) bool {
		if reachable {
			return false
		}
		if _, ok := s.inGraph[n]; ok {
			present = true
			if s.reach.IsReachable(n) {
				reachable = true
				return false
			}
		}
		switch n.Type {
		case parser.NodeFunction, parser.NodeClosure, parser.NodeItemStmt, parser.NodeMacroCall:
			return false
		}
		return true
	})
	return present, reachable
}

func (s *blockScanner) previousItem(items []*parser.Node, i int) *parser.Node {
	for j := i - 1; j >= 0; j-- {
		if present, _ := s.itemState(items[j]); present {
			return items[j]
		}
	}
	return nil
}

// firstNode returns the first graph node of item in evaluation order
func (s *blockScanner) firstNode(item *parser.Node) (NodeIndex, bool) {
	first, found := NodeIndex(0), false
	item.Walk(func(n *parser.Node) bool {
		if idx, ok := s.inGraph[n]; ok && (!found || idx < first) {
			first, found = idx, true
		}
		switch n.Type {
		case parser.NodeFunction, parser.NodeClosure, parser.NodeItemStmt, parser.NodeMacroCall:
			return false
		}
		return true
	})
	return first, found
}

// unreachableReason explains why the code after cause is not in the
// reachable graph. Loops that contain a break are skipped: break is not
// wired, so their exit looks unreachable even when it is not.
func (s *blockScanner) unreachableReason(cause *parser.Node) (DeadCodeReason, SeverityLevel, bool) {
	var loops, brokenLoops int
	cause.Walk(func(n *parser.Node) bool {
		switch n.Type {
		case parser.NodeFunction, parser.NodeClosure, parser.NodeItemStmt:
			return false
		case parser.NodeLoop:
			loops++
			if parser.HasBreakTargeting(n) {
				brokenLoops++
			}
		}
		return true
	})

	switch {
	case brokenLoops > 0:
		return "", "", false
	case loops > 0:
		return ReasonUnreachableAfterInfiniteLoop, SeverityLevelWarning, true
	default:
		return ReasonUnreachableAfterReturn, SeverityLevelCritical, true
	}
}

func (s *blockScanner) report(dead []*parser.Node, cause *parser.Node, reason DeadCodeReason, severity SeverityLevel) {
	first, last := dead[0], dead[len(dead)-1]

	code := make([]string, 0, len(dead))
	for _, item := range dead {
		code = append(code, strings.TrimSpace(item.Text))
	}

	nodeID := ""
	if idx, ok := s.firstNode(first); ok {
		nodeID = fmt.Sprintf("N%d", idx)
	}

	s.result.Findings = append(s.result.Findings, &DeadCodeFinding{
		FunctionName: s.result.FunctionName,
		FilePath:     s.result.FilePath,
		StartLine:    first.Location.StartLine,
		EndLine:      last.Location.EndLine,
		NodeID:       nodeID,
		Code:         strings.Join(code, "\n"),
		Reason:       reason,
		Severity:     severity,
		Description:  generateDescription(reason),
		Context:      []string{strings.TrimSpace(cause.Text)},
	})
}

// blockItems returns the statements and tail of a block in order
func blockItems(block *parser.Node) []*parser.Node {
	items := make([]*parser.Node, 0, len(block.Stmts)+1)
	items = append(items, block.Stmts...)
	if block.Tail != nil {
		items = append(items, block.Tail)
	}
	return items
}

func divergingExpr(item *parser.Node) *parser.Node {
	switch item.Type {
	case parser.NodeExprStmt:
		return item.Expr
	case parser.NodeLet:
		return item.Init
	case parser.NodeItemStmt:
		return nil
	default:
		return item
	}
}

// containsReturnOrLoop is true when the graph already models the divergence
func containsReturnOrLoop(n *parser.Node) bool {
	found := false
	n.Walk(func(c *parser.Node) bool {
		if found {
			return false
		}
		switch c.Type {
		case parser.NodeFunction, parser.NodeClosure, parser.NodeItemStmt:
			return false
		case parser.NodeReturn, parser.NodeLoop, parser.NodeBreak, parser.NodeContinue:
			found = true
			return false
		}
		return true
	})
	return found
}

func (dcd *DeadCodeDetector) getFunctionName() string {
	if dcd.functionName != "" {
		return dcd.functionName
	}
	if dcd.cfg != nil && dcd.cfg.Owner != nil {
		return dcd.cfg.Owner.Name
	}
	return ""
}

// generateDescription creates a human-readable description of the dead code
func generateDescription(reason DeadCodeReason) string {
	switch reason {
	case ReasonUnreachableAfterReturn:
		return "Code appears after a return and will never be executed"
	case ReasonUnreachableAfterInfiniteLoop:
		return "Code appears after a loop that never breaks and will never be executed"
	case ReasonUnreachableAfterDiverging:
		return "Code appears after a call that never returns and will never be executed"
	default:
		return "Code is unreachable and will never be executed"
	}
}

// HasDeadCode checks if the CFG contains any dead code
func (dcd *DeadCodeDetector) HasDeadCode() bool {
	return len(dcd.Detect().Findings) > 0
}

// FilterFindingsBySeverity filters findings by minimum severity level
func FilterFindingsBySeverity(findings []*DeadCodeFinding, minSeverity SeverityLevel) []*DeadCodeFinding {
	severityOrder := map[SeverityLevel]int{
		SeverityLevelInfo:     1,
		SeverityLevelWarning:  2,
		SeverityLevelCritical: 3,
	}

	minLevel := severityOrder[minSeverity]
	var filtered []*DeadCodeFinding

	for _, finding := range findings {
		if severityOrder[finding.Severity] >= minLevel {
			filtered = append(filtered, finding)
		}
	}

	return filtered
}

// GroupFindingsByReason groups findings by their reason
func GroupFindingsByReason(findings []*DeadCodeFinding) map[DeadCodeReason][]*DeadCodeFinding {
	groups := make(map[DeadCodeReason][]*DeadCodeFinding)

	for _, finding := range findings {
		groups[finding.Reason] = append(groups[finding.Reason], finding)
	}

	return groups
}
