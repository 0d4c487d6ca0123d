package analyzer

import (
	"github.com/ludo-technologies/rsscn/internal/parser"
)

// ExitPointKind classifies how control leaves a function or closure body
type ExitPointKind int

const (
	// ExitReturn is an explicit return expression
	ExitReturn ExitPointKind = iota
	// ExitTryExpr is a `?` or try! that may propagate an error
	ExitTryExpr
	// ExitDivergingExpr is a macro call of never type
	ExitDivergingExpr
	// ExitTailExpr is an expression whose value becomes the result
	ExitTailExpr
	// ExitTailStatement is a last statement that falls off the end with unit
	ExitTailStatement
)

// String returns string representation of ExitPointKind
func (k ExitPointKind) String() string {
	switch k {
	case ExitReturn:
		return "return"
	case ExitTryExpr:
		return "try"
	case ExitDivergingExpr:
		return "diverging"
	case ExitTailExpr:
		return "tail_expr"
	case ExitTailStatement:
		return "tail_statement"
	default:
		return "unknown"
	}
}

// ExitPoint is one syntactic exit of a body. Node is the return, try,
// macro call or tail expression, or the expression statement for
// ExitTailStatement.
type ExitPoint struct {
	Kind ExitPointKind
	Node *parser.Node
}

// ProcessExitPoints calls sink for every exit point of the function or
// closure owner, in syntactic order. Nested functions and closures are
// not entered. A nil oracle uses the default NeverOracle.
func ProcessExitPoints(owner *parser.Node, oracle parser.TypeOracle, sink func(ExitPoint)) {
	if owner == nil || owner.Body == nil {
		return
	}
	if oracle == nil {
		oracle = parser.NewNeverOracle(nil, nil)
	}
	v := &exitPointVisitor{oracle: oracle, sink: sink}
	v.visit(owner.Body)
}

// CollectExitPoints returns the exit points of owner as a slice
func CollectExitPoints(owner *parser.Node, oracle parser.TypeOracle) []ExitPoint {
	var points []ExitPoint
	ProcessExitPoints(owner, oracle, func(p ExitPoint) {
		points = append(points, p)
	})
	return points
}

type exitPointVisitor struct {
	oracle parser.TypeOracle
	sink   func(ExitPoint)
}

func (v *exitPointVisitor) visit(n *parser.Node) {
	if n == nil {
		return
	}

	switch n.Type {
	case parser.NodeFunction, parser.NodeClosure, parser.NodeItemStmt:
		return

	case parser.NodeReturn:
		v.sink(ExitPoint{Kind: ExitReturn, Node: n})

	case parser.NodeTry:
		v.visit(n.Expr)
		v.sink(ExitPoint{Kind: ExitTryExpr, Node: n})

	case parser.NodeMacroCall:
		tryMacro := parser.IsTryMacro(n)
		diverging := v.oracle.IsNever(n)
		if tryMacro {
			v.sink(ExitPoint{Kind: ExitTryExpr, Node: n})
		}
		if diverging {
			v.sink(ExitPoint{Kind: ExitDivergingExpr, Node: n})
		}
		if !tryMacro && !diverging && isInTailPosition(n) {
			v.sink(ExitPoint{Kind: ExitTailExpr, Node: n})
		}

	case parser.NodeIf, parser.NodeBlock, parser.NodeMatch:
		v.visitChildren(n)

	case parser.NodeExprStmt:
		v.visitChildren(n)
		if v.isTailStatement(n) {
			v.sink(ExitPoint{Kind: ExitTailStatement, Node: n})
		}

	default:
		if n.IsExpression() && isInTailPosition(n) {
			v.sink(ExitPoint{Kind: ExitTailExpr, Node: n})
			return
		}
		v.visitChildren(n)
	}
}

func (v *exitPointVisitor) visitChildren(n *parser.Node) {
	for _, child := range n.Children {
		v.visit(child)
	}
}

// isTailStatement reports whether stmt is the last thing evaluated in a
// block whose value is the body's result, without being an exit itself.
func (v *exitPointVisitor) isTailStatement(stmt *parser.Node) bool {
	block := stmt.Parent
	if block == nil || block.Type != parser.NodeBlock {
		return false
	}
	if block.Tail != nil || len(block.Stmts) == 0 || block.Stmts[len(block.Stmts)-1] != stmt {
		return false
	}

	parent := block.Parent
	if parent == nil {
		return false
	}
	if !parent.IsFunctionLike() && !(parent.IsExpression() && isInTailPosition(parent)) {
		return false
	}

	// `foo()?;` and `try!(foo());` are already reported as try exits
	if stmt.Expr == nil || stmt.Expr.Type == parser.NodeTry || parser.IsTryMacro(stmt.Expr) {
		return false
	}
	return !v.oracle.IsNever(stmt.Expr)
}

// isInTailPosition walks from n upward until the answer is decided.
// The operand of a `?` is never in tail position: the try expression is.
func isInTailPosition(n *parser.Node) bool {
	for current := n; current != nil; current = current.Parent {
		switch {
		case current.IsFunctionLike():
			return true
		case current.IsStatement(), current.IsPattern(),
			current.Type == parser.NodeCondition,
			current.Type == parser.NodeLetCondition,
			current.Type == parser.NodeMatchGuard:
			return false
		case current != n && current.Type == parser.NodeTry:
			return false
		case current.IsExpression() && current.Parent != nil &&
			current.Parent.Type == parser.NodeMatch && current.Parent.Expr == current:
			// match scrutinee
			return false
		}
	}
	return false
}

// ExitPointSummary holds the exit points of one function
type ExitPointSummary struct {
	FunctionName string
	Node         *parser.Node
	ExitPoints   []ExitPoint
	Counts       map[ExitPointKind]int

	// HasMultipleReturns is set when control can leave through more than
	// one explicit exit, or through an explicit exit and the end of the body
	HasMultipleReturns bool
}

// Returns is the number of explicit return expressions
func (s *ExitPointSummary) Returns() int {
	return s.Counts[ExitReturn]
}

// ExitPointAnalyzer summarizes exit points per function
type ExitPointAnalyzer struct {
	oracle parser.TypeOracle
}

// NewExitPointAnalyzer creates an analyzer. A nil oracle uses the default NeverOracle.
func NewExitPointAnalyzer(oracle parser.TypeOracle) *ExitPointAnalyzer {
	if oracle == nil {
		oracle = parser.NewNeverOracle(nil, nil)
	}
	return &ExitPointAnalyzer{oracle: oracle}
}

// Analyze collects and counts the exit points of fn
func (a *ExitPointAnalyzer) Analyze(name string, fn *parser.Node) *ExitPointSummary {
	summary := &ExitPointSummary{
		FunctionName: name,
		Node:         fn,
		Counts:       make(map[ExitPointKind]int),
	}
	ProcessExitPoints(fn, a.oracle, func(p ExitPoint) {
		summary.ExitPoints = append(summary.ExitPoints, p)
		summary.Counts[p.Kind]++
	})

	explicit := summary.Counts[ExitReturn] + summary.Counts[ExitTryExpr]
	implicit := summary.Counts[ExitTailExpr] + summary.Counts[ExitTailStatement]
	summary.HasMultipleReturns = explicit > 1 || (summary.Counts[ExitReturn] > 0 && implicit > 0)
	return summary
}

// AnalyzeFile summarizes every function and closure under root, in source order
func (a *ExitPointAnalyzer) AnalyzeFile(root *parser.Node) []*ExitPointSummary {
	var summaries []*ExitPointSummary
	for _, fn := range parser.Functions(root) {
		summaries = append(summaries, a.Analyze(fn.Name, fn.Node))
	}
	return summaries
}
