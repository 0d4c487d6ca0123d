package parser

// TypeOracle answers whether an expression has the never type `!`.
// Full type inference is out of reach here, so implementations work from
// syntax plus a configured set of known diverging macros and functions.
type TypeOracle interface {
	IsNever(expr *Node) bool
}

// Default diverging macros and functions
var (
	DefaultDivergingMacros    = []string{"panic", "unreachable", "todo", "unimplemented"}
	DefaultDivergingFunctions = []string{"std::process::exit", "process::exit", "std::process::abort", "process::abort"}
)

// NeverOracle is a syntactic TypeOracle. It is read-only after construction
// and safe for concurrent use.
type NeverOracle struct {
	macros    map[string]bool
	functions map[string]bool
}

// NewNeverOracle creates an oracle. Nil slices select the defaults.
func NewNeverOracle(macros, functions []string) *NeverOracle {
	if macros == nil {
		macros = DefaultDivergingMacros
	}
	if functions == nil {
		functions = DefaultDivergingFunctions
	}

	o := &NeverOracle{
		macros:    make(map[string]bool, len(macros)),
		functions: make(map[string]bool, len(functions)),
	}
	for _, m := range macros {
		o.macros[m] = true
	}
	for _, f := range functions {
		o.functions[f] = true
	}
	return o
}

// IsNever reports whether expr diverges
func (o *NeverOracle) IsNever(expr *Node) bool {
	if expr == nil {
		return false
	}

	switch expr.Type {
	case NodeReturn, NodeBreak, NodeContinue:
		return true
	case NodeMacroCall:
		return o.macros[expr.MacroPath()] || o.macros[expr.Name]
	case NodeCall:
		return o.functions[expr.Name]
	case NodeLoop:
		return !HasBreakTargeting(expr)
	case NodeParen, NodeExprStmt:
		return o.IsNever(expr.Expr)
	case NodeBlock:
		if expr.Tail != nil {
			return o.IsNever(expr.Tail)
		}
		for _, stmt := range expr.Stmts {
			switch stmt.Type {
			case NodeExprStmt:
				if o.IsNever(stmt.Expr) {
					return true
				}
			case NodeLet:
				if o.IsNever(stmt.Init) {
					return true
				}
			}
		}
		return false
	case NodeIf:
		if expr.Cond != nil && o.IsNever(expr.Cond.Cond) {
			return true
		}
		return expr.Else != nil && o.IsNever(expr.Then) && o.IsNever(expr.Else)
	case NodeMatch:
		if o.IsNever(expr.Expr) {
			return true
		}
		for _, arm := range expr.Arms {
			if !o.IsNever(arm.Body) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsTryMacro reports whether n is the legacy `try!(..)` form
func IsTryMacro(n *Node) bool {
	return n != nil && n.Type == NodeMacroCall && n.MacroPath() == "try"
}

// HasBreakTargeting reports whether any break inside loop exits that loop.
// Unlabeled breaks bind to the innermost loop; closures and nested items
// are not searched.
func HasBreakTargeting(loop *Node) bool {
	var found bool
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if found || n == nil {
			return
		}
		switch n.Type {
		case NodeFunction, NodeClosure, NodeItemStmt:
			return
		case NodeBreak:
			if (n.Label == "" && depth == 0) || (n.Label != "" && n.Label == loop.Label) {
				found = true
				return
			}
		}
		childDepth := depth
		if n.IsLoop() {
			childDepth++
		}
		for _, child := range n.Children {
			walk(child, childDepth)
		}
	}
	for _, child := range loop.Children {
		walk(child, 0)
	}
	return found
}
