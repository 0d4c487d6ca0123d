package parser

import "fmt"

// NodeType represents the type of AST node
type NodeType string

// Rust AST node types
const (
	// Items and containers
	NodeSourceFile NodeType = "SourceFile"
	NodeFunction   NodeType = "Function"
	NodeClosure    NodeType = "Closure"
	NodeImpl       NodeType = "Impl"
	NodeTrait      NodeType = "Trait"
	NodeMod        NodeType = "Mod"
	NodeItem       NodeType = "Item" // struct, enum, use, const, ... (opaque)
	NodeParam      NodeType = "Param"
	NodeSelfParam  NodeType = "SelfParam"

	// Statements
	NodeBlock    NodeType = "Block"
	NodeLet      NodeType = "Let"
	NodeExprStmt NodeType = "ExprStmt"
	NodeItemStmt NodeType = "ItemStmt"

	// Control flow expressions
	NodeIf           NodeType = "If"
	NodeCondition    NodeType = "Condition"
	NodeLetCondition NodeType = "LetCondition"
	NodeWhile        NodeType = "While"
	NodeLoop         NodeType = "Loop"
	NodeFor          NodeType = "For"
	NodeMatch        NodeType = "Match"
	NodeMatchArm     NodeType = "MatchArm"
	NodeMatchGuard   NodeType = "MatchGuard"
	NodeReturn       NodeType = "Return"
	NodeBreak        NodeType = "Break"
	NodeContinue     NodeType = "Continue"
	NodeTry          NodeType = "Try"

	// Other expressions
	NodeMacroCall    NodeType = "MacroCall"
	NodeCall         NodeType = "Call"
	NodeMethodCall   NodeType = "MethodCall"
	NodeBinary       NodeType = "Binary"
	NodeAssign       NodeType = "Assign"
	NodeCompound     NodeType = "CompoundAssign"
	NodeUnary        NodeType = "Unary"
	NodeRef          NodeType = "Ref"
	NodeCast         NodeType = "Cast"
	NodeIndex        NodeType = "Index"
	NodeField        NodeType = "Field"
	NodeTuple        NodeType = "Tuple"
	NodeArray        NodeType = "Array"
	NodeParen        NodeType = "Paren"
	NodeRange        NodeType = "Range"
	NodeStructLit    NodeType = "StructLit"
	NodeAwait        NodeType = "Await"
	NodeLiteral      NodeType = "Literal"
	NodePath         NodeType = "Path"
	NodeUnknownExpr  NodeType = "UnknownExpr"

	// Patterns
	NodePatIdent       NodeType = "PatIdent"
	NodePatWild        NodeType = "PatWild"
	NodePatRange       NodeType = "PatRange"
	NodePatConst       NodeType = "PatConst"
	NodePatTuple       NodeType = "PatTuple"
	NodePatTupleStruct NodeType = "PatTupleStruct"
	NodePatStruct      NodeType = "PatStruct"
	NodePatSlice       NodeType = "PatSlice"
	NodePatRef         NodeType = "PatRef"
	NodePatOr          NodeType = "PatOr"
	NodePatRest        NodeType = "PatRest"
)

// Location represents the position of a node in the source code
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Node represents an AST node.
//
// Children holds every structural sub-node in source order; the role fields
// below point into Children for the node types that use them.
type Node struct {
	Type     NodeType
	Text     string // source text
	Children []*Node
	Location Location
	Parent   *Node

	Name  string // function/macro/method/field name, bound identifier
	Label string // loop label without the leading quote
	Op    string // operator of Binary/Unary/CompoundAssign

	Params  []*Node // Function/Closure parameters
	Body    *Node   // Function/Closure/While/Loop/For body, Match arm body
	Stmts   []*Node // Block statements
	Tail    *Node   // Block trailing expression
	Cond    *Node   // If/While condition wrapper, Condition/MatchGuard inner expression
	Then    *Node   // If consequence
	Else    *Node   // If alternative (Block or nested If)
	Iter    *Node   // For iterable
	Pattern *Node   // Let/For/Param/LetCondition/MatchArm pattern
	Init    *Node   // Let initializer, LetCondition scrutinee
	Expr    *Node   // single-operand expressions, ExprStmt inner, Match scrutinee
	Left    *Node   // Binary/Assign/Range left side
	Right   *Node   // Binary/Assign/Range right side
	Callee  *Node   // Call callee, MethodCall receiver
	Args    []*Node // Call/MethodCall args, Tuple/Array/StructLit elements
	Arms    []*Node // Match arms
	Pats    []*Node // compound pattern sub-patterns, PatOr alternatives
	Guard   *Node   // MatchArm guard

	HasSemi bool // ExprStmt terminated by ';'
}

// NewNode creates a new AST node
func NewNode(nodeType NodeType) *Node {
	return &Node{
		Type:     nodeType,
		Children: []*Node{},
	}
}

// AddChild adds a child node and returns it
func (n *Node) AddChild(child *Node) *Node {
	if child != nil {
		child.Parent = n
		n.Children = append(n.Children, child)
	}
	return child
}

// IsLazyBinary reports whether the node is a short-circuiting && or ||
func (n *Node) IsLazyBinary() bool {
	return n.Type == NodeBinary && (n.Op == "&&" || n.Op == "||")
}

// IsStatement returns true if the node is a statement
func (n *Node) IsStatement() bool {
	switch n.Type {
	case NodeLet, NodeExprStmt, NodeItemStmt:
		return true
	default:
		return false
	}
}

// IsExpression returns true if the node is an expression
func (n *Node) IsExpression() bool {
	switch n.Type {
	case NodeBlock, NodeIf, NodeWhile, NodeLoop, NodeFor, NodeMatch,
		NodeReturn, NodeBreak, NodeContinue, NodeTry, NodeMacroCall,
		NodeCall, NodeMethodCall, NodeBinary, NodeAssign, NodeCompound,
		NodeUnary, NodeRef, NodeCast, NodeIndex, NodeField, NodeTuple,
		NodeArray, NodeParen, NodeRange, NodeStructLit, NodeAwait,
		NodeLiteral, NodePath, NodeClosure, NodeUnknownExpr:
		return true
	default:
		return false
	}
}

// IsPattern returns true if the node is a pattern
func (n *Node) IsPattern() bool {
	switch n.Type {
	case NodePatIdent, NodePatWild, NodePatRange, NodePatConst, NodePatTuple,
		NodePatTupleStruct, NodePatStruct, NodePatSlice,
		NodePatRef, NodePatOr, NodePatRest:
		return true
	default:
		return false
	}
}

// IsLoop returns true for while, loop and for expressions
func (n *Node) IsLoop() bool {
	switch n.Type {
	case NodeWhile, NodeLoop, NodeFor:
		return true
	default:
		return false
	}
}

// IsFunctionLike returns true for functions and closures
func (n *Node) IsFunctionLike() bool {
	return n.Type == NodeFunction || n.Type == NodeClosure
}

// IsControlFlow returns true if the node represents control flow
func (n *Node) IsControlFlow() bool {
	switch n.Type {
	case NodeIf, NodeWhile, NodeLoop, NodeFor, NodeMatch,
		NodeReturn, NodeBreak, NodeContinue, NodeTry:
		return true
	default:
		return false
	}
}

// String returns a string representation of the node
func (n *Node) String() string {
	if n.Name != "" {
		return fmt.Sprintf("%s(%s)", n.Type, n.Name)
	}
	return string(n.Type)
}

// Walk traverses the AST using depth-first search
func (n *Node) Walk(visitor func(*Node) bool) {
	if !visitor(n) {
		return
	}

	for _, child := range n.Children {
		if child != nil {
			child.Walk(visitor)
		}
	}
}

// Find finds all nodes matching a predicate
func (n *Node) Find(predicate func(*Node) bool) []*Node {
	var results []*Node
	n.Walk(func(node *Node) bool {
		if predicate(node) {
			results = append(results, node)
		}
		return true
	})
	return results
}

// FindByType finds all nodes of a specific type
func (n *Node) FindByType(nodeType NodeType) []*Node {
	return n.Find(func(node *Node) bool {
		return node.Type == nodeType
	})
}

// GetParentOfType finds the nearest parent of a specific type
func (n *Node) GetParentOfType(nodeType NodeType) *Node {
	current := n.Parent
	for current != nil {
		if current.Type == nodeType {
			return current
		}
		current = current.Parent
	}
	return nil
}

// EnclosingFunction returns the nearest enclosing function or closure
func (n *Node) EnclosingFunction() *Node {
	for current := n.Parent; current != nil; current = current.Parent {
		if current.IsFunctionLike() {
			return current
		}
	}
	return nil
}

// MacroPath returns the final segment of a macro call name, so that
// std::panic and panic compare equal.
func (n *Node) MacroPath() string {
	name := n.Name
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == ':' {
			return name[i+1:]
		}
	}
	return name
}
