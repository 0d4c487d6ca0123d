package analyzer

import (
	"errors"
	"fmt"
	"log"

	"github.com/ludo-technologies/rsscn/internal/parser"
)

var (
	// ErrNilBody is returned when a CFG is requested for a missing body
	ErrNilBody = errors.New("cannot build CFG from nil body")

	// ErrUnbalancedTraversal is the panic value raised when a visit changes
	// the traversal depth. It always indicates a bug in the builder.
	ErrUnbalancedTraversal = errors.New("unbalanced CFG traversal")
)

// loopScope records where control goes on continue and break for one loop.
// The targets are computed for every loop but break and continue do not
// consult them yet; see visitJump.
type loopScope struct {
	loop           *parser.Node
	continueTarget NodeIndex
	breakTarget    NodeIndex
}

// scopeList is a persistent stack of loop scopes, innermost at the head
type scopeList struct {
	scope loopScope
	next  *scopeList
}

// buildContext is threaded by value through the traversal. Entering a loop
// produces a new context; callers keep theirs unchanged.
type buildContext struct {
	loops *scopeList
}

func (c buildContext) withLoop(scope loopScope) buildContext {
	return buildContext{loops: &scopeList{scope: scope, next: c.loops}}
}

// exitingScopes returns the open loops, innermost first
func (c buildContext) exitingScopes() []*parser.Node {
	var scopes []*parser.Node
	for l := c.loops; l != nil; l = l.next {
		scopes = append(scopes, l.scope.loop)
	}
	return scopes
}

// CFGBuilder builds control flow graphs for function and closure bodies.
// Each Build call uses its own graph, so a builder may be reused.
type CFGBuilder struct {
	// logger for error reporting (optional)
	logger *log.Logger
}

// NewCFGBuilder creates a new CFG builder
func NewCFGBuilder() *CFGBuilder {
	return &CFGBuilder{}
}

// SetLogger sets an optional logger for error reporting
func (b *CFGBuilder) SetLogger(logger *log.Logger) {
	b.logger = logger
}

// logError logs an error if a logger is set
func (b *CFGBuilder) logError(format string, args ...interface{}) {
	if b.logger != nil {
		b.logger.Printf("CFGBuilder: "+format, args...)
	}
}

// Build constructs the CFG of a body. The owner is the body's parent.
func (b *CFGBuilder) Build(body *parser.Node) (*ControlFlowGraph, error) {
	if body == nil {
		return nil, ErrNilBody
	}

	graph := NewGraph[CFGNodeData, CFGEdgeData]()
	entry := graph.AddNode(CFGNodeData{Kind: CFGNodeEntry})
	exit := graph.AddNode(CFGNodeData{Kind: CFGNodeExit})

	bb := &bodyBuilder{graph: graph, entry: entry, exit: exit}
	bodyExit := bb.process(buildContext{}, body, entry)
	bb.addContainedEdge(bodyExit, exit)

	return &ControlFlowGraph{
		Owner: body.Parent,
		Body:  body,
		Graph: graph,
		Entry: entry,
		Exit:  exit,
	}, nil
}

// FunctionCFG pairs a function or closure with its graph
type FunctionCFG struct {
	Name string
	Node *parser.Node
	CFG  *ControlFlowGraph
}

// BuildAll builds a CFG for every function and closure under root, in source order
func (b *CFGBuilder) BuildAll(root *parser.Node) ([]*FunctionCFG, error) {
	if root == nil {
		return nil, fmt.Errorf("cannot build CFGs from nil node")
	}

	var result []*FunctionCFG
	for _, fn := range parser.Functions(root) {
		cfg, err := b.Build(fn.Node.Body)
		if err != nil {
			// Skip this function but keep the rest of the file
			b.logError("failed to build CFG for %s: %v", fn.Name, err)
			continue
		}
		result = append(result, &FunctionCFG{Name: fn.Name, Node: fn.Node, CFG: cfg})
	}
	return result, nil
}

// BuildFor builds the CFG of a single body with a fresh builder
func BuildFor(body *parser.Node) (*ControlFlowGraph, error) {
	return NewCFGBuilder().Build(body)
}

// bodyBuilder holds the graph under construction for one body
type bodyBuilder struct {
	graph *CFGGraph
	entry NodeIndex
	exit  NodeIndex
	depth int
}

// process wires n after pred and returns the node that ends its evaluation.
// A nil n leaves pred unchanged.
func (b *bodyBuilder) process(ctx buildContext, n *parser.Node, pred NodeIndex) NodeIndex {
	if n == nil {
		return pred
	}

	before := b.depth
	b.depth++
	result := b.visit(ctx, n, pred)
	b.depth--
	if b.depth != before {
		panic(fmt.Errorf("%w: %s at line %d", ErrUnbalancedTraversal, n.Type, n.Location.StartLine))
	}
	return result
}

func (b *bodyBuilder) visit(ctx buildContext, n *parser.Node, pred NodeIndex) NodeIndex {
	switch n.Type {
	case parser.NodeBlock:
		exit := b.processAll(ctx, n.Stmts, pred)
		exit = b.process(ctx, n.Tail, exit)
		return b.addASTNode(n, exit)

	case parser.NodeLet:
		initExit := b.process(ctx, n.Init, pred)
		if n.Else != nil {
			// let-else diverges, so its exit joins nothing
			b.process(ctx, n.Else, initExit)
		}
		return b.process(ctx, n.Pattern, initExit)

	case parser.NodeExprStmt:
		exit := b.process(ctx, n.Expr, pred)
		return b.addASTNode(n, exit)

	case parser.NodeCondition, parser.NodeMatchGuard:
		return b.process(ctx, n.Cond, pred)

	case parser.NodeLetCondition:
		exit := b.process(ctx, n.Init, pred)
		return b.process(ctx, n.Pattern, exit)

	case parser.NodeBinary, parser.NodeIndex, parser.NodeRange:
		// && and || are not split: the right operand follows the left
		return b.straightLine(ctx, n, pred, n.Left, n.Right)

	case parser.NodeAssign, parser.NodeCompound:
		return b.straightLine(ctx, n, pred, n.Right, n.Left)

	case parser.NodeCall, parser.NodeMethodCall:
		exit := b.process(ctx, n.Callee, pred)
		exit = b.processAll(ctx, n.Args, exit)
		return b.addASTNode(n, exit)

	case parser.NodeTuple, parser.NodeArray, parser.NodeStructLit:
		return b.straightLine(ctx, n, pred, n.Args...)

	case parser.NodeUnary, parser.NodeRef, parser.NodeCast, parser.NodeField,
		parser.NodeAwait, parser.NodeParen:
		return b.straightLine(ctx, n, pred, n.Expr)

	case parser.NodeUnknownExpr:
		return b.straightLine(ctx, n, pred, n.Children...)

	case parser.NodeIf:
		return b.visitIf(ctx, n, pred)
	case parser.NodeWhile:
		return b.visitWhile(ctx, n, pred)
	case parser.NodeLoop:
		return b.visitLoop(ctx, n, pred)
	case parser.NodeFor:
		return b.visitFor(ctx, n, pred)
	case parser.NodeMatch:
		return b.visitMatch(ctx, n, pred)

	case parser.NodeReturn:
		valueExit := b.process(ctx, n.Expr, pred)
		ret := b.addASTNode(n, valueExit)
		b.addReturningEdge(ctx, ret)
		return b.graph.AddNode(CFGNodeData{Kind: CFGNodeUnreachable})

	case parser.NodeTry:
		innerExit := b.process(ctx, n.Expr, pred)
		check := b.addDummyNode(innerExit)
		b.addReturningEdge(ctx, check)
		return b.addASTNode(n, innerExit)

	case parser.NodeBreak, parser.NodeContinue:
		return b.visitJump(ctx, n, pred)

	case parser.NodeLiteral, parser.NodePath, parser.NodeClosure, parser.NodeMacroCall,
		parser.NodePatWild, parser.NodePatRange, parser.NodePatConst, parser.NodePatRest:
		// closure bodies get their own graph; macro arguments are opaque
		return b.addASTNode(n, pred)

	case parser.NodePatIdent, parser.NodePatTuple, parser.NodePatTupleStruct,
		parser.NodePatStruct, parser.NodePatSlice, parser.NodePatRef, parser.NodePatOr:
		return b.straightLine(ctx, n, pred, n.Pats...)

	default:
		return pred
	}
}

func (b *bodyBuilder) visitIf(ctx buildContext, n *parser.Node, pred NodeIndex) NodeIndex {
	condExit := b.process(ctx, n.Cond, pred)
	thenExit := b.process(ctx, n.Then, condExit)

	if n.Else == nil {
		// missing else falls through from the condition
		return b.addASTNode(n, condExit, thenExit)
	}
	elseExit := b.process(ctx, n.Else, condExit)
	return b.addASTNode(n, thenExit, elseExit)
}

func (b *bodyBuilder) visitWhile(ctx buildContext, n *parser.Node, pred NodeIndex) NodeIndex {
	loopback := b.addDummyNode(pred)
	exprExit := b.addASTNode(n)
	inner := ctx.withLoop(loopScope{loop: n, continueTarget: loopback, breakTarget: exprExit})

	condExit := b.process(ctx, n.Cond, loopback)
	b.addContainedEdge(condExit, exprExit)

	bodyExit := b.process(inner, n.Body, condExit)
	b.addContainedEdge(bodyExit, loopback)
	return exprExit
}

func (b *bodyBuilder) visitLoop(ctx buildContext, n *parser.Node, pred NodeIndex) NodeIndex {
	loopback := b.addDummyNode(pred)
	exprExit := b.addASTNode(n)
	inner := ctx.withLoop(loopScope{loop: n, continueTarget: loopback, breakTarget: exprExit})

	bodyExit := b.process(inner, n.Body, loopback)
	b.addContainedEdge(bodyExit, loopback)
	return exprExit
}

func (b *bodyBuilder) visitFor(ctx buildContext, n *parser.Node, pred NodeIndex) NodeIndex {
	loopback := b.addDummyNode(pred)
	exprExit := b.addASTNode(n)
	inner := ctx.withLoop(loopScope{loop: n, continueTarget: loopback, breakTarget: exprExit})

	iterExit := b.process(ctx, n.Iter, loopback)
	b.addContainedEdge(iterExit, exprExit)

	patExit := b.process(ctx, n.Pattern, iterExit)
	bodyExit := b.process(inner, n.Body, patExit)
	b.addContainedEdge(bodyExit, loopback)
	return exprExit
}

// visitMatch wires each arm from the scrutinee. A failing guard falls
// through to the next guarded alternative, so the previous guard exits
// feed the next guard's start.
func (b *bodyBuilder) visitMatch(ctx buildContext, n *parser.Node, pred NodeIndex) NodeIndex {
	discriminantExit := b.process(ctx, n.Expr, pred)
	exprExit := b.addASTNode(n)

	var prevGuards []NodeIndex
	for _, arm := range n.Arms {
		armExit := b.addDummyNode()
		for _, pat := range arm.Pats {
			patExit := b.process(ctx, pat, discriminantExit)
			if arm.Guard != nil {
				guardStart := b.addDummyNode(patExit)
				guardExit := b.process(ctx, arm.Guard, guardStart)
				for _, prev := range prevGuards {
					b.addContainedEdge(prev, guardStart)
				}
				prevGuards = append(prevGuards[:0], guardExit)
				patExit = guardExit
			}
			b.addContainedEdge(patExit, armExit)
		}
		bodyExit := b.process(ctx, arm.Body, armExit)
		b.addContainedEdge(bodyExit, exprExit)
	}
	return exprExit
}

// visitJump handles break and continue.
// TODO: connect to ctx.loops continueTarget/breakTarget (labels included);
// dead code after a break is not detected until then.
func (b *bodyBuilder) visitJump(_ buildContext, _ *parser.Node, pred NodeIndex) NodeIndex {
	return pred
}

func (b *bodyBuilder) processAll(ctx buildContext, nodes []*parser.Node, pred NodeIndex) NodeIndex {
	exit := pred
	for _, node := range nodes {
		exit = b.process(ctx, node, exit)
	}
	return exit
}

// straightLine evaluates parts in order and then n itself
func (b *bodyBuilder) straightLine(ctx buildContext, n *parser.Node, pred NodeIndex, parts ...*parser.Node) NodeIndex {
	exit := b.processAll(ctx, parts, pred)
	return b.addASTNode(n, exit)
}

func (b *bodyBuilder) addASTNode(n *parser.Node, preds ...NodeIndex) NodeIndex {
	return b.addNode(CFGNodeData{Kind: CFGNodeAST, Element: n}, preds...)
}

func (b *bodyBuilder) addDummyNode(preds ...NodeIndex) NodeIndex {
	return b.addNode(CFGNodeData{Kind: CFGNodeDummy}, preds...)
}

func (b *bodyBuilder) addNode(data CFGNodeData, preds ...NodeIndex) NodeIndex {
	node := b.graph.AddNode(data)
	for _, pred := range preds {
		b.addContainedEdge(pred, node)
	}
	return node
}

func (b *bodyBuilder) addContainedEdge(source, target NodeIndex) {
	b.graph.AddEdge(source, target, CFGEdgeData{Kind: EdgeContained})
}

// addReturningEdge jumps from source to the body exit, leaving every open loop
func (b *bodyBuilder) addReturningEdge(ctx buildContext, source NodeIndex) {
	b.graph.AddEdge(source, b.exit, CFGEdgeData{
		Kind:          EdgeReturning,
		ExitingScopes: ctx.exitingScopes(),
	})
}
