package parser

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ASTBuilder converts tree-sitter parse trees to internal AST representation
type ASTBuilder struct {
	source []byte
}

// NewASTBuilder creates a new AST builder
func NewASTBuilder(source []byte) *ASTBuilder {
	return &ASTBuilder{
		source: source,
	}
}

// Build converts a tree-sitter tree to internal AST
func (b *ASTBuilder) Build(tree *sitter.Tree) (*Node, error) {
	if tree == nil {
		return nil, fmt.Errorf("tree is nil")
	}

	rootNode := tree.RootNode()
	if rootNode == nil {
		return nil, fmt.Errorf("root node is nil")
	}

	return b.buildItem(rootNode), nil
}

// buildItem builds item-level nodes (files, functions, impls, modules)
func (b *ASTBuilder) buildItem(tsNode *sitter.Node) *Node {
	switch tsNode.Type() {
	case "source_file":
		node := b.newNode(NodeSourceFile, tsNode)
		b.buildDeclarations(node, tsNode)
		return node
	case "function_item":
		return b.buildFunction(tsNode)
	case "impl_item":
		node := b.newNode(NodeImpl, tsNode)
		if typeNode := tsNode.ChildByFieldName("type"); typeNode != nil {
			node.Name = b.getNodeText(typeNode)
		}
		if body := tsNode.ChildByFieldName("body"); body != nil {
			b.buildDeclarations(node, body)
		}
		return node
	case "trait_item":
		node := b.newNode(NodeTrait, tsNode)
		b.setName(node, tsNode)
		if body := tsNode.ChildByFieldName("body"); body != nil {
			b.buildDeclarations(node, body)
		}
		return node
	case "mod_item":
		node := b.newNode(NodeMod, tsNode)
		b.setName(node, tsNode)
		if body := tsNode.ChildByFieldName("body"); body != nil {
			b.buildDeclarations(node, body)
		}
		return node
	default:
		node := b.newNode(NodeItem, tsNode)
		b.setName(node, tsNode)
		return node
	}
}

// buildDeclarations adds every item child of a declaration list
func (b *ASTBuilder) buildDeclarations(parent *Node, tsNode *sitter.Node) {
	for _, child := range b.namedChildren(tsNode) {
		parent.AddChild(b.buildItem(child))
	}
}

// buildFunction builds a function item. Bodiless signatures keep a nil Body.
func (b *ASTBuilder) buildFunction(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeFunction, tsNode)
	b.setName(node, tsNode)

	if params := tsNode.ChildByFieldName("parameters"); params != nil {
		node.Params = b.buildParameters(node, params)
	}
	if body := tsNode.ChildByFieldName("body"); body != nil {
		node.Body = node.AddChild(b.buildBlock(body))
	}
	return node
}

// buildParameters builds function and closure parameters
func (b *ASTBuilder) buildParameters(fn *Node, tsNode *sitter.Node) []*Node {
	var params []*Node
	for _, child := range b.namedChildren(tsNode) {
		switch child.Type() {
		case "parameter":
			param := b.newNode(NodeParam, child)
			if pat := child.ChildByFieldName("pattern"); pat != nil {
				param.Pattern = param.AddChild(b.buildPattern(pat))
			}
			params = append(params, fn.AddChild(param))
		case "self_parameter":
			param := b.newNode(NodeSelfParam, child)
			param.Name = "self"
			params = append(params, fn.AddChild(param))
		case "attribute_item", "variadic_parameter", "type_identifier":
			// not bindings
		default:
			// closure parameters may be bare patterns
			param := b.newNode(NodeParam, child)
			param.Pattern = param.AddChild(b.buildPattern(child))
			params = append(params, fn.AddChild(param))
		}
	}
	return params
}

// buildClosure builds a closure expression; the body may be any expression
func (b *ASTBuilder) buildClosure(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeClosure, tsNode)
	if params := tsNode.ChildByFieldName("parameters"); params != nil {
		node.Params = b.buildParameters(node, params)
	}
	if body := tsNode.ChildByFieldName("body"); body != nil {
		node.Body = node.AddChild(b.buildExpr(body))
	}
	return node
}

// buildBlock builds a block of statements with an optional trailing expression
func (b *ASTBuilder) buildBlock(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeBlock, tsNode)

	children := b.namedChildren(tsNode)
	for i, child := range children {
		last := i == len(children)-1
		switch child.Type() {
		case "label":
			node.Label = b.labelName(child)
		case "expression_statement":
			stmt := b.buildExprStmt(child)
			if last && !stmt.HasSemi && stmt.Expr != nil {
				// a trailing block-like expression without ';' is the block value
				node.Tail = node.AddChild(stmt.Expr)
				continue
			}
			node.Stmts = append(node.Stmts, node.AddChild(stmt))
		case "let_declaration":
			node.Stmts = append(node.Stmts, node.AddChild(b.buildLet(child)))
		case "empty_statement":
			if n := len(node.Stmts); n > 0 && node.Stmts[n-1].Type == NodeExprStmt {
				node.Stmts[n-1].HasSemi = true
			}
		case "attribute_item", "inner_attribute_item":
			// attributes carry no control flow
		case "function_item", "struct_item", "enum_item", "impl_item", "trait_item",
			"mod_item", "use_declaration", "const_item", "static_item", "type_item",
			"macro_definition", "union_item", "extern_crate_declaration",
			"foreign_mod_item":
			stmt := b.newNode(NodeItemStmt, child)
			stmt.Expr = stmt.AddChild(b.buildItem(child))
			node.Stmts = append(node.Stmts, node.AddChild(stmt))
		default:
			expr := b.buildExpr(child)
			if last {
				node.Tail = node.AddChild(expr)
				continue
			}
			stmt := b.newNode(NodeExprStmt, child)
			stmt.Expr = stmt.AddChild(expr)
			node.Stmts = append(node.Stmts, node.AddChild(stmt))
		}
	}

	return node
}

// buildExprStmt builds an expression statement
func (b *ASTBuilder) buildExprStmt(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeExprStmt, tsNode)
	if inner := b.firstNamedChild(tsNode); inner != nil {
		node.Expr = node.AddChild(b.buildExpr(inner))
	}
	count := int(tsNode.ChildCount())
	if count > 0 && tsNode.Child(count-1).Type() == ";" {
		node.HasSemi = true
	}
	return node
}

// buildLet builds a let declaration, including a let-else alternative
func (b *ASTBuilder) buildLet(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeLet, tsNode)
	if pat := tsNode.ChildByFieldName("pattern"); pat != nil {
		node.Pattern = node.AddChild(b.buildPattern(pat))
	}
	if value := tsNode.ChildByFieldName("value"); value != nil {
		node.Init = node.AddChild(b.buildExpr(value))
	}
	if alt := tsNode.ChildByFieldName("alternative"); alt != nil {
		node.Else = node.AddChild(b.buildBlock(alt))
	}
	return node
}

// buildExpr builds an expression node
func (b *ASTBuilder) buildExpr(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	switch tsNode.Type() {
	case "block":
		return b.buildBlock(tsNode)
	case "unsafe_block", "async_block", "const_block":
		for _, child := range b.namedChildren(tsNode) {
			if child.Type() == "block" {
				node := b.buildBlock(child)
				node.Text = b.getNodeText(tsNode)
				node.Location = b.getLocation(tsNode)
				return node
			}
		}
		return b.newNode(NodeBlock, tsNode)
	case "if_expression", "if_let_expression":
		return b.buildIf(tsNode)
	case "while_expression", "while_let_expression":
		node := b.newNode(NodeWhile, tsNode)
		b.setLoopLabel(node, tsNode)
		node.Cond = node.AddChild(b.buildConditionOf(tsNode))
		node.Body = node.AddChild(b.buildExpr(tsNode.ChildByFieldName("body")))
		return node
	case "loop_expression":
		node := b.newNode(NodeLoop, tsNode)
		b.setLoopLabel(node, tsNode)
		node.Body = node.AddChild(b.buildExpr(tsNode.ChildByFieldName("body")))
		return node
	case "for_expression":
		node := b.newNode(NodeFor, tsNode)
		b.setLoopLabel(node, tsNode)
		node.Pattern = node.AddChild(b.buildPattern(tsNode.ChildByFieldName("pattern")))
		node.Iter = node.AddChild(b.buildExpr(tsNode.ChildByFieldName("value")))
		node.Body = node.AddChild(b.buildExpr(tsNode.ChildByFieldName("body")))
		return node
	case "match_expression":
		return b.buildMatch(tsNode)
	case "return_expression":
		node := b.newNode(NodeReturn, tsNode)
		if value := b.firstNamedChild(tsNode); value != nil {
			node.Expr = node.AddChild(b.buildExpr(value))
		}
		return node
	case "break_expression", "continue_expression":
		nodeType := NodeBreak
		if tsNode.Type() == "continue_expression" {
			nodeType = NodeContinue
		}
		node := b.newNode(nodeType, tsNode)
		for _, child := range b.namedChildren(tsNode) {
			if child.Type() == "label" {
				node.Label = b.labelName(child)
				continue
			}
			node.Expr = node.AddChild(b.buildExpr(child))
		}
		return node
	case "try_expression":
		node := b.newNode(NodeTry, tsNode)
		node.Expr = node.AddChild(b.buildExpr(b.firstNamedChild(tsNode)))
		return node
	case "macro_invocation":
		node := b.newNode(NodeMacroCall, tsNode)
		if macro := tsNode.ChildByFieldName("macro"); macro != nil {
			node.Name = b.getNodeText(macro)
		}
		return node
	case "call_expression":
		return b.buildCall(tsNode)
	case "binary_expression":
		node := b.newNode(NodeBinary, tsNode)
		node.Left = node.AddChild(b.buildExpr(tsNode.ChildByFieldName("left")))
		if op := tsNode.ChildByFieldName("operator"); op != nil {
			node.Op = b.getNodeText(op)
		}
		node.Right = node.AddChild(b.buildExpr(tsNode.ChildByFieldName("right")))
		return node
	case "let_chain":
		return b.buildLetChain(tsNode)
	case "let_condition":
		return b.buildLetCondition(tsNode)
	case "assignment_expression":
		node := b.newNode(NodeAssign, tsNode)
		node.Left = node.AddChild(b.buildExpr(tsNode.ChildByFieldName("left")))
		node.Right = node.AddChild(b.buildExpr(tsNode.ChildByFieldName("right")))
		node.Op = "="
		return node
	case "compound_assignment_expr":
		node := b.newNode(NodeCompound, tsNode)
		node.Left = node.AddChild(b.buildExpr(tsNode.ChildByFieldName("left")))
		if op := tsNode.ChildByFieldName("operator"); op != nil {
			node.Op = b.getNodeText(op)
		}
		node.Right = node.AddChild(b.buildExpr(tsNode.ChildByFieldName("right")))
		return node
	case "unary_expression":
		node := b.newNode(NodeUnary, tsNode)
		if tsNode.ChildCount() > 0 {
			node.Op = b.getNodeText(tsNode.Child(0))
		}
		node.Expr = node.AddChild(b.buildExpr(b.firstNamedChild(tsNode)))
		return node
	case "reference_expression":
		node := b.newNode(NodeRef, tsNode)
		node.Expr = node.AddChild(b.buildExpr(tsNode.ChildByFieldName("value")))
		return node
	case "type_cast_expression":
		node := b.newNode(NodeCast, tsNode)
		node.Expr = node.AddChild(b.buildExpr(tsNode.ChildByFieldName("value")))
		return node
	case "index_expression":
		node := b.newNode(NodeIndex, tsNode)
		children := b.namedChildren(tsNode)
		if len(children) == 2 {
			node.Left = node.AddChild(b.buildExpr(children[0]))
			node.Right = node.AddChild(b.buildExpr(children[1]))
		}
		return node
	case "field_expression":
		node := b.newNode(NodeField, tsNode)
		node.Expr = node.AddChild(b.buildExpr(tsNode.ChildByFieldName("value")))
		if field := tsNode.ChildByFieldName("field"); field != nil {
			node.Name = b.getNodeText(field)
		}
		return node
	case "tuple_expression":
		node := b.newNode(NodeTuple, tsNode)
		node.Args = b.buildExprList(node, tsNode)
		return node
	case "array_expression":
		node := b.newNode(NodeArray, tsNode)
		node.Args = b.buildExprList(node, tsNode)
		return node
	case "parenthesized_expression":
		node := b.newNode(NodeParen, tsNode)
		node.Expr = node.AddChild(b.buildExpr(b.firstNamedChild(tsNode)))
		return node
	case "range_expression":
		return b.buildRange(tsNode)
	case "struct_expression":
		return b.buildStruct(tsNode)
	case "await_expression":
		node := b.newNode(NodeAwait, tsNode)
		node.Expr = node.AddChild(b.buildExpr(b.firstNamedChild(tsNode)))
		return node
	case "closure_expression":
		return b.buildClosure(tsNode)
	case "integer_literal", "float_literal", "string_literal", "raw_string_literal",
		"char_literal", "boolean_literal", "unit_expression", "negative_literal":
		return b.newNode(NodeLiteral, tsNode)
	case "identifier", "scoped_identifier", "self", "super", "crate",
		"generic_function", "metavariable", "field_identifier":
		node := b.newNode(NodePath, tsNode)
		node.Name = node.Text
		return node
	default:
		node := b.newNode(NodeUnknownExpr, tsNode)
		for _, child := range b.namedChildren(tsNode) {
			node.AddChild(b.buildExpr(child))
		}
		return node
	}
}

// buildIf builds an if expression; an else-if chain nests If nodes in Else
func (b *ASTBuilder) buildIf(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeIf, tsNode)
	node.Cond = node.AddChild(b.buildConditionOf(tsNode))
	node.Then = node.AddChild(b.buildExpr(tsNode.ChildByFieldName("consequence")))

	if alt := tsNode.ChildByFieldName("alternative"); alt != nil {
		if inner := b.firstNamedChild(alt); inner != nil {
			node.Else = node.AddChild(b.buildExpr(inner))
		}
	}
	return node
}

// buildConditionOf wraps the condition of an if/while expression. Older
// grammar versions spell `if let` as if_let_expression with pattern/value
// fields instead of a let_condition.
func (b *ASTBuilder) buildConditionOf(tsNode *sitter.Node) *Node {
	if condition := tsNode.ChildByFieldName("condition"); condition != nil {
		node := b.newNode(NodeCondition, condition)
		node.Cond = node.AddChild(b.buildExpr(condition))
		return node
	}

	pattern := tsNode.ChildByFieldName("pattern")
	value := tsNode.ChildByFieldName("value")
	if pattern == nil || value == nil {
		return nil
	}
	letCond := NewNode(NodeLetCondition)
	letCond.Location = b.getLocation(pattern)
	letCond.Text = "let " + b.getNodeText(pattern) + " = " + b.getNodeText(value)
	letCond.Pattern = letCond.AddChild(b.buildPattern(pattern))
	letCond.Init = letCond.AddChild(b.buildExpr(value))

	node := NewNode(NodeCondition)
	node.Location = letCond.Location
	node.Text = letCond.Text
	node.Cond = node.AddChild(letCond)
	return node
}

// buildLetCondition builds `let PAT = EXPR` inside a condition
func (b *ASTBuilder) buildLetCondition(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeLetCondition, tsNode)
	node.Pattern = node.AddChild(b.buildPattern(tsNode.ChildByFieldName("pattern")))
	node.Init = node.AddChild(b.buildExpr(tsNode.ChildByFieldName("value")))
	return node
}

// buildLetChain folds `let a = x && b && let c = y` into left-nested && nodes
func (b *ASTBuilder) buildLetChain(tsNode *sitter.Node) *Node {
	var result *Node
	for _, child := range b.namedChildren(tsNode) {
		operand := b.buildExpr(child)
		if result == nil {
			result = operand
			continue
		}
		chain := NewNode(NodeBinary)
		chain.Op = "&&"
		chain.Location = b.getLocation(tsNode)
		chain.Text = strings.TrimSpace(result.Text + " && " + operand.Text)
		chain.Left = chain.AddChild(result)
		chain.Right = chain.AddChild(operand)
		result = chain
	}
	if result == nil {
		return b.newNode(NodeUnknownExpr, tsNode)
	}
	result.Text = b.getNodeText(tsNode)
	return result
}

// buildMatch builds a match expression and its arms
func (b *ASTBuilder) buildMatch(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeMatch, tsNode)
	node.Expr = node.AddChild(b.buildExpr(tsNode.ChildByFieldName("value")))

	body := tsNode.ChildByFieldName("body")
	if body == nil {
		return node
	}
	for _, child := range b.namedChildren(body) {
		if child.Type() != "match_arm" && child.Type() != "last_match_arm" {
			continue
		}
		node.Arms = append(node.Arms, node.AddChild(b.buildMatchArm(child)))
	}
	return node
}

// buildMatchArm builds a single match arm: pattern alternatives, guard, body
func (b *ASTBuilder) buildMatchArm(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeMatchArm, tsNode)

	if matchPattern := tsNode.ChildByFieldName("pattern"); matchPattern != nil {
		guard := matchPattern.ChildByFieldName("condition")
		for _, child := range b.namedChildren(matchPattern) {
			if guard != nil && child.Equal(guard) {
				continue
			}
			node.Pattern = node.AddChild(b.buildPattern(child))
			break
		}
		if guard != nil {
			g := b.newNode(NodeMatchGuard, guard)
			g.Cond = g.AddChild(b.buildExpr(guard))
			node.Guard = node.AddChild(g)
		}
	}
	if node.Pattern != nil {
		if node.Pattern.Type == NodePatOr {
			node.Pats = node.Pattern.Pats
		} else {
			node.Pats = []*Node{node.Pattern}
		}
	}

	if value := tsNode.ChildByFieldName("value"); value != nil {
		node.Body = node.AddChild(b.buildExpr(value))
	}
	return node
}

// buildCall builds a call; calls through a field expression are method calls
func (b *ASTBuilder) buildCall(tsNode *sitter.Node) *Node {
	function := tsNode.ChildByFieldName("function")
	callee := function
	if function != nil && function.Type() == "generic_function" {
		if inner := function.ChildByFieldName("function"); inner != nil && inner.Type() == "field_expression" {
			callee = inner
		}
	}

	var node *Node
	if callee != nil && callee.Type() == "field_expression" {
		node = b.newNode(NodeMethodCall, tsNode)
		node.Callee = node.AddChild(b.buildExpr(callee.ChildByFieldName("value")))
		if field := callee.ChildByFieldName("field"); field != nil {
			node.Name = b.getNodeText(field)
		}
	} else {
		node = b.newNode(NodeCall, tsNode)
		node.Callee = node.AddChild(b.buildExpr(function))
		if node.Callee != nil {
			node.Name = node.Callee.Text
		}
	}

	if args := tsNode.ChildByFieldName("arguments"); args != nil {
		node.Args = b.buildExprList(node, args)
	}
	return node
}

// buildRange builds a range expression with optional start and end
func (b *ASTBuilder) buildRange(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeRange, tsNode)
	children := b.namedChildren(tsNode)
	switch len(children) {
	case 2:
		node.Left = node.AddChild(b.buildExpr(children[0]))
		node.Right = node.AddChild(b.buildExpr(children[1]))
	case 1:
		operand := b.buildExpr(children[0])
		if tsNode.Child(0) != nil && !tsNode.Child(0).IsNamed() {
			node.Right = node.AddChild(operand)
		} else {
			node.Left = node.AddChild(operand)
		}
	}
	return node
}

// buildStruct builds a struct literal; field values become Args in source order
func (b *ASTBuilder) buildStruct(tsNode *sitter.Node) *Node {
	node := b.newNode(NodeStructLit, tsNode)
	if name := tsNode.ChildByFieldName("name"); name != nil {
		node.Name = b.getNodeText(name)
	}

	body := tsNode.ChildByFieldName("body")
	if body == nil {
		return node
	}
	for _, field := range b.namedChildren(body) {
		var value *Node
		switch field.Type() {
		case "field_initializer":
			value = b.buildExpr(field.ChildByFieldName("value"))
		case "shorthand_field_initializer", "base_field_initializer":
			value = b.buildExpr(b.firstNamedChild(field))
		default:
			continue
		}
		if value != nil {
			node.Args = append(node.Args, node.AddChild(value))
		}
	}
	return node
}

// buildExprList builds every named child as an expression
func (b *ASTBuilder) buildExprList(parent *Node, tsNode *sitter.Node) []*Node {
	var exprs []*Node
	for _, child := range b.namedChildren(tsNode) {
		if child.Type() == "attribute_item" {
			continue
		}
		if expr := b.buildExpr(child); expr != nil {
			exprs = append(exprs, parent.AddChild(expr))
		}
	}
	return exprs
}

// buildPattern builds a pattern node
func (b *ASTBuilder) buildPattern(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	switch tsNode.Type() {
	case "identifier":
		node := b.newNode(NodePatIdent, tsNode)
		node.Name = node.Text
		return node
	case "_":
		return b.newNode(NodePatWild, tsNode)
	case "mut_pattern", "ref_pattern":
		inner := b.buildPattern(b.firstNamedChild(tsNode))
		if inner != nil && inner.Type == NodePatIdent {
			inner.Text = b.getNodeText(tsNode)
			inner.Location = b.getLocation(tsNode)
		}
		return inner
	case "captured_pattern":
		node := b.newNode(NodePatIdent, tsNode)
		children := b.namedChildren(tsNode)
		if len(children) > 0 {
			node.Name = b.getNodeText(children[0])
		}
		if len(children) > 1 {
			node.Pats = append(node.Pats, node.AddChild(b.buildPattern(children[1])))
		}
		return node
	case "reference_pattern":
		node := b.newNode(NodePatRef, tsNode)
		node.Pats = b.buildPatternList(node, b.namedChildren(tsNode))
		return node
	case "tuple_pattern":
		node := b.newNode(NodePatTuple, tsNode)
		node.Pats = b.buildPatternList(node, b.namedChildren(tsNode))
		return node
	case "slice_pattern":
		node := b.newNode(NodePatSlice, tsNode)
		node.Pats = b.buildPatternList(node, b.namedChildren(tsNode))
		return node
	case "tuple_struct_pattern":
		node := b.newNode(NodePatTupleStruct, tsNode)
		typeNode := tsNode.ChildByFieldName("type")
		var subs []*sitter.Node
		for _, child := range b.namedChildren(tsNode) {
			if typeNode != nil && child.Equal(typeNode) {
				node.Name = b.getNodeText(child)
				continue
			}
			subs = append(subs, child)
		}
		node.Pats = b.buildPatternList(node, subs)
		return node
	case "struct_pattern":
		node := b.newNode(NodePatStruct, tsNode)
		if typeNode := tsNode.ChildByFieldName("type"); typeNode != nil {
			node.Name = b.getNodeText(typeNode)
		}
		for _, field := range b.namedChildren(tsNode) {
			switch field.Type() {
			case "field_pattern":
				var sub *Node
				if pat := field.ChildByFieldName("pattern"); pat != nil {
					sub = b.buildPattern(pat)
				} else {
					sub = b.newNode(NodePatIdent, field)
					if name := field.ChildByFieldName("name"); name != nil {
						sub.Name = b.getNodeText(name)
					}
				}
				node.Pats = append(node.Pats, node.AddChild(sub))
			case "remaining_field_pattern":
				node.Pats = append(node.Pats, node.AddChild(b.newNode(NodePatRest, field)))
			}
		}
		return node
	case "or_pattern":
		node := b.newNode(NodePatOr, tsNode)
		for _, child := range b.namedChildren(tsNode) {
			alt := b.buildPattern(child)
			if alt == nil {
				continue
			}
			if alt.Type == NodePatOr {
				for _, nested := range alt.Pats {
					node.Pats = append(node.Pats, node.AddChild(nested))
				}
				continue
			}
			node.Pats = append(node.Pats, node.AddChild(alt))
		}
		return node
	case "range_pattern":
		return b.newNode(NodePatRange, tsNode)
	case "remaining_field_pattern":
		return b.newNode(NodePatRest, tsNode)
	default:
		// literals, paths to constants and unit variants
		return b.newNode(NodePatConst, tsNode)
	}
}

// buildPatternList builds sub-patterns, including anonymous wildcards
func (b *ASTBuilder) buildPatternList(parent *Node, children []*sitter.Node) []*Node {
	var pats []*Node
	for _, child := range children {
		if pat := b.buildPattern(child); pat != nil {
			pats = append(pats, parent.AddChild(pat))
		}
	}
	return pats
}

// Utility methods...

func (b *ASTBuilder) newNode(nodeType NodeType, tsNode *sitter.Node) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)
	node.Text = b.getNodeText(tsNode)
	return node
}

// setName copies the name field when present
func (b *ASTBuilder) setName(node *Node, tsNode *sitter.Node) {
	if nameNode := tsNode.ChildByFieldName("name"); nameNode != nil {
		node.Name = b.getNodeText(nameNode)
	}
}

// setLoopLabel copies a leading 'label: of a loop expression
func (b *ASTBuilder) setLoopLabel(node *Node, tsNode *sitter.Node) {
	for _, child := range b.namedChildren(tsNode) {
		if child.Type() == "label" {
			node.Label = b.labelName(child)
			return
		}
	}
}

func (b *ASTBuilder) labelName(tsNode *sitter.Node) string {
	return strings.TrimPrefix(b.getNodeText(tsNode), "'")
}

// getLocation extracts location information from a tree-sitter node
func (b *ASTBuilder) getLocation(tsNode *sitter.Node) Location {
	startPoint := tsNode.StartPoint()
	endPoint := tsNode.EndPoint()

	return Location{
		StartLine: int(startPoint.Row) + 1,
		StartCol:  int(startPoint.Column),
		EndLine:   int(endPoint.Row) + 1,
		EndCol:    int(endPoint.Column),
	}
}

// getNodeText gets the text content of a node
func (b *ASTBuilder) getNodeText(tsNode *sitter.Node) string {
	return tsNode.Content(b.source)
}

// namedChildren returns named children, skipping comments. The anonymous
// `_` wildcard is kept because patterns need it.
func (b *ASTBuilder) namedChildren(tsNode *sitter.Node) []*sitter.Node {
	var children []*sitter.Node
	childCount := int(tsNode.ChildCount())
	for i := 0; i < childCount; i++ {
		child := tsNode.Child(i)
		if child == nil || b.isTrivia(child) {
			continue
		}
		if child.IsNamed() || child.Type() == "_" {
			children = append(children, child)
		}
	}
	return children
}

func (b *ASTBuilder) firstNamedChild(tsNode *sitter.Node) *sitter.Node {
	for _, child := range b.namedChildren(tsNode) {
		if child.Type() != "label" {
			return child
		}
	}
	return nil
}

// isTrivia checks if a node is trivia (comments)
func (b *ASTBuilder) isTrivia(tsNode *sitter.Node) bool {
	nodeType := tsNode.Type()
	return nodeType == "line_comment" || nodeType == "block_comment"
}
