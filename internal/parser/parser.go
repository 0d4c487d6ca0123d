package parser

import (
	"context"
	"errors"
	"fmt"
	"io"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// ErrSyntax is returned when the source contains syntax errors
var ErrSyntax = errors.New("syntax errors found in source code")

// Parser provides Rust code parsing capabilities using tree-sitter
type Parser struct {
	parser *sitter.Parser
}

// New creates a new Parser instance with Rust grammar
func New() *Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(rust.GetLanguage())
	return &Parser{
		parser: parser,
	}
}

// ParseResult represents the result of parsing Rust code
type ParseResult struct {
	Tree       *sitter.Tree
	RootNode   *sitter.Node
	SourceCode []byte
	AST        *Node
}

// Parse parses Rust source code and returns the AST
func (p *Parser) Parse(ctx context.Context, source []byte) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}

	rootNode := tree.RootNode()
	if rootNode.HasError() {
		return nil, fmt.Errorf("%w (first at line %d)", ErrSyntax, p.firstErrorLine(rootNode))
	}

	ast, err := NewASTBuilder(source).Build(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to build AST: %w", err)
	}

	return &ParseResult{
		Tree:       tree,
		RootNode:   rootNode,
		SourceCode: source,
		AST:        ast,
	}, nil
}

// ParseFile parses a Rust file from a reader
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (*ParseResult, error) {
	source, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	return p.Parse(ctx, source)
}

// WalkTree traverses the tree-sitter tree and calls the visitor function for each node
func (p *Parser) WalkTree(node *sitter.Node, visitor func(*sitter.Node) error) error {
	if err := visitor(node); err != nil {
		return err
	}

	childCount := int(node.ChildCount())
	for i := 0; i < childCount; i++ {
		child := node.Child(i)
		if err := p.WalkTree(child, visitor); err != nil {
			return err
		}
	}

	return nil
}

// FindNodes finds all nodes of a specific type in the tree
func (p *Parser) FindNodes(node *sitter.Node, nodeType string) []*sitter.Node {
	var nodes []*sitter.Node

	_ = p.WalkTree(node, func(n *sitter.Node) error {
		if n.Type() == nodeType {
			nodes = append(nodes, n)
		}
		return nil
	})

	return nodes
}

// HasSyntaxErrors checks if the parsed tree contains any syntax errors
func (p *Parser) HasSyntaxErrors(node *sitter.Node) bool {
	return p.firstErrorLine(node) > 0
}

// firstErrorLine returns the 1-based line of the first error or missing node, or 0
func (p *Parser) firstErrorLine(node *sitter.Node) int {
	line := 0
	errStop := errors.New("stop")

	_ = p.WalkTree(node, func(n *sitter.Node) error {
		if n.IsError() || n.IsMissing() {
			line = int(n.StartPoint().Row) + 1
			return errStop
		}
		return nil
	})

	return line
}
