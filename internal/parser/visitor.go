package parser

import (
	"fmt"
	"io"
	"strings"
)

// Visitor defines the interface for visiting AST nodes
type Visitor interface {
	// Visit is called for each node in the AST
	// Return false to stop traversal
	Visit(node *Node) bool
}

// Accept implements the visitor pattern for AST nodes
func (n *Node) Accept(visitor Visitor) {
	if n == nil {
		return
	}

	if !visitor.Visit(n) {
		return
	}

	for _, child := range n.Children {
		if child != nil {
			child.Accept(visitor)
		}
	}
}

// FuncVisitor is a visitor that uses a function
type FuncVisitor struct {
	fn func(*Node) bool
}

// NewFuncVisitor creates a visitor from a function
func NewFuncVisitor(fn func(*Node) bool) *FuncVisitor {
	return &FuncVisitor{fn: fn}
}

// Visit implements the Visitor interface
func (v *FuncVisitor) Visit(node *Node) bool {
	return v.fn(node)
}

// CollectorVisitor collects nodes matching a predicate
type CollectorVisitor struct {
	predicate func(*Node) bool
	nodes     []*Node
}

// NewCollectorVisitor creates a visitor that collects matching nodes
func NewCollectorVisitor(predicate func(*Node) bool) *CollectorVisitor {
	return &CollectorVisitor{
		predicate: predicate,
		nodes:     []*Node{},
	}
}

// Visit implements the Visitor interface
func (v *CollectorVisitor) Visit(node *Node) bool {
	if v.predicate(node) {
		v.nodes = append(v.nodes, node)
	}
	return true
}

// GetNodes returns the collected nodes
func (v *CollectorVisitor) GetNodes() []*Node {
	return v.nodes
}

// PrinterVisitor prints the AST structure
type PrinterVisitor struct {
	writer io.Writer
	indent int
	prefix string
}

// NewPrinterVisitor creates a visitor that prints the AST
func NewPrinterVisitor(w io.Writer) *PrinterVisitor {
	return &PrinterVisitor{
		writer: w,
		indent: 0,
		prefix: "  ",
	}
}

// Visit implements the Visitor interface
func (v *PrinterVisitor) Visit(node *Node) bool {
	fmt.Fprint(v.writer, strings.Repeat(v.prefix, v.indent))

	switch {
	case node.Name != "":
		fmt.Fprintf(v.writer, "%s: %s\n", node.Type, node.Name)
	case node.Op != "":
		fmt.Fprintf(v.writer, "%s: %s\n", node.Type, node.Op)
	case node.Label != "":
		fmt.Fprintf(v.writer, "%s: '%s\n", node.Type, node.Label)
	default:
		fmt.Fprintf(v.writer, "%s\n", node.Type)
	}

	v.indent++
	for _, child := range node.Children {
		if child != nil {
			child.Accept(v)
		}
	}
	v.indent--

	return false // children handled above
}

// ValidatorVisitor validates the AST structure
type ValidatorVisitor struct {
	errors []string
}

// NewValidatorVisitor creates a visitor that validates the AST
func NewValidatorVisitor() *ValidatorVisitor {
	return &ValidatorVisitor{
		errors: []string{},
	}
}

// Visit implements the Visitor interface
func (v *ValidatorVisitor) Visit(node *Node) bool {
	switch node.Type {
	case NodeFunction:
		if node.Name == "" {
			v.errors = append(v.errors, fmt.Sprintf("Function at %+v missing name", node.Location))
		}
	case NodeIf, NodeWhile:
		if node.Cond == nil {
			v.errors = append(v.errors, fmt.Sprintf("%s at %+v missing condition", node.Type, node.Location))
		}
	case NodeFor:
		if node.Pattern == nil || node.Iter == nil {
			v.errors = append(v.errors, fmt.Sprintf("For loop at %+v missing pattern or iterator", node.Location))
		}
	case NodeBinary:
		if node.Left == nil || node.Right == nil {
			v.errors = append(v.errors, fmt.Sprintf("Binary operation at %+v missing operand", node.Location))
		}
		if node.Op == "" {
			v.errors = append(v.errors, fmt.Sprintf("Binary operation at %+v missing operator", node.Location))
		}
	case NodeMatchArm:
		if len(node.Pats) == 0 {
			v.errors = append(v.errors, fmt.Sprintf("Match arm at %+v has no pattern", node.Location))
		}
	}

	for _, child := range node.Children {
		if child != nil && child.Parent != node {
			v.errors = append(v.errors, fmt.Sprintf("Node %s at %+v has incorrect parent (expected %s)",
				child.Type, child.Location, node.Type))
		}
	}

	return true
}

// GetErrors returns validation errors
func (v *ValidatorVisitor) GetErrors() []string {
	return v.errors
}

// IsValid returns true if no errors were found
func (v *ValidatorVisitor) IsValid() bool {
	return len(v.errors) == 0
}
