// Package parser provides Rust code parsing capabilities using tree-sitter.
//
// This package wraps the tree-sitter Go bindings to parse Rust source code
// and converts the concrete syntax tree into a small expression-oriented AST
// (Node) that the control-flow and exit-point analyses walk.
//
// Key features:
//   - Rust parsing using the tree-sitter-rust grammar
//   - Syntax error detection (ErrSyntax)
//   - Role fields on Node for blocks, conditions, loops, matches and patterns
//   - Function and closure discovery with qualified names (Functions)
//   - A syntactic never-type oracle (NeverOracle)
//
// Basic usage:
//
//	p := parser.New()
//	result, err := p.Parse(ctx, []byte("fn main() { println!(\"hi\"); }"))
//	if err != nil {
//	    // Handle parsing error
//	}
//	for _, fn := range parser.Functions(result.AST) {
//	    // fn.Node.Body is the function body block
//	}
package parser
