package parser

import "fmt"

// FunctionInfo is a function or closure with a body, named by its lexical path
type FunctionInfo struct {
	Name string
	Node *Node
}

// Functions returns every function and closure that has a body, in source order.
//
// Names are qualified by their container: `Foo::bar` for methods in
// `impl Foo`, `a::b::f` for modules, and `outer::{closure#1}` for the
// first closure lexically inside `outer`.
func Functions(root *Node) []FunctionInfo {
	if root == nil {
		return nil
	}
	c := &functionCollector{}
	c.visit(root, "")
	return c.result
}

type functionCollector struct {
	result []FunctionInfo
}

func (c *functionCollector) visit(n *Node, prefix string) {
	switch n.Type {
	case NodeImpl, NodeTrait, NodeMod:
		prefix = qualify(prefix, n.Name)
	case NodeFunction:
		if n.Body == nil {
			return
		}
		name := qualify(prefix, n.Name)
		c.result = append(c.result, FunctionInfo{Name: name, Node: n})
		c.visitBody(n, name)
		return
	}

	for _, child := range n.Children {
		c.visit(child, prefix)
	}
}

// visitBody finds nested functions and closures inside a function body
func (c *functionCollector) visitBody(owner *Node, ownerName string) {
	closures := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, child := range n.Children {
			switch child.Type {
			case NodeFunction:
				c.visit(child, ownerName)
			case NodeClosure:
				closures++
				name := fmt.Sprintf("%s::{closure#%d}", ownerName, closures)
				if child.Body != nil {
					c.result = append(c.result, FunctionInfo{Name: name, Node: child})
				}
				c.visitBody(child, name)
			case NodeImpl, NodeTrait, NodeMod:
				c.visit(child, ownerName)
			default:
				walk(child)
			}
		}
	}
	walk(owner)
}

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if name == "" {
		return prefix
	}
	return prefix + "::" + name
}
