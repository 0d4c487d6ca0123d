package analyzer

import "iter"

// NodeIndex identifies a node of a Graph by insertion order
type NodeIndex int

// EdgeIndex identifies an edge of a Graph by insertion order
type EdgeIndex int

type graphNode[N any] struct {
	data     N
	outgoing []EdgeIndex
	incoming []EdgeIndex
}

type graphEdge[E any] struct {
	source NodeIndex
	target NodeIndex
	data   E
}

// Graph is an append-only directed multigraph. Nodes and edges live in two
// growable slices and are addressed by index; indices are never reused, so
// back edges and self loops are ordinary edges.
type Graph[N, E any] struct {
	nodes []graphNode[N]
	edges []graphEdge[E]
}

// NewGraph creates an empty graph
func NewGraph[N, E any]() *Graph[N, E] {
	return &Graph[N, E]{}
}

// AddNode appends a node and returns its index
func (g *Graph[N, E]) AddNode(data N) NodeIndex {
	g.nodes = append(g.nodes, graphNode[N]{data: data})
	return NodeIndex(len(g.nodes) - 1)
}

// AddEdge appends a directed edge. Both endpoints must come from this graph.
func (g *Graph[N, E]) AddEdge(source, target NodeIndex, data E) EdgeIndex {
	idx := EdgeIndex(len(g.edges))
	g.edges = append(g.edges, graphEdge[E]{source: source, target: target, data: data})
	g.nodes[source].outgoing = append(g.nodes[source].outgoing, idx)
	g.nodes[target].incoming = append(g.nodes[target].incoming, idx)
	return idx
}

// NodeCount returns the number of nodes
func (g *Graph[N, E]) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges
func (g *Graph[N, E]) EdgeCount() int {
	return len(g.edges)
}

// NodeData returns the data of a node
func (g *Graph[N, E]) NodeData(n NodeIndex) N {
	return g.nodes[n].data
}

// EdgeData returns the data of an edge
func (g *Graph[N, E]) EdgeData(e EdgeIndex) E {
	return g.edges[e].data
}

// EdgeEndpoints returns the source and target of an edge
func (g *Graph[N, E]) EdgeEndpoints(e EdgeIndex) (NodeIndex, NodeIndex) {
	return g.edges[e].source, g.edges[e].target
}

// Outgoing returns the outgoing edges of n in insertion order.
// The returned slice must not be modified.
func (g *Graph[N, E]) Outgoing(n NodeIndex) []EdgeIndex {
	return g.nodes[n].outgoing
}

// Incoming returns the incoming edges of n in insertion order.
// The returned slice must not be modified.
func (g *Graph[N, E]) Incoming(n NodeIndex) []EdgeIndex {
	return g.nodes[n].incoming
}

// ForEachNode calls fn for every node in insertion order
func (g *Graph[N, E]) ForEachNode(fn func(NodeIndex, N)) {
	for i := range g.nodes {
		fn(NodeIndex(i), g.nodes[i].data)
	}
}

// ForEachEdge calls fn for every edge in insertion order
func (g *Graph[N, E]) ForEachEdge(fn func(e EdgeIndex, source, target NodeIndex, data E)) {
	for i := range g.edges {
		edge := &g.edges[i]
		fn(EdgeIndex(i), edge.source, edge.target, edge.data)
	}
}

// DepthFirstTraversal lazily yields the nodes reachable from start in
// depth-first pre-order. Each node is yielded at most once; outgoing edges
// are followed in the order they were added.
func (g *Graph[N, E]) DepthFirstTraversal(start NodeIndex) iter.Seq[NodeIndex] {
	return func(yield func(NodeIndex) bool) {
		if int(start) < 0 || int(start) >= len(g.nodes) {
			return
		}

		type frame struct {
			node NodeIndex
			next int
		}

		visited := make([]bool, len(g.nodes))
		visited[start] = true
		if !yield(start) {
			return
		}
		stack := []frame{{node: start}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			outgoing := g.nodes[top.node].outgoing
			if top.next >= len(outgoing) {
				stack = stack[:len(stack)-1]
				continue
			}

			target := g.edges[outgoing[top.next]].target
			top.next++
			if visited[target] {
				continue
			}
			visited[target] = true
			if !yield(target) {
				return
			}
			stack = append(stack, frame{node: target})
		}
	}
}
