package domain

import (
	"fmt"
	"maps"
	"slices"
)

// Vertex identifies a node of the graph. Identifiers are non-negative.
type Vertex int

// Weight is the cost of traversing a directed edge.
type Weight int64

// MaxWeight bounds a single edge weight so that every finite path sum stays
// strictly below Infinite.
const MaxWeight Weight = 1 << 31

// Edge is a directed, weighted connection between two vertices.
type Edge struct {
	From   Vertex `json:"from" yaml:"from"`
	To     Vertex `json:"to" yaml:"to"`
	Weight Weight `json:"weight" yaml:"weight"`
}

// Adjacency is the plain map form of a graph: from -> to -> weight.
// It is the shape used by configuration files.
type Adjacency map[Vertex]map[Vertex]Weight

// Graph is a weighted directed graph.
// Vertices and neighbors enumerate in ascending identifier order.
//
// An undirected graph is stored as a directed one with every edge mirrored,
// so the shortest-path engine only ever sees outgoing adjacency.
type Graph struct {
	adj      map[Vertex]map[Vertex]Weight
	directed bool
}

// GraphOption configures a Graph at construction.
type GraphOption func(*Graph)

// WithDirected selects whether AddEdge registers a one-way edge (true, the
// default) or an edge usable in both directions (false).
func WithDirected(directed bool) GraphOption {
	return func(g *Graph) {
		g.directed = directed
	}
}

// NewGraph creates an empty graph.
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		adj:      make(map[Vertex]map[Vertex]Weight),
		directed: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FromAdjacency builds a graph from its map form.
// Every key becomes a vertex. In a directed graph edge targets are NOT added
// implicitly, so a dangling target is reported by Validate.
func FromAdjacency(a Adjacency, opts ...GraphOption) *Graph {
	g := NewGraph(opts...)
	for _, from := range slices.Sorted(maps.Keys(a)) {
		g.AddVertex(from)
		neighbors := a[from]
		for _, to := range slices.Sorted(maps.Keys(neighbors)) {
			if g.directed {
				g.adj[from][to] = neighbors[to]
			} else {
				g.AddEdge(from, to, neighbors[to])
			}
		}
	}
	return g
}

// ReferenceAdjacency is the edge list of the graph the visualizer ships with.
func ReferenceAdjacency() Adjacency {
	return Adjacency{
		0: {1: 4, 2: 2},
		1: {2: 1, 3: 5},
		2: {3: 8, 4: 10},
		3: {4: 2},
		4: {},
	}
}

// ReferenceGraph returns the five-vertex graph the visualizer ships with.
// Its edges are traversable in both directions.
func ReferenceGraph() *Graph {
	return FromAdjacency(ReferenceAdjacency(), WithDirected(false))
}

// Directed reports whether edges were registered one-way.
func (g *Graph) Directed() bool {
	return g == nil || g.directed
}

// AddVertex registers v. Adding an existing vertex is a no-op.
func (g *Graph) AddVertex(v Vertex) {
	if _, ok := g.adj[v]; !ok {
		g.adj[v] = make(map[Vertex]Weight)
	}
}

// AddEdge registers an edge, adding both endpoints as vertices.
// In an undirected graph the reverse edge is registered too.
// A duplicate edge overwrites the previous weight.
func (g *Graph) AddEdge(from, to Vertex, w Weight) {
	g.AddVertex(from)
	g.AddVertex(to)
	g.adj[from][to] = w
	if !g.directed {
		g.adj[to][from] = w
	}
}

// HasVertex reports whether v is a vertex of g.
func (g *Graph) HasVertex(v Vertex) bool {
	if g == nil {
		return false
	}
	_, ok := g.adj[v]
	return ok
}

// Len returns the number of vertices.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.adj)
}

// Vertices returns all vertices in ascending order.
func (g *Graph) Vertices() []Vertex {
	if g == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(g.adj))
}

// Neighbors returns the outgoing edges of v ordered by target.
func (g *Graph) Neighbors(v Vertex) []Edge {
	if g == nil {
		return nil
	}
	out := g.adj[v]
	edges := make([]Edge, 0, len(out))
	for _, to := range slices.Sorted(maps.Keys(out)) {
		edges = append(edges, Edge{From: v, To: to, Weight: out[to]})
	}
	return edges
}

// Edges returns every edge ordered by source, then target.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, v := range g.Vertices() {
		edges = append(edges, g.Neighbors(v)...)
	}
	return edges
}

// Adjacency returns a deep copy of the graph in map form.
func (g *Graph) Adjacency() Adjacency {
	a := make(Adjacency, g.Len())
	if g == nil {
		return a
	}
	for v, out := range g.adj {
		a[v] = maps.Clone(out)
	}
	return a
}

// Validate checks the preconditions of a shortest-path run from start.
// All failures wrap ErrInvalidGraph.
func (g *Graph) Validate(start Vertex) error {
	if g.Len() == 0 {
		return fmt.Errorf("%w: graph has no vertices", ErrInvalidGraph)
	}
	if !g.HasVertex(start) {
		return fmt.Errorf("%w: start vertex %d not found", ErrInvalidGraph, start)
	}
	if vs := g.Vertices(); vs[0] < 0 {
		return fmt.Errorf("%w: negative vertex identifier %d", ErrInvalidGraph, vs[0])
	}
	for _, e := range g.Edges() {
		if e.Weight < 0 {
			return fmt.Errorf("%w: negative weight on edge %d→%d (%d)", ErrInvalidGraph, e.From, e.To, e.Weight)
		}
		if e.Weight > MaxWeight {
			return fmt.Errorf("%w: weight on edge %d→%d exceeds %d", ErrInvalidGraph, e.From, e.To, MaxWeight)
		}
		if !g.HasVertex(e.To) {
			return fmt.Errorf("%w: edge %d→%d targets unknown vertex", ErrInvalidGraph, e.From, e.To)
		}
	}
	return nil
}
