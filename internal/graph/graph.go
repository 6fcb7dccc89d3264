package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph construction and load accounting.
var (
	// ErrVertexNotFound indicates an operation referenced a non-existent vertex.
	ErrVertexNotFound = errors.New("graph: vertex not found")

	// ErrEdgeNotFound indicates an operation referenced a non-existent edge.
	ErrEdgeNotFound = errors.New("graph: edge not found")

	// ErrDuplicateEdge indicates a second edge for an ordered (start, end) pair.
	ErrDuplicateEdge = errors.New("graph: duplicate edge")

	// ErrNegativeCapacity indicates an edge was declared with capacity below zero.
	ErrNegativeCapacity = errors.New("graph: negative capacity")

	// ErrCapacityExceeded indicates an Acquire on an edge whose load equals its capacity.
	ErrCapacityExceeded = errors.New("graph: capacity exceeded")

	// ErrNegativeLoad indicates a Release on an edge whose load is already zero.
	ErrNegativeLoad = errors.New("graph: negative load")
)

// VertexID is the stable index of a vertex, assigned by input order.
type VertexID int

// NoVertex marks a location that is not a vertex (a finished vehicle).
const NoVertex VertexID = -1

// EdgeID is the index of an edge in the graph's flat edge list.
type EdgeID int

// NoEdge marks "not on any edge".
const NoEdge EdgeID = -1

// Vertex is an intersection with integer planar coordinates.
type Vertex struct {
	ID VertexID
	X  int
	Y  int
}

// Edge is a directed street segment with a fixed capacity and a current load.
type Edge struct {
	ID       EdgeID
	Start    VertexID
	End      VertexID
	Capacity int
	Load     int
}

// Graph is a directed road network with per-edge occupancy.
type Graph struct {
	vertices []Vertex
	edges    []Edge

	// adjacency[start] lists the edges leaving start, in insertion order.
	adjacency [][]EdgeID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// AddVertex appends a vertex and returns its ID.
func (g *Graph) AddVertex(x, y int) VertexID {
	id := VertexID(len(g.vertices))
	g.vertices = append(g.vertices, Vertex{ID: id, X: x, Y: y})
	g.adjacency = append(g.adjacency, nil)
	return id
}

// AddEdge inserts a directed edge between two existing vertices.
func (g *Graph) AddEdge(start, end VertexID, capacity int) (EdgeID, error) {
	if !g.hasVertex(start) {
		return NoEdge, fmt.Errorf("%w: start %d", ErrVertexNotFound, start)
	}
	if !g.hasVertex(end) {
		return NoEdge, fmt.Errorf("%w: end %d", ErrVertexNotFound, end)
	}
	if capacity < 0 {
		return NoEdge, fmt.Errorf("%w: (%d,%d) capacity %d", ErrNegativeCapacity, start, end, capacity)
	}
	if _, exists := g.Lookup(start, end); exists {
		return NoEdge, fmt.Errorf("%w: (%d,%d)", ErrDuplicateEdge, start, end)
	}

	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, Edge{ID: id, Start: start, End: end, Capacity: capacity})
	g.adjacency[start] = append(g.adjacency[start], id)
	return id, nil
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return len(g.vertices) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Vertex returns the vertex with the given ID.
func (g *Graph) Vertex(id VertexID) (Vertex, bool) {
	if !g.hasVertex(id) {
		return Vertex{}, false
	}
	return g.vertices[id], true
}

// Edge returns a copy of the edge with the given ID, including its current load.
func (g *Graph) Edge(id EdgeID) (Edge, bool) {
	if !g.hasEdge(id) {
		return Edge{}, false
	}
	return g.edges[id], true
}

// Outgoing returns the IDs of the edges leaving v.
func (g *Graph) Outgoing(v VertexID) []EdgeID {
	if !g.hasVertex(v) {
		return nil
	}
	out := make([]EdgeID, len(g.adjacency[v]))
	copy(out, g.adjacency[v])
	return out
}

// Lookup returns the first edge leaving start whose end is end.
// Out-of-range vertices simply have no edges.
func (g *Graph) Lookup(start, end VertexID) (EdgeID, bool) {
	if !g.hasVertex(start) {
		return NoEdge, false
	}
	for _, id := range g.adjacency[start] {
		if g.edges[id].End == end {
			return id, true
		}
	}
	return NoEdge, false
}

// Delay returns the transit delay of an edge: the Manhattan distance between
// the coordinates of its endpoints.
func (g *Graph) Delay(id EdgeID) int {
	e := g.edges[id]
	a, b := g.vertices[e.Start], g.vertices[e.End]
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Load returns the current load of an edge.
func (g *Graph) Load(id EdgeID) int {
	return g.edges[id].Load
}

// Full reports whether the edge's load has reached its capacity.
func (g *Graph) Full(id EdgeID) bool {
	e := g.edges[id]
	return e.Load >= e.Capacity
}

// Acquire adds one occupant to the edge.
func (g *Graph) Acquire(id EdgeID) error {
	if !g.hasEdge(id) {
		return fmt.Errorf("%w: %d", ErrEdgeNotFound, id)
	}
	e := &g.edges[id]
	if e.Load >= e.Capacity {
		return fmt.Errorf("%w: (%d,%d) load %d capacity %d", ErrCapacityExceeded, e.Start, e.End, e.Load, e.Capacity)
	}
	e.Load++
	return nil
}

// Release removes one occupant from the edge.
func (g *Graph) Release(id EdgeID) error {
	if !g.hasEdge(id) {
		return fmt.Errorf("%w: %d", ErrEdgeNotFound, id)
	}
	e := &g.edges[id]
	if e.Load <= 0 {
		return fmt.Errorf("%w: (%d,%d)", ErrNegativeLoad, e.Start, e.End)
	}
	e.Load--
	return nil
}

// ResetLoads sets every edge's load back to zero.
func (g *Graph) ResetLoads() {
	for i := range g.edges {
		g.edges[i].Load = 0
	}
}

// TotalLoad returns the sum of all edge loads.
func (g *Graph) TotalLoad() int {
	total := 0
	for _, e := range g.edges {
		total += e.Load
	}
	return total
}

func (g *Graph) hasVertex(id VertexID) bool {
	return id >= 0 && int(id) < len(g.vertices)
}

func (g *Graph) hasEdge(id EdgeID) bool {
	return id >= 0 && int(id) < len(g.edges)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
