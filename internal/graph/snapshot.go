package graph

// Snapshot is a deep copy of the network at one instant: every vertex and
// every edge with its load at the time the snapshot was taken.
type Snapshot struct {
	Vertices []Vertex
	Edges    []Edge
}

// Snapshot copies the current state of the graph.
func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{
		Vertices: make([]Vertex, len(g.vertices)),
		Edges:    make([]Edge, len(g.edges)),
	}
	copy(s.Vertices, g.vertices)
	copy(s.Edges, g.edges)
	return s
}

// Loaded returns the edges that carry at least one vehicle.
func (s Snapshot) Loaded() []Edge {
	var out []Edge
	for _, e := range s.Edges {
		if e.Load > 0 {
			out = append(out, e)
		}
	}
	return out
}

// TotalLoad returns the sum of the loads in the snapshot.
func (s Snapshot) TotalLoad() int {
	total := 0
	for _, e := range s.Edges {
		total += e.Load
	}
	return total
}
