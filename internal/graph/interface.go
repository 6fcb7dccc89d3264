package graph

// Topology is the read-only structural view of a road network.
//
// The path validator depends on this interface rather than on *Graph so it
// cannot touch edge load, even by accident.
type Topology interface {
	// VertexCount returns the number of vertices loaded.
	VertexCount() int

	// Lookup returns the edge leaving start and arriving at end.
	Lookup(start, end VertexID) (EdgeID, bool)
}

// Compile-time check that Graph satisfies Topology.
var _ Topology = (*Graph)(nil)
