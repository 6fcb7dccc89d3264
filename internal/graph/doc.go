// Package graph holds the road network a run is checked and replayed against:
// intersections with integer planar coordinates and directed, capacity-bounded
// street segments.
//
// # Why Graph Package Exists
//
// Both the path validator and the simulation engine need the same network,
// but they need different things from it. The validator only asks structural
// questions ("is there an edge from u to v?"), while the engine also owns the
// per-edge occupancy counter (the load). Keeping both in one place gives a
// single source of truth for topology and makes the load bounds enforceable
// at the only door through which load changes.
//
// # Topology vs. Load
//
//	┌──────────────────────────────────────┐
//	│                Graph                 │
//	├───────────────────┬──────────────────┤
//	│  Topology         │  Load            │
//	│  (write-once)     │  (engine-owned)  │
//	│  vertices, edges, │  per-edge count, │
//	│  adjacency        │  0..capacity     │
//	└───────────────────┴──────────────────┘
//
// **Topology** is built once by the problem loader through AddVertex and
// AddEdge and never changes afterwards. Edges live in a flat slice indexed by
// EdgeID; the adjacency structure is indexed by start vertex and holds the
// IDs of the edges leaving it, in insertion order.
//
// **Load** is reset by ResetLoads at the start of every run and changed only
// through Acquire and Release, which refuse to push a counter outside
// [0, capacity] and return ErrCapacityExceeded or ErrNegativeLoad instead.
//
// # Observers
//
// Snapshot returns a deep copy of the vertex list and the edge list with
// current loads. Renderers consume snapshots; they never see the Graph itself.
//
// # Thread-Safety
//
// Graph is not safe for concurrent mutation. The engine steps vehicles in a
// fixed order on a single goroutine, and that order is what decides who gets
// the last free slot on a contended edge.
package graph
