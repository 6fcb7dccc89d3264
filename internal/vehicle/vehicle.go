// Package vehicle models the set of vehicles being checked: where each one
// starts, where it must arrive, and the path it proposes to take.
package vehicle

import (
	"fmt"

	"github.com/vk/congestsim/internal/graph"
)

// Path is an ordered sequence of vertices consumed front to back.
type Path struct {
	items []graph.VertexID
}

// NewPath copies ids into a new path.
func NewPath(ids ...graph.VertexID) Path {
	items := make([]graph.VertexID, len(ids))
	copy(items, ids)
	return Path{items: items}
}

// Len returns the number of vertices left in the path.
func (p *Path) Len() int { return len(p.items) }

// Drained reports whether every vertex has been consumed.
func (p *Path) Drained() bool { return len(p.items) == 0 }

// Head returns the next vertex without consuming it.
func (p *Path) Head() (graph.VertexID, bool) {
	if len(p.items) == 0 {
		return graph.NoVertex, false
	}
	return p.items[0], true
}

// Pop consumes and returns the next vertex.
func (p *Path) Pop() (graph.VertexID, bool) {
	if len(p.items) == 0 {
		return graph.NoVertex, false
	}
	head := p.items[0]
	p.items = p.items[1:]
	return head, true
}

// Vertices returns a copy of the vertices left in the path.
func (p *Path) Vertices() []graph.VertexID {
	out := make([]graph.VertexID, len(p.items))
	copy(out, p.items)
	return out
}

// Vehicle is one car with its endpoints and candidate path.
type Vehicle struct {
	Index int
	Src   graph.VertexID
	Dest  graph.VertexID
	Path  Path
}

// String renders the vehicle as "(src,dest)".
func (v *Vehicle) String() string {
	return fmt.Sprintf("(%d,%d)", v.Src, v.Dest)
}

// Set is the ordered collection of vehicles. Index order is the order the
// engine serves vehicles in every tick.
type Set struct {
	vehicles []*Vehicle
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{}
}

// Add appends a vehicle with no path yet and returns it.
func (s *Set) Add(src, dest graph.VertexID) *Vehicle {
	v := &Vehicle{Index: len(s.vehicles), Src: src, Dest: dest}
	s.vehicles = append(s.vehicles, v)
	return v
}

// Len returns the number of vehicles.
func (s *Set) Len() int { return len(s.vehicles) }

// At returns the vehicle at index i.
func (s *Set) At(i int) *Vehicle { return s.vehicles[i] }

// All returns the vehicles in index order.
func (s *Set) All() []*Vehicle { return s.vehicles }

// AssignPaths sets each vehicle's path from paths, which must hold exactly
// one entry per vehicle.
func (s *Set) AssignPaths(paths [][]graph.VertexID) error {
	if len(paths) != len(s.vehicles) {
		return fmt.Errorf("vehicle: %d paths for %d vehicles", len(paths), len(s.vehicles))
	}
	for i, p := range paths {
		s.vehicles[i].Path = NewPath(p...)
	}
	return nil
}
