// Package validate checks that every vehicle's proposed path is structurally
// legal before the simulation is trusted with it.
//
// Validation is read-only: it never consumes a path queue and never touches
// edge load, so it can be run any number of times with the same result.
package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/congestsim/internal/ctxlog"
	"github.com/vk/congestsim/internal/graph"
	"github.com/vk/congestsim/internal/vehicle"
)

// Kind names the rule a path broke.
type Kind int

const (
	// OutOfRangeVertex: src or dest lies outside the declared vertex bound.
	OutOfRangeVertex Kind = iota
	// PathEndpointMismatch: the path is empty or does not start at src and end at dest.
	PathEndpointMismatch
	// MissingEdge: two consecutive path vertices are not joined by an edge.
	MissingEdge
)

func (k Kind) String() string {
	switch k {
	case OutOfRangeVertex:
		return "OutOfRangeVertex"
	case PathEndpointMismatch:
		return "PathEndpointMismatch"
	case MissingEdge:
		return "MissingEdge"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Category groups kinds into the two diagnostics the tool reports: a
// problem with the vehicle's relation to the graph, or with the path itself.
func (k Kind) Category() string {
	if k == MissingEdge {
		return "path"
	}
	return "graph"
}

// ErrInvalidPath is matched by every *Error through errors.Is.
var ErrInvalidPath = errors.New("validate: invalid path")

// Error describes the first rule a vehicle's path failed.
type Error struct {
	Kind    Kind
	Vehicle int
	Src     graph.VertexID
	Dest    graph.VertexID

	// Position is the index in the path of the vertex that could not be
	// reached from its predecessor. Only set for MissingEdge.
	Position int
	From     graph.VertexID
	To       graph.VertexID

	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s is not correct: vehicle %d (%d,%d): %s: %s",
		e.Kind.Category(), e.Vehicle, e.Src, e.Dest, e.Kind, e.Msg)
}

// Is lets errors.Is(err, ErrInvalidPath) match any validation error.
func (e *Error) Is(target error) bool {
	return target == ErrInvalidPath
}

// Vehicle checks one vehicle against the topology. limit is the declared
// upper bound (exclusive) on vertex IDs for this problem instance.
//
// The rules are checked in order and the first failure is returned:
// endpoint range, path endpoints, then every consecutive edge.
func Vehicle(topo graph.Topology, limit int, v *vehicle.Vehicle) error {
	fail := func(kind Kind, format string, args ...any) *Error {
		return &Error{
			Kind:    kind,
			Vehicle: v.Index,
			Src:     v.Src,
			Dest:    v.Dest,
			Msg:     fmt.Sprintf(format, args...),
		}
	}

	if !inRange(v.Src, limit) || !inRange(v.Dest, limit) {
		return fail(OutOfRangeVertex, "endpoints must lie in [0,%d)", limit)
	}

	path := v.Path.Vertices()
	if len(path) == 0 {
		return fail(PathEndpointMismatch, "path is empty")
	}
	if path[0] != v.Src {
		return fail(PathEndpointMismatch, "path starts at %d", path[0])
	}
	if last := path[len(path)-1]; last != v.Dest {
		return fail(PathEndpointMismatch, "path ends at %d", last)
	}

	for i := 1; i < len(path); i++ {
		if _, ok := topo.Lookup(path[i-1], path[i]); !ok {
			err := fail(MissingEdge, "no edge (%d,%d) at position %d", path[i-1], path[i], i)
			err.Position = i
			err.From = path[i-1]
			err.To = path[i]
			return err
		}
	}
	return nil
}

// All validates vehicles in index order and stops at the first invalid one.
func All(ctx context.Context, topo graph.Topology, limit int, vehicles []*vehicle.Vehicle) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Validating paths.", "vehicles", len(vehicles), "vertex_limit", limit)

	for _, v := range vehicles {
		if err := Vehicle(topo, limit, v); err != nil {
			logger.Debug("Path rejected.", "vehicle", v.Index, "error", err)
			return err
		}
	}

	logger.Debug("All paths valid.")
	return nil
}

func inRange(id graph.VertexID, limit int) bool {
	return id >= 0 && int(id) < limit
}
