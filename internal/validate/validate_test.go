package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/congestsim/internal/graph"
	"github.com/vk/congestsim/internal/vehicle"
)

// lineGraph is 0 -> 1 -> 2 with one back edge 2 -> 0.
func lineGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	g.AddVertex(0, 0)
	g.AddVertex(2, 0)
	g.AddVertex(2, 2)
	for _, e := range [][2]graph.VertexID{{0, 1}, {1, 2}, {2, 0}} {
		_, err := g.AddEdge(e[0], e[1], 1)
		require.NoError(t, err)
	}
	return g
}

func newVehicle(src, dest graph.VertexID, path ...graph.VertexID) *vehicle.Vehicle {
	return &vehicle.Vehicle{Index: 0, Src: src, Dest: dest, Path: vehicle.NewPath(path...)}
}

func TestVehicle(t *testing.T) {
	testCases := []struct {
		name         string
		limit        int
		v            *vehicle.Vehicle
		expectedKind *Kind
	}{
		{name: "valid", limit: 3, v: newVehicle(0, 2, 0, 1, 2)},
		{name: "valid cycle", limit: 3, v: newVehicle(0, 0, 0, 1, 2, 0)},
		{name: "single vertex", limit: 3, v: newVehicle(1, 1, 1)},
		{name: "src out of range", limit: 3, v: newVehicle(3, 2, 3, 2), expectedKind: ptr(OutOfRangeVertex)},
		{name: "negative dest", limit: 3, v: newVehicle(0, -1, 0), expectedKind: ptr(OutOfRangeVertex)},
		{name: "limit below vertex count", limit: 2, v: newVehicle(0, 2, 0, 1, 2), expectedKind: ptr(OutOfRangeVertex)},
		{name: "empty path", limit: 3, v: newVehicle(0, 2), expectedKind: ptr(PathEndpointMismatch)},
		{name: "wrong first vertex", limit: 3, v: newVehicle(0, 2, 1, 2), expectedKind: ptr(PathEndpointMismatch)},
		{name: "wrong last vertex", limit: 3, v: newVehicle(0, 2, 0, 1), expectedKind: ptr(PathEndpointMismatch)},
		{name: "missing edge", limit: 3, v: newVehicle(0, 2, 0, 2), expectedKind: ptr(MissingEdge)},
		{name: "reverse direction", limit: 3, v: newVehicle(2, 1, 2, 1), expectedKind: ptr(MissingEdge)},
		{name: "vertex outside graph inside path", limit: 4096, v: newVehicle(0, 2, 0, 7, 2), expectedKind: ptr(MissingEdge)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := lineGraph(t)

			err := Vehicle(g, tc.limit, tc.v)

			if tc.expectedKind == nil {
				require.NoError(t, err)
				return
			}
			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, *tc.expectedKind, verr.Kind)
			assert.ErrorIs(t, err, ErrInvalidPath)
		})
	}
}

func TestVehicle_MissingEdgeDetails(t *testing.T) {
	g := lineGraph(t)
	v := newVehicle(0, 0, 0, 1, 0)

	err := Vehicle(g, 3, v)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 2, verr.Position)
	assert.Equal(t, graph.VertexID(1), verr.From)
	assert.Equal(t, graph.VertexID(0), verr.To)
	assert.Equal(t, "path", verr.Kind.Category())
	assert.Contains(t, err.Error(), "path is not correct")
}

func TestVehicle_IsIdempotent(t *testing.T) {
	g := lineGraph(t)
	v := newVehicle(0, 2, 0, 1, 2)

	first := Vehicle(g, 3, v)
	second := Vehicle(g, 3, v)

	require.NoError(t, first)
	require.NoError(t, second)
	assert.Equal(t, 3, v.Path.Len(), "validation must not consume the path")
	assert.Equal(t, 0, g.TotalLoad())
}

func TestAll_StopsAtFirstInvalidVehicle(t *testing.T) {
	g := lineGraph(t)
	set := vehicle.NewSet()
	set.Add(0, 2)
	set.Add(1, 0)
	set.Add(5, 5)
	require.NoError(t, set.AssignPaths([][]graph.VertexID{{0, 1, 2}, {1, 0}, {5}}))

	err := All(context.Background(), g, 3, set.All())

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 1, verr.Vehicle, "vehicle 2 is invalid too but must not be reached")
	assert.Equal(t, MissingEdge, verr.Kind)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "OutOfRangeVertex", OutOfRangeVertex.String())
	assert.Equal(t, "graph", PathEndpointMismatch.Category())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func ptr[T any](v T) *T { return &v }
