package generate

import (
	"bytes"
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/congestsim/internal/engine"
	"github.com/vk/congestsim/internal/graph"
	"github.com/vk/congestsim/internal/problem"
	"github.com/vk/congestsim/internal/validate"
)

func TestGenerate_InstanceIsValid(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		inst, err := Generate(Options{Vertices: 50, Cars: 30, Seed: seed, MaxWalk: 10})
		require.NoError(t, err)
		g := inst.Graph

		assert.Equal(t, 50, g.VertexCount())
		assert.Equal(t, 30, inst.Vehicles.Len())
		assertSymmetric(t, g)
		assertConnected(t, g)
		require.NoError(t, validate.All(context.Background(), g, g.VertexCount(), inst.Vehicles.All()), "seed %d", seed)
	}
}

func TestGenerate_IsDeterministic(t *testing.T) {
	render := func() string {
		inst, err := Generate(Options{Vertices: 30, Cars: 10, Seed: 42, MaxWalk: 6})
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, problem.WriteProblem(&buf, inst.Graph, inst.Vehicles.All()))
		require.NoError(t, problem.WriteSolution(&buf, inst.Paths))
		return buf.String()
	}

	assert.Equal(t, render(), render())
}

func TestGenerate_SingleCarCostIsPathLength(t *testing.T) {
	// --- Arrange ---
	inst, err := Generate(Options{Vertices: 40, Cars: 1, Seed: 7, MaxWalk: 15})
	require.NoError(t, err)
	g := inst.Graph
	path := inst.Paths[0]
	want := 0
	for i := 1; i < len(path); i++ {
		id, ok := g.Lookup(path[i-1], path[i])
		require.True(t, ok)
		want += g.Delay(id)
	}

	// --- Act ---
	e, err := engine.New(g, inst.Vehicles.All(), engine.DefaultOptions())
	require.NoError(t, err)
	res, err := e.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, want, res.Total)
	assert.Equal(t, 0, g.TotalLoad())
}

func TestGenerate_WrittenFilesParseBack(t *testing.T) {
	inst, err := Generate(DefaultOptions())
	require.NoError(t, err)
	ctx := context.Background()

	var pbuf, sbuf bytes.Buffer
	require.NoError(t, problem.WriteProblem(&pbuf, inst.Graph, inst.Vehicles.All()))
	require.NoError(t, problem.WriteSolution(&sbuf, inst.Paths))

	p, err := problem.ParseProblem(ctx, &pbuf, "p")
	require.NoError(t, err)
	paths, err := problem.ParseSolution(ctx, &sbuf, "s", p.Vehicles.Len())
	require.NoError(t, err)

	assert.Equal(t, inst.Graph.EdgeCount(), p.Graph.EdgeCount())
	assert.Equal(t, inst.Paths, paths)
}

func TestGenerate_RejectsBadOptions(t *testing.T) {
	for _, opts := range []Options{
		{Vertices: 1, Cars: 1, MaxWalk: 1},
		{Vertices: 5, Cars: -1, MaxWalk: 1},
		{Vertices: 5, Cars: 1, MaxWalk: 0},
	} {
		_, err := Generate(opts)
		assert.Error(t, err, "%+v", opts)
	}
}

func TestWalk_FollowsEdgesWithinBudget(t *testing.T) {
	inst, err := Generate(Options{Vertices: 10, Cars: 0, Seed: 3, MaxWalk: 1})
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(5, 6))

	for start := 0; start < inst.Graph.VertexCount(); start++ {
		path := walk(rng, inst.Graph, graph.VertexID(start), 6)

		require.Len(t, path, 7, "every vertex has an exit, so the walk uses its full budget")
		assert.Equal(t, graph.VertexID(start), path[0])
		for i := 1; i < len(path); i++ {
			_, ok := inst.Graph.Lookup(path[i-1], path[i])
			assert.True(t, ok, "step %d (%d,%d)", i, path[i-1], path[i])
		}
	}
}

func assertSymmetric(t *testing.T, g *graph.Graph) {
	t.Helper()
	for i := 0; i < g.EdgeCount(); i++ {
		e, _ := g.Edge(graph.EdgeID(i))
		rid, ok := g.Lookup(e.End, e.Start)
		require.True(t, ok, "edge (%d,%d) has no reverse", e.Start, e.End)
		r, _ := g.Edge(rid)
		assert.Equal(t, e.Capacity, r.Capacity)
		assert.Positive(t, e.Capacity)
	}
}

func assertConnected(t *testing.T, g *graph.Graph) {
	t.Helper()
	seen := make([]bool, g.VertexCount())
	stack := []graph.VertexID{0}
	seen[0] = true
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, id := range g.Outgoing(u) {
			e, _ := g.Edge(id)
			if !seen[e.End] {
				seen[e.End] = true
				stack = append(stack, e.End)
			}
		}
	}
	for i, ok := range seen {
		assert.True(t, ok, "vertex %d unreachable", i)
	}
}
