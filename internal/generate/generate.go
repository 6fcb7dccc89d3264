// Package generate builds random problem instances together with a solution
// that passes validation. Paths are random walks, not routes: they are legal
// but make no attempt to be short or to avoid congestion.
package generate

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/vk/congestsim/internal/graph"
	"github.com/vk/congestsim/internal/vehicle"
)

// Options controls the size and shape of a generated instance.
type Options struct {
	Vertices int
	Cars     int
	Seed     uint64

	// MaxWalk bounds the number of edges in each vehicle's path.
	MaxWalk int
}

// DefaultOptions returns a small instance.
func DefaultOptions() Options {
	return Options{Vertices: 64, Cars: 16, Seed: 1, MaxWalk: 12}
}

// Instance is a generated problem and a matching solution.
type Instance struct {
	Graph    *graph.Graph
	Vehicles *vehicle.Set
	Paths    [][]graph.VertexID
}

// Generate builds a connected network whose edges all come in pairs of
// equal capacity, and one random-walk vehicle per car. The same options
// always produce the same instance.
func Generate(opts Options) (*Instance, error) {
	if opts.Vertices < 2 {
		return nil, errors.New("generate: need at least 2 vertices")
	}
	if opts.Cars < 0 {
		return nil, fmt.Errorf("generate: car count %d is negative", opts.Cars)
	}
	if opts.MaxWalk < 1 {
		return nil, fmt.Errorf("generate: max walk %d must be at least 1", opts.MaxWalk)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	g := graph.New()
	addVertices(rng, g, opts.Vertices)
	if err := addEdges(rng, g); err != nil {
		return nil, err
	}

	inst := &Instance{Graph: g, Vehicles: vehicle.NewSet(), Paths: make([][]graph.VertexID, 0, opts.Cars)}
	for i := 0; i < opts.Cars; i++ {
		path := walk(rng, g, graph.VertexID(rng.IntN(g.VertexCount())), 1+rng.IntN(opts.MaxWalk))
		inst.Vehicles.Add(path[0], path[len(path)-1])
		inst.Paths = append(inst.Paths, path)
	}
	if err := inst.Vehicles.AssignPaths(inst.Paths); err != nil {
		return nil, err
	}
	return inst, nil
}

// addVertices places n vertices on distinct points of a square grid whose
// side is twice the square root of n.
func addVertices(rng *rand.Rand, g *graph.Graph, n int) {
	side := 2 * int(math.Sqrt(float64(n)))
	seen := make(map[[2]int]struct{}, n)
	for g.VertexCount() < n {
		p := [2]int{rng.IntN(side) + 1, rng.IntN(side) + 1}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		g.AddVertex(p[0], p[1])
	}
}

// addEdges first links every vertex into one spanning tree, then spends each
// vertex's remaining degree budget on extra links. Every link is a pair of
// opposite edges with the same capacity.
func addEdges(rng *rand.Rand, g *graph.Graph) error {
	n := g.VertexCount()
	free := make([]int, n)
	for i := range free {
		free[i] = degree(rng)
	}
	linked := make(map[[2]graph.VertexID]struct{})
	link := func(u, v graph.VertexID) error {
		c := capacity(rng)
		if _, err := g.AddEdge(u, v, c); err != nil {
			return err
		}
		if _, err := g.AddEdge(v, u, c); err != nil {
			return err
		}
		linked[[2]graph.VertexID{u, v}] = struct{}{}
		linked[[2]graph.VertexID{v, u}] = struct{}{}
		free[u]--
		free[v]--
		return nil
	}

	order := rng.Perm(n)
	connected := []graph.VertexID{graph.VertexID(order[0])}
	for _, i := range order[1:] {
		u := graph.VertexID(i)
		v := connected[rng.IntN(len(connected))]
		// Prefer a partner with budget left, but never leave u unconnected.
		for try := 0; try < 8 && free[v] <= 0; try++ {
			v = connected[rng.IntN(len(connected))]
		}
		if err := link(u, v); err != nil {
			return err
		}
		connected = append(connected, u)
	}

	for i := 0; i < n; i++ {
		u := graph.VertexID(i)
		for attempts := 0; free[u] > 0 && attempts < 4*n; attempts++ {
			v := graph.VertexID(rng.IntN(n))
			if v == u || free[v] <= 0 {
				continue
			}
			if _, ok := linked[[2]graph.VertexID{u, v}]; ok {
				continue
			}
			if err := link(u, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// walk follows random outgoing edges from start for up to steps edges,
// avoiding an immediate U-turn when another exit exists.
func walk(rng *rand.Rand, g *graph.Graph, start graph.VertexID, steps int) []graph.VertexID {
	path := []graph.VertexID{start}
	prev := graph.NoVertex
	cur := start
	for i := 0; i < steps; i++ {
		out := g.Outgoing(cur)
		if len(out) == 0 {
			break
		}
		next := graph.NoVertex
		for try := 0; try < 4; try++ {
			e, _ := g.Edge(out[rng.IntN(len(out))])
			next = e.End
			if next != prev || len(out) == 1 {
				break
			}
		}
		path = append(path, next)
		prev, cur = cur, next
	}
	return path
}

// degree draws a target vertex degree: mostly 3 to 5.
func degree(rng *rand.Rand) int {
	r := rng.Float64()
	switch {
	case r < 0.025:
		return 2
	case r < 0.16:
		return 3
	case r < 0.84:
		return 4
	case r < 0.97:
		return 5
	default:
		return 6
	}
}

// capacity draws an edge capacity: mostly 1 or 2, rarely up to 5.
func capacity(rng *rand.Rand) int {
	r := rng.Float64()
	switch {
	case r < 0.025:
		return 5
	case r < 0.16:
		return 4
	case r < 0.5:
		return 2
	case r < 0.84:
		return 1
	case r < 0.97:
		return 3
	default:
		return 1
	}
}
