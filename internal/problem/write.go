package problem

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vk/congestsim/internal/graph"
	"github.com/vk/congestsim/internal/vehicle"
)

// WriteProblem writes g and vehicles in the problem file format. Edges are
// grouped on one line per start vertex; vertices without outgoing edges get
// no edge line.
func WriteProblem(w io.Writer, g *graph.Graph, vehicles []*vehicle.Vehicle) error {
	bw := bufio.NewWriter(w)

	for i := 0; i < g.VertexCount(); i++ {
		v, _ := g.Vertex(graph.VertexID(i))
		fmt.Fprintf(bw, "%d:(%d,%d)\n", v.ID, v.X, v.Y)
	}

	fmt.Fprintln(bw, edgesMarker)
	for i := 0; i < g.VertexCount(); i++ {
		out := g.Outgoing(graph.VertexID(i))
		if len(out) == 0 {
			continue
		}
		groups := make([]string, 0, len(out))
		for _, id := range out {
			e, _ := g.Edge(id)
			groups = append(groups, fmt.Sprintf("(%d,%d,%d)", e.Start, e.End, e.Capacity))
		}
		fmt.Fprintf(bw, "%d:%s\n", i, strings.Join(groups, ","))
	}

	fmt.Fprintln(bw, carsMarker)
	for _, v := range vehicles {
		fmt.Fprintf(bw, "%d,%d\n", v.Src, v.Dest)
	}
	return bw.Flush()
}

// WriteSolution writes one "index:v1,...,vn" line per path.
func WriteSolution(w io.Writer, paths [][]graph.VertexID) error {
	bw := bufio.NewWriter(w)
	for i, p := range paths {
		ids := make([]string, len(p))
		for j, v := range p {
			ids[j] = strconv.Itoa(int(v))
		}
		fmt.Fprintf(bw, "%d:%s\n", i, strings.Join(ids, ","))
	}
	return bw.Flush()
}
