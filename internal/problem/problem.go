// Package problem reads and writes the line-oriented problem and solution
// files.
//
// A problem file lists vertices as "label:(x,y)", then an EDGES marker and
// edge lines holding one or more "(start,end,capacity)" groups, then a CARS
// marker and one "src,dest" line per vehicle. A solution file holds one
// "index:v1,v2,...,vn" line per vehicle, in vehicle order.
package problem

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/vk/congestsim/internal/ctxlog"
	"github.com/vk/congestsim/internal/graph"
	"github.com/vk/congestsim/internal/vehicle"
)

const (
	edgesMarker = "EDGES"
	carsMarker  = "CARS"

	maxLineBytes = 16 << 20
)

// ParseError reports malformed input with its position.
type ParseError struct {
	File string
	Line int // 1-based; 0 when the error is not tied to one line
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.File)
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Problem is a parsed problem instance.
type Problem struct {
	Graph    *graph.Graph
	Vehicles *vehicle.Set
}

type section int

const (
	sectionVertices section = iota
	sectionEdges
	sectionCars
)

// ParseProblem reads a problem file. name is used in error messages only.
func ParseProblem(ctx context.Context, r io.Reader, name string) (*Problem, error) {
	logger := ctxlog.FromContext(ctx)

	p := &Problem{Graph: graph.New(), Vehicles: vehicle.NewSet()}
	sec := sectionVertices
	sawEdges := false

	sc := newScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fail := func(msg string, err error) error {
			return &ParseError{File: name, Line: lineNo, Msg: msg, Err: err}
		}

		switch line {
		case edgesMarker:
			if sec != sectionVertices {
				return nil, fail("unexpected "+edgesMarker+" marker", nil)
			}
			sec, sawEdges = sectionEdges, true
			continue
		case carsMarker:
			if sec != sectionEdges {
				return nil, fail(carsMarker+" marker before "+edgesMarker, nil)
			}
			sec = sectionCars
			continue
		}

		switch sec {
		case sectionVertices:
			nums, err := parseInts(stripLabel(line))
			if err != nil {
				return nil, fail("invalid vertex", err)
			}
			if len(nums) != 2 {
				return nil, fail(fmt.Sprintf("vertex needs 2 coordinates, got %d", len(nums)), nil)
			}
			p.Graph.AddVertex(nums[0], nums[1])

		case sectionEdges:
			nums, err := parseInts(stripLabel(line))
			if err != nil {
				return nil, fail("invalid edge", err)
			}
			if len(nums)%3 != 0 {
				return nil, fail(fmt.Sprintf("edge groups need 3 integers each, got %d", len(nums)), nil)
			}
			for i := 0; i < len(nums); i += 3 {
				start, end := graph.VertexID(nums[i]), graph.VertexID(nums[i+1])
				if _, err := p.Graph.AddEdge(start, end, nums[i+2]); err != nil {
					return nil, fail(fmt.Sprintf("edge (%d,%d)", start, end), err)
				}
			}

		case sectionCars:
			nums, err := parseInts(line)
			if err != nil {
				return nil, fail("invalid car", err)
			}
			if len(nums) != 2 {
				return nil, fail(fmt.Sprintf("car needs src and dest, got %d values", len(nums)), nil)
			}
			p.Vehicles.Add(graph.VertexID(nums[0]), graph.VertexID(nums[1]))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{File: name, Line: lineNo, Msg: "read failed", Err: err}
	}
	if !sawEdges {
		return nil, &ParseError{File: name, Msg: "missing " + edgesMarker + " marker"}
	}
	if sec != sectionCars {
		return nil, &ParseError{File: name, Msg: "missing " + carsMarker + " marker"}
	}

	logger.Debug("Parsed problem.", "file", name,
		"vertices", p.Graph.VertexCount(),
		"edges", p.Graph.EdgeCount(),
		"vehicles", p.Vehicles.Len(),
	)
	return p, nil
}

// ParseSolution reads a solution file holding exactly want paths, or any
// number of paths when want is negative. Trailing blank lines are ignored; a
// blank line followed by more paths is an error.
func ParseSolution(ctx context.Context, r io.Reader, name string, want int) ([][]graph.VertexID, error) {
	logger := ctxlog.FromContext(ctx)

	var paths [][]graph.VertexID
	gapLine := 0

	sc := newScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			if gapLine == 0 {
				gapLine = lineNo
			}
			continue
		}
		if gapLine != 0 {
			return nil, &ParseError{File: name, Line: gapLine, Msg: "blank line between paths"}
		}

		nums, err := parseInts(stripLabel(line))
		if err != nil {
			return nil, &ParseError{File: name, Line: lineNo, Msg: "invalid path", Err: err}
		}
		path := make([]graph.VertexID, len(nums))
		for i, n := range nums {
			path[i] = graph.VertexID(n)
		}
		paths = append(paths, path)
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{File: name, Line: lineNo, Msg: "read failed", Err: err}
	}
	if want >= 0 {
		if err := CheckPathCount(name, paths, want); err != nil {
			return nil, err
		}
	}

	logger.Debug("Parsed solution.", "file", name, "paths", len(paths))
	return paths, nil
}

// CheckPathCount reports a ParseError unless there is one path per vehicle.
func CheckPathCount(name string, paths [][]graph.VertexID, vehicles int) error {
	if len(paths) != vehicles {
		return &ParseError{File: name, Msg: fmt.Sprintf("%d paths for %d vehicles", len(paths), vehicles)}
	}
	return nil
}

// LoadProblem opens and parses the problem file at path.
func LoadProblem(ctx context.Context, path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{File: path, Msg: "cannot open problem file", Err: err}
	}
	defer f.Close()
	return ParseProblem(ctx, f, path)
}

// LoadSolution opens and parses the solution file at path.
func LoadSolution(ctx context.Context, path string, want int) ([][]graph.VertexID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{File: path, Msg: "cannot open solution file", Err: err}
	}
	defer f.Close()
	return ParseSolution(ctx, f, path, want)
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return sc
}

// stripLabel drops an optional "label:" prefix.
func stripLabel(line string) string {
	if _, rest, ok := strings.Cut(line, ":"); ok {
		return rest
	}
	return line
}

// parseInts reads every integer in s, treating parentheses, commas and
// whitespace as separators.
func parseInts(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case '(', ')', ',', ' ', '\t':
			return true
		}
		return false
	})
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", f)
		}
		out = append(out, n)
	}
	return out, nil
}
