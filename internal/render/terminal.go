package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/vk/congestsim/internal/graph"
)

// Terminal prints loaded edges as coloured text lines.
type Terminal struct {
	w io.Writer
}

// NewTerminal returns a renderer writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// Render writes a header line followed by one line per loaded edge. Empty
// edges are not drawn.
func (t *Terminal) Render(tick int, s graph.Snapshot) error {
	loaded := s.Loaded()

	var b strings.Builder
	fmt.Fprintf(&b, "tick %d: %d/%d edges loaded, %d vehicles in transit\n",
		tick, len(loaded), len(s.Edges), s.TotalLoad())
	for _, e := range loaded {
		line := fmt.Sprintf("  (%d,%d) %d/%d", e.Start, e.End, e.Load, e.Capacity)
		b.WriteString(color.HEX(Color(e.Load, e.Capacity)).Sprint(line))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(t.w, b.String())
	return err
}

func (t *Terminal) Close() error { return nil }
