// Package render draws edge congestion as a run progresses. Renderers only
// ever see copies of the network; they cannot reach the engine.
package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/vk/congestsim/internal/engine"
	"github.com/vk/congestsim/internal/graph"
)

// Renderer draws one snapshot per call.
type Renderer interface {
	Render(tick int, s graph.Snapshot) error
	Close() error
}

// Nop is the headless renderer.
type Nop struct{}

func (Nop) Render(int, graph.Snapshot) error { return nil }
func (Nop) Close() error                     { return nil }

// Multi fans a snapshot out to several renderers.
type Multi []Renderer

// Render calls every renderer, even after one fails.
func (m Multi) Render(tick int, s graph.Snapshot) error {
	var errs []error
	for _, r := range m {
		if err := r.Render(tick, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every renderer.
func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Observer adapts r to an engine observer.
func Observer(r Renderer) engine.Observer {
	return engine.ObserverFunc(r.Render)
}

// Throttle passes through every n-th tick, starting with tick 0. n <= 1
// passes every tick.
func Throttle(r Renderer, every int) Renderer {
	if every <= 1 {
		return r
	}
	return &throttled{Renderer: r, every: every}
}

type throttled struct {
	Renderer
	every int
}

func (t *throttled) Render(tick int, s graph.Snapshot) error {
	if tick%t.every != 0 {
		return nil
	}
	return t.Renderer.Render(tick, s)
}

// Color maps an edge's load to a hex colour on a fixed ramp from green
// (empty) through yellow to red (full).
func Color(load, capacity int) string {
	if capacity <= 0 {
		return "#ff0000"
	}
	ratio := math.Min(math.Max(float64(load)/float64(capacity), 0), 1)
	r, g, b := hsvToRGB((1.0/3.0)*(1-ratio), 1, 1)
	return fmt.Sprintf("#%02x%02x%02x", channel(r), channel(g), channel(b))
}

func channel(v float64) int {
	return int(math.Round(v * 255))
}

func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	if s == 0 {
		return v, v, v
	}
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch i % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
