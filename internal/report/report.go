// Package report turns a simulation result into the cost summary printed by
// the command-line tool.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vk/congestsim/internal/engine"
	"github.com/vk/congestsim/internal/vehicle"
	"gopkg.in/yaml.v3"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "text", "json" and "yaml" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q: must be 'text', 'json' or 'yaml'", s)
	}
}

// VehicleCost is one line of the per-vehicle breakdown.
type VehicleCost struct {
	Index        int    `json:"index" yaml:"index"`
	Src          int    `json:"src" yaml:"src"`
	Dest         int    `json:"dest" yaml:"dest"`
	Cost         int    `json:"cost" yaml:"cost"`
	TransitTicks int    `json:"transit_ticks" yaml:"transit_ticks"`
	WaitTicks    int    `json:"wait_ticks" yaml:"wait_ticks"`
	FinishedAt   int    `json:"finished_at" yaml:"finished_at"`
	State        string `json:"state" yaml:"state"`
}

// Report is the aggregate outcome of a run.
type Report struct {
	Policy   string        `json:"policy" yaml:"policy"`
	Ticks    int           `json:"ticks" yaml:"ticks"`
	Total    int           `json:"total_cost" yaml:"total_cost"`
	Vehicles []VehicleCost `json:"vehicles" yaml:"vehicles"`
}

// Build pairs each vehicle with its result. vehicles and res.Vehicles must
// be in the same index order.
func Build(vehicles []*vehicle.Vehicle, res *engine.Result) (*Report, error) {
	if len(vehicles) != len(res.Vehicles) {
		return nil, fmt.Errorf("report: %d vehicles but %d results", len(vehicles), len(res.Vehicles))
	}

	r := &Report{
		Policy:   res.Policy.String(),
		Ticks:    res.Ticks,
		Vehicles: make([]VehicleCost, len(vehicles)),
	}
	for i, v := range vehicles {
		vr := res.Vehicles[i]
		r.Vehicles[i] = VehicleCost{
			Index:        i,
			Src:          int(v.Src),
			Dest:         int(v.Dest),
			Cost:         vr.Cost,
			TransitTicks: vr.TransitTicks,
			WaitTicks:    vr.WaitTicks,
			FinishedAt:   vr.FinishedAt,
			State:        vr.State.String(),
		}
		r.Total += vr.Cost
	}
	return r, nil
}

// Write encodes r to w in the given format.
func (r *Report) Write(w io.Writer, format Format) error {
	switch format {
	case FormatText, "":
		return r.writeText(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// writeText prints the total followed by one "(src,dest): cost" line per
// vehicle.
func (r *Report) writeText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Total Cost: %d\n", r.Total)
	for _, v := range r.Vehicles {
		fmt.Fprintf(&b, "(%d,%d): %d\n", v.Src, v.Dest, v.Cost)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
