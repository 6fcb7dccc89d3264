package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Loader reads settings files and overlays the values they set onto s.
// Attributes a file does not mention keep their current value.
type Loader interface {
	Load(ctx context.Context, s *Settings, paths ...string) error
}

// Settings is everything a run can be configured with.
type Settings struct {
	Simulation Simulation
	Validation Validation
	Logging    Logging
	Report     Report
	Render     Render
}

// Simulation configures the engine.
type Simulation struct {
	Policy         string
	MaxTicks       int
	DetectDeadlock bool
}

// Validation configures the path validator.
type Validation struct {
	// VertexLimit bounds vehicle endpoints. Zero means the vertex count of
	// the problem.
	VertexLimit int
}

// Logging configures the process logger.
type Logging struct {
	Level  string
	Format string
}

// Report configures the result output.
type Report struct {
	Format string
}

// Render configures the congestion renderers.
type Render struct {
	// Every draws the terminal view every N ticks. Zero disables it.
	Every int

	// ViewerURL, when set, streams frames to a socket.io viewer.
	ViewerURL       string
	ViewerNamespace string
}

// Default returns the settings used when nothing is configured.
func Default() *Settings {
	return &Settings{
		Simulation: Simulation{
			Policy:         "transit",
			MaxTicks:       1_000_000,
			DetectDeadlock: true,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Report: Report{
			Format: "text",
		},
		Render: Render{
			ViewerNamespace: "/",
		},
	}
}

// Validate checks ranges and enumerations that can be checked without
// parsing policy and format names into their package types.
func (s *Settings) Validate() error {
	var errs []error
	if s.Simulation.MaxTicks < 0 {
		errs = append(errs, fmt.Errorf("simulation.max_ticks must be >= 0, got %d", s.Simulation.MaxTicks))
	}
	if s.Validation.VertexLimit < 0 {
		errs = append(errs, fmt.Errorf("validation.vertex_limit must be >= 0, got %d", s.Validation.VertexLimit))
	}
	if s.Render.Every < 0 {
		errs = append(errs, fmt.Errorf("render.every must be >= 0, got %d", s.Render.Every))
	}
	switch strings.ToLower(s.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q: must be one of debug, info, warn, error", s.Logging.Level))
	}
	switch strings.ToLower(s.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q: must be 'text' or 'json'", s.Logging.Format))
	}
	return errors.Join(errs...)
}
