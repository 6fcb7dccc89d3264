package app

import (
	"errors"

	"github.com/vk/congestsim/internal/config"
)

// Config holds everything an App instance needs that does not come from a
// settings file.
type Config struct {
	ProblemPath  string
	SolutionPath string

	// Simulate replays the solution after validation; otherwise the run stops
	// once every path is known to be legal.
	Simulate bool

	// SettingsPaths lists HCL settings files or directories, applied in order.
	SettingsPaths []string

	// Overrides are applied after the settings files, so that explicit
	// command-line flags win.
	Overrides []func(*config.Settings)
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProblemPath == "" {
		return nil, errors.New("a problem file is required")
	}
	if cfg.SolutionPath == "" {
		return nil, errors.New("a solution file is required")
	}
	return &cfg, nil
}
