package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/congestsim/internal/app"
	"github.com/vk/congestsim/internal/config"
	"github.com/vk/congestsim/internal/engine"
	"github.com/vk/congestsim/internal/problem"
	"github.com/vk/congestsim/internal/validate"
)

func applyOverrides(cfg *app.Config) *config.Settings {
	s := config.Default()
	for _, o := range cfg.Overrides {
		o(s)
	}
	return s
}

func TestParse_PositionalFilesAndDefaults(t *testing.T) {
	// --- Act ---
	cfg, shouldExit, err := Parse([]string{"p.txt", "s.txt"}, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, "p.txt", cfg.ProblemPath)
	assert.Equal(t, "s.txt", cfg.SolutionPath)
	assert.False(t, cfg.Simulate)
	assert.Empty(t, cfg.SettingsPaths)
	assert.Empty(t, cfg.Overrides, "flags left at their defaults must not override a settings file")
}

func TestParse_ExplicitFlagsBecomeOverrides(t *testing.T) {
	args := []string{
		"-s",
		"-config", "settings.hcl",
		"-policy", "wait",
		"-max-ticks", "20",
		"-no-deadlock-check",
		"-vertex-limit", "4096",
		"-format", "YAML",
		"-log-level", "DEBUG",
		"-render-every", "3",
		"-viewer-url", "http://localhost:3000/socket.io/",
		"p.txt", "s.txt",
	}

	cfg, _, err := Parse(args, &bytes.Buffer{})

	require.NoError(t, err)
	assert.True(t, cfg.Simulate)
	assert.Equal(t, []string{"settings.hcl"}, cfg.SettingsPaths)

	s := applyOverrides(cfg)
	assert.Equal(t, "wait", s.Simulation.Policy)
	assert.Equal(t, 20, s.Simulation.MaxTicks)
	assert.False(t, s.Simulation.DetectDeadlock)
	assert.Equal(t, 4096, s.Validation.VertexLimit)
	assert.Equal(t, "yaml", s.Report.Format)
	assert.Equal(t, "debug", s.Logging.Level)
	assert.Equal(t, 3, s.Render.Every)
	assert.Equal(t, "http://localhost:3000/socket.io/", s.Render.ViewerURL)
	assert.Equal(t, "/", s.Render.ViewerNamespace)
}

func TestParse_HelpAndNoArgs(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {}} {
		out := &bytes.Buffer{}

		cfg, shouldExit, err := Parse(args, out)

		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_UsageErrors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"-bogus", "p", "s"}, wantMsg: "flag provided but not defined: -bogus"},
		{name: "one file", args: []string{"p"}, wantMsg: "got 1 arguments"},
		{name: "three files", args: []string{"p", "s", "x"}, wantMsg: "got 3 arguments"},
		{name: "bad int", args: []string{"-max-ticks", "many", "p", "s"}, wantMsg: "invalid value"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, ExitUsage, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "parse error", err: &problem.ParseError{File: "p", Msg: "bad"}, want: ExitInput},
		{name: "settings", err: fmt.Errorf("%w: nope", app.ErrSettings), want: ExitUsage},
		{name: "validation", err: &validate.Error{Kind: validate.MissingEdge}, want: ExitValidation},
		{name: "fault", err: fmt.Errorf("run: %w", &engine.SimulationFault{Kind: engine.FaultDeadlock}), want: ExitSimulation},
		{name: "exit error", err: &ExitError{Code: 9, Message: "x"}, want: 9},
		{name: "other", err: errors.New("disk on fire"), want: ExitInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.err)

			require.NotNil(t, got)
			assert.Equal(t, tc.want, got.Code)
			assert.Equal(t, tc.err.Error(), got.Message)
		})
	}

	assert.Nil(t, Classify(nil))
}
