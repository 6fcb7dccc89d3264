package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/congestsim/internal/app"
	"github.com/vk/congestsim/internal/config"
	"github.com/vk/congestsim/internal/engine"
	"github.com/vk/congestsim/internal/validate"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitInput      = 1
	ExitUsage      = 2
	ExitValidation = 3
	ExitSimulation = 4
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("congestsim", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
congestsim - validate and replay routing solutions on a congested road network.

Usage:
  congestsim [options] PROBLEM SOLUTION

Arguments:
  PROBLEM   Problem file: vertices, EDGES, CARS.
  SOLUTION  Solution file: one "index:v1,...,vn" path per vehicle.

Options:
`)
		flagSet.PrintDefaults()
	}

	simulateFlag := flagSet.Bool("simulate", false, "Replay the solution and report its cost after validation.")
	sFlag := flagSet.Bool("s", false, "Replay the solution (shorthand).")
	configFlag := flagSet.String("config", "", "Path to an HCL settings file or directory.")

	defaults := config.Default()
	policyFlag := flagSet.String("policy", defaults.Simulation.Policy, "Cost policy. Options: 'transit' or 'wait'.")
	maxTicksFlag := flagSet.Int("max-ticks", defaults.Simulation.MaxTicks, "Stop the simulation after this many ticks. 0 is unlimited.")
	noDeadlockFlag := flagSet.Bool("no-deadlock-check", false, "Disable deadlock detection; rely on -max-ticks only.")
	vertexLimitFlag := flagSet.Int("vertex-limit", 0, "Upper bound on vehicle endpoints. 0 uses the vertex count.")
	formatFlag := flagSet.String("format", defaults.Report.Format, "Report format. Options: 'text', 'json' or 'yaml'.")
	logFormatFlag := flagSet.String("log-format", defaults.Logging.Format, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.Logging.Level, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	renderEveryFlag := flagSet.Int("render-every", 0, "Draw edge congestion to stderr every N ticks. 0 is disabled.")
	viewerURLFlag := flagSet.String("viewer-url", "", "Stream congestion frames to a socket.io viewer at this URL.")
	viewerNSFlag := flagSet.String("viewer-namespace", defaults.Render.ViewerNamespace, "Socket.io namespace of the viewer.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No input files provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() != 2 {
		return nil, false, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("expected PROBLEM and SOLUTION, got %d arguments", flagSet.NArg())}
	}

	// Only flags given explicitly override the settings file.
	overrides := map[string]func(*config.Settings){
		"policy":            func(s *config.Settings) { s.Simulation.Policy = *policyFlag },
		"max-ticks":         func(s *config.Settings) { s.Simulation.MaxTicks = *maxTicksFlag },
		"no-deadlock-check": func(s *config.Settings) { s.Simulation.DetectDeadlock = !*noDeadlockFlag },
		"vertex-limit":      func(s *config.Settings) { s.Validation.VertexLimit = *vertexLimitFlag },
		"format":            func(s *config.Settings) { s.Report.Format = strings.ToLower(*formatFlag) },
		"log-format":        func(s *config.Settings) { s.Logging.Format = strings.ToLower(*logFormatFlag) },
		"log-level":         func(s *config.Settings) { s.Logging.Level = strings.ToLower(*logLevelFlag) },
		"render-every":      func(s *config.Settings) { s.Render.Every = *renderEveryFlag },
		"viewer-url":        func(s *config.Settings) { s.Render.ViewerURL = *viewerURLFlag },
		"viewer-namespace":  func(s *config.Settings) { s.Render.ViewerNamespace = *viewerNSFlag },
	}
	var applied []func(*config.Settings)
	flagSet.Visit(func(f *flag.Flag) {
		if o, ok := overrides[f.Name]; ok {
			applied = append(applied, o)
		}
	})

	var settingsPaths []string
	if *configFlag != "" {
		settingsPaths = append(settingsPaths, *configFlag)
	}

	cfg, err := app.NewConfig(app.Config{
		ProblemPath:   flagSet.Arg(0),
		SolutionPath:  flagSet.Arg(1),
		Simulate:      *simulateFlag || *sFlag,
		SettingsPaths: settingsPaths,
		Overrides:     applied,
	})
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "problem", cfg.ProblemPath, "solution", cfg.SolutionPath, "simulate", cfg.Simulate)
	return cfg, false, nil
}

// Classify maps an application error to the exit code it should produce.
// A nil error yields nil.
func Classify(err error) *ExitError {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	// Unreadable or malformed input files (problem.ParseError) and anything
	// unexpected fall through to ExitInput.
	code := ExitInput
	var fault *engine.SimulationFault
	switch {
	case errors.Is(err, app.ErrSettings):
		code = ExitUsage
	case errors.Is(err, validate.ErrInvalidPath):
		code = ExitValidation
	case errors.As(err, &fault):
		code = ExitSimulation
	}
	return &ExitError{Code: code, Message: err.Error()}
}
