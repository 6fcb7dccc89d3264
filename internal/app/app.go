package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/congestsim/internal/config"
	"github.com/vk/congestsim/internal/ctxlog"
	"github.com/vk/congestsim/internal/engine"
	"github.com/vk/congestsim/internal/graph"
	"github.com/vk/congestsim/internal/problem"
	"github.com/vk/congestsim/internal/render"
	"github.com/vk/congestsim/internal/report"
	"github.com/vk/congestsim/internal/validate"
	"github.com/vk/congestsim/internal/vehicle"
	"golang.org/x/sync/errgroup"
)

// ErrSettings marks a settings file or flag combination that cannot be used.
var ErrSettings = errors.New("app: invalid settings")

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	errW     io.Writer
	logger   *slog.Logger
	config   *Config
	settings *config.Settings
	policy   engine.Policy
	format   report.Format
}

// NewApp resolves the settings (defaults, then settings files, then
// overrides) and returns an App ready to run. Reports go to outW; logs and
// the terminal renderer go to errW.
func NewApp(ctx context.Context, outW, errW io.Writer, appConfig *Config, loader config.Loader) (*App, error) {
	settings := config.Default()
	if len(appConfig.SettingsPaths) > 0 {
		if err := loader.Load(ctx, settings, appConfig.SettingsPaths...); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSettings, err)
		}
	}
	for _, override := range appConfig.Overrides {
		override(settings)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSettings, err)
	}

	policy, err := engine.ParsePolicy(settings.Simulation.Policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSettings, err)
	}
	format, err := report.ParseFormat(settings.Report.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSettings, err)
	}

	logger := newLogger(settings.Logging, errW)
	logger.Debug("Settings resolved.",
		"policy", policy,
		"max_ticks", settings.Simulation.MaxTicks,
		"detect_deadlock", settings.Simulation.DetectDeadlock,
		"vertex_limit", settings.Validation.VertexLimit,
		"report_format", format,
	)

	return &App{
		outW:     outW,
		errW:     errW,
		logger:   logger,
		config:   appConfig,
		settings: settings,
		policy:   policy,
		format:   format,
	}, nil
}

// Settings returns the resolved settings. This is primarily for testing.
func (a *App) Settings() *config.Settings {
	return a.settings
}

// Run loads, validates and, when configured to, simulates and reports.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	prob, err := a.load(ctx)
	if err != nil {
		return err
	}
	vehicles := prob.Vehicles.All()

	limit := a.settings.Validation.VertexLimit
	if limit == 0 {
		limit = prob.Graph.VertexCount()
	}
	if err := validate.All(ctx, prob.Graph, limit, vehicles); err != nil {
		return err
	}
	a.logger.Info("All paths valid.", "vehicles", len(vehicles))

	if !a.config.Simulate {
		_, err := fmt.Fprintf(a.outW, "Validation passed (%d vehicles).\n", len(vehicles))
		return err
	}

	res, err := a.simulate(ctx, prob.Graph, vehicles)
	if err != nil {
		return err
	}

	rep, err := report.Build(vehicles, res)
	if err != nil {
		return err
	}
	a.logger.Debug("App.Run method finished.", "total_cost", rep.Total)
	return rep.Write(a.outW, a.format)
}

// load reads the problem and the solution concurrently and attaches each
// path to its vehicle.
func (a *App) load(ctx context.Context) (*problem.Problem, error) {
	var (
		prob  *problem.Problem
		paths [][]graph.VertexID
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prob, err = problem.LoadProblem(gctx, a.config.ProblemPath)
		return err
	})
	g.Go(func() error {
		var err error
		paths, err = problem.LoadSolution(gctx, a.config.SolutionPath, -1)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := problem.CheckPathCount(a.config.SolutionPath, paths, prob.Vehicles.Len()); err != nil {
		return nil, err
	}
	if err := prob.Vehicles.AssignPaths(paths); err != nil {
		return nil, err
	}
	return prob, nil
}

func (a *App) simulate(ctx context.Context, g *graph.Graph, vehicles []*vehicle.Vehicle) (*engine.Result, error) {
	opts := engine.Options{
		Policy:         a.policy,
		MaxTicks:       a.settings.Simulation.MaxTicks,
		DetectDeadlock: a.settings.Simulation.DetectDeadlock,
	}

	renderer, err := a.renderers(ctx)
	if err != nil {
		return nil, err
	}
	if renderer != nil {
		defer func() {
			if err := renderer.Close(); err != nil {
				a.logger.Warn("Renderer did not close cleanly.", "error", err)
			}
		}()
		opts.Observer = render.Observer(renderer)
	}

	e, err := engine.New(g, vehicles, opts)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Starting simulation.", "vehicles", len(vehicles), "policy", a.policy)
	res, err := e.Run(ctx)
	if err != nil {
		a.logger.Warn("Simulation stopped before every vehicle finished.",
			"ticks", res.Ticks,
			"partial_total", res.Total,
			"error", err,
		)
		return nil, err
	}
	a.logger.Info("Simulation finished.", "ticks", res.Ticks, "total_cost", res.Total)
	return res, nil
}

// renderers builds the configured renderers, or returns nil when the run is
// headless.
func (a *App) renderers(ctx context.Context) (render.Renderer, error) {
	var out render.Multi
	if every := a.settings.Render.Every; every > 0 {
		out = append(out, render.Throttle(render.NewTerminal(a.errW), every))
	}
	if url := a.settings.Render.ViewerURL; url != "" {
		viewer, err := render.DialViewer(ctx, url, a.settings.Render.ViewerNamespace)
		if err != nil {
			return nil, err
		}
		out = append(out, viewer)
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0], nil
	default:
		return out, nil
	}
}
