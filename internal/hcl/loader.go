package hcl

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/congestsim/internal/config"
	"github.com/vk/congestsim/internal/ctxlog"
	"github.com/vk/congestsim/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	// Environ supplies the "env" object. It defaults to os.Environ.
	Environ func() []string
}

// NewLoader creates a new HCL settings loader.
func NewLoader() *Loader {
	return &Loader{Environ: os.Environ}
}

var _ config.Loader = (*Loader)(nil)

// fileRoot lists every block a settings file may contain. Each attribute is
// a pointer so that an omitted attribute leaves the current value alone.
type fileRoot struct {
	Simulation *simulationBlock `hcl:"simulation,block"`
	Validation *validationBlock `hcl:"validation,block"`
	Logging    *loggingBlock    `hcl:"logging,block"`
	Report     *reportBlock     `hcl:"report,block"`
	Render     *renderBlock     `hcl:"render,block"`
}

type simulationBlock struct {
	Policy         *string `hcl:"policy,optional"`
	MaxTicks       *int    `hcl:"max_ticks,optional"`
	DetectDeadlock *bool   `hcl:"detect_deadlock,optional"`
}

type validationBlock struct {
	VertexLimit *int `hcl:"vertex_limit,optional"`
}

type loggingBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

type reportBlock struct {
	Format *string `hcl:"format,optional"`
}

type renderBlock struct {
	Every           *int    `hcl:"every,optional"`
	ViewerURL       *string `hcl:"viewer_url,optional"`
	ViewerNamespace *string `hcl:"viewer_namespace,optional"`
}

// Load parses every .hcl file found under paths, in order, and overlays each
// onto s. A path may be a file or a directory, which is walked.
func (l *Loader) Load(ctx context.Context, s *config.Settings, paths ...string) error {
	logger := ctxlog.FromContext(ctx)

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return err
	}
	logger.Debug("Discovered HCL settings files.", "count", len(files))

	parser := hclparse.NewParser()
	evalCtx := l.evalContext()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		root.apply(s)
		logger.Debug("Applied HCL settings file.", "file", file)
	}
	return nil
}

// evalContext exposes the environment and a few stdlib functions to
// settings expressions.
func (l *Loader) evalContext() *hcl.EvalContext {
	environ := l.Environ
	if environ == nil {
		environ = os.Environ
	}
	env := make(map[string]cty.Value)
	for _, kv := range environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = cty.StringVal(v)
		}
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
		Functions: map[string]function.Function{
			"min":   stdlib.MinFunc,
			"max":   stdlib.MaxFunc,
			"upper": stdlib.UpperFunc,
			"lower": stdlib.LowerFunc,
		},
	}
}

func (r *fileRoot) apply(s *config.Settings) {
	if b := r.Simulation; b != nil {
		setIf(&s.Simulation.Policy, b.Policy)
		setIf(&s.Simulation.MaxTicks, b.MaxTicks)
		setIf(&s.Simulation.DetectDeadlock, b.DetectDeadlock)
	}
	if b := r.Validation; b != nil {
		setIf(&s.Validation.VertexLimit, b.VertexLimit)
	}
	if b := r.Logging; b != nil {
		setIf(&s.Logging.Level, b.Level)
		setIf(&s.Logging.Format, b.Format)
	}
	if b := r.Report; b != nil {
		setIf(&s.Report.Format, b.Format)
	}
	if b := r.Render; b != nil {
		setIf(&s.Render.Every, b.Every)
		setIf(&s.Render.ViewerURL, b.ViewerURL)
		setIf(&s.Render.ViewerNamespace, b.ViewerNamespace)
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl
// files found. A path named explicitly must exist.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing settings path %s: %w", path, err)
		}

		if !info.IsDir() {
			add(path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return allFiles, nil
}
