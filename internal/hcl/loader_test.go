package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/congestsim/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_OverlaysOnlyWhatIsSet(t *testing.T) {
	// --- Arrange ---
	path := writeFile(t, t.TempDir(), "settings.hcl", `
simulation {
  policy    = "wait"
  max_ticks = 500
}

report {
  format = "json"
}
`)
	s := config.Default()

	// --- Act ---
	err := NewLoader().Load(context.Background(), s, path)

	// --- Assert ---
	require.NoError(t, err)
	want := config.Default()
	want.Simulation.Policy = "wait"
	want.Simulation.MaxTicks = 500
	want.Report.Format = "json"
	assert.Equal(t, want, s)
}

func TestLoad_EnvAndFunctions(t *testing.T) {
	path := writeFile(t, t.TempDir(), "settings.hcl", `
logging {
  level = lower(env.CONGEST_LEVEL)
}

render {
  every            = max(2, 5)
  viewer_url       = "http://${env.CONGEST_HOST}:3000/socket.io/"
  viewer_namespace = upper("/x")
}

validation {
  vertex_limit = min(4096, 100)
}
`)
	loader := &Loader{Environ: func() []string {
		return []string{"CONGEST_LEVEL=DEBUG", "CONGEST_HOST=viewer", "MALFORMED"}
	}}
	s := config.Default()

	err := loader.Load(context.Background(), s, path)

	require.NoError(t, err)
	assert.Equal(t, "debug", s.Logging.Level)
	assert.Equal(t, 5, s.Render.Every)
	assert.Equal(t, "http://viewer:3000/socket.io/", s.Render.ViewerURL)
	assert.Equal(t, "/X", s.Render.ViewerNamespace)
	assert.Equal(t, 100, s.Validation.VertexLimit)
}

func TestLoad_DirectoryAppliesFilesInWalkOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", `simulation { detect_deadlock = false }`)
	writeFile(t, dir, "b.hcl", `simulation { max_ticks = 7 }`)
	writeFile(t, dir, "notes.txt", `not hcl`)
	s := config.Default()

	err := NewLoader().Load(context.Background(), s, dir)

	require.NoError(t, err)
	assert.False(t, s.Simulation.DetectDeadlock)
	assert.Equal(t, 7, s.Simulation.MaxTicks)
	assert.Equal(t, "transit", s.Simulation.Policy)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "syntax error",
			content: `simulation {`,
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown block",
			content: `engine { x = 1 }`,
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "wrong type",
			content: `simulation { max_ticks = "many" }`,
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "unknown env var",
			content: `logging { level = env.NOT_SET_ANYWHERE }`,
			wantErr: "failed to decode HCL file",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "settings.hcl", tc.content)
			loader := &Loader{Environ: func() []string { return nil }}

			err := loader.Load(context.Background(), config.Default(), path)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	err := NewLoader().Load(context.Background(), config.Default(), filepath.Join(t.TempDir(), "missing.hcl"))

	require.ErrorIs(t, err, os.ErrNotExist)
}
