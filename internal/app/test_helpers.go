package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/congestsim/internal/hcl"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteInputs writes a problem and a solution into a temporary directory and
// returns their paths.
func WriteInputs(t *testing.T, problemText, solutionText string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	problemPath := filepath.Join(dir, "problem.txt")
	solutionPath := filepath.Join(dir, "solution.txt")
	require.NoError(t, os.WriteFile(problemPath, []byte(problemText), 0o600))
	require.NoError(t, os.WriteFile(solutionPath, []byte(solutionText), 0o600))
	return problemPath, solutionPath
}

// SetupAppTest creates a new app instance for system testing. The returned
// buffers hold the report output and the debug log respectively.
func SetupAppTest(t *testing.T, appConfig *Config) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	out := &SafeBuffer{}
	logBuffer := &SafeBuffer{}
	testApp, err := NewApp(context.Background(), out, logBuffer, appConfig, hcl.NewLoader())
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("CONGESTSIM_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, out, logBuffer
}
