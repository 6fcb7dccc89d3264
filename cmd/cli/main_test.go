package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/congestsim/internal/cli"
)

const problemText = `0:(0,0)
1:(2,0)
2:(2,2)
EDGES
0:(0,1,1)
1:(1,2,1)
CARS
0,2
0,2
`

func writeInputs(t *testing.T, solution string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "problem.txt")
	s := filepath.Join(dir, "solution.txt")
	require.NoError(t, os.WriteFile(p, []byte(problemText), 0o600))
	require.NoError(t, os.WriteFile(s, []byte(solution), 0o600))
	return p, s
}

func TestRun_SimulateWaitPolicy(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	p, s := writeInputs(t, "0:0,1,2\n1:0,1,2\n")
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, []string{"-s", "-policy", "wait", p, s})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "Total Cost: 10\n(0,2): 4\n(0,2): 6\n", out.String())
}

func TestRun_ValidationFailureExitCode(t *testing.T) {
	t.Parallel()

	p, s := writeInputs(t, "0:0,2\n1:0,1,2\n")
	out := &bytes.Buffer{}

	err := run(context.Background(), out, &bytes.Buffer{}, []string{p, s})

	exitErr := cli.Classify(err)
	require.NotNil(t, exitErr)
	assert.Equal(t, cli.ExitValidation, exitErr.Code)
	assert.Contains(t, exitErr.Message, "path is not correct")
	assert.Empty(t, out.String())
}

func TestRun_BadSettingsFileExitCode(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	p, s := writeInputs(t, "0:0,1,2\n1:0,1,2\n")
	settings := filepath.Join(t.TempDir(), "settings.hcl")
	require.NoError(t, os.WriteFile(settings, []byte("simulation {\n"), 0o600))

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"-config", settings, p, s})

	// --- Assert ---
	exitErr := cli.Classify(err)
	require.NotNil(t, exitErr)
	assert.Equal(t, cli.ExitUsage, exitErr.Code)
	assert.Contains(t, exitErr.Message, "failed to parse HCL file")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
	assert.Equal(t, cli.ExitUsage, cli.Classify(err).Code)
}

func TestRun_MissingProblemFileExitCode(t *testing.T) {
	t.Parallel()

	_, s := writeInputs(t, "0:0,1,2\n1:0,1,2\n")

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{filepath.Join(t.TempDir(), "nope"), s})

	assert.Equal(t, cli.ExitInput, cli.Classify(err).Code)
}
