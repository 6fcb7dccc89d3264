package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/congestsim/internal/cli"
	"github.com/vk/congestsim/internal/generate"
	"github.com/vk/congestsim/internal/problem"
)

// main is the entrypoint for the congestgen problem generator.
func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if exitErr := cli.Classify(run(os.Stdout, os.Args[1:])); exitErr != nil {
		fmt.Fprintln(os.Stderr, exitErr.Message)
		os.Exit(exitErr.Code)
	}
}

func run(outW io.Writer, args []string) error {
	flagSet := flag.NewFlagSet("congestgen", flag.ContinueOnError)
	flagSet.SetOutput(outW)

	defaults := generate.DefaultOptions()
	vertices := flagSet.Int("vertices", defaults.Vertices, "Number of vertices.")
	cars := flagSet.Int("cars", defaults.Cars, "Number of vehicles.")
	seed := flagSet.Uint64("seed", defaults.Seed, "Random seed; equal seeds produce equal files.")
	maxWalk := flagSet.Int("max-walk", defaults.MaxWalk, "Maximum number of edges in each vehicle's path.")
	problemPath := flagSet.String("problem", "problem.txt", "Where to write the problem file.")
	solutionPath := flagSet.String("solution", "solution.txt", "Where to write the solution file.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return &cli.ExitError{Code: cli.ExitUsage, Message: err.Error()}
	}
	if flagSet.NArg() > 0 {
		return &cli.ExitError{Code: cli.ExitUsage, Message: fmt.Sprintf("unexpected arguments: %v", flagSet.Args())}
	}

	inst, err := generate.Generate(generate.Options{
		Vertices: *vertices,
		Cars:     *cars,
		Seed:     *seed,
		MaxWalk:  *maxWalk,
	})
	if err != nil {
		return &cli.ExitError{Code: cli.ExitUsage, Message: err.Error()}
	}

	if err := writeFile(*problemPath, func(w io.Writer) error {
		return problem.WriteProblem(w, inst.Graph, inst.Vehicles.All())
	}); err != nil {
		return err
	}
	if err := writeFile(*solutionPath, func(w io.Writer) error {
		return problem.WriteSolution(w, inst.Paths)
	}); err != nil {
		return err
	}

	slog.Info("Generated instance.",
		"vertices", inst.Graph.VertexCount(),
		"edges", inst.Graph.EdgeCount(),
		"vehicles", inst.Vehicles.Len(),
		"problem", *problemPath,
		"solution", *solutionPath,
	)
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
