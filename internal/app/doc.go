// Package app contains the core application logic: it loads a problem and a
// solution, validates every path, optionally replays the solution through
// the simulation engine, and writes the cost report. It is decoupled from
// any specific entrypoint like a CLI.
package app
