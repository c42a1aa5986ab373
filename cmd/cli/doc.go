// Package cli constructs the gitconsole command-line interface, wiring the
// Cobra command hierarchy, configuration loader, structured logging and the
// shared shell executor used by the run and batch subcommands.
package cli
