// Package cli constructs the dotupdater command-line interface. It wires the
// Cobra command hierarchy to the layered configuration loader and to the
// diagnostic and event loggers, and registers the sync and init commands.
package cli
