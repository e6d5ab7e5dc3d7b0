// Package setup bootstraps the dotupdater environment: the configuration
// directory, a blueprint configuration file and the log directory.
// Existing files are never overwritten.
package setup
