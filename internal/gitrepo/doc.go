// Package gitrepo wraps go-git repositories with the narrow set of operations
// needed to keep a local branch in step with its origin counterpart.
//
// Repository exposes read operations (branch tips, remote-tracking tips,
// remote lookup, commit ancestry) and the two mutating operations used when a
// fast-forward is applied: a compare-and-swap branch update and a forced
// checkout. Every failure is wrapped with one of the package sentinel errors so
// callers can classify outcomes with errors.Is.
package gitrepo
