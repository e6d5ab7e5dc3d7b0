// Package dotsync keeps configured local repositories in step with their
// origin remote by fast-forwarding a single branch per repository.
//
// Each pass walks the configured repositories in order. A repository is
// fetched, its local and remote tips are related through the commit graph and
// the branch is moved only when the remote tip strictly descends from the local
// one. Diverged branches are reported and left alone.
package dotsync
