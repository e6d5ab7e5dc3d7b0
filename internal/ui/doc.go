// Package ui turns post-update hook lifecycle events into concise operator
// notices recorded through the log sink.
package ui
