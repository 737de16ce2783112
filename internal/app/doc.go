// Package app wires the composer together: it merges CLI flags with the
// optional configuration file, owns the application logger, builds the
// package index, runs the expansion, and hands the result to the renderer
// or the process launcher.
package app
