// Package expand turns a parsed launch description into a flat, fully
// resolved node set. Expansion is a single synchronous depth-first pass in
// document order: resolve arguments, apply namespace pushes, expand includes
// into fresh child scopes, and collect nodes. The first failure aborts the
// whole expansion; no partial result is ever returned.
package expand
