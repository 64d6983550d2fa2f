// Package pipeline defines the repair pipeline types for Callus.
// A pipeline is an immutable DAG of mesh sources, transforms and repair
// operations produced by Lisp evaluation and consumed by the runner.
package pipeline
