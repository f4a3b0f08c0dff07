// Package dataset provides the in-memory tabular model the pipeline stages
// operate on: a typed cell value, an ordered-column table, and read-only
// source diagnostics. Tables are plain mutable values; a stage that needs an
// isolated copy clones before transforming.
package dataset
