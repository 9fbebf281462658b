// Package constraint provides the predicate values attached to pattern
// variables and the combinator that consolidates them.
//
// A Constraint is either an *Atomic (one predicate with a stable identity
// token) or a *Combined (the logical AND of two or more distinct atomics).
// A nil Constraint means "no constraint" and is the identity element of
// Combine.
//
// Identity, not the callable, decides equality: two atomics are equal iff
// they carry the same ID. IDs are assigned at construction by an IDGenerator
// (UUIDv7 in production, fixed sequences in tests).
//
// This package imports nothing internal. The expression model builds on it.
package constraint
