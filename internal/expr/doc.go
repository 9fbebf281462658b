// Package expr provides the expression model for termite patterns.
//
// Expression is a sealed interface over four variants:
//   - Symbol: a named leaf
//   - Operation: an operation kind applied to ordered operands
//   - Wildcard: an anonymous placeholder (pattern-only)
//   - Variable: a named placeholder with an optional constraint (pattern-only)
//
// Operation kinds (name, arity, commutative and associative flags) are
// defined once and shared by reference. A Registry holds them by name and is
// never mutated after construction.
//
// Key design constraints:
//   - Expressions are values; nothing in this package mutates an operand slice
//     it was handed
//   - Compare is a total order used for canonical sorting of commutative operands
//   - Canonical JSON (RFC 8785, NFC strings) is the only serialization used for
//     content hashes
//   - Wildcard and Variable never occur in subject expressions
package expr
