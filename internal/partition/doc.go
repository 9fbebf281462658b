// Package partition classifies the operands of a commutative operation
// pattern before combinatorial matching.
//
// Every operand lands in exactly one of five categories:
//
//	constant   ground operands (no placeholder anywhere in the subtree)
//	syntactic  operations with placeholders that match structurally
//	rest       every other operation containing a placeholder
//	fixed      exact-width placeholders, aggregated per variable name
//	sequence   variable-width placeholders, aggregated per variable name
//
// An operation is syntactic only when no operation in its non-ground subtree
// is commutative or associative and every placeholder in it has a fixed
// width. f(x_) is syntactic; f(x__), f(fc(x_)) and fa(x_) are rest.
//
// Constraints on repeated occurrences of one name are merged with
// constraint.Combine. The aggregate lengths let the search reject operand
// counts that cannot possibly fit before enumerating anything.
//
// A Partition is immutable after New returns. Accessors return copies.
// New is pure and safe to call concurrently on independent inputs.
package partition
