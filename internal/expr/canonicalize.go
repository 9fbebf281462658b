package expr

import "slices"

// Canonicalize returns the canonical form of e.
//
// Operands of an associative operation that are operations of the same kind
// are spliced into the parent operand list; operands of a commutative
// operation are sorted by Compare. Canonicalization is applied bottom-up and
// is idempotent. The input is never modified.
func Canonicalize(e Expression) Expression {
	op, ok := e.(Operation)
	if !ok || op.Kind == nil {
		return e
	}

	operands := make([]Expression, 0, len(op.Operands))
	for _, child := range op.Operands {
		canon := Canonicalize(child)
		if op.Kind.Associative {
			if inner, ok := canon.(Operation); ok && inner.Kind == op.Kind {
				operands = append(operands, inner.Operands...)
				continue
			}
		}
		operands = append(operands, canon)
	}

	if op.Kind.Commutative {
		slices.SortStableFunc(operands, Compare)
	}
	return Operation{Kind: op.Kind, Operands: operands}
}
