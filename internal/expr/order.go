package expr

import (
	"cmp"
	"slices"
	"strings"

	"github.com/roach88/termite/internal/constraint"
)

// rank orders the variants: Symbol < Wildcard < Variable < Operation.
func rank(e Expression) int {
	switch e.(type) {
	case Symbol:
		return 0
	case Wildcard:
		return 1
	case Variable:
		return 2
	case Operation:
		return 3
	default:
		return -1
	}
}

// Compare is a total order over expressions.
// Variants are ranked first, then compared by content: symbols by name,
// wildcards by (MinCount, FixedSize), variables by (Name, Wildcard,
// Constraint), operations by kind name then operands lexicographically.
func Compare(a, b Expression) int {
	if c := cmp.Compare(rank(a), rank(b)); c != 0 {
		return c
	}

	switch x := a.(type) {
	case Symbol:
		return strings.Compare(x.Name, b.(Symbol).Name)
	case Wildcard:
		return compareWildcards(x, b.(Wildcard))
	case Variable:
		y := b.(Variable)
		if c := strings.Compare(x.Name, y.Name); c != 0 {
			return c
		}
		if c := compareWildcards(x.Wildcard, y.Wildcard); c != 0 {
			return c
		}
		return constraint.Compare(x.Constraint, y.Constraint)
	case Operation:
		y := b.(Operation)
		if c := strings.Compare(kindName(x.Kind), kindName(y.Kind)); c != 0 {
			return c
		}
		return slices.CompareFunc(x.Operands, y.Operands, Compare)
	default:
		return 0
	}
}

func compareWildcards(a, b Wildcard) int {
	if c := cmp.Compare(a.MinCount, b.MinCount); c != 0 {
		return c
	}
	switch {
	case a.FixedSize == b.FixedSize:
		return 0
	case !a.FixedSize:
		return -1
	default:
		return 1
	}
}

func kindName(k *OperationKind) string {
	if k == nil {
		return ""
	}
	return k.Name
}

// Equal reports structural equality.
func Equal(a, b Expression) bool {
	return Compare(a, b) == 0
}

// Sort sorts exprs in place by Compare.
func Sort(exprs []Expression) {
	slices.SortStableFunc(exprs, Compare)
}

// Sorted returns a sorted copy of exprs.
func Sorted(exprs []Expression) []Expression {
	out := slices.Clone(exprs)
	Sort(out)
	return out
}
