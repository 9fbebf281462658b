// Package testutil holds the operation kinds, symbols and placeholders shared
// by pattern tests across packages.
package testutil

import (
	"github.com/roach88/termite/internal/constraint"
	"github.com/roach88/termite/internal/expr"
)

// Operation kinds. The numbered variants exist so tests can mix two kinds
// with the same properties.
var (
	F    = &expr.OperationKind{Name: "f", Arity: expr.Variadic}
	F2   = &expr.OperationKind{Name: "f2", Arity: expr.Variadic}
	FC   = &expr.OperationKind{Name: "fc", Arity: expr.Variadic, Commutative: true}
	FC2  = &expr.OperationKind{Name: "fc2", Arity: expr.Variadic, Commutative: true}
	FA   = &expr.OperationKind{Name: "fa", Arity: expr.Variadic, Associative: true}
	FAC1 = &expr.OperationKind{Name: "fac1", Arity: expr.Variadic, Commutative: true, Associative: true}
	FAC2 = &expr.OperationKind{Name: "fac2", Arity: expr.Variadic, Commutative: true, Associative: true}
)

// Symbols.
var (
	A = expr.NewSymbol("a")
	B = expr.NewSymbol("b")
	C = expr.NewSymbol("c")
)

// Placeholders. Names follow the rendered form: X_ is x_, X__ is x__,
// X___ is x___ and X2 is x_2.
var (
	Any     = expr.Dot()
	AnyPlus = expr.Plus()
	AnyStar = expr.Star()
	X_      = expr.DotVar("x")
	Y_      = expr.DotVar("y")
	X__     = expr.PlusVar("x")
	Y__     = expr.PlusVar("y")
	X___    = expr.StarVar("x")
	Y___    = expr.StarVar("y")
	X2      = expr.FixedVar("x", 2)
	Y2      = expr.FixedVar("y", 2)
)

// Kinds returns a registry of every fixture kind.
func Kinds() *expr.Registry {
	r, err := expr.NewRegistry(F, F2, FC, FC2, FA, FAC1, FAC2)
	if err != nil {
		panic(err)
	}
	return r
}

// Constraints returns n predicate-free atomic constraints. Each is named by
// its identity token from gen.
func Constraints(gen constraint.IDGenerator, n int) []*constraint.Atomic {
	out := make([]*constraint.Atomic, n)
	for i := range out {
		out[i] = constraint.New(gen, "", nil, nil)
	}
	return out
}
