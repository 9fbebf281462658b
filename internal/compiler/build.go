package compiler

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/termite/internal/constraint"
	"github.com/roach88/termite/internal/expr"
)

var (
	// ErrUnknownOperation indicates a pattern naming an undeclared operation.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrUnknownConstraint indicates a variable naming an undeclared constraint.
	ErrUnknownConstraint = errors.New("unknown constraint")
)

// ResolveError locates a failure while turning an operand into an
// expression.
type ResolveError struct {
	Path string
	Err  error
}

func (e *ResolveError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e *ResolveError) Unwrap() error { return e.Err }

// Library is Definitions resolved into the expression model.
// It is read-only after Build returns.
type Library struct {
	Registry    *expr.Registry
	Constraints map[string]*constraint.Atomic

	patterns map[string]expr.Expression
	names    []string
}

// Build resolves defs. Constraint identity tokens come from gen; every
// pattern is canonicalized. Build stops at the first error; run Validate
// first for a complete report.
func Build(defs *Definitions, gen constraint.IDGenerator) (*Library, error) {
	reg, err := registryOf(defs)
	if err != nil {
		return nil, err
	}

	lib := &Library{
		Registry:    reg,
		Constraints: make(map[string]*constraint.Atomic, len(defs.Constraints)),
		patterns:    make(map[string]expr.Expression, len(defs.Patterns)),
	}

	for _, cs := range defs.Constraints {
		c, err := buildConstraint(gen, cs)
		if err != nil {
			return nil, err
		}
		lib.Constraints[cs.Name] = c
	}

	lookup := func(name string) (constraint.Constraint, bool) {
		c, ok := lib.Constraints[name]
		return c, ok
	}
	for _, ps := range defs.Patterns {
		root, err := buildOperand(ps.Root, reg, lookup)
		if err != nil {
			return nil, err
		}
		lib.patterns[ps.Name] = expr.Canonicalize(root)
		lib.names = append(lib.names, ps.Name)
	}
	slices.Sort(lib.names)

	return lib, nil
}

// Pattern returns the canonical pattern with the given name.
func (l *Library) Pattern(name string) (expr.Expression, bool) {
	p, ok := l.patterns[name]
	return p, ok
}

// PatternNames returns the pattern names, sorted.
func (l *Library) PatternNames() []string { return slices.Clone(l.names) }

func registryOf(defs *Definitions) (*expr.Registry, error) {
	kinds := make([]*expr.OperationKind, len(defs.Operations))
	for i, op := range defs.Operations {
		kinds[i] = &expr.OperationKind{
			Name:        op.Name,
			Arity:       op.Arity,
			Commutative: op.Commutative,
			Associative: op.Associative,
		}
	}
	return expr.NewRegistry(kinds...)
}

func buildConstraint(gen constraint.IDGenerator, cs ConstraintSpec) (*constraint.Atomic, error) {
	if cs.Expr == "" {
		return constraint.New(gen, cs.Name, cs.Vars, nil), nil
	}
	c, err := constraint.NewCEL(gen, cs.Name, cs.Expr, cs.Vars...)
	if err != nil {
		return nil, &ResolveError{Path: "constraint." + cs.Name, Err: err}
	}
	return c, nil
}

// buildOperand turns an operand tree into an expression. lookup resolves
// constraint names.
func buildOperand(
	o OperandSpec,
	reg *expr.Registry,
	lookup func(string) (constraint.Constraint, bool),
) (expr.Expression, error) {
	switch o.Form {
	case FormSymbol:
		return expr.NewSymbol(o.Symbol), nil

	case FormWildcard:
		w, _ := wildcardFor(o.Wildcard, o.Width)
		return w, nil

	case FormVariable:
		w, _ := wildcardFor(o.Kind, o.Width)
		var c constraint.Constraint
		if o.Constraint != "" {
			found, ok := lookup(o.Constraint)
			if !ok {
				return nil, &ResolveError{Path: o.Path, Err: fmt.Errorf("%w %q", ErrUnknownConstraint, o.Constraint)}
			}
			c = found
		}
		return expr.NewVariable(o.Var, w, c), nil

	case FormOperation:
		kind, ok := reg.Lookup(o.Op)
		if !ok {
			return nil, &ResolveError{Path: o.Path, Err: fmt.Errorf("%w %q", ErrUnknownOperation, o.Op)}
		}
		operands := make([]expr.Expression, len(o.Operands))
		for i, child := range o.Operands {
			e, err := buildOperand(child, reg, lookup)
			if err != nil {
				return nil, err
			}
			operands[i] = e
		}
		op, err := kind.New(operands...)
		if err != nil {
			return nil, &ResolveError{Path: o.Path, Err: err}
		}
		return op, nil

	default:
		return nil, &ResolveError{Path: o.Path, Err: fmt.Errorf("%w: unknown operand form %q", expr.ErrMalformed, o.Form)}
	}
}
