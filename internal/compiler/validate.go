package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/termite/internal/constraint"
	"github.com/roach88/termite/internal/expr"
	"github.com/roach88/termite/internal/partition"
)

// Validation error codes (E200-E299)
const (
	ErrUnknownOperationRef  = "E201" // pattern names an undeclared operation
	ErrUnknownConstraintRef = "E202" // variable names an undeclared constraint
	ErrNonCommutativeRoot   = "E203" // pattern root is not a commutative operation
	ErrWidthMismatch        = "E204" // one variable name with differing widths
	ErrArityViolation       = "E205" // operand count rejected by the operation's arity
	ErrInvalidOperand       = "E206" // empty name or non-positive fixed width
	ErrInvalidConstraint    = "E207" // constraint expression does not compile
)

// ValidationError represents a definition validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks compiled definitions.
// Returns all errors found (does not fail-fast).
//
// A pattern whose references resolve is also built and partitioned, so
// arity and width errors surface here instead of at match time.
func Validate(defs *Definitions) []ValidationError {
	var errs []ValidationError

	for _, cs := range defs.Constraints {
		if cs.Expr == "" {
			continue
		}
		if _, err := constraint.NewCEL(constraint.NewFixedGenerator("validate"), cs.Name, cs.Expr, cs.Vars...); err != nil {
			errs = append(errs, ValidationError{
				Field:   "constraint." + cs.Name,
				Message: err.Error(),
				Code:    ErrInvalidConstraint,
				Line:    cs.Line,
			})
		}
	}

	reg, err := registryOf(defs)
	if err != nil {
		// Operation names are CUE labels, so this only trips on hand-built
		// definitions.
		return append(errs, ValidationError{Field: "operation", Message: err.Error(), Code: ErrUnknownOperationRef})
	}

	declared := make(map[string]bool, len(defs.Constraints))
	for _, cs := range defs.Constraints {
		declared[cs.Name] = true
	}

	for _, ps := range defs.Patterns {
		errs = append(errs, validatePattern(ps, reg, declared)...)
	}

	return errs
}

func validatePattern(ps PatternSpec, reg *expr.Registry, declared map[string]bool) []ValidationError {
	errs := validateOperand(ps.Root, reg, declared)
	if len(errs) > 0 {
		return errs
	}

	// E203: partitioning applies to commutative roots only
	if ps.Root.Form != FormOperation {
		errs = append(errs, ValidationError{
			Field:   ps.Root.Path,
			Message: fmt.Sprintf("pattern %q root must be an operation", ps.Name),
			Code:    ErrNonCommutativeRoot,
			Line:    ps.Root.Line,
		})
	} else if kind, _ := reg.Lookup(ps.Root.Op); !kind.Commutative {
		errs = append(errs, ValidationError{
			Field:   ps.Root.Path,
			Message: fmt.Sprintf("pattern %q root %s is not commutative", ps.Name, kind.Name),
			Code:    ErrNonCommutativeRoot,
			Line:    ps.Root.Line,
		})
	}

	// Constraints play no part in arity or width, so every name resolves
	// to Absent here.
	root, err := buildOperand(ps.Root, reg, func(string) (constraint.Constraint, bool) { return nil, true })
	if err != nil {
		var re *ResolveError
		field := ps.Root.Path
		if errors.As(err, &re) {
			field = re.Path
		}
		code := ErrInvalidOperand
		if errors.Is(err, expr.ErrArity) {
			code = ErrArityViolation
		}
		return append(errs, ValidationError{Field: field, Message: err.Error(), Code: code, Line: ps.Root.Line})
	}

	// E204: width agreement per commutative operand list
	if _, err := partition.All(expr.Canonicalize(root)); err != nil {
		code := ErrInvalidOperand
		if partition.IsWidthMismatch(err) {
			code = ErrWidthMismatch
		}
		errs = append(errs, ValidationError{
			Field:   "pattern." + ps.Name,
			Message: err.Error(),
			Code:    code,
			Line:    ps.Root.Line,
		})
	}

	return errs
}

// validateOperand checks references and names below o.
func validateOperand(o OperandSpec, reg *expr.Registry, declared map[string]bool) []ValidationError {
	var errs []ValidationError
	add := func(code, msg string) {
		errs = append(errs, ValidationError{Field: o.Path, Message: msg, Code: code, Line: o.Line})
	}

	switch o.Form {
	case FormSymbol:
		if strings.TrimSpace(o.Symbol) == "" {
			add(ErrInvalidOperand, "symbol name must be non-empty")
		}
	case FormOperation:
		// E201: operation must be declared
		if _, ok := reg.Lookup(o.Op); !ok {
			add(ErrUnknownOperationRef, fmt.Sprintf("unknown operation %q", o.Op))
		}
		for _, child := range o.Operands {
			errs = append(errs, validateOperand(child, reg, declared)...)
		}
	case FormWildcard:
		if o.Wildcard == ShapeFixed && o.Width < 1 {
			add(ErrInvalidOperand, fmt.Sprintf("fixed width must be at least 1, got %d", o.Width))
		}
	case FormVariable:
		switch strings.TrimSpace(o.Var) {
		case "":
			add(ErrInvalidOperand, "variable name must be non-empty")
		case expr.AnonymousLabel:
			add(ErrInvalidOperand, fmt.Sprintf("variable name %q is reserved for anonymous wildcards", expr.AnonymousLabel))
		}
		if o.Kind == ShapeFixed && o.Width < 1 {
			add(ErrInvalidOperand, fmt.Sprintf("fixed width must be at least 1, got %d", o.Width))
		}
		// E202: constraint must be declared
		if o.Constraint != "" && !declared[o.Constraint] {
			add(ErrUnknownConstraintRef, fmt.Sprintf("unknown constraint %q", o.Constraint))
		}
	default:
		add(ErrInvalidOperand, fmt.Sprintf("unknown operand form %q", o.Form))
	}

	return errs
}
