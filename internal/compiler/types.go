package compiler

import "github.com/roach88/termite/internal/expr"

// Definitions is the compiled content of a spec directory: operation kinds,
// named constraints and named patterns, each sorted by name.
//
// Definitions holds references by name only. Validate checks them and Build
// resolves them into the expression model.
type Definitions struct {
	Operations  []OperationSpec  `json:"operations"`
	Constraints []ConstraintSpec `json:"constraints"`
	Patterns    []PatternSpec    `json:"patterns"`
}

// OperationSpec declares an operation kind.
type OperationSpec struct {
	Name        string     `json:"name"`
	Arity       expr.Arity `json:"-"`
	ArityText   string     `json:"arity"`
	Commutative bool       `json:"commutative"`
	Associative bool       `json:"associative"`
	Line        int        `json:"line,omitempty"`
}

// ConstraintSpec declares a named constraint. Expr is a CEL boolean
// expression over Vars; an empty Expr declares an opaque constraint that only
// takes part in identity and merging.
type ConstraintSpec struct {
	Name string   `json:"name"`
	Expr string   `json:"expr,omitempty"`
	Vars []string `json:"vars,omitempty"`
	Line int      `json:"line,omitempty"`
}

// PatternSpec declares a named pattern. Root is normally an operation.
type PatternSpec struct {
	Name string      `json:"name"`
	Root OperandSpec `json:"root"`
}

// OperandForm identifies which encoding an OperandSpec uses.
type OperandForm string

const (
	FormSymbol    OperandForm = "sym"
	FormOperation OperandForm = "op"
	FormWildcard  OperandForm = "wildcard"
	FormVariable  OperandForm = "var"
)

// OperandSpec is one node of a pattern tree as written in CUE.
//
// Exactly one of Symbol, Op, Wildcard or Var is set. Kind selects the
// placeholder shape ("dot", "plus", "star" or "fixed") for variables;
// anonymous wildcards carry the shape in Wildcard itself.
type OperandSpec struct {
	Form       OperandForm   `json:"form"`
	Symbol     string        `json:"sym,omitempty"`
	Op         string        `json:"op,omitempty"`
	Operands   []OperandSpec `json:"operands,omitempty"`
	Wildcard   string        `json:"wildcard,omitempty"`
	Var        string        `json:"var,omitempty"`
	Kind       string        `json:"kind,omitempty"`
	Width      int           `json:"width,omitempty"`
	Constraint string        `json:"constraint,omitempty"`
	Path       string        `json:"path"`
	Line       int           `json:"line,omitempty"`
}

// Placeholder shapes accepted for "kind" and "wildcard".
const (
	ShapeDot   = "dot"
	ShapePlus  = "plus"
	ShapeStar  = "star"
	ShapeFixed = "fixed"
)

// wildcardFor returns the wildcard for a shape name.
func wildcardFor(shape string, width int) (expr.Wildcard, bool) {
	switch shape {
	case ShapeDot:
		return expr.Dot(), true
	case ShapePlus:
		return expr.Plus(), true
	case ShapeStar:
		return expr.Star(), true
	case ShapeFixed:
		return expr.Fixed(width), true
	default:
		return expr.Wildcard{}, false
	}
}
