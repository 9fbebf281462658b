package expr

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/termite/internal/constraint"
)

// AnonymousName keys anonymous wildcards in per-name aggregations.
// Named variables always have a non-empty name.
const AnonymousName = ""

// AnonymousLabel renders the anonymous key. It is reserved: no variable may
// take it as a name.
const AnonymousLabel = "_"

// Expression is a sealed interface.
// Only Symbol, Operation, Wildcard, and Variable implement it.
type Expression interface {
	String() string
	expression() // Sealed
}

// Symbol is a leaf identified by its name.
type Symbol struct {
	Name string
}

func (Symbol) expression() {}

// NewSymbol creates a Symbol with an NFC-normalized name.
func NewSymbol(name string) Symbol {
	return Symbol{Name: norm.NFC.String(name)}
}

// String implements Expression.
func (s Symbol) String() string { return s.Name }

// Operation applies an operation kind to an ordered operand list.
// Operands is treated as immutable once the Operation is built.
type Operation struct {
	Kind     *OperationKind
	Operands []Expression
}

func (Operation) expression() {}

// String implements Expression, e.g. "f(x_, a)".
func (o Operation) String() string {
	name := "<nil>"
	if o.Kind != nil {
		name = o.Kind.Name
	}
	parts := make([]string, len(o.Operands))
	for i, op := range o.Operands {
		if op == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = op.String()
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

// WildcardKind classifies a placeholder by the number of slots it binds.
type WildcardKind int

const (
	// ExactlyOne binds exactly one operand.
	ExactlyOne WildcardKind = iota
	// ExactlyN binds a fixed number (>1) of operands.
	ExactlyN
	// OneOrMore binds a run of at least one operand.
	OneOrMore
	// ZeroOrMore binds a run of any length.
	ZeroOrMore
)

// String returns the kind name used in definitions.
func (k WildcardKind) String() string {
	switch k {
	case ExactlyOne:
		return "dot"
	case ExactlyN:
		return "fixed"
	case OneOrMore:
		return "plus"
	case ZeroOrMore:
		return "star"
	default:
		return fmt.Sprintf("WildcardKind(%d)", int(k))
	}
}

// Wildcard is an anonymous placeholder.
//
// FixedSize wildcards bind exactly MinCount operands. Variable-width
// wildcards bind MinCount or more.
type Wildcard struct {
	MinCount  int
	FixedSize bool
}

func (Wildcard) expression() {}

// Dot returns the exactly-one wildcard.
func Dot() Wildcard { return Wildcard{MinCount: 1, FixedSize: true} }

// Plus returns the one-or-more wildcard.
func Plus() Wildcard { return Wildcard{MinCount: 1} }

// Star returns the zero-or-more wildcard.
func Star() Wildcard { return Wildcard{MinCount: 0} }

// Fixed returns a wildcard binding exactly n operands.
func Fixed(n int) Wildcard { return Wildcard{MinCount: n, FixedSize: true} }

// Kind classifies the wildcard.
func (w Wildcard) Kind() WildcardKind {
	switch {
	case w.FixedSize && w.MinCount == 1:
		return ExactlyOne
	case w.FixedSize:
		return ExactlyN
	case w.MinCount >= 1:
		return OneOrMore
	default:
		return ZeroOrMore
	}
}

// suffix renders the placeholder marker shared by wildcards and variables.
func (w Wildcard) suffix() string {
	switch w.Kind() {
	case ExactlyOne:
		return "_"
	case ExactlyN:
		return fmt.Sprintf("_%d", w.MinCount)
	case OneOrMore:
		return "__"
	default:
		return "___"
	}
}

// String implements Expression: "_", "__", "___", or "_3".
func (w Wildcard) String() string { return w.suffix() }

// Variable is a named placeholder. All occurrences of one name in a pattern
// denote the same logical variable.
type Variable struct {
	Name       string
	Wildcard   Wildcard
	Constraint constraint.Constraint
}

func (Variable) expression() {}

// NewVariable creates a variable with an NFC-normalized name.
func NewVariable(name string, w Wildcard, c constraint.Constraint) Variable {
	return Variable{Name: norm.NFC.String(name), Wildcard: w, Constraint: c}
}

// DotVar creates an exactly-one variable.
func DotVar(name string) Variable { return NewVariable(name, Dot(), nil) }

// PlusVar creates a one-or-more variable.
func PlusVar(name string) Variable { return NewVariable(name, Plus(), nil) }

// StarVar creates a zero-or-more variable.
func StarVar(name string) Variable { return NewVariable(name, Star(), nil) }

// FixedVar creates a variable binding exactly n operands.
func FixedVar(name string, n int) Variable { return NewVariable(name, Fixed(n), nil) }

// With returns a copy of v carrying constraint c.
func (v Variable) With(c constraint.Constraint) Variable {
	v.Constraint = c
	return v
}

// String implements Expression: "x_", "x__", "x___", "x_2", with ":name"
// appended when constrained.
func (v Variable) String() string {
	s := v.Name + v.Wildcard.suffix()
	if names := constraint.Names(v.Constraint); len(names) > 0 {
		s += ":" + strings.Join(names, "&")
	}
	return s
}

// IsPlaceholder reports whether e is a Wildcard or a Variable.
func IsPlaceholder(e Expression) bool {
	switch e.(type) {
	case Wildcard, Variable:
		return true
	default:
		return false
	}
}

// ContainsVariable reports whether any Wildcard or Variable occurs in e.
func ContainsVariable(e Expression) bool {
	switch v := e.(type) {
	case Wildcard, Variable:
		return true
	case Operation:
		return slices.ContainsFunc(v.Operands, ContainsVariable)
	default:
		return false
	}
}

// Variables returns the distinct variable names occurring in e, in order of
// first occurrence. Anonymous wildcards are not included.
func Variables(e Expression) []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(Expression)
	walk = func(e Expression) {
		switch v := e.(type) {
		case Variable:
			if !seen[v.Name] {
				seen[v.Name] = true
				names = append(names, v.Name)
			}
		case Operation:
			for _, op := range v.Operands {
				walk(op)
			}
		}
	}
	walk(e)
	return names
}
