package compiler

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/termite/internal/expr"
)

// Compile parses a spec value into Definitions.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value is the whole spec, holding optional "operation", "constraint"
// and "pattern" structs:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`operation: fc: {commutative: true} ...`)
//	defs, err := Compile(v)
func Compile(v cue.Value) (*Definitions, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	defs := &Definitions{}

	err := eachField(v, "operation", func(fv cue.Value) error {
		spec, err := CompileOperation(fv)
		if err != nil {
			return err
		}
		defs.Operations = append(defs.Operations, *spec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachField(v, "constraint", func(fv cue.Value) error {
		spec, err := CompileConstraint(fv)
		if err != nil {
			return err
		}
		defs.Constraints = append(defs.Constraints, *spec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachField(v, "pattern", func(fv cue.Value) error {
		spec, err := CompilePattern(fv)
		if err != nil {
			return err
		}
		defs.Patterns = append(defs.Patterns, *spec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(defs.Operations, func(a, b OperationSpec) int { return strings.Compare(a.Name, b.Name) })
	slices.SortFunc(defs.Constraints, func(a, b ConstraintSpec) int { return strings.Compare(a.Name, b.Name) })
	slices.SortFunc(defs.Patterns, func(a, b PatternSpec) int { return strings.Compare(a.Name, b.Name) })

	return defs, nil
}

// eachField calls fn for every field of the struct at path. A missing struct
// is not an error.
func eachField(v cue.Value, path string, fn func(cue.Value) error) error {
	sv := v.LookupPath(cue.ParsePath(path))
	if !sv.Exists() {
		return nil
	}

	iter, err := sv.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if err := fn(iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

// CompileOperation parses one operation declaration, e.g.
//
//	operation: fc: {arity: "variadic", commutative: true}
//
// Arity defaults to variadic and both flags default to false.
func CompileOperation(v cue.Value) (*OperationSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &OperationSpec{
		Name:  labelOf(v),
		Arity: expr.Variadic,
		Line:  v.Pos().Line(),
	}

	if av := v.LookupPath(cue.ParsePath("arity")); av.Exists() {
		arity, err := parseArity(av)
		if err != nil {
			return nil, err
		}
		spec.Arity = arity
	}
	spec.ArityText = spec.Arity.String()

	var err error
	if spec.Commutative, err = lookupBool(v, "commutative"); err != nil {
		return nil, err
	}
	if spec.Associative, err = lookupBool(v, "associative"); err != nil {
		return nil, err
	}

	return spec, nil
}

// parseArity accepts "nullary", "unary", "binary", "variadic", "<n>+" or
// an integer.
func parseArity(v cue.Value) (expr.Arity, error) {
	if v.IncompleteKind() == cue.IntKind {
		n, err := v.Int64()
		if err != nil {
			return expr.Arity{}, formatCUEError(err)
		}
		if n < 0 {
			return expr.Arity{}, &CompileError{
				Field:   "arity",
				Message: fmt.Sprintf("arity must be non-negative, got %d", n),
				Pos:     v.Pos(),
			}
		}
		return expr.Arity{Min: int(n), Fixed: true}, nil
	}

	s, err := v.String()
	if err != nil {
		return expr.Arity{}, &CompileError{
			Field:   "arity",
			Message: "arity must be a string or an integer",
			Pos:     v.Pos(),
		}
	}

	switch s {
	case "nullary":
		return expr.Nullary, nil
	case "unary":
		return expr.Unary, nil
	case "binary":
		return expr.Binary, nil
	case "variadic":
		return expr.Variadic, nil
	}

	if prefix, ok := strings.CutSuffix(s, "+"); ok {
		if n, err := strconv.Atoi(prefix); err == nil && n >= 0 {
			return expr.Arity{Min: n}, nil
		}
	}

	return expr.Arity{}, &CompileError{
		Field:   "arity",
		Message: fmt.Sprintf("unknown arity %q", s),
		Pos:     v.Pos(),
	}
}

// CompileConstraint parses one constraint declaration, e.g.
//
//	constraint: distinct: {expr: "x != y", vars: ["x", "y"]}
func CompileConstraint(v cue.Value) (*ConstraintSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ConstraintSpec{
		Name: labelOf(v),
		Line: v.Pos().Line(),
	}

	var err error
	if spec.Expr, _, err = lookupString(v, "expr"); err != nil {
		return nil, err
	}

	varsVal := v.LookupPath(cue.ParsePath("vars"))
	if varsVal.Exists() {
		iter, err := varsVal.List()
		if err != nil {
			return nil, &CompileError{Field: "vars", Message: "vars must be a list of strings", Pos: varsVal.Pos()}
		}
		for iter.Next() {
			name, err := iter.Value().String()
			if err != nil {
				return nil, &CompileError{Field: "vars", Message: "vars must be a list of strings", Pos: iter.Value().Pos()}
			}
			spec.Vars = append(spec.Vars, name)
		}
	}

	return spec, nil
}

// CompilePattern parses one pattern declaration. The pattern struct itself
// is the root operand, e.g.
//
//	pattern: p1: {op: "fc", operands: [{sym: "a"}, {var: "x"}]}
func CompilePattern(v cue.Value) (*PatternSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	name := labelOf(v)
	root, err := parseOperand(v, "pattern."+name)
	if err != nil {
		return nil, err
	}
	return &PatternSpec{Name: name, Root: root}, nil
}

// parseOperand parses one operand encoding:
//
//	{sym: "a"}
//	{op: "f", operands: [...]}
//	{wildcard: "dot" | "plus" | "star" | "fixed", width?: n}
//	{var: "x", kind?: "dot" | "plus" | "star" | "fixed", width?: n, constraint?: "c"}
func parseOperand(v cue.Value, path string) (OperandSpec, error) {
	spec := OperandSpec{Path: path, Line: v.Pos().Line()}

	var forms []OperandForm
	for _, form := range []OperandForm{FormSymbol, FormOperation, FormWildcard, FormVariable} {
		if v.LookupPath(cue.ParsePath(string(form))).Exists() {
			forms = append(forms, form)
		}
	}
	if len(forms) != 1 {
		return spec, &CompileError{
			Field:   path,
			Message: "operand must have exactly one of sym, op, wildcard, var",
			Pos:     v.Pos(),
		}
	}
	spec.Form = forms[0]

	var err error
	switch spec.Form {
	case FormSymbol:
		spec.Symbol, _, err = lookupString(v, "sym")
	case FormOperation:
		spec.Op, _, err = lookupString(v, "op")
		if err == nil {
			spec.Operands, err = parseOperands(v, path)
		}
	case FormWildcard:
		spec.Wildcard, _, err = lookupString(v, "wildcard")
		if err == nil {
			err = parseShape(v, path, spec.Wildcard, &spec)
		}
	case FormVariable:
		spec.Var, _, err = lookupString(v, "var")
		if err != nil {
			break
		}
		var ok bool
		if spec.Kind, ok, err = lookupString(v, "kind"); err != nil {
			break
		}
		if !ok {
			spec.Kind = ShapeDot
		}
		if err = parseShape(v, path, spec.Kind, &spec); err != nil {
			break
		}
		spec.Constraint, _, err = lookupString(v, "constraint")
	}
	if err != nil {
		return spec, err
	}
	return spec, nil
}

func parseOperands(v cue.Value, path string) ([]OperandSpec, error) {
	listVal := v.LookupPath(cue.ParsePath("operands"))
	if !listVal.Exists() {
		return nil, nil
	}

	iter, err := listVal.List()
	if err != nil {
		return nil, &CompileError{Field: path + ".operands", Message: "operands must be a list", Pos: listVal.Pos()}
	}

	var operands []OperandSpec
	for i := 0; iter.Next(); i++ {
		operand, err := parseOperand(iter.Value(), fmt.Sprintf("%s.operands[%d]", path, i))
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}
	return operands, nil
}

// parseShape checks the placeholder shape and reads its width. Only "fixed"
// takes a width, and it must be given.
func parseShape(v cue.Value, path, shape string, spec *OperandSpec) error {
	if _, ok := wildcardFor(shape, 1); !ok {
		return &CompileError{
			Field:   path,
			Message: fmt.Sprintf("unknown placeholder shape %q", shape),
			Pos:     v.Pos(),
		}
	}

	wv := v.LookupPath(cue.ParsePath("width"))
	switch {
	case shape == ShapeFixed && !wv.Exists():
		return &CompileError{Field: path, Message: "fixed placeholder requires width", Pos: v.Pos()}
	case shape != ShapeFixed && wv.Exists():
		return &CompileError{Field: path, Message: fmt.Sprintf("%s placeholder takes no width", shape), Pos: wv.Pos()}
	case !wv.Exists():
		spec.Width = 1
		if shape == ShapeStar {
			spec.Width = 0
		}
		return nil
	}

	n, err := wv.Int64()
	if err != nil {
		return formatCUEError(err)
	}
	spec.Width = int(n)
	return nil
}

func labelOf(v cue.Value) string {
	labels := v.Path().Selectors()
	if len(labels) == 0 {
		return ""
	}
	return labels[len(labels)-1].String()
}

func lookupString(v cue.Value, field string) (string, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", false, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", true, &CompileError{Field: field, Message: "must be a string", Pos: fv.Pos()}
	}
	return s, true, nil
}

func lookupBool(v cue.Value, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, &CompileError{Field: field, Message: "must be a boolean", Pos: fv.Pos()}
	}
	return b, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
