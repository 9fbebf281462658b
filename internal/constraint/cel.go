package constraint

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// NewCEL compiles a CEL boolean expression into an atomic constraint.
//
// Each name in vars is declared as a dynamic CEL variable. At check time a
// single binding is passed as its term string and a sequence binding as a
// list of term strings, e.g. `x != y` or `size(xs) > 1`.
func NewCEL(gen IDGenerator, name, source string, vars ...string) (*Atomic, error) {
	envOptions := []cel.EnvOption{
		cel.HomogeneousAggregateLiterals(),
		cel.EagerlyValidateDeclarations(true),
	}
	for _, v := range vars {
		envOptions = append(envOptions, cel.Variable(v, cel.DynType))
	}

	env, err := cel.NewEnv(envOptions...)
	if err != nil {
		return nil, fmt.Errorf("constraint %s: create CEL environment: %w", name, err)
	}

	ast, issues := env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("constraint %s: CEL compilation error: %w", name, issues.Err())
	}

	out := ast.OutputType()
	if out == nil || !(out.IsExactType(cel.BoolType) || out.IsExactType(cel.DynType)) {
		return nil, fmt.Errorf("constraint %s: expression %q must be boolean", name, source)
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("constraint %s: create CEL program: %w", name, err)
	}

	declared := append([]string(nil), vars...)
	pred := func(s Substitution) (bool, error) {
		activation := make(map[string]any, len(declared))
		for _, v := range declared {
			b, ok := s[v]
			if !ok {
				return false, fmt.Errorf("variable %q is unbound", v)
			}
			activation[v] = bindingValue(b)
		}

		result, _, err := program.Eval(activation)
		if err != nil {
			return false, fmt.Errorf("CEL evaluation error: %w", err)
		}
		ok, isBool := result.Value().(bool)
		if !isBool {
			return false, fmt.Errorf("CEL result %v is not a bool", result.Value())
		}
		return ok, nil
	}

	return New(gen, name, vars, pred), nil
}

func bindingValue(b Binding) any {
	if !b.Sequence && len(b.Terms) == 1 {
		return b.Terms[0]
	}
	terms := b.Terms
	if terms == nil {
		terms = []string{}
	}
	return terms
}
