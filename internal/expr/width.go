package expr

import (
	"errors"
	"fmt"
)

// ErrMalformed indicates an expression that violates the model's invariants.
var ErrMalformed = errors.New("malformed expression")

// Width returns the number of operand slots a placeholder consumes: the
// declared width for fixed-size placeholders, the minimum width otherwise.
// The second result is false when e is not a placeholder.
func Width(e Expression) (int, bool) {
	switch v := e.(type) {
	case Wildcard:
		return v.MinCount, true
	case Variable:
		return v.Wildcard.MinCount, true
	default:
		return 0, false
	}
}

// IsFixedSize reports whether e is a placeholder of exact width.
func IsFixedSize(e Expression) bool {
	switch v := e.(type) {
	case Wildcard:
		return v.FixedSize
	case Variable:
		return v.Wildcard.FixedSize
	default:
		return false
	}
}

// Validate checks e recursively: no nil operands or kinds, named variables
// other than the reserved "_", fixed placeholders of width >= 1 and non-negative minimum widths.
func Validate(e Expression) error {
	switch v := e.(type) {
	case nil:
		return fmt.Errorf("%w: nil expression", ErrMalformed)
	case Symbol:
		return nil
	case Wildcard:
		return validateWildcard(v, "_")
	case Variable:
		if v.Name == AnonymousName {
			return fmt.Errorf("%w: variable without a name", ErrMalformed)
		}
		if v.Name == AnonymousLabel {
			return fmt.Errorf("%w: variable name %q is reserved", ErrMalformed, AnonymousLabel)
		}
		return validateWildcard(v.Wildcard, v.Name)
	case Operation:
		if v.Kind == nil {
			return fmt.Errorf("%w: operation without a kind", ErrMalformed)
		}
		for i, op := range v.Operands {
			if err := Validate(op); err != nil {
				return fmt.Errorf("%s operand %d: %w", v.Kind.Name, i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown expression type %T", ErrMalformed, e)
	}
}

func validateWildcard(w Wildcard, name string) error {
	if w.MinCount < 0 {
		return fmt.Errorf("%w: %s has negative minimum width %d", ErrMalformed, name, w.MinCount)
	}
	if w.FixedSize && w.MinCount < 1 {
		return fmt.Errorf("%w: %s has fixed width %d", ErrMalformed, name, w.MinCount)
	}
	return nil
}

// ValidateGround checks that e is well-formed and contains no placeholder.
// Subject expressions must pass it.
func ValidateGround(e Expression) error {
	if err := Validate(e); err != nil {
		return err
	}
	if ContainsVariable(e) {
		return fmt.Errorf("%w: placeholder in ground expression %s", ErrMalformed, e)
	}
	return nil
}
