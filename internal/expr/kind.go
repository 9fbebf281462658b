package expr

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrArity indicates an operand count the operation kind does not accept.
	ErrArity = errors.New("arity violation")

	// ErrDuplicateKind indicates two operation kinds registered under one name.
	ErrDuplicateKind = errors.New("duplicate operation kind")

	// ErrInvalidKind indicates an operation kind that cannot be registered.
	ErrInvalidKind = errors.New("invalid operation kind")
)

// Arity is the operand count an operation kind accepts: exactly Min when
// Fixed, otherwise Min or more.
type Arity struct {
	Min   int
	Fixed bool
}

// Common arities.
var (
	Nullary  = Arity{Min: 0, Fixed: true}
	Unary    = Arity{Min: 1, Fixed: true}
	Binary   = Arity{Min: 2, Fixed: true}
	Variadic = Arity{Min: 0, Fixed: false}
)

// String renders the arity as used in definitions.
func (a Arity) String() string {
	switch a {
	case Nullary:
		return "nullary"
	case Unary:
		return "unary"
	case Binary:
		return "binary"
	case Variadic:
		return "variadic"
	}
	if a.Fixed {
		return fmt.Sprintf("%d", a.Min)
	}
	return fmt.Sprintf("%d+", a.Min)
}

// OperationKind is the shared definition of an operation.
// Kinds are created once and referenced by every Operation of that kind.
type OperationKind struct {
	Name        string
	Arity       Arity
	Commutative bool
	Associative bool
}

// String returns the kind name.
func (k *OperationKind) String() string { return k.Name }

// New applies k to operands after checking the arity.
//
// Placeholders count their minimum width. An operand list holding a
// variable-width placeholder may still grow, so it only has to fit below a
// fixed arity; otherwise the minimum slot count must match exactly (fixed)
// or reach Min (variadic).
func (k *OperationKind) New(operands ...Expression) (Operation, error) {
	slots, open := 0, false
	for _, op := range operands {
		if w, ok := Width(op); ok {
			slots += w
			if !IsFixedSize(op) {
				open = true
			}
			continue
		}
		slots++
	}

	var ok bool
	switch {
	case k.Arity.Fixed && open:
		ok = slots <= k.Arity.Min
	case k.Arity.Fixed:
		ok = slots == k.Arity.Min
	default:
		ok = open || slots >= k.Arity.Min
	}
	if !ok {
		return Operation{}, fmt.Errorf("%w: %s takes %s operands, got %d", ErrArity, k.Name, k.Arity, slots)
	}

	return Operation{Kind: k, Operands: slices.Clone(operands)}, nil
}

// MustNew is like New but panics on error.
// Use only in tests or when inputs are known to be valid.
func (k *OperationKind) MustNew(operands ...Expression) Operation {
	op, err := k.New(operands...)
	if err != nil {
		panic(err)
	}
	return op
}

// Registry holds operation kinds by name. Immutable after NewRegistry.
type Registry struct {
	kinds map[string]*OperationKind
}

// NewRegistry builds a registry, rejecting empty and duplicate names.
func NewRegistry(kinds ...*OperationKind) (*Registry, error) {
	r := &Registry{kinds: make(map[string]*OperationKind, len(kinds))}
	for _, k := range kinds {
		if k == nil || strings.TrimSpace(k.Name) == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidKind)
		}
		if k.Arity.Min < 0 {
			return nil, fmt.Errorf("%w: %s has negative arity", ErrInvalidKind, k.Name)
		}
		if _, exists := r.kinds[k.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKind, k.Name)
		}
		r.kinds[k.Name] = k
	}
	return r, nil
}

// Lookup returns the kind registered under name.
func (r *Registry) Lookup(name string) (*OperationKind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Kinds returns all registered kinds sorted by name.
func (r *Registry) Kinds() []*OperationKind {
	kinds := make([]*OperationKind, 0, len(r.kinds))
	for _, k := range r.kinds {
		kinds = append(kinds, k)
	}
	slices.SortFunc(kinds, func(a, b *OperationKind) int {
		return strings.Compare(a.Name, b.Name)
	})
	return kinds
}

// Len returns the number of registered kinds.
func (r *Registry) Len() int { return len(r.kinds) }
