package constraint

import (
	"fmt"
	"slices"
	"strings"
)

// Constraint is a sealed interface over *Atomic and *Combined.
// A nil Constraint is the absent constraint.
type Constraint interface {
	// String renders the constraint by name. Combined constraints render
	// their member names sorted, joined by " & ".
	String() string

	// atoms returns the atomic members, sorted by ID. Sealed.
	atoms() []*Atomic
}

// Binding is the value bound to one variable name: a single term for
// exact-width variables, or a run of terms for sequence variables.
// Terms are canonical renderings of the bound expressions.
type Binding struct {
	Terms    []string
	Sequence bool
}

// Single binds one term.
func Single(term string) Binding {
	return Binding{Terms: []string{term}}
}

// Sequence binds a run of zero or more terms.
func Sequence(terms ...string) Binding {
	return Binding{Terms: terms, Sequence: true}
}

// Substitution maps variable names to their bindings.
type Substitution map[string]Binding

// Predicate decides whether a substitution satisfies a constraint.
type Predicate func(Substitution) (bool, error)

// Atomic is a single predicate with a stable identity token.
// Two atomics are equal iff their IDs are equal.
type Atomic struct {
	id        string
	name      string
	vars      []string
	predicate Predicate
}

// New creates an atomic constraint with an identity token taken from gen.
// vars lists the variable names the predicate reads; pred may be nil for
// opaque constraints that are only ever combined.
func New(gen IDGenerator, name string, vars []string, pred Predicate) *Atomic {
	return &Atomic{
		id:        gen.Generate(),
		name:      name,
		vars:      slices.Clone(vars),
		predicate: pred,
	}
}

// NewAtomic creates an atomic constraint with a UUIDv7 identity token.
func NewAtomic(name string, vars []string, pred Predicate) *Atomic {
	return New(UUIDv7Generator{}, name, vars, pred)
}

// ID returns the identity token.
func (a *Atomic) ID() string { return a.id }

// Name returns the display name. Falls back to the ID when unnamed.
func (a *Atomic) Name() string {
	if a.name == "" {
		return a.id
	}
	return a.name
}

// Vars returns the variable names the predicate reads.
func (a *Atomic) Vars() []string { return slices.Clone(a.vars) }

// String implements Constraint.
func (a *Atomic) String() string {
	if a == nil {
		return ""
	}
	return a.Name()
}

func (a *Atomic) atoms() []*Atomic {
	if a == nil {
		return nil
	}
	return []*Atomic{a}
}

// Combined is the logical AND of two or more distinct atomic constraints.
// Only Combine constructs it; members are kept sorted by ID.
type Combined struct {
	members []*Atomic
}

// Members returns the atomic members sorted by ID.
func (c *Combined) Members() []*Atomic {
	if c == nil {
		return nil
	}
	return slices.Clone(c.members)
}

// Len returns the number of distinct members.
func (c *Combined) Len() int {
	if c == nil {
		return 0
	}
	return len(c.members)
}

// String implements Constraint.
func (c *Combined) String() string {
	return strings.Join(Names(c), " & ")
}

func (c *Combined) atoms() []*Atomic {
	if c == nil {
		return nil
	}
	return c.members
}

// Combine consolidates constraints into their conjunction.
//
// Absent (nil) entries are dropped, Combined entries are flattened into their
// atomics, and atomics are deduplicated by ID. An empty result is nil, a
// single atomic is returned as is, anything larger becomes a *Combined.
// The result does not depend on argument order or on how calls are nested.
func Combine(cs ...Constraint) Constraint {
	byID := make(map[string]*Atomic)
	for _, c := range cs {
		if c == nil {
			continue
		}
		for _, a := range c.atoms() {
			byID[a.id] = a
		}
	}

	switch len(byID) {
	case 0:
		return nil
	case 1:
		for _, a := range byID {
			return a
		}
	}

	members := make([]*Atomic, 0, len(byID))
	for _, a := range byID {
		members = append(members, a)
	}
	slices.SortFunc(members, func(x, y *Atomic) int {
		return strings.Compare(x.id, y.id)
	})
	return &Combined{members: members}
}

// Atoms returns the distinct atomic members of c sorted by ID.
// Absent yields nil.
func Atoms(c Constraint) []*Atomic {
	if c == nil {
		return nil
	}
	return slices.Clone(c.atoms())
}

// Key returns the identity key of c: member IDs joined by "&".
// Absent yields "".
func Key(c Constraint) string {
	atoms := Atoms(c)
	ids := make([]string, len(atoms))
	for i, a := range atoms {
		ids[i] = a.id
	}
	return strings.Join(ids, "&")
}

// Names returns the display names of c's members, sorted.
func Names(c Constraint) []string {
	atoms := Atoms(c)
	names := make([]string, len(atoms))
	for i, a := range atoms {
		names[i] = a.Name()
	}
	slices.Sort(names)
	return names
}

// Equal reports whether a and b denote the same set of atomic constraints.
func Equal(a, b Constraint) bool {
	return Key(a) == Key(b)
}

// Compare orders constraints by display names, then by identity.
// Absent sorts first.
func Compare(a, b Constraint) int {
	if c := slices.Compare(Names(a), Names(b)); c != 0 {
		return c
	}
	return strings.Compare(Key(a), Key(b))
}

// Check evaluates c against s. Absent is always satisfied; a combined
// constraint is satisfied iff every member is. Members without a predicate
// are treated as satisfied.
func Check(c Constraint, s Substitution) (bool, error) {
	for _, a := range Atoms(c) {
		if a.predicate == nil {
			continue
		}
		ok, err := a.predicate(s)
		if err != nil {
			return false, fmt.Errorf("constraint %s: %w", a.Name(), err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
