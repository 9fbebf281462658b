package partition

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/termite/internal/constraint"
	"github.com/roach88/termite/internal/expr"
	"github.com/roach88/termite/internal/multiset"
)

// VariableInfo aggregates every occurrence of one variable name within a
// single category.
type VariableInfo struct {
	// MinCount is the width of one occurrence: the declared width for fixed
	// variables, the minimum width (0 or 1) for sequence variables.
	MinCount int

	// Constraint is the conjunction of all occurrence constraints, or nil.
	Constraint constraint.Constraint

	// Occurrences is the number of operands that named this variable.
	Occurrences int
}

// Partition is the classified operand list of one commutative operation
// pattern. It is immutable; accessors return copies.
type Partition struct {
	owner *expr.OperationKind

	constant  []expr.Expression
	syntactic []expr.Expression
	rest      []expr.Expression

	fixedVariables    *multiset.Multiset[string]
	sequenceVariables *multiset.Multiset[string]

	fixedInfos    map[string]VariableInfo
	sequenceInfos map[string]VariableInfo

	fixedLength       int
	sequenceMinLength int
	operandCount      int
}

// New partitions operands of a commutative operation pattern.
//
// owner may be nil when the caller has no operation at hand; a non-nil owner
// must be commutative. The operand slice is read, never modified.
//
// Returns a *Error with ErrCodeMalformedPattern for ill-formed operands and
// ErrCodeWidthMismatch when one variable name occurs with differing widths.
func New(owner *expr.OperationKind, operands ...expr.Expression) (*Partition, error) {
	if owner != nil && !owner.Commutative {
		return nil, &Error{
			Code:    ErrCodeMalformedPattern,
			Message: fmt.Sprintf("operation %s is not commutative", owner.Name),
			Index:   -1,
		}
	}

	p := &Partition{
		owner:             owner,
		fixedVariables:    multiset.New[string](),
		sequenceVariables: multiset.New[string](),
		fixedInfos:        make(map[string]VariableInfo),
		sequenceInfos:     make(map[string]VariableInfo),
		operandCount:      len(operands),
	}

	for i, operand := range operands {
		if err := expr.Validate(operand); err != nil {
			return nil, NewMalformedPatternError(i, err)
		}

		switch e := operand.(type) {
		case expr.Wildcard:
			if err := p.addPlaceholder(i, expr.AnonymousName, e, nil); err != nil {
				return nil, err
			}
		case expr.Variable:
			if err := p.addPlaceholder(i, e.Name, e.Wildcard, e.Constraint); err != nil {
				return nil, err
			}
		case expr.Symbol:
			p.constant = append(p.constant, e)
		case expr.Operation:
			switch {
			case !expr.ContainsVariable(e):
				p.constant = append(p.constant, e)
			case structural(e):
				p.syntactic = append(p.syntactic, e)
			default:
				p.rest = append(p.rest, e)
			}
		}
	}

	for _, info := range p.fixedInfos {
		p.fixedLength += info.MinCount
	}
	for _, info := range p.sequenceInfos {
		p.sequenceMinLength += info.MinCount
	}

	expr.Sort(p.constant)
	expr.Sort(p.syntactic)
	expr.Sort(p.rest)

	return p, nil
}

// FromOperation partitions the operands of op with op's kind as owner.
func FromOperation(op expr.Operation) (*Partition, error) {
	return New(op.Kind, op.Operands...)
}

// addPlaceholder records one occurrence of a named or anonymous placeholder.
// Fixed occurrences add their width to the name's multiplicity, sequence
// occurrences add one.
func (p *Partition) addPlaceholder(index int, name string, w expr.Wildcard, c constraint.Constraint) error {
	if w.FixedSize {
		return addOccurrence(p.fixedVariables, p.fixedInfos, index, name, w.MinCount, w.MinCount, c, "fixed")
	}
	return addOccurrence(p.sequenceVariables, p.sequenceInfos, index, name, w.MinCount, 1, c, "sequence")
}

func addOccurrence(
	counts *multiset.Multiset[string],
	infos map[string]VariableInfo,
	index int,
	name string,
	width, weight int,
	c constraint.Constraint,
	category string,
) error {
	info, seen := infos[name]
	switch {
	case !seen:
		info.MinCount = width
	case info.MinCount == width:
	case name == expr.AnonymousName:
		// Anonymous placeholders are never the same logical variable; keep
		// the smallest width so the aggregate length stays a lower bound.
		info.MinCount = min(info.MinCount, width)
	default:
		return NewWidthMismatchError(name, index, info.MinCount, width, category)
	}

	info.Constraint = constraint.Combine(info.Constraint, c)
	info.Occurrences++
	infos[name] = info
	counts.Add(name, weight)
	return nil
}

// structural reports whether op can be matched by plain structural
// recursion: neither op nor any non-ground operation below it is commutative
// or associative, and every placeholder below it has a fixed width.
func structural(op expr.Operation) bool {
	if op.Kind.Commutative || op.Kind.Associative {
		return false
	}
	for _, operand := range op.Operands {
		switch e := operand.(type) {
		case expr.Wildcard:
			if !e.FixedSize {
				return false
			}
		case expr.Variable:
			if !e.Wildcard.FixedSize {
				return false
			}
		case expr.Operation:
			if expr.ContainsVariable(e) && !structural(e) {
				return false
			}
		}
	}
	return true
}

// Owner returns the owning operation kind, or nil.
func (p *Partition) Owner() *expr.OperationKind { return p.owner }

// Constant returns the ground operands, sorted.
func (p *Partition) Constant() []expr.Expression { return slices.Clone(p.constant) }

// Syntactic returns the operations containing a placeholder that match by
// structural recursion alone, sorted.
func (p *Partition) Syntactic() []expr.Expression { return slices.Clone(p.syntactic) }

// Rest returns the remaining operations containing a placeholder, sorted.
// These need their own combinatorial matching.
func (p *Partition) Rest() []expr.Expression { return slices.Clone(p.rest) }

// FixedVariables returns the fixed-variable multiset. Each occurrence adds
// its width to the name's multiplicity.
func (p *Partition) FixedVariables() *multiset.Multiset[string] { return p.fixedVariables.Clone() }

// SequenceVariables returns the sequence-variable multiset. Each occurrence
// adds one to the name's multiplicity.
func (p *Partition) SequenceVariables() *multiset.Multiset[string] {
	return p.sequenceVariables.Clone()
}

// FixedVariableInfos returns name -> info for fixed variables.
func (p *Partition) FixedVariableInfos() map[string]VariableInfo { return maps.Clone(p.fixedInfos) }

// SequenceVariableInfos returns name -> info for sequence variables.
func (p *Partition) SequenceVariableInfos() map[string]VariableInfo {
	return maps.Clone(p.sequenceInfos)
}

// FixedVariableInfo returns the info for one fixed variable name.
func (p *Partition) FixedVariableInfo(name string) (VariableInfo, bool) {
	info, ok := p.fixedInfos[name]
	return info, ok
}

// SequenceVariableInfo returns the info for one sequence variable name.
func (p *Partition) SequenceVariableInfo(name string) (VariableInfo, bool) {
	info, ok := p.sequenceInfos[name]
	return info, ok
}

// FixedVariableLength is the sum of MinCount over distinct fixed variables.
// Anonymous placeholders of differing widths count once at the smallest
// width, so the result is a lower bound whenever they are mixed.
func (p *Partition) FixedVariableLength() int { return p.fixedLength }

// SequenceVariableMinLength is the sum of MinCount over distinct sequence
// variables. The anonymous key counts once at its smallest width.
func (p *Partition) SequenceVariableMinLength() int { return p.sequenceMinLength }

// OperandCount is the length of the partitioned operand list.
func (p *Partition) OperandCount() int { return p.operandCount }

// ClassifiedCount is the number of operands accounted for by the five
// categories. It always equals OperandCount.
func (p *Partition) ClassifiedCount() int {
	n := len(p.constant) + len(p.syntactic) + len(p.rest)
	for _, info := range p.fixedInfos {
		n += info.Occurrences
	}
	for _, info := range p.sequenceInfos {
		n += info.Occurrences
	}
	return n
}
