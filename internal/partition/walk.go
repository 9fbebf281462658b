package partition

import (
	"slices"

	"github.com/roach88/termite/internal/expr"
)

// Site is one commutative operation inside a pattern together with its
// partition. Path lists operand indexes from the pattern root.
type Site struct {
	Path      []int
	Operation expr.Operation
	Partition *Partition
}

// All partitions every commutative operation occurring in pattern, in
// pre-order. The pattern is validated first; the first error stops the walk.
func All(pattern expr.Expression) ([]Site, error) {
	if err := expr.Validate(pattern); err != nil {
		return nil, NewMalformedPatternError(-1, err)
	}

	var sites []Site
	var walk func(e expr.Expression, path []int) error
	walk = func(e expr.Expression, path []int) error {
		op, ok := e.(expr.Operation)
		if !ok {
			return nil
		}
		if op.Kind.Commutative {
			p, err := FromOperation(op)
			if err != nil {
				return err
			}
			sites = append(sites, Site{Path: slices.Clone(path), Operation: op, Partition: p})
		}
		for i, child := range op.Operands {
			if err := walk(child, append(path, i)); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(pattern, nil); err != nil {
		return nil, err
	}
	return sites, nil
}
