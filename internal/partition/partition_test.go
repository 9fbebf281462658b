package partition

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termite/internal/constraint"
	"github.com/roach88/termite/internal/expr"
	"github.com/roach88/termite/internal/testutil"
)

var (
	F    = testutil.F
	F2   = testutil.F2
	FA   = testutil.FA
	FC   = testutil.FC
	FC2  = testutil.FC2
	FAC1 = testutil.FAC1

	A = testutil.A
	B = testutil.B
	C = testutil.C

	Any     = testutil.Any
	AnyPlus = testutil.AnyPlus
	X_      = testutil.X_
	Y_      = testutil.Y_
	X__     = testutil.X__
	Y__     = testutil.Y__
	X___    = testutil.X___
	Y___    = testutil.Y___
	X2      = testutil.X2
)

func minCounts(infos map[string]VariableInfo) map[string]int {
	out := make(map[string]int, len(infos))
	for name, info := range infos {
		out[name] = info.MinCount
	}
	return out
}

func TestNew_Categories(t *testing.T) {
	anon := expr.AnonymousName

	tests := []struct {
		name      string
		operands  []expr.Expression
		constant  []string
		syntactic []string
		rest      []string
		sequence  map[string]int
		fixed     map[string]int
	}{
		{"empty", nil, nil, nil, nil, nil, nil},
		{"one symbol", []expr.Expression{A}, []string{"a"}, nil, nil, nil, nil},
		{"two symbols", []expr.Expression{A, B}, []string{"a", "b"}, nil, nil, nil, nil},
		{"dot variable", []expr.Expression{X_}, nil, nil, nil, nil, map[string]int{"x": 1}},
		{"two dot variables", []expr.Expression{X_, Y_}, nil, nil, nil, nil, map[string]int{"x": 1, "y": 1}},
		{"fixed width two", []expr.Expression{X2}, nil, nil, nil, nil, map[string]int{"x": 2}},
		{"syntactic", []expr.Expression{F.MustNew(X_)}, nil, []string{"f(x_)"}, nil, nil, nil},
		{"two syntactic", []expr.Expression{F.MustNew(X_), F.MustNew(Y_)}, nil, []string{"f(x_)", "f(y_)"}, nil, nil, nil},
		{"ground operation", []expr.Expression{F.MustNew(A)}, []string{"f(a)"}, nil, nil, nil, nil},
		{"sequence inside non-commutative", []expr.Expression{F.MustNew(X__)}, nil, nil, []string{"f(x__)"}, nil, nil},
		{"two ground operations", []expr.Expression{F.MustNew(A), F.MustNew(B)}, []string{"f(a)", "f(b)"}, nil, nil, nil, nil},
		{"plus variable", []expr.Expression{X__}, nil, nil, nil, map[string]int{"x": 1}, nil},
		{"star variable", []expr.Expression{X___}, nil, nil, nil, map[string]int{"x": 0}, nil},
		{"plus and star", []expr.Expression{X__, Y___}, nil, nil, nil, map[string]int{"x": 1, "y": 0}, nil},
		{"commutative rest", []expr.Expression{FC.MustNew(X_)}, nil, nil, []string{"fc(x_)"}, nil, nil},
		{"commutative rest with symbol", []expr.Expression{FC.MustNew(X_, A)}, nil, nil, []string{"fc(x_, a)"}, nil, nil},
		{"two commutative rest", []expr.Expression{FC.MustNew(X_, A), FC.MustNew(X_, B)}, nil, nil, []string{"fc(x_, a)", "fc(x_, b)"}, nil, nil},
		{"ground commutative", []expr.Expression{FC.MustNew(A)}, []string{"fc(a)"}, nil, nil, nil, nil},
		{"two ground commutative", []expr.Expression{FC.MustNew(A), FC.MustNew(B)}, []string{"fc(a)", "fc(b)"}, nil, nil, nil, nil},
		{
			"every category",
			[]expr.Expression{A, X_, X__, F.MustNew(X_), FC.MustNew(X_)},
			[]string{"a"}, []string{"f(x_)"}, []string{"fc(x_)"},
			map[string]int{"x": 1}, map[string]int{"x": 1},
		},
		{"anonymous plus", []expr.Expression{AnyPlus}, nil, nil, nil, map[string]int{anon: 1}, nil},
		{"anonymous dot", []expr.Expression{Any}, nil, nil, nil, nil, map[string]int{anon: 1}},
		{"commutative below non-commutative", []expr.Expression{F.MustNew(FC.MustNew(X_))}, nil, nil, []string{"f(fc(x_))"}, nil, nil},
		{"associative", []expr.Expression{FA.MustNew(X_)}, nil, nil, []string{"fa(x_)"}, nil, nil},
		{"anonymous plus inside non-commutative", []expr.Expression{F.MustNew(AnyPlus)}, nil, nil, []string{"f(__)"}, nil, nil},
		{"nested non-commutative", []expr.Expression{F.MustNew(F2.MustNew(X_), A)}, nil, []string{"f(f2(x_), a)"}, nil, nil, nil},
		{"ground commutative below non-commutative", []expr.Expression{F.MustNew(X_, FC.MustNew(A))}, nil, []string{"f(x_, fc(a))"}, nil, nil, nil},
		{"fixed width inside non-commutative", []expr.Expression{F.MustNew(X2)}, nil, []string{"f(x_2)"}, nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(nil, tt.operands...)
			require.NoError(t, err)

			if tt.sequence == nil {
				tt.sequence = map[string]int{}
			}
			if tt.fixed == nil {
				tt.fixed = map[string]int{}
			}

			assert.Equal(t, len(tt.constant), len(p.Constant()))
			assert.Equal(t, len(tt.syntactic), len(p.Syntactic()))
			assert.Equal(t, len(tt.rest), len(p.Rest()))
			if tt.constant != nil {
				assert.Equal(t, tt.constant, render(p.Constant()))
			}
			if tt.syntactic != nil {
				assert.Equal(t, tt.syntactic, render(p.Syntactic()))
			}
			if tt.rest != nil {
				assert.Equal(t, tt.rest, render(p.Rest()))
			}

			assert.Equal(t, tt.sequence, minCounts(p.SequenceVariableInfos()))
			assert.Equal(t, tt.fixed, minCounts(p.FixedVariableInfos()))
			assert.Equal(t, len(tt.sequence), p.SequenceVariables().Distinct())
			assert.Equal(t, len(tt.fixed), p.FixedVariables().Distinct())

			wantSeq, wantFixed := 0, 0
			for _, n := range tt.sequence {
				wantSeq += n
			}
			for _, n := range tt.fixed {
				wantFixed += n
			}
			assert.Equal(t, wantSeq, p.SequenceVariableMinLength())
			assert.Equal(t, wantFixed, p.FixedVariableLength())

			assert.Equal(t, len(tt.operands), p.ClassifiedCount())
		})
	}
}

func TestNew_Multiplicity(t *testing.T) {
	p, err := New(FC, X2, X2, Y_, Y_, X__, X__)
	require.NoError(t, err)

	fixed := p.FixedVariables()
	assert.Equal(t, 4, fixed.Count("x"), "fixed occurrences add their width")
	assert.Equal(t, 2, fixed.Count("y"))
	assert.Equal(t, 6, fixed.Len())
	assert.Equal(t, 2, fixed.Distinct())

	seq := p.SequenceVariables()
	assert.Equal(t, 2, seq.Count("x"), "sequence occurrences add one")

	info, ok := p.FixedVariableInfo("x")
	require.True(t, ok)
	assert.Equal(t, 2, info.MinCount)
	assert.Equal(t, 2, info.Occurrences)
	assert.Equal(t, 3, p.FixedVariableLength())
	assert.Equal(t, 1, p.SequenceVariableMinLength())
}

func TestNew_MergesConstraints(t *testing.T) {
	gen := constraint.NewFixedGenerator("c1", "c2")
	c1 := constraint.New(gen, "eq", nil, nil)
	c2 := constraint.New(gen, "neq", nil, nil)

	tests := []struct {
		name     string
		given    []constraint.Constraint
		expected constraint.Constraint
	}{
		{"absent", []constraint.Constraint{nil}, nil},
		{"single", []constraint.Constraint{c1}, c1},
		{"repeated", []constraint.Constraint{c1, c1}, c1},
		{"absent first", []constraint.Constraint{nil, c1}, c1},
		{"absent last", []constraint.Constraint{c1, nil}, c1},
		{"two absent first", []constraint.Constraint{nil, nil, c1}, c1},
		{"absent around", []constraint.Constraint{nil, c1, nil}, c1},
		{"two absent last", []constraint.Constraint{c1, nil, nil}, c1},
		{"distinct", []constraint.Constraint{c1, c2}, constraint.Combine(c1, c2)},
		{"distinct absent first", []constraint.Constraint{nil, c1, c2}, constraint.Combine(c1, c2)},
		{"distinct absent between", []constraint.Constraint{c1, nil, c2}, constraint.Combine(c1, c2)},
		{"distinct absent last", []constraint.Constraint{c1, c2, nil}, constraint.Combine(c1, c2)},
	}

	categories := []struct {
		name     string
		wildcard expr.Wildcard
		infos    func(*Partition) map[string]VariableInfo
		count    func(*Partition) int
		distinct func(*Partition) int
	}{
		{
			"fixed", expr.Dot(),
			(*Partition).FixedVariableInfos,
			func(p *Partition) int { return p.FixedVariables().Len() },
			func(p *Partition) int { return p.FixedVariables().Distinct() },
		},
		{
			"sequence", expr.Plus(),
			(*Partition).SequenceVariableInfos,
			func(p *Partition) int { return p.SequenceVariables().Len() },
			func(p *Partition) int { return p.SequenceVariables().Distinct() },
		},
	}

	for _, cat := range categories {
		for _, tt := range tests {
			t.Run(cat.name+"/"+tt.name, func(t *testing.T) {
				operands := make([]expr.Expression, len(tt.given))
				for i, c := range tt.given {
					operands[i] = expr.NewVariable("x", cat.wildcard, c)
				}

				p, err := New(nil, operands...)
				require.NoError(t, err)

				assert.Equal(t, 1, cat.distinct(p))
				assert.Equal(t, len(tt.given), cat.count(p))

				info, ok := cat.infos(p)["x"]
				require.True(t, ok)
				assert.Equal(t, 1, info.MinCount)
				assert.True(t, constraint.Equal(tt.expected, info.Constraint),
					"got %v, want %v", info.Constraint, tt.expected)
			})
		}
	}
}

func TestNew_Scenarios(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		p, err := New(FC)
		require.NoError(t, err)
		assert.Empty(t, p.Constant())
		assert.Empty(t, p.Syntactic())
		assert.Empty(t, p.Rest())
		assert.Zero(t, p.FixedVariables().Len())
		assert.Zero(t, p.SequenceVariables().Len())
		assert.Zero(t, p.FixedVariableLength())
		assert.Zero(t, p.SequenceVariableMinLength())
	})

	t.Run("symbols are constant", func(t *testing.T) {
		p, err := New(FC, B, A)
		require.NoError(t, err)
		assert.Equal(t, []expr.Expression{A, B}, p.Constant())
		assert.Empty(t, p.Syntactic())
		assert.Empty(t, p.Rest())
	})

	t.Run("exactly one variable", func(t *testing.T) {
		p, err := New(FC, X_)
		require.NoError(t, err)
		assert.Equal(t, 1, p.FixedVariables().Count("x"))
		assert.Equal(t, 1, p.FixedVariableInfos()["x"].MinCount)
		assert.Equal(t, 1, p.FixedVariableLength())
	})

	t.Run("plus and star", func(t *testing.T) {
		p, err := New(FC, X__, Y___)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"x": 1, "y": 0}, minCounts(p.SequenceVariableInfos()))
		assert.Equal(t, 1, p.SequenceVariableMinLength())
	})

	t.Run("commutative sub-pattern is rest", func(t *testing.T) {
		p, err := New(FC, FC2.MustNew(X_))
		require.NoError(t, err)
		assert.Equal(t, []string{"fc2(x_)"}, render(p.Rest()))
		assert.Empty(t, p.Syntactic())
	})

	t.Run("non-commutative sub-pattern is syntactic", func(t *testing.T) {
		p, err := New(FC, F.MustNew(X_))
		require.NoError(t, err)
		assert.Equal(t, []string{"f(x_)"}, render(p.Syntactic()))
		assert.Empty(t, p.Rest())
	})

	t.Run("repeated variable merges constraints", func(t *testing.T) {
		gen := constraint.NewFixedGenerator("id-1", "id-2")
		c1 := constraint.New(gen, "c1", nil, nil)
		c2 := constraint.New(gen, "c2", nil, nil)

		p, err := New(FC, X_.With(c1), X_.With(c2))
		require.NoError(t, err)

		assert.Equal(t, 2, p.FixedVariables().Count("x"))
		merged := p.FixedVariableInfos()["x"].Constraint
		require.IsType(t, &constraint.Combined{}, merged)
		assert.ElementsMatch(t, []*constraint.Atomic{c1, c2}, constraint.Atoms(merged))
	})
}

func TestNew_FixedAndSequenceShareName(t *testing.T) {
	p, err := New(FC, X_, X__)
	require.NoError(t, err)

	assert.True(t, p.FixedVariables().Contains("x"))
	assert.True(t, p.SequenceVariables().Contains("x"))
}

func TestNew_WidthMismatch(t *testing.T) {
	tests := []struct {
		name     string
		operands []expr.Expression
		index    int
		category string
	}{
		{"dot then fixed two", []expr.Expression{X_, X2}, 1, "fixed"},
		{"fixed two then dot", []expr.Expression{A, X2, X_}, 2, "fixed"},
		{"plus then star", []expr.Expression{X__, B, X___}, 2, "sequence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(FC, tt.operands...)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, IsWidthMismatch(err))
			assert.False(t, IsMalformedPattern(err))

			var pe *Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "x", pe.Name)
			assert.Equal(t, tt.index, pe.Index)
			assert.Equal(t, tt.category, pe.Details["category"])
		})
	}
}

func TestNew_AnonymousWidthsNeverConflict(t *testing.T) {
	p, err := New(FC, expr.Fixed(3), Any, expr.Fixed(2))
	require.NoError(t, err)

	info, ok := p.FixedVariableInfo(expr.AnonymousName)
	require.True(t, ok)
	assert.Equal(t, 1, info.MinCount)
	assert.Equal(t, 3, info.Occurrences)
	assert.Equal(t, 6, p.FixedVariables().Count(expr.AnonymousName))
	assert.Equal(t, 1, p.FixedVariableLength(), "anonymous length is the smallest width")

	mixed, err := New(FC, expr.Fixed(3), expr.Fixed(2), expr.Plus(), expr.Star())
	require.NoError(t, err)
	assert.Equal(t, 2, mixed.FixedVariableLength())
	assert.Equal(t, 5, mixed.FixedVariables().Count(expr.AnonymousName))
	assert.Equal(t, 0, mixed.SequenceVariableMinLength())
	assert.Equal(t, 2, mixed.SequenceVariables().Count(expr.AnonymousName))
}

func TestNew_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		owner    *expr.OperationKind
		operands []expr.Expression
	}{
		{"nil operand", FC, []expr.Expression{A, nil}},
		{"zero width fixed variable", FC, []expr.Expression{expr.FixedVar("x", 0)}},
		{"negative minimum", FC, []expr.Expression{expr.Wildcard{MinCount: -1}}},
		{"unnamed variable", FC, []expr.Expression{expr.NewVariable("", expr.Dot(), nil)}},
		{"variable named like the anonymous label", FC, []expr.Expression{Any, expr.DotVar(AnonymousLabel)}},
		{"operation without kind", FC, []expr.Expression{expr.Operation{Operands: []expr.Expression{A}}}},
		{"nested malformed", FC, []expr.Expression{expr.Operation{Kind: F, Operands: []expr.Expression{expr.FixedVar("y", 0)}}}},
		{"non-commutative owner", F, []expr.Expression{A}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.owner, tt.operands...)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, IsMalformedPattern(err), "got %v", err)
		})
	}
}

func TestNew_DoesNotMutateInput(t *testing.T) {
	operands := []expr.Expression{B, X_, A}
	_, err := New(FC, operands...)
	require.NoError(t, err)

	assert.Equal(t, []expr.Expression{B, X_, A}, operands)
}

func TestPartition_AccessorsReturnCopies(t *testing.T) {
	p, err := New(FC, A, B, X_, Y__, F.MustNew(X_), FC2.MustNew(Y_))
	require.NoError(t, err)

	constant := p.Constant()
	constant[0] = C
	p.FixedVariables().Add("z", 5)
	p.SequenceVariables().Add("z", 5)
	delete(p.FixedVariableInfos(), "x")
	p.SequenceVariableInfos()["z"] = VariableInfo{MinCount: 9}
	p.Syntactic()[0] = A
	p.Rest()[0] = A

	assert.Equal(t, []string{"a", "b"}, render(p.Constant()))
	assert.Equal(t, []string{"f(x_)"}, render(p.Syntactic()))
	assert.Equal(t, []string{"fc2(y_)"}, render(p.Rest()))
	assert.False(t, p.FixedVariables().Contains("z"))
	assert.False(t, p.SequenceVariables().Contains("z"))
	assert.Contains(t, p.FixedVariableInfos(), "x")
	assert.NotContains(t, p.SequenceVariableInfos(), "z")
}

func TestNew_Deterministic(t *testing.T) {
	operands := []expr.Expression{FC2.MustNew(X_), B, X__, A, F.MustNew(Y_), Y_, F.MustNew(A)}
	shuffled := []expr.Expression{Y_, F.MustNew(A), A, F.MustNew(Y_), X__, B, FC2.MustNew(X_)}

	p1, err := New(FC, operands...)
	require.NoError(t, err)
	p2, err := New(FC, shuffled...)
	require.NoError(t, err)

	assert.Equal(t, p1.Summary(), p2.Summary())

	h1, err := p1.Summary().Hash()
	require.NoError(t, err)
	h2, err := p2.Summary().Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestNew_Concurrent(t *testing.T) {
	operands := []expr.Expression{A, X_, X_, Y__, F.MustNew(X_), FC2.MustNew(Y_, B)}

	want, err := New(FC, operands...)
	require.NoError(t, err)
	wantJSON, err := want.Summary().Canonical()
	require.NoError(t, err)

	const workers = 32
	var wg sync.WaitGroup
	results := make([][]byte, workers)
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := New(FC, operands...)
			if err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = p.Summary().Canonical()
		}()
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, string(wantJSON), string(results[i]))
	}
}

func TestFromOperation(t *testing.T) {
	p, err := FromOperation(FAC1.MustNew(A, X_, Y___))
	require.NoError(t, err)

	assert.Same(t, FAC1, p.Owner())
	assert.Equal(t, 3, p.OperandCount())
	assert.Equal(t, 3, p.ClassifiedCount())

	_, err = FromOperation(F.MustNew(A))
	assert.True(t, IsMalformedPattern(err))
}

func TestError_Format(t *testing.T) {
	err := NewWidthMismatchError("x", 3, 1, 2, "fixed")
	assert.Equal(t, "WIDTH_MISMATCH: fixed variable occurs with width 1 and 2 (variable=x, operand=3)", err.Error())

	err = &Error{Code: ErrCodeMalformedPattern, Message: "bad", Index: -1}
	assert.Equal(t, "MALFORMED_PATTERN: bad", err.Error())
}
