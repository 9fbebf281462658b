package partition

import (
	"fmt"
	"slices"

	"github.com/roach88/termite/internal/constraint"
	"github.com/roach88/termite/internal/expr"
	"github.com/roach88/termite/internal/multiset"
)

// AnonymousLabel is how the anonymous placeholder key is rendered in
// summaries. expr.Validate keeps it out of variable names.
const AnonymousLabel = expr.AnonymousLabel

// Summary is a plain snapshot of a Partition.
//
// Constraints appear by name, never by identity token, so summaries of the
// same pattern are byte-identical across processes.
type Summary struct {
	Owner                     string            `json:"owner" yaml:"owner"`
	Constant                  []string          `json:"constant" yaml:"constant"`
	Syntactic                 []string          `json:"syntactic" yaml:"syntactic"`
	Rest                      []string          `json:"rest" yaml:"rest"`
	Fixed                     []VariableSummary `json:"fixed" yaml:"fixed"`
	Sequence                  []VariableSummary `json:"sequence" yaml:"sequence"`
	FixedVariableLength       int               `json:"fixed_variable_length" yaml:"fixed_variable_length"`
	SequenceVariableMinLength int               `json:"sequence_variable_min_length" yaml:"sequence_variable_min_length"`
}

// VariableSummary describes one aggregated variable.
type VariableSummary struct {
	Name         string   `json:"name" yaml:"name"`
	Multiplicity int      `json:"multiplicity" yaml:"multiplicity"`
	Occurrences  int      `json:"occurrences" yaml:"occurrences"`
	MinCount     int      `json:"min_count" yaml:"min_count"`
	Constraints  []string `json:"constraints" yaml:"constraints"`
}

// Summary returns the snapshot of p. Variables are sorted by name.
func (p *Partition) Summary() Summary {
	s := Summary{
		Constant:                  render(p.constant),
		Syntactic:                 render(p.syntactic),
		Rest:                      render(p.rest),
		Fixed:                     summarize(p.fixedVariables, p.fixedInfos),
		Sequence:                  summarize(p.sequenceVariables, p.sequenceInfos),
		FixedVariableLength:       p.fixedLength,
		SequenceVariableMinLength: p.sequenceMinLength,
	}
	if p.owner != nil {
		s.Owner = p.owner.Name
	}
	return s
}

func render(exprs []expr.Expression) []string {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		out[i] = e.String()
	}
	return out
}

func summarize(counts *multiset.Multiset[string], infos map[string]VariableInfo) []VariableSummary {
	out := make([]VariableSummary, 0, len(infos))
	for _, name := range multiset.SortedKeys(counts) {
		info := infos[name]
		label := name
		if name == expr.AnonymousName {
			label = AnonymousLabel
		}
		out = append(out, VariableSummary{
			Name:         label,
			Multiplicity: counts.Count(name),
			Occurrences:  info.Occurrences,
			MinCount:     info.MinCount,
			Constraints:  constraint.Names(info.Constraint),
		})
	}
	return out
}

// Variable returns the summary for the named variable in the given list.
// The anonymous placeholder is looked up by AnonymousLabel.
func Variable(vars []VariableSummary, name string) (VariableSummary, bool) {
	i := slices.IndexFunc(vars, func(v VariableSummary) bool { return v.Name == name })
	if i < 0 {
		return VariableSummary{}, false
	}
	return vars[i], true
}

// Canonical returns the RFC 8785 canonical JSON of s.
func (s Summary) Canonical() ([]byte, error) {
	return expr.MarshalValue(s.CanonicalValue())
}

// Hash returns the domain-separated content hash of s.
func (s Summary) Hash() (string, error) {
	data, err := s.Canonical()
	if err != nil {
		return "", fmt.Errorf("canonical summary: %w", err)
	}
	return expr.HashWithDomain(expr.DomainPartition, data), nil
}

// CanonicalValue returns s as the generic map form accepted by
// expr.MarshalValue, for embedding in larger canonical documents.
func (s Summary) CanonicalValue() map[string]any {
	return map[string]any{
		"owner":                        s.Owner,
		"constant":                     stringsValue(s.Constant),
		"syntactic":                    stringsValue(s.Syntactic),
		"rest":                         stringsValue(s.Rest),
		"fixed":                        variablesValue(s.Fixed),
		"sequence":                     variablesValue(s.Sequence),
		"fixed_variable_length":        s.FixedVariableLength,
		"sequence_variable_min_length": s.SequenceVariableMinLength,
	}
}

func stringsValue(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func variablesValue(vs []VariableSummary) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = map[string]any{
			"name":         v.Name,
			"multiplicity": v.Multiplicity,
			"occurrences":  v.Occurrences,
			"min_count":    v.MinCount,
			"constraints":  stringsValue(v.Constraints),
		}
	}
	return out
}
