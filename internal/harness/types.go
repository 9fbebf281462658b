package harness

import "github.com/roach88/termite/internal/partition"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Pattern is the rendered canonical pattern that was partitioned.
	Pattern string `json:"pattern"`

	// Path is the operand path of the partitioned operation.
	Path []int `json:"path,omitempty"`

	// Summary is the partition snapshot, nil when partitioning failed.
	Summary *partition.Summary `json:"summary,omitempty"`

	// ErrorCode is the partition error code, empty on success.
	ErrorCode string `json:"error_code,omitempty"`

	// Errors contains expectation failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
