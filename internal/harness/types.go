package harness

import (
	"github.com/roach88/studyseq/internal/balance"
	"github.com/roach88/studyseq/internal/ir"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// PopulationID is the stored population's content hash. Empty when
	// generation failed.
	PopulationID string `json:"population_id,omitempty"`

	// GenerationError holds the generator's error, if any. Only an
	// expect_error assertion turns it into a pass.
	GenerationError error `json:"-"`

	// Sequences is the generated population, read back from the store.
	Sequences []*ir.Sequence `json:"-"`

	// Report is the balance analysis of Sequences.
	Report *balance.Report `json:"-"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
