package harness

import "github.com/roach88/kazt/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation holds.
	Pass bool `json:"pass"`

	// Validation is the graph validator's verdict on the scenario blocks.
	Validation ir.ValidationResult `json:"validation"`

	// Report is the simulation report the expectations were checked against.
	Report ir.SimulationReport `json:"report"`

	// Errors contains failed expectation messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
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
