package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/kazt/internal/ir"
)

// AssertionError is returned when an expectation does not hold.
type AssertionError struct {
	Field    string // expect field that failed
	Expected string // human-readable expected outcome
	Actual   string // human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("expect.%s: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

// EvaluateExpectations checks every set field of expect against result and
// returns one message per failed check, in field order.
func EvaluateExpectations(result *Result, expect Expectation) []string {
	var errs []error

	v := result.Validation
	r := result.Report

	errs = append(errs, checkBool("valid", expect.Valid, v.Valid))
	errs = append(errs, checkBool("cycle_detected", expect.CycleDetected, v.CycleDetected))
	errs = append(errs, checkContains("conflicts_contain", expect.ConflictsContain, v.Conflicts)...)
	errs = append(errs, checkContains("warnings_contain", expect.WarningsContain, v.Warnings)...)
	errs = append(errs, checkInt("total_txs", expect.TotalTxs, r.TotalTxs))
	errs = append(errs, checkInt("processed", expect.Processed, r.Processed))
	errs = append(errs, checkInt("filtered", expect.Filtered, r.Filtered))
	errs = append(errs, checkOutcomes(expect.Outcomes, r)...)
	errs = append(errs, checkContains("reasons_contain", expect.ReasonsContain, reasons(r))...)

	var msgs []string
	for _, err := range errs {
		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	return msgs
}

func checkBool(field string, want *bool, got bool) error {
	if want == nil || *want == got {
		return nil
	}
	return &AssertionError{Field: field, Expected: fmt.Sprint(*want), Actual: fmt.Sprint(got)}
}

func checkInt(field string, want *int, got int) error {
	if want == nil || *want == got {
		return nil
	}
	return &AssertionError{Field: field, Expected: fmt.Sprint(*want), Actual: fmt.Sprint(got)}
}

// checkContains requires each wanted substring to appear in at least one
// of got.
func checkContains(field string, want, got []string) []error {
	var errs []error
	for _, sub := range want {
		found := slices.ContainsFunc(got, func(s string) bool {
			return strings.Contains(s, sub)
		})
		if !found {
			errs = append(errs, &AssertionError{
				Field:    field,
				Expected: fmt.Sprintf("an entry containing %q", sub),
				Actual:   fmt.Sprintf("%q", got),
			})
		}
	}
	return errs
}

// checkOutcomes compares exact counts for each listed outcome, in the
// order of ir.Outcomes.
func checkOutcomes(want map[string]int, r ir.SimulationReport) []error {
	if len(want) == 0 {
		return nil
	}
	counts := r.CountOutcomes()

	var errs []error
	for _, o := range ir.Outcomes {
		n, ok := want[string(o)]
		if !ok || counts[o] == n {
			continue
		}
		errs = append(errs, &AssertionError{
			Field:    "outcomes." + string(o),
			Expected: fmt.Sprint(n),
			Actual:   fmt.Sprint(counts[o]),
		})
	}
	return errs
}

func reasons(r ir.SimulationReport) []string {
	var out []string
	for _, res := range r.Results {
		if res.Reason != nil {
			out = append(out, *res.Reason)
		}
	}
	return out
}
