package harness

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roach88/kazt/internal/compiler"
	"github.com/roach88/kazt/internal/engine"
	"github.com/roach88/kazt/internal/ir"
	"github.com/roach88/kazt/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with a seeded source and a fixed clock.
type Harness struct {
	logger logrus.FieldLogger
}

// New creates a harness that logs through logger. A nil logger discards.
func New(logger logrus.FieldLogger) *Harness {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with a discarding logger.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(scenario)
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Resolve blocks (inline or from rule_file)
// 2. Validate the graph
// 3. Simulate over the fixed transactions, or sample with the scenario seed
// 4. Evaluate expectations
//
// An error is returned only when the scenario cannot be executed;
// failed expectations are reported through Result.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	blocks, err := scenarioBlocks(scenario)
	if err != nil {
		return nil, err
	}

	log := h.logger.WithFields(logrus.Fields{
		"scenario":    scenario.Name,
		"block_count": len(blocks),
	})

	opts := engine.Options{
		Source: engine.NewSeededSource(scenario.Seed),
		Clock:  testutil.NewFixedClock(time.Time{}),
		Logger: log,
	}

	result := NewResult()
	result.Validation = compiler.Validate(blocks)
	if scenario.Transactions != nil {
		result.Report = engine.SimulateTransactions(blocks, scenario.Transactions, opts)
	} else {
		result.Report = engine.Simulate(blocks, scenario.sampleCount(), opts)
	}

	for _, msg := range EvaluateExpectations(result, scenario.Expect) {
		result.AddError(msg)
	}

	log.WithFields(logrus.Fields{
		"pass":   result.Pass,
		"errors": len(result.Errors),
	}).Debug("scenario complete")
	return result, nil
}

func scenarioBlocks(s *Scenario) ([]ir.RuleBlock, error) {
	if s.RuleFile == "" {
		return s.Blocks, nil
	}
	rs, err := compiler.LoadRuleSetFile(s.RuleFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule file: %w", err)
	}
	return rs.Blocks, nil
}
