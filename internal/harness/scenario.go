package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/kazt/internal/engine"
	"github.com/roach88/kazt/internal/ir"
)

// Scenario defines one rule-set regression test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed seeds the transaction sampler.
	Seed int64 `yaml:"seed"`

	// SampleTxs is the number of transactions to sample. Zero selects
	// engine.DefaultSampleTxs. Must be zero when Transactions is set.
	SampleTxs int `yaml:"sample_txs,omitempty"`

	// RuleFile is a rule set file, relative to the scenario file.
	// Exactly one of RuleFile and Blocks is required.
	RuleFile string `yaml:"rule_file,omitempty"`

	// Blocks is an inline block list. An explicit empty list is allowed
	// and exercises the no-blocks conflict.
	Blocks BlockList `yaml:"blocks,omitempty"`

	// Transactions replaces sampling with a fixed list.
	Transactions TransactionList `yaml:"transactions,omitempty"`

	// Expect holds the checks evaluated after the run.
	Expect Expectation `yaml:"expect"`
}

// Expectation lists the checks of a scenario. Nil or empty fields are
// not checked.
type Expectation struct {
	Valid            *bool          `yaml:"valid,omitempty"`
	CycleDetected    *bool          `yaml:"cycle_detected,omitempty"`
	ConflictsContain []string       `yaml:"conflicts_contain,omitempty"`
	WarningsContain  []string       `yaml:"warnings_contain,omitempty"`
	TotalTxs         *int           `yaml:"total_txs,omitempty"`
	Processed        *int           `yaml:"processed,omitempty"`
	Filtered         *int           `yaml:"filtered,omitempty"`
	Outcomes         map[string]int `yaml:"outcomes,omitempty"`
	ReasonsContain   []string       `yaml:"reasons_contain,omitempty"`
}

// BlockList decodes YAML blocks through the JSON wire form so params get
// the same defaults and bounds checks as every other source.
type BlockList []ir.RuleBlock

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *BlockList) UnmarshalYAML(node *yaml.Node) error {
	var blocks []ir.RuleBlock
	if err := decodeViaJSON(node, &blocks); err != nil {
		return fmt.Errorf("blocks: %w", err)
	}
	if blocks == nil {
		blocks = []ir.RuleBlock{}
	}
	*l = blocks
	return nil
}

// TransactionList decodes YAML transactions using their JSON field names.
type TransactionList []ir.Transaction

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *TransactionList) UnmarshalYAML(node *yaml.Node) error {
	var txs []ir.Transaction
	if err := decodeViaJSON(node, &txs); err != nil {
		return fmt.Errorf("transactions: %w", err)
	}
	if txs == nil {
		txs = []ir.Transaction{}
	}
	*l = txs
	return nil
}

// decodeViaJSON re-encodes a YAML node as JSON and decodes it strictly.
func decodeViaJSON(node *yaml.Node, dst any) error {
	var tree any
	if err := node.Decode(&tree); err != nil {
		return err
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// LoadScenario reads and parses a scenario YAML file. A relative rule_file
// is resolved against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving a relative rule_file against basePath.
//
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.RuleFile != "" && !filepath.IsAbs(scenario.RuleFile) && basePath != "" {
		scenario.RuleFile = filepath.Join(basePath, scenario.RuleFile)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario decodes scenario YAML without validating it.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// sampleCount is the number of transactions Run will sample.
func (s *Scenario) sampleCount() int {
	if s.SampleTxs == 0 {
		return engine.DefaultSampleTxs
	}
	return s.SampleTxs
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.RuleFile == "" && s.Blocks == nil:
		return fmt.Errorf("one of blocks or rule_file is required")
	case s.RuleFile != "" && s.Blocks != nil:
		return fmt.Errorf("blocks and rule_file are mutually exclusive")
	}

	if s.RuleFile != "" {
		if _, err := os.Stat(s.RuleFile); os.IsNotExist(err) {
			return fmt.Errorf("rule file not found: %s", s.RuleFile)
		}
	}

	if s.Transactions != nil {
		if s.SampleTxs != 0 {
			return fmt.Errorf("sample_txs cannot be combined with transactions")
		}
	} else if err := engine.CheckSampleCount(s.sampleCount()); err != nil {
		return err
	}

	for outcome := range s.Expect.Outcomes {
		if !slices.Contains(ir.Outcomes, ir.Outcome(outcome)) {
			return fmt.Errorf("expect.outcomes: unknown outcome %q", outcome)
		}
	}

	return nil
}
