package ir

// ValidationResult is the graph validator's verdict on a block list.
// Conflicts make the set invalid; warnings never do.
type ValidationResult struct {
	Valid         bool     `json:"valid"`
	Conflicts     []string `json:"conflicts"`
	Warnings      []string `json:"warnings"`
	CycleDetected bool     `json:"cycle_detected"`
}

// Transaction is one synthetic sample fed through the pipeline.
type Transaction struct {
	TxID      string  `json:"tx_id"`
	Sender    string  `json:"sender"`
	Amount    float64 `json:"amount"`
	Fee       float64 `json:"fee"`
	Timestamp int64   `json:"timestamp"` // unix seconds
}

// Outcome is what the pipeline did with a transaction.
type Outcome string

const (
	OutcomeIncluded Outcome = "included"
	OutcomeFiltered Outcome = "filtered"
	OutcomeBatched  Outcome = "batched"

	// OutcomeRejected is part of the reported vocabulary but no current
	// block type produces it.
	OutcomeRejected Outcome = "rejected"
)

// Outcomes lists every reportable outcome.
var Outcomes = []Outcome{OutcomeIncluded, OutcomeFiltered, OutcomeBatched, OutcomeRejected}

// TxResult is the per-transaction line of a simulation report.
type TxResult struct {
	TxID     string  `json:"tx_id"`
	Outcome  Outcome `json:"outcome"`
	Position *int    `json:"position"`
	BatchID  *int    `json:"batch_id"`
	Reason   *string `json:"reason"`
}

// SimulationReport aggregates one simulate call.
type SimulationReport struct {
	Results   []TxResult `json:"results"`
	TotalTxs  int        `json:"total_txs"`
	Processed int        `json:"processed"`
	Filtered  int        `json:"filtered"`
	Conflicts []string   `json:"conflicts"`
}

// CountOutcomes tallies results by outcome.
func (r SimulationReport) CountOutcomes() map[Outcome]int {
	counts := make(map[Outcome]int, len(Outcomes))
	for _, res := range r.Results {
		counts[res.Outcome]++
	}
	return counts
}
