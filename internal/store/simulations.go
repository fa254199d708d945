package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/kazt/internal/ir"
)

// DefaultHistoryLimit is the number of simulations ListSimulations returns
// when limit is not positive.
const DefaultHistoryLimit = 20

// SimulationLog is one recorded simulation report.
type SimulationLog struct {
	ID        string        `json:"id"`
	RuleSetID string        `json:"rule_set_id,omitempty"` // empty for ad-hoc block lists
	Owner     string        `json:"owner"`
	TotalTxs  int           `json:"total_txs"`
	Processed int           `json:"processed"`
	Filtered  int           `json:"filtered"`
	Results   []ir.TxResult `json:"results"`
	Conflicts []string      `json:"conflicts"`
	CreatedAt time.Time     `json:"created_at"`
}

// LogSimulation records report under a new run id. ruleSetID may be empty
// when the simulated blocks were not loaded from a saved rule set.
func (s *Store) LogSimulation(ctx context.Context, ruleSetID, owner string, report ir.SimulationReport) (SimulationLog, error) {
	results := report.Results
	if results == nil {
		results = []ir.TxResult{}
	}
	conflicts := report.Conflicts
	if conflicts == nil {
		conflicts = []string{}
	}

	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return SimulationLog{}, fmt.Errorf("log simulation: marshal results: %w", err)
	}
	conflictsJSON, err := json.Marshal(conflicts)
	if err != nil {
		return SimulationLog{}, fmt.Errorf("log simulation: marshal conflicts: %w", err)
	}

	log := SimulationLog{
		ID:        s.ids.Generate(),
		RuleSetID: ruleSetID,
		Owner:     owner,
		TotalTxs:  report.TotalTxs,
		Processed: report.Processed,
		Filtered:  report.Filtered,
		Results:   results,
		Conflicts: conflicts,
	}
	created := s.now()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO simulation_logs
		(id, rule_set_id, owner, total_txs, processed, filtered, results, conflicts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		log.ID,
		nullString(ruleSetID),
		owner,
		log.TotalTxs,
		log.Processed,
		log.Filtered,
		string(resultsJSON),
		string(conflictsJSON),
		created,
	)
	if err != nil {
		return SimulationLog{}, fmt.Errorf("log simulation: %w", err)
	}

	log.CreatedAt = fromUnixNano(created)
	return log, nil
}

// ListSimulations returns owner's most recent simulations, newest first.
// A non-positive limit selects DefaultHistoryLimit.
func (s *Store) ListSimulations(ctx context.Context, owner string, limit int) ([]SimulationLog, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rule_set_id, owner, total_txs, processed, filtered, results, conflicts, created_at
		FROM simulation_logs
		WHERE owner = ?
		ORDER BY created_at DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("list simulations: %w", err)
	}
	defer rows.Close()

	logs := []SimulationLog{}
	for rows.Next() {
		var (
			l             SimulationLog
			ruleSetID     sql.NullString
			resultsJSON   string
			conflictsJSON string
			created       int64
		)
		if err := rows.Scan(&l.ID, &ruleSetID, &l.Owner, &l.TotalTxs, &l.Processed, &l.Filtered,
			&resultsJSON, &conflictsJSON, &created); err != nil {
			return nil, fmt.Errorf("scan simulation: %w", err)
		}
		if err := json.Unmarshal([]byte(resultsJSON), &l.Results); err != nil {
			return nil, fmt.Errorf("decode results of %s: %w", l.ID, err)
		}
		if err := json.Unmarshal([]byte(conflictsJSON), &l.Conflicts); err != nil {
			return nil, fmt.Errorf("decode conflicts of %s: %w", l.ID, err)
		}
		l.RuleSetID = ruleSetID.String
		l.CreatedAt = fromUnixNano(created)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate simulations: %w", err)
	}
	return logs, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
