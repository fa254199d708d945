package engine

import (
	"fmt"
	"io"
	"slices"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/roach88/kazt/internal/compiler"
	"github.com/roach88/kazt/internal/ir"
)

// Options carries the per-call dependencies of Simulate.
// Zero fields select a fresh time-seeded source, the wall clock and a
// discarding logger.
type Options struct {
	Source Source
	Clock  Clock
	Logger logrus.FieldLogger
}

func (o Options) source() Source {
	if o.Source == nil {
		return newTimeSeededSource()
	}
	return o.Source
}

func (o Options) clock() Clock {
	if o.Clock == nil {
		return WallClock{}
	}
	return o.Clock
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}
	return o.Logger
}

// Simulate validates blocks and, when valid, runs sampleTxs sampled
// transactions through the filter, ordering and batching stages.
//
// An invalid rule set yields an empty report carrying the validator's
// conflicts; no transactions are sampled in that case.
func Simulate(blocks []ir.RuleBlock, sampleTxs int, opts Options) ir.SimulationReport {
	if sampleTxs < 0 {
		sampleTxs = 0
	}
	return simulate(blocks, sampleTxs, opts, func() []ir.Transaction {
		return NewSampler(opts.source(), opts.clock()).Sample(sampleTxs)
	})
}

// SimulateTransactions is Simulate over caller-supplied transactions
// instead of sampled ones.
func SimulateTransactions(blocks []ir.RuleBlock, txs []ir.Transaction, opts Options) ir.SimulationReport {
	return simulate(blocks, len(txs), opts, func() []ir.Transaction { return txs })
}

func simulate(blocks []ir.RuleBlock, total int, opts Options, sample func() []ir.Transaction) ir.SimulationReport {
	log := opts.logger().WithFields(logrus.Fields{
		"block_count": len(blocks),
		"sample_txs":  total,
	})

	validation := compiler.Validate(blocks)
	if !validation.Valid {
		log.WithFields(logrus.Fields{
			"valid":     false,
			"conflicts": len(validation.Conflicts),
		}).Debug("simulation skipped: rule set is invalid")
		return ir.SimulationReport{
			Results:   []ir.TxResult{},
			TotalTxs:  total,
			Conflicts: validation.Conflicts,
		}
	}

	report := Execute(blocks, sample())

	log.WithFields(logrus.Fields{
		"valid":     true,
		"processed": report.Processed,
		"filtered":  report.Filtered,
	}).Debug("simulation complete")
	return report
}

// Execute runs already-sampled transactions through the pipeline without
// validating blocks. Results keep the order of txs.
func Execute(blocks []ir.RuleBlock, txs []ir.Transaction) ir.SimulationReport {
	p := newPipeline(blocks)
	positions := p.positions(txs)

	report := ir.SimulationReport{
		Results:   make([]ir.TxResult, 0, len(txs)),
		TotalTxs:  len(txs),
		Conflicts: []string{},
	}

	for i, tx := range txs {
		res := ir.TxResult{TxID: tx.TxID, Outcome: ir.OutcomeIncluded}

		if reason, filtered := p.filter(tx); filtered {
			res.Outcome = ir.OutcomeFiltered
			res.Reason = &reason
			report.Filtered++
			report.Results = append(report.Results, res)
			continue
		}

		p1 := i + 1
		if positions != nil {
			pos := positions[i]
			res.Position = &pos
			p1 = pos
		}

		if p.batching != nil {
			batchID := (p1-1)/p.batching.MaxBatch + 1
			res.BatchID = &batchID
			res.Outcome = ir.OutcomeBatched
		}

		report.Results = append(report.Results, res)
	}

	report.Processed = len(txs) - report.Filtered
	return report
}

// pipeline holds the blocks each stage reads.
type pipeline struct {
	filters  []ir.FilterParams
	ordering *ir.OrderingParams
	batching *ir.BatchingParams
}

// newPipeline picks each stage's blocks by type. A max_batch below 1 falls
// back to the default batch size.
func newPipeline(blocks []ir.RuleBlock) pipeline {
	var p pipeline
	for _, b := range blocks {
		switch params := b.EffectiveParams().(type) {
		case ir.FilterParams:
			p.filters = append(p.filters, params)
		case ir.OrderingParams:
			if p.ordering == nil {
				p.ordering = &params
			}
		case ir.BatchingParams:
			if p.batching == nil {
				if params.MaxBatch < 1 {
					params.MaxBatch = ir.DefaultBatchingParams().MaxBatch
				}
				p.batching = &params
			}
		}
	}
	return p
}

// filter evaluates every filter block in order; the last block's verdict wins.
func (p pipeline) filter(tx ir.Transaction) (string, bool) {
	var (
		reason   string
		filtered bool
	)
	for _, fp := range p.filters {
		reason, filtered = filterVerdict(fp, tx)
	}
	return reason, filtered
}

// filterVerdict applies one filter block. The first matching condition decides.
// A size bound of zero counts as unset.
func filterVerdict(fp ir.FilterParams, tx ir.Transaction) (string, bool) {
	switch {
	case len(fp.Whitelist) > 0 && !slices.Contains(fp.Whitelist, tx.Sender):
		return "Not in whitelist", true
	case len(fp.Blacklist) > 0 && slices.Contains(fp.Blacklist, tx.Sender):
		return "In blacklist", true
	case sizeSet(fp.MaxSize) && tx.Amount > *fp.MaxSize:
		return fmt.Sprintf("Amount %s exceeds max_size %s",
			ir.FormatDecimal(tx.Amount), ir.FormatDecimal(*fp.MaxSize)), true
	case sizeSet(fp.MinSize) && tx.Amount < *fp.MinSize:
		return fmt.Sprintf("Amount %s below min_size %s",
			ir.FormatDecimal(tx.Amount), ir.FormatDecimal(*fp.MinSize)), true
	}
	return "", false
}

func sizeSet(bound *float64) bool {
	return bound != nil && *bound != 0
}

// positions returns the 1-based position of each transaction under the first
// ordering block, or nil when there is none.
//
// Ranks are computed over the whole sample, filtered transactions included.
func (p pipeline) positions(txs []ir.Transaction) []int {
	if p.ordering == nil {
		return nil
	}

	pos := make([]int, len(txs))
	switch p.ordering.Method {
	case ir.OrderingPriceTime:
		idx := make([]int, len(txs))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return txs[idx[a]].Fee > txs[idx[b]].Fee
		})
		for rank, i := range idx {
			pos[i] = rank + 1
		}
	default:
		// FIFO, and pro_rata which has no allocation model of its own yet.
		for i := range pos {
			pos[i] = i + 1
		}
	}
	return pos
}
