// Package engine runs rule sets over sampled transactions.
//
// Simulation is a pure function of its inputs. The graph validator runs
// first; an invalid rule set short-circuits to an empty, conflict-annotated
// report without sampling. Otherwise the sampler draws N transactions and
// every transaction passes through three stages in generation order:
//
//  1. Filter: every filter block is evaluated in block order and the last
//     block's verdict is final.
//  2. Ordering: the first ordering block assigns a position.
//  3. Batching: the first batching block assigns a batch id from the
//     position (or the generation index when no position was assigned).
//
// Randomness and wall time enter only through Source and Clock, which are
// passed per call in Options. Nothing in this package is shared between
// calls, so concurrent simulations with their own sources are independent.
package engine
