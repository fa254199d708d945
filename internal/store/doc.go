// Package store provides SQLite-backed storage for rule sets and simulation
// history.
//
// The engine never touches the store. Callers load a rule set, run the
// engine, and optionally record the report here.
//
// # Tables
//
//   - rule_sets: named, owned block lists stored as JSON, with the block-set
//     hash alongside so identical graphs can be found without decoding.
//   - simulation_logs: one row per recorded simulation, keyed by a UUIDv7
//     run id so history sorts by creation time.
//
// Built-in template packs are inserted by the v1 migration, so they are
// seeded exactly once per database.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5s on lock contention
//   - foreign_keys=ON: simulation_logs.rule_set_id is nulled when a rule
//     set is deleted
//
// # Usage
//
//	s, err := store.Open("kazt.db")
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	saved, err := s.SaveRuleSet(ctx, rs)
package store
