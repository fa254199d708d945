package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/kazt/internal/engine"
	"github.com/roach88/kazt/internal/ir"
	"github.com/roach88/kazt/internal/testutil"
)

// createTestStore creates a new store in a temp directory with a fixed clock
// and sequential ids.
func createTestStore(t *testing.T, ids ...string) (*Store, *testutil.FixedClock) {
	t.Helper()
	clock := testutil.NewFixedClock(time.Time{})
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithClock(clock), WithIDGenerator(engine.NewFixedGenerator(ids...)))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, clock
}

// createTestRuleSet returns a small valid rule set owned by owner.
func createTestRuleSet(id, owner string) ir.RuleSet {
	return ir.RuleSet{
		ID:          id,
		Name:        "set " + id,
		Description: "test rule set",
		Owner:       owner,
		Blocks: []ir.RuleBlock{
			testutil.Blacklist("f", "bad_sender"),
			testutil.Ordering("o", ir.OrderingFIFO),
		},
	}
}
