package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/kazt/internal/ir"
)

// SaveRuleSet inserts rs, or updates name, description and blocks when a
// rule set with rs.ID exists. An empty ID gets a fresh one. Templates and
// rule sets of other owners cannot be overwritten.
//
// Returns the stored rule set as read back from the database.
func (s *Store) SaveRuleSet(ctx context.Context, rs ir.RuleSet) (ir.RuleSet, error) {
	if rs.Owner == "" {
		return ir.RuleSet{}, fmt.Errorf("save rule set: owner is required")
	}
	if rs.Name == "" {
		return ir.RuleSet{}, fmt.Errorf("save rule set: name is required")
	}
	if rs.ID == "" {
		rs.ID = s.ids.Generate()
	}

	blocksJSON, hash, err := marshalBlocks(rs.Blocks)
	if err != nil {
		return ir.RuleSet{}, fmt.Errorf("save rule set: %w", err)
	}

	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO rule_sets
		(id, name, description, blocks, blockset_hash, owner, is_template, use_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			blocks = excluded.blocks,
			blockset_hash = excluded.blockset_hash,
			updated_at = excluded.updated_at
		WHERE rule_sets.is_template = 0 AND rule_sets.owner = excluded.owner
	`, rs.ID, rs.Name, rs.Description, blocksJSON, hash, rs.Owner, now, now)
	if err != nil {
		return ir.RuleSet{}, fmt.Errorf("save rule set: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ir.RuleSet{}, fmt.Errorf("save rule set: %s is a template or belongs to another owner", rs.ID)
	}

	return s.GetRuleSet(ctx, rs.ID)
}

// GetRuleSet returns the rule set with id, or ErrNotFound.
func (s *Store) GetRuleSet(ctx context.Context, id string) (ir.RuleSet, error) {
	row := s.db.QueryRowContext(ctx, selectRuleSet+` WHERE id = ?`, id)
	rs, err := scanRuleSet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.RuleSet{}, fmt.Errorf("rule set %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ir.RuleSet{}, fmt.Errorf("get rule set %s: %w", id, err)
	}
	return rs, nil
}

// ListRuleSets returns owner's rule sets, most recently updated first.
// Returns an empty slice (not nil) if the owner has none.
func (s *Store) ListRuleSets(ctx context.Context, owner string) ([]ir.RuleSet, error) {
	rows, err := s.db.QueryContext(ctx, selectRuleSet+`
		WHERE owner = ? AND is_template = 0
		ORDER BY updated_at DESC, id COLLATE BINARY ASC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("list rule sets: %w", err)
	}
	return collectRuleSets(rows)
}

// ListTemplates returns every template pack ordered by id.
func (s *Store) ListTemplates(ctx context.Context) ([]ir.RuleSet, error) {
	rows, err := s.db.QueryContext(ctx, selectRuleSet+`
		WHERE is_template = 1
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return collectRuleSets(rows)
}

// UseTemplate returns the template with id and increments its use count.
func (s *Store) UseTemplate(ctx context.Context, id string) (ir.RuleSet, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE rule_sets SET use_count = use_count + 1
		WHERE id = ? AND is_template = 1
	`, id)
	if err != nil {
		return ir.RuleSet{}, fmt.Errorf("use template %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ir.RuleSet{}, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return s.GetRuleSet(ctx, id)
}

// DeleteRuleSet removes a non-template rule set. Simulation logs that
// referenced it keep their rows with a null rule_set_id.
func (s *Store) DeleteRuleSet(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rule_sets WHERE id = ? AND is_template = 0`, id)
	if err != nil {
		return fmt.Errorf("delete rule set %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("rule set %s: %w", id, ErrNotFound)
	}
	return nil
}

// FindByBlockSetHash returns the ids of rule sets whose blocks hash to hash,
// ordered by id.
func (s *Store) FindByBlockSetHash(ctx context.Context, hash string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM rule_sets
		WHERE blockset_hash = ?
		ORDER BY id COLLATE BINARY ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("find by hash: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}

const selectRuleSet = `
	SELECT id, name, description, blocks, owner, is_template, template_category, use_count, created_at, updated_at
	FROM rule_sets`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRuleSet(row rowScanner) (ir.RuleSet, error) {
	var (
		rs         ir.RuleSet
		blocksJSON string
		category   sql.NullString
		isTemplate int
		created    int64
		updated    int64
	)
	if err := row.Scan(&rs.ID, &rs.Name, &rs.Description, &blocksJSON, &rs.Owner,
		&isTemplate, &category, &rs.UseCount, &created, &updated); err != nil {
		return ir.RuleSet{}, err
	}
	if err := json.Unmarshal([]byte(blocksJSON), &rs.Blocks); err != nil {
		return ir.RuleSet{}, fmt.Errorf("decode blocks of %s: %w", rs.ID, err)
	}
	if rs.Blocks == nil {
		rs.Blocks = []ir.RuleBlock{}
	}
	rs.IsTemplate = isTemplate == 1
	rs.Category = category.String
	rs.CreatedAt = fromUnixNano(created)
	rs.UpdatedAt = fromUnixNano(updated)
	return rs, nil
}

func collectRuleSets(rows *sql.Rows) ([]ir.RuleSet, error) {
	defer rows.Close()

	sets := []ir.RuleSet{}
	for rows.Next() {
		rs, err := scanRuleSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule set: %w", err)
		}
		sets = append(sets, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rule sets: %w", err)
	}
	return sets, nil
}

// marshalBlocks encodes blocks as JSON TEXT and computes their block-set hash.
func marshalBlocks(blocks []ir.RuleBlock) (string, string, error) {
	if blocks == nil {
		blocks = []ir.RuleBlock{}
	}
	data, err := json.Marshal(blocks)
	if err != nil {
		return "", "", fmt.Errorf("marshal blocks: %w", err)
	}
	hash, err := ir.BlockSetHash(blocks)
	if err != nil {
		return "", "", fmt.Errorf("hash blocks: %w", err)
	}
	return string(data), hash, nil
}
