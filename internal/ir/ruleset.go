package ir

import "time"

// RuleSet is a named, owned collection of rule blocks.
// The engine never reads a RuleSet; it is the unit the store persists.
type RuleSet struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Blocks      []RuleBlock `json:"blocks"`
	Owner       string      `json:"owner"`
	IsTemplate  bool        `json:"is_template,omitempty"`
	Category    string      `json:"template_category,omitempty"`
	UseCount    int         `json:"use_count"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
