package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/kazt/internal/ir"
)

// RuleSetExtensions lists the file extensions LoadRuleSetFile accepts.
var RuleSetExtensions = []string{".json", ".yaml", ".yml", ".cue"}

// LoadRuleSetFile reads a rule set from disk, choosing the decoder by
// file extension.
func LoadRuleSetFile(path string) (*ir.RuleSet, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".yaml", ".yml", ".cue":
	default:
		return nil, &CompileError{
			Field:   "file",
			Message: fmt.Sprintf("unsupported rule set extension %q, must be one of %v", ext, RuleSetExtensions),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule set: %w", err)
	}

	switch ext {
	case ".json":
		return DecodeRuleSetJSON(data)
	case ".cue":
		return CompileRuleSetSource(data, path)
	default:
		return DecodeRuleSetYAML(data)
	}
}
