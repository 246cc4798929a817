package adapter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	m "refit.dev/pkg/refit/internal/model"
)

// Rule kinds accepted in a ruleset file.
const (
	RuleKindRewrite = "rewrite"
	RuleKindRename  = "rename"
	RuleKindDelete  = "delete"
)

// ReplaceSpec is one search/replace pair of a rewrite rule.
type ReplaceSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// CautionSpec flags lines the rule refuses to rewrite automatically.
type CautionSpec struct {
	Pattern string `yaml:"pattern"`
	Message string `yaml:"message"`
}

// RuleSpec is the declarative form of one upgrade rule as written in the
// ruleset file. Compilation into an executable rule happens in the domain
// layer.
type RuleSpec struct {
	Name    string        `yaml:"name"`
	Kind    string        `yaml:"kind"`
	Match   string        `yaml:"match"`
	Replace []ReplaceSpec `yaml:"replace,omitempty"`
	Caution []CautionSpec `yaml:"caution,omitempty"`
	To      string        `yaml:"to,omitempty"`
}

// Ruleset is the top-level structure of a ruleset file.
type Ruleset struct {
	Rules []RuleSpec `yaml:"rules"`
}

// LoadRuleset reads and parses the YAML ruleset file at path.
func LoadRuleset(path m.Path) (*Ruleset, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read ruleset %s: %w", path, err)
	}

	var ruleset Ruleset
	if err := yaml.Unmarshal(data, &ruleset); err != nil {
		return nil, fmt.Errorf("failed to parse ruleset %s: %w", path, err)
	}

	for i, spec := range ruleset.Rules {
		if spec.Name == "" {
			return nil, fmt.Errorf("ruleset %s: rule %d has no name", path, i)
		}

		switch spec.Kind {
		case RuleKindRewrite, RuleKindRename, RuleKindDelete:
		default:
			return nil, fmt.Errorf("ruleset %s: rule %q has unsupported kind %q", path, spec.Name, spec.Kind)
		}
	}

	return &ruleset, nil
}
