// Package domain provides the core business logic for source migration.
package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"refit.dev/pkg/refit/internal/adapter"
	m "refit.dev/pkg/refit/internal/model"
)

// Rule is one upgrade rule. Apply inspects a single file and records the
// outcome on the change set owned by the current pass. A rule must not
// touch paths another rule already changed; the change set surfaces such
// conflicts as DuplicateChangeError.
type Rule interface {
	Name() string
	Apply(ctx context.Context, path m.Path, contents string, changes *m.ChangeSet) error
}

// CompileRules turns declarative rule specs from a ruleset file into
// executable rules, in spec order.
func CompileRules(specs []adapter.RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))

	for _, spec := range specs {
		rule, err := compileRule(spec)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", spec.Name, err)
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

func compileRule(spec adapter.RuleSpec) (Rule, error) {
	match, err := regexp.Compile(spec.Match)
	if err != nil {
		return nil, fmt.Errorf("invalid match pattern %q: %w", spec.Match, err)
	}

	switch spec.Kind {
	case adapter.RuleKindRewrite:
		return compileRewriteRule(spec, match)

	case adapter.RuleKindRename:
		if spec.To == "" {
			return nil, fmt.Errorf("rename rule needs a target template")
		}

		return &renameRule{name: spec.Name, match: match, to: spec.To}, nil

	case adapter.RuleKindDelete:
		return &deleteRule{name: spec.Name, match: match}, nil

	default:
		return nil, fmt.Errorf("unsupported kind %q", spec.Kind)
	}
}

func compileRewriteRule(spec adapter.RuleSpec, match *regexp.Regexp) (Rule, error) {
	rule := &rewriteRule{name: spec.Name, match: match}

	for _, rep := range spec.Replace {
		from, err := regexp.Compile(rep.From)
		if err != nil {
			return nil, fmt.Errorf("invalid replace pattern %q: %w", rep.From, err)
		}

		rule.replace = append(rule.replace, replacement{from: from, to: rep.To})
	}

	for _, c := range spec.Caution {
		pattern, err := regexp.Compile(c.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid caution pattern %q: %w", c.Pattern, err)
		}

		rule.caution = append(rule.caution, caution{pattern: pattern, message: c.Message})
	}

	return rule, nil
}

type replacement struct {
	from *regexp.Regexp
	to   string
}

type caution struct {
	pattern *regexp.Regexp
	message string
}

// rewriteRule applies ordered search/replace pairs to the content of
// matching files and flags caution lines for manual review instead of
// touching them automatically.
type rewriteRule struct {
	name    string
	match   *regexp.Regexp
	replace []replacement
	caution []caution
}

func (r *rewriteRule) Name() string {
	return r.name
}

func (r *rewriteRule) Apply(ctx context.Context, path m.Path, contents string, changes *m.ChangeSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !r.match.MatchString(string(path)) {
		return nil
	}

	for i, line := range strings.Split(contents, "\n") {
		for _, c := range r.caution {
			if c.pattern.MatchString(line) {
				changes.AddWarning(path, i+1, c.message)
			}
		}
	}

	rewritten := contents
	for _, rep := range r.replace {
		rewritten = rep.from.ReplaceAllString(rewritten, rep.to)
	}

	if rewritten == contents {
		return nil
	}

	return changes.AddFileChange(path, &rewritten, &contents)
}

// renameRule moves matching files to the path produced by expanding the
// target template against the match.
type renameRule struct {
	name  string
	match *regexp.Regexp
	to    string
}

func (r *renameRule) Name() string {
	return r.name
}

func (r *renameRule) Apply(ctx context.Context, path m.Path, _ string, changes *m.ChangeSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !r.match.MatchString(string(path)) {
		return nil
	}

	target := m.Path(r.match.ReplaceAllString(string(path), r.to))
	if target == path {
		return nil
	}

	return changes.Move(path, target)
}

// deleteRule removes matching files.
type deleteRule struct {
	name  string
	match *regexp.Regexp
}

func (r *deleteRule) Name() string {
	return r.name
}

func (r *deleteRule) Apply(ctx context.Context, path m.Path, _ string, changes *m.ChangeSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !r.match.MatchString(string(path)) {
		return nil
	}

	return changes.Remove(path)
}
