package adapter

import (
	"os"
	"path/filepath"
	"testing"

	m "refit.dev/pkg/refit/internal/model"
)

const sampleRuleset = `
rules:
  - name: ereg-to-preg
    kind: rewrite
    match: '\.php$'
    replace:
      - from: 'ereg\('
        to: 'preg_match('
    caution:
      - pattern: 'mysql_query'
        message: "mysql_* API needs manual migration"
  - name: config-move
    kind: rename
    match: '^_config\.php$'
    to: '_config/legacy.php'
  - name: drop-cache
    kind: delete
    match: '^cache/'
`

func writeRuleset(t *testing.T, content string) m.Path {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write ruleset fixture: %v", err)
	}

	return m.Path(path)
}

func TestLoadRuleset(t *testing.T) {
	ruleset, err := LoadRuleset(writeRuleset(t, sampleRuleset))
	if err != nil {
		t.Fatalf("LoadRuleset() error = %v", err)
	}

	if len(ruleset.Rules) != 3 {
		t.Fatalf("LoadRuleset() rules = %d, want 3", len(ruleset.Rules))
	}

	rewrite := ruleset.Rules[0]
	if rewrite.Kind != RuleKindRewrite || len(rewrite.Replace) != 1 || len(rewrite.Caution) != 1 {
		t.Errorf("unexpected rewrite rule: %+v", rewrite)
	}

	rename := ruleset.Rules[1]
	if rename.Kind != RuleKindRename || rename.To != "_config/legacy.php" {
		t.Errorf("unexpected rename rule: %+v", rename)
	}

	del := ruleset.Rules[2]
	if del.Kind != RuleKindDelete || del.Match != "^cache/" {
		t.Errorf("unexpected delete rule: %+v", del)
	}
}

func TestLoadRuleset_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown kind",
			content: "rules:\n  - name: x\n    kind: shuffle\n",
		},
		{
			name:    "missing name",
			content: "rules:\n  - kind: delete\n    match: '.*'\n",
		},
		{
			name:    "not yaml",
			content: "{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadRuleset(writeRuleset(t, tt.content)); err == nil {
				t.Errorf("LoadRuleset() expected error for %s", tt.name)
			}
		})
	}
}

func TestLoadRuleset_MissingFile(t *testing.T) {
	if _, err := LoadRuleset("does/not/exist.yaml"); err == nil {
		t.Error("LoadRuleset() expected error for missing file")
	}
}
