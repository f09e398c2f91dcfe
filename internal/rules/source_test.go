package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/akoutras/medpress/internal/domain"
)

const validRulesYAML = `patterns:
  - id: p1
    name: third_person_voice
    type: voice
    examples:
      - "Ο Δρ. Χλωρός εφαρμόζει"
    weight: 3
    required: true
  - id: p2
    name: success_rate_ranges
    type: medical
    weight: 2
anti_patterns:
  - id: ap1
    name: first_person_usage
    type: voice
    examples:
      - "πιστεύω ότι"
    penalty_points: 15
    auto_fail: true
fixes:
  - id: f1
    issue: "First person voice"
    fix: "Rewrite in third person"
    type: voice
    priority: 1
`

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules file: %v", err)
	}
	return path
}

func TestFileSource_Load(t *testing.T) {
	src := NewFileSource(writeRules(t, validRulesYAML))

	rs, err := src.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(rs.Patterns) != 2 {
		t.Errorf("patterns = %d, want 2", len(rs.Patterns))
	}
	if len(rs.AntiPatterns) != 1 {
		t.Errorf("anti-patterns = %d, want 1", len(rs.AntiPatterns))
	}
	if len(rs.Fixes) != 1 {
		t.Errorf("fixes = %d, want 1", len(rs.Fixes))
	}

	p := rs.Patterns[0]
	if p.ID != "p1" || p.Type != domain.TypeVoice || p.Weight != 3 || !p.Required {
		t.Errorf("pattern = %+v, want p1/voice/3/required", p)
	}
	ap := rs.AntiPatterns[0]
	if ap.PenaltyPoints != 15 || !ap.AutoFail {
		t.Errorf("anti-pattern = %+v, want penalty 15 auto_fail", ap)
	}
}

func TestFileSource_Load_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", ":\n\t- broken"},
		{"missing rule id", "patterns:\n  - name: x\n    type: voice\n"},
		{"unknown type", "patterns:\n  - id: p1\n    name: x\n    type: sentiment\n"},
		{"negative penalty", "anti_patterns:\n  - id: a1\n    name: x\n    type: voice\n    penalty_points: -5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileSource(writeRules(t, tt.content)).Load()
			if err == nil {
				t.Fatal("Load() accepted malformed rules")
			}
			if !errors.Is(err, domain.ErrRuleDefinition) {
				t.Errorf("error = %v, want ErrRuleDefinition", err)
			}
		})
	}
}

func TestFileSource_Load_MissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	if err == nil {
		t.Fatal("Load() succeeded for missing file")
	}
}

func TestDefault_IsValid(t *testing.T) {
	rs := Default()
	if err := rs.Validate(); err != nil {
		t.Errorf("Default() rule set invalid: %v", err)
	}
	if len(rs.Patterns) == 0 || len(rs.AntiPatterns) == 0 {
		t.Error("Default() rule set is empty")
	}
}

func TestWatcher_ReloadSwapsRuleSet(t *testing.T) {
	path := writeRules(t, validRulesYAML)

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	if got := len(w.RuleSet().Patterns); got != 2 {
		t.Fatalf("initial patterns = %d, want 2", got)
	}

	var reloaded bool
	w.OnReload = func(rs domain.RuleSet) { reloaded = true }

	// Shrink the file and reload directly; Watch only adds the
	// fsnotify trigger around this same path.
	if err := os.WriteFile(path, []byte("patterns:\n  - id: only\n    name: x\n    type: voice\n    weight: 1\n"), 0o644); err != nil {
		t.Fatalf("rewrite rules: %v", err)
	}
	w.reload()

	if got := len(w.RuleSet().Patterns); got != 1 {
		t.Errorf("patterns after reload = %d, want 1", got)
	}
	if !reloaded {
		t.Error("OnReload hook not called")
	}
}

func TestWatcher_KeepsPreviousSetOnBadReload(t *testing.T) {
	path := writeRules(t, validRulesYAML)

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("patterns:\n  - name: missing id\n    type: voice\n"), 0o644); err != nil {
		t.Fatalf("rewrite rules: %v", err)
	}
	w.reload()

	if got := len(w.RuleSet().Patterns); got != 2 {
		t.Errorf("patterns after failed reload = %d, want previous 2", got)
	}
}
