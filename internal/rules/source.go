// Package rules loads Pattern and AntiPattern definitions from the
// editorial rule file and hot-reloads them on change. The rule file
// replaces the spreadsheet the editorial team used to maintain.
package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/akoutras/medpress/internal/domain"
)

// Source supplies a validated rule set.
type Source interface {
	Load() (domain.RuleSet, error)
}

// FileSource reads rules from a YAML file.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

type yamlPattern struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Type        string   `yaml:"type"`
	Examples    []string `yaml:"examples"`
	Weight      int      `yaml:"weight"`
	Required    bool     `yaml:"required"`
}

type yamlAntiPattern struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Type          string   `yaml:"type"`
	Examples      []string `yaml:"examples"`
	PenaltyPoints int      `yaml:"penalty_points"`
	AutoFail      bool     `yaml:"auto_fail"`
}

type yamlFix struct {
	ID       string `yaml:"id"`
	Issue    string `yaml:"issue"`
	Fix      string `yaml:"fix"`
	Type     string `yaml:"type"`
	Priority int    `yaml:"priority"`
}

type yamlRuleFile struct {
	Patterns     []yamlPattern     `yaml:"patterns"`
	AntiPatterns []yamlAntiPattern `yaml:"anti_patterns"`
	Fixes        []yamlFix         `yaml:"fixes"`
}

// Load reads and validates the rule file. Any malformed rule fails the
// whole load; a partially applied rule set is worse than the old one.
func (s *FileSource) Load() (domain.RuleSet, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.RuleSet{}, fmt.Errorf("read rules file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (domain.RuleSet, error) {
	var file yamlRuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.RuleSet{}, fmt.Errorf("%w: %v", domain.ErrRuleDefinition, err)
	}

	rs := domain.RuleSet{
		Patterns:     make([]domain.Pattern, 0, len(file.Patterns)),
		AntiPatterns: make([]domain.AntiPattern, 0, len(file.AntiPatterns)),
		Fixes:        make([]domain.Fix, 0, len(file.Fixes)),
	}

	for _, p := range file.Patterns {
		rs.Patterns = append(rs.Patterns, domain.Pattern{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Type:        domain.PatternType(p.Type),
			Examples:    p.Examples,
			Weight:      p.Weight,
			Required:    p.Required,
		})
	}
	for _, ap := range file.AntiPatterns {
		rs.AntiPatterns = append(rs.AntiPatterns, domain.AntiPattern{
			ID:            ap.ID,
			Name:          ap.Name,
			Description:   ap.Description,
			Type:          domain.PatternType(ap.Type),
			Examples:      ap.Examples,
			PenaltyPoints: ap.PenaltyPoints,
			AutoFail:      ap.AutoFail,
		})
	}
	for _, f := range file.Fixes {
		rs.Fixes = append(rs.Fixes, domain.Fix{
			ID:        f.ID,
			IssueDesc: f.Issue,
			FixDesc:   f.Fix,
			Type:      domain.PatternType(f.Type),
			Priority:  f.Priority,
		})
	}

	if err := rs.Validate(); err != nil {
		return domain.RuleSet{}, err
	}
	return rs, nil
}

// Default returns the built-in editorial rule set, used when no rule
// file is configured (offline review, tests).
func Default() domain.RuleSet {
	return domain.RuleSet{
		Patterns: []domain.Pattern{
			{
				ID:          "voice-third-person",
				Name:        "third_person_voice",
				Description: "Article speaks about the doctor in third person",
				Type:        domain.TypeVoice,
				Examples:    []string{"Ο Δρ. Χλωρός εφαρμόζει", "η θεραπεία περιλαμβάνει"},
				Weight:      3,
				Required:    true,
			},
			{
				ID:          "structure-logical-flow",
				Name:        "logical_flow",
				Description: "Sections follow anatomy, symptoms, diagnosis, treatment",
				Type:        domain.TypeStructure,
				Weight:      2,
			},
			{
				ID:          "medical-success-ranges",
				Name:        "success_rate_ranges",
				Description: "Success rates quoted as ranges, never absolutes",
				Type:        domain.TypeMedical,
				Examples:    []string{"75-85%", "85-95%"},
				Weight:      3,
			},
			{
				ID:          "seo-keyword-headers",
				Name:        "keyword_in_headers",
				Description: "Main keyword present in title and section headers",
				Type:        domain.TypeSEO,
				Weight:      2,
			},
		},
		AntiPatterns: []domain.AntiPattern{
			{
				ID:            "voice-first-person",
				Name:          "first_person_usage",
				Description:   "First person voice is forbidden",
				Type:          domain.TypeVoice,
				Examples:      []string{"πιστεύω ότι", "η εμπειρία μου"},
				PenaltyPoints: 15,
				AutoFail:      true,
			},
			{
				ID:            "structure-emotional-stories",
				Name:          "emotional_stories",
				Description:   "Emotional patient stories are forbidden",
				Type:          domain.TypeStructure,
				Examples:      []string{"ιστορία ασθενούς"},
				PenaltyPoints: 12,
			},
			{
				ID:            "medical-absolute-claims",
				Name:          "absolute_claims",
				Description:   "Absolute success claims are forbidden",
				Type:          domain.TypeMedical,
				Examples:      []string{"πάντα επιτυχής", "100% επιτυχία"},
				PenaltyPoints: 10,
			},
		},
		Fixes: []domain.Fix{
			{ID: "fix-voice", IssueDesc: "First person voice", FixDesc: "Rewrite in Γ' ενικό", Type: domain.TypeVoice, Priority: 1},
			{ID: "fix-structure", IssueDesc: "Sections out of order", FixDesc: "Reorder to Ανατομία → Συμπτώματα → Διάγνωση → Θεραπεία", Type: domain.TypeStructure, Priority: 2},
			{ID: "fix-medical", IssueDesc: "Absolute success claims", FixDesc: "Quote ranges with variability disclaimers", Type: domain.TypeMedical, Priority: 1},
		},
	}
}
