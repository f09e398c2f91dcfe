package domain

import (
	"fmt"
	"strings"
)

type PatternType string

const (
	TypeVoice     PatternType = "voice"
	TypeStructure PatternType = "structure"
	TypeMedical   PatternType = "medical"
	TypeSEO       PatternType = "seo"
	TypeCultural  PatternType = "cultural"
)

func (t PatternType) IsValid() bool {
	switch t {
	case TypeVoice, TypeStructure, TypeMedical, TypeSEO, TypeCultural:
		return true
	}
	return false
}

func (t PatternType) String() string { return string(t) }

// Pattern - approved content rule. Matching is either by literal example
// substrings or by a type-specific heuristic keyed on the rule name.
type Pattern struct {
	ID          string
	Name        string
	Description string
	Type        PatternType
	Examples    []string
	Weight      int
	Required    bool
}

func (p Pattern) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: %w", ErrRuleDefinition, ErrEmptyRuleID)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: pattern %q: %w", ErrRuleDefinition, p.ID, ErrEmptyRuleName)
	}
	if !p.Type.IsValid() {
		return fmt.Errorf("%w: pattern %q: %w: %q", ErrRuleDefinition, p.ID, ErrInvalidRuleType, p.Type)
	}
	if p.Weight < 0 {
		return fmt.Errorf("%w: pattern %q: %w", ErrRuleDefinition, p.ID, ErrNegativeWeight)
	}
	return nil
}

// AntiPattern - forbidden content rule.
type AntiPattern struct {
	ID            string
	Name          string
	Description   string
	Type          PatternType
	Examples      []string
	PenaltyPoints int
	AutoFail      bool
}

func (p AntiPattern) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: %w", ErrRuleDefinition, ErrEmptyRuleID)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: anti-pattern %q: %w", ErrRuleDefinition, p.ID, ErrEmptyRuleName)
	}
	if !p.Type.IsValid() {
		return fmt.Errorf("%w: anti-pattern %q: %w: %q", ErrRuleDefinition, p.ID, ErrInvalidRuleType, p.Type)
	}
	if p.PenaltyPoints < 0 {
		return fmt.Errorf("%w: anti-pattern %q: %w", ErrRuleDefinition, p.ID, ErrNegativePenalty)
	}
	return nil
}

// Fix - canonical remediation advice for a rule type.
type Fix struct {
	ID        string
	IssueDesc string
	FixDesc   string
	Type      PatternType
	Priority  int // 1=high, 3=low
}

// RuleSet - everything a rule source supplies in one load.
type RuleSet struct {
	Patterns     []Pattern
	AntiPatterns []AntiPattern
	Fixes        []Fix
}

func (rs RuleSet) Validate() error {
	for _, p := range rs.Patterns {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	for _, ap := range rs.AntiPatterns {
		if err := ap.Validate(); err != nil {
			return err
		}
	}
	return nil
}
