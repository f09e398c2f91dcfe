package quality

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/akoutras/medpress/internal/domain"
)

// Minimum validation score for content to count as valid. Any
// anti-pattern violation invalidates regardless of score.
const validScoreThreshold = 70

// Word-boundary phrase lists for the voice diagnostics.
var (
	firstPersonWords = []string{"εγώ", "με", "μου", "μας"}
	thirdPersonWords = []string{"ο δρ", "η θεραπεία", "εφαρμόζει"}
)

// Validator checks content against approved patterns and forbidden
// anti-patterns. A rule matches either through one of its literal
// examples or through a heuristic keyed on the rule name.
type Validator struct {
	patterns     []domain.Pattern
	antiPatterns []domain.AntiPattern
	lex          *Lexicon
	absoluteRes  []*regexp.Regexp
	logger       *zap.Logger
}

func NewValidator(rules domain.RuleSet, lex *Lexicon, logger *zap.Logger) (*Validator, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if lex == nil {
		lex = GreekMedical()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	absoluteRes := make([]*regexp.Regexp, 0, len(lex.AbsoluteClaims))
	for _, src := range lex.AbsoluteClaims {
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("compile absolute claim pattern %q: %w", src, err)
		}
		absoluteRes = append(absoluteRes, re)
	}

	return &Validator{
		patterns:     rules.Patterns,
		antiPatterns: rules.AntiPatterns,
		lex:          lex,
		absoluteRes:  absoluteRes,
		logger:       logger,
	}, nil
}

// ValidateContent checks one article against every loaded rule.
func (v *Validator) ValidateContent(content string) domain.ValidationResult {
	lower := strings.ToLower(content)

	var matched []domain.Pattern
	for _, p := range v.patterns {
		if v.patternMatches(content, lower, p) {
			matched = append(matched, p)
		}
	}

	var violated []domain.AntiPattern
	for _, ap := range v.antiPatterns {
		if v.antiPatternMatches(lower, ap) {
			violated = append(violated, ap)
		}
	}

	score := validationScore(matched, violated)
	isValid := score >= validScoreThreshold && len(violated) == 0

	result := domain.ValidationResult{
		IsValid:              isValid,
		MatchedPatterns:      patternIDs(matched),
		ViolatedAntiPatterns: antiPatternIDs(violated),
		SuggestedFixes:       suggestFixes(violated),
		ValidationScore:      score,
		Feedback:             v.feedback(content, lower, len(matched), len(violated)),
	}

	v.logger.Debug("content validated",
		zap.Int("score", score),
		zap.Bool("valid", isValid),
		zap.Int("matched", len(matched)),
		zap.Int("violations", len(violated)))

	return result
}

func (v *Validator) patternMatches(content, lower string, p domain.Pattern) bool {
	for _, example := range p.Examples {
		if strings.Contains(lower, strings.ToLower(example)) {
			return true
		}
	}

	name := strings.ToLower(p.Name)
	switch p.Type {
	case domain.TypeVoice:
		if strings.Contains(name, "third_person") {
			return containsAny(lower, v.lex.ThirdPersonCore)
		}
	case domain.TypeStructure:
		if strings.Contains(name, "logical_flow") {
			return sectionsInOrder(extractHeadings(content), v.lex.SectionOrder)
		}
	case domain.TypeMedical:
		if strings.Contains(name, "success_rate") {
			return successRangeRe.MatchString(content)
		}
	}
	return false
}

func (v *Validator) antiPatternMatches(lower string, ap domain.AntiPattern) bool {
	for _, example := range ap.Examples {
		if strings.Contains(lower, strings.ToLower(example)) {
			return true
		}
	}

	name := strings.ToLower(ap.Name)
	switch ap.Type {
	case domain.TypeVoice:
		if strings.Contains(name, "first_person") {
			return containsAny(lower, v.lex.FirstPerson)
		}
	case domain.TypeStructure:
		if strings.Contains(name, "emotional") {
			return containsAny(lower, v.lex.Emotional)
		}
	case domain.TypeMedical:
		if strings.Contains(name, "absolute_claims") {
			for _, re := range v.absoluteRes {
				if re.MatchString(lower) {
					return true
				}
			}
		}
	}
	return false
}

// extractHeadings returns lowercased titles of every heading line
// starting with "##", subsections included.
func extractHeadings(content string) []string {
	var headings []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "##") {
			headings = append(headings, strings.ToLower(strings.TrimSpace(strings.ReplaceAll(line, "##", ""))))
		}
	}
	return headings
}

// sectionsInOrder reports whether the expected keywords that do appear
// in the headings appear in the expected relative order.
func sectionsInOrder(headings, expected []string) bool {
	indices := make(map[string]int)
	for i, heading := range headings {
		for _, exp := range expected {
			if strings.Contains(heading, exp) {
				indices[exp] = i
				break
			}
		}
	}

	prev := -1
	for _, exp := range expected {
		idx, ok := indices[exp]
		if !ok {
			continue
		}
		if idx < prev {
			return false
		}
		prev = idx
	}
	return true
}

// validationScore sums matched pattern weights (10 points each weight
// unit) minus violation penalties, clamped to [0, 100].
func validationScore(matched []domain.Pattern, violated []domain.AntiPattern) int {
	score := 0
	for _, p := range matched {
		score += p.Weight * 10
	}
	for _, ap := range violated {
		score -= ap.PenaltyPoints
	}
	return max(0, min(100, score))
}

func suggestFixes(violated []domain.AntiPattern) []string {
	fixes := make([]string, 0, len(violated))
	seen := make(map[string]struct{})

	for _, ap := range violated {
		var fix string
		switch ap.Type {
		case domain.TypeVoice:
			fix = "voice_fix_third_person"
		case domain.TypeStructure:
			fix = "structure_fix_logical_flow"
		case domain.TypeMedical:
			fix = "medical_fix_ranges"
		default:
			continue
		}
		if _, ok := seen[fix]; ok {
			continue
		}
		seen[fix] = struct{}{}
		fixes = append(fixes, fix)
	}

	return fixes
}

func patternIDs(patterns []domain.Pattern) []string {
	ids := make([]string, 0, len(patterns))
	for _, p := range patterns {
		ids = append(ids, p.ID)
	}
	return ids
}

func antiPatternIDs(patterns []domain.AntiPattern) []string {
	ids := make([]string, 0, len(patterns))
	for _, p := range patterns {
		ids = append(ids, p.ID)
	}
	return ids
}

func (v *Validator) feedback(content, lower string, matched, violated int) domain.ValidationFeedback {
	return domain.ValidationFeedback{
		ContentLength:       utf8.RuneCountInString(content),
		SectionsFound:       len(extractHeadings(content)),
		MatchedPatternCount: matched,
		ViolationCount:      violated,
		Voice:               analyzeVoice(lower),
		Structure:           analyzeStructure(content),
		Medical:             v.analyzeMedical(content, lower),
	}
}

func analyzeVoice(lower string) domain.VoiceAnalysis {
	first := countWholeWords(lower, firstPersonWords)
	third := countWholeWords(lower, thirdPersonWords)
	return domain.VoiceAnalysis{
		FirstPersonUsage: first,
		ThirdPersonUsage: third,
		VoiceConsistent:  third > first,
	}
}

func analyzeStructure(content string) domain.StructureAnalysis {
	paragraphs := strings.Split(content, "\n\n")

	words := 0
	for _, p := range paragraphs {
		words += len(strings.Fields(p))
	}

	return domain.StructureAnalysis{
		SectionCount:    len(extractHeadings(content)),
		ParagraphCount:  len(paragraphs),
		AvgParagraphLen: float64(words) / float64(len(paragraphs)),
	}
}

func (v *Validator) analyzeMedical(content, lower string) domain.MedicalAnalysis {
	return domain.MedicalAnalysis{
		SuccessRateRanges: len(successRangeRe.FindAllString(content, -1)),
		AbsoluteClaims:    len(absoluteClaimRe.FindAllString(lower, -1)),
		MedicalTerms:      countOccurrences(lower, v.lex.MedicalTerms),
	}
}

// countWholeWords counts whole-word occurrences of each phrase. Word
// boundaries follow unicode letters and digits so Greek tokenizes
// correctly.
func countWholeWords(lower string, phrases []string) int {
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	count := 0
	for _, phrase := range phrases {
		want := strings.Fields(phrase)
		if len(want) == 0 {
			continue
		}
		for i := 0; i+len(want) <= len(tokens); i++ {
			match := true
			for j, w := range want {
				if tokens[i+j] != w {
					match = false
					break
				}
			}
			if match {
				count++
			}
		}
	}
	return count
}
