package quality

import (
	"strings"

	"github.com/akoutras/medpress/internal/domain"
)

// Quick-check first person indicators. Narrower than the scoring
// lexicon on purpose: this check trades recall for speed.
var quickFirstPerson = []string{" εγώ ", " με ", " μου "}

// QuickCheck runs cheap sanity checks on a draft before the full
// scoring pass. Issues cost 15 points each, warnings 5.
func QuickCheck(content string, targetWordCount int, lex *Lexicon) domain.QuickCheck {
	if lex == nil {
		lex = GreekMedical()
	}

	wordCount := len(strings.Fields(content))
	deviation := WordCountDeviation(wordCount, targetWordCount)

	issues := make([]string, 0, 4)
	warnings := make([]string, 0, 2)

	switch {
	case deviation < -15:
		issues = append(issues, "Word count critically low")
	case deviation < -5:
		warnings = append(warnings, "Word count below target")
	}

	if !strings.HasPrefix(content, "#") {
		issues = append(issues, "Missing H1 header")
	}

	h2Count := strings.Count(content, "\n##")
	if h2Count < 3 {
		warnings = append(warnings, "Few sections detected")
	}

	if containsAny(strings.ToLower(content), quickFirstPerson) {
		issues = append(issues, "First person usage detected")
	}

	if !strings.Contains(content, lex.Signature) {
		issues = append(issues, "Missing required signature")
	}

	h1Count := 0
	if strings.HasPrefix(content, "#") {
		h1Count = 1
	}

	return domain.QuickCheck{
		Score:     max(0, 100-len(issues)*15-len(warnings)*5),
		WordCount: wordCount,
		Deviation: deviation,
		Issues:    issues,
		Warnings:  warnings,
		Passes:    len(issues) == 0,
		Structure: domain.StructureMetrics{
			H1Count:        h1Count,
			H2Count:        h2Count,
			ParagraphCount: len(strings.Split(content, "\n\n")),
		},
	}
}
