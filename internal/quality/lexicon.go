// Package quality implements the deterministic quality gate for
// generated articles: a rule-free scoring engine, a pattern validator
// and a cheap pre-flight check. All checks run on lowercased content
// against a pluggable lexicon of indicator phrases.
package quality

import "strings"

// Lexicon holds the indicator phrases the scorers look for. All entries
// must be lowercase; matching is done against lowercased content.
type Lexicon struct {
	// Voice indicators.
	ThirdPerson     []string // full list used by the scoring engine
	ThirdPersonCore []string // shorter list used by pattern heuristics
	FirstPerson     []string
	Professional    []string
	Credentials     []string

	// Emotional content. EmotionalStories is the narrower subset that
	// triggers a critical issue instead of a mere point deduction.
	Emotional        []string
	EmotionalStories []string

	// Medical claim hedging. VariabilityCore is the subset whose total
	// absence is treated as a critical issue.
	Variability     []string
	VariabilityCore []string

	// Terms that should be followed by a plain-language explanation
	// in parentheses, and the broader term list used for diagnostics.
	ExplainableTerms []string
	MedicalTerms     []string

	// Pairs of claims that contradict each other when both appear.
	Contradictions [][2]string

	// Regular expressions for absolute success claims.
	AbsoluteClaims []string

	// Section heading keywords. SectionFlow is the order the scoring
	// engine expects, SectionOrder the one the validator heuristic uses.
	SectionFlow  []string
	SectionOrder []string

	// Author signature every published article must carry.
	Signature string
}

// GreekMedical returns the lexicon for Dr. Chloros' Greek orthopedic
// articles. This is the default when no lexicon is injected.
func GreekMedical() *Lexicon {
	return &Lexicon{
		ThirdPerson: []string{
			"ο δρ", "η θεραπεία", "η επέμβαση", "το πρόβλημα",
			"εφαρμόζει", "χρησιμοποιεί", "συνιστά", "περιλαμβάνει",
		},
		ThirdPersonCore: []string{
			"ο δρ", "η θεραπεία", "η επέμβαση", "το πρόβλημα",
			"εφαρμόζει", "χρησιμοποιεί", "συνιστά",
		},
		FirstPerson: []string{
			" εγώ ", " με ", " μου ", " μας ", "πιστεύω", "νομίζω",
			"συνιστώ", "προτείνω", "χρησιμοποιώ",
		},
		Professional: []string{
			"ιατρικός", "κλινικός", "θεραπευτικός", "χειρουργικός",
			"επιστημονικός", "αποτελεσματικός",
		},
		Credentials: []string{"vcu medical center", "leeds hospital"},
		Emotional: []string{
			"προσωπικές ιστορίες", "ιστορία ασθενούς", "συναισθήματα",
			"φόβος", "ανησυχία", "στενοχώρια",
		},
		EmotionalStories: []string{
			"προσωπικές ιστορίες", "ιστορία ασθενούς", "συναισθήματα",
		},
		Variability: []string{
			"μεταβλητότητα", "εξαρτάται", "διαφέρει", "ποικίλλει",
			"ατομικές διαφορές", "περίπτωση",
		},
		VariabilityCore: []string{
			"μεταβλητότητα", "εξαρτάται", "διαφέρει", "ποικίλλει",
		},
		ExplainableTerms: []string{"χόνδρος", "σύνδεσμος", "μηνίσκος", "αρθρίτιδα"},
		MedicalTerms: []string{
			"χόνδρος", "σύνδεσμος", "μηνίσκος", "αρθρίτιδα", "επέμβαση",
			"θεραπεία", "αποκατάσταση", "φυσιοθεραπεία", "χειρουργική",
		},
		Contradictions: [][2]string{
			{"αυξάνει", "μειώνει"},
			{"υψηλός", "χαμηλός"},
			{"αποτελεσματικός", "αναποτελεσματικός"},
			{"ασφαλής", "επικίνδυνος"},
			{"συνιστάται", "δεν συνιστάται"},
		},
		AbsoluteClaims: []string{
			`\d{1,2}% επιτυχία`, `πάντα επιτυχής`, `ποτέ αποτυγχάνει`,
		},
		SectionFlow:  []string{"ανατομία", "συμπτώματα", "διάγνωση", "θεραπεία", "αποκατάσταση"},
		SectionOrder: []string{"ανατομία", "συμπτώματα", "διάγνωση", "θεραπεία"},
		Signature:    "Δρ. Γεώργιος Χλωρός",
	}
}

func countOccurrences(lower string, phrases []string) int {
	total := 0
	for _, p := range phrases {
		total += strings.Count(lower, p)
	}
	return total
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
