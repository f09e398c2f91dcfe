package retry

import (
	"fmt"
	"strings"

	"github.com/akoutras/medpress/internal/domain"
)

// Sub-score thresholds below which the feedback tables fire.
const (
	lowVoiceScore     = 20
	lowStructureScore = 20
	lowMedicalScore   = 24
	lowSEOScore       = 16

	wordCountIssueThreshold = -15.0
)

// GenerateFeedback turns a failed evaluation into the structured
// feedback block injected into the next generation prompt. Purely
// derived from the evaluation; same input, same output.
func GenerateFeedback(ev domain.Evaluation) domain.RetryFeedback {
	return domain.RetryFeedback{
		Attempt:              ev.RetryCount + 1,
		PreviousScore:        ev.TotalScore,
		Breakdown:            ev.Breakdown,
		CriticalIssues:       append([]string(nil), ev.CriticalIssues...),
		ImprovementsNeeded:   append([]string(nil), ev.Improvements...),
		WordCountIssue:       ev.WordCountDeviation < wordCountIssueThreshold,
		SpecificInstructions: specificInstructions(ev),
	}
}

// specificInstructions assembles directives from a static table keyed
// on low sub-scores and specific critical issues.
func specificInstructions(ev domain.Evaluation) []string {
	var out []string

	if ev.Breakdown.VoiceConsistency < lowVoiceScore {
		out = append(out,
			"CRITICAL: Use only Γ' ενικό (third person) - 'Ο Δρ. Χλωρός εφαρμόζει', never 'εγώ' or 'μου'",
			"Mention credentials (VCU Medical Center, Leeds Hospital) only once in introduction")
	}
	if ev.Breakdown.StructureQuality < lowStructureScore {
		out = append(out,
			"Follow logical flow: Ανατομία → Συμπτώματα → Διάγνωση → Θεραπεία → Αποκατάσταση",
			"Keep paragraphs to 2-3 sentences maximum",
			"Remove any repetitive content or redundant sections")
	}
	if ev.Breakdown.MedicalAccuracy < lowMedicalScore {
		out = append(out,
			"Use success rate RANGES (75-85%) not exact percentages (80%)",
			"Include variability disclaimers: 'εξαρτάται από', 'διαφέρει ανάλογα με'",
			"Explain Greek medical terms: 'χόνδρος (το προστατευτικό στρώμα)'")
	}
	if ev.Breakdown.SEOTechnical < lowSEOScore {
		out = append(out,
			"Ensure main keyword appears in H1 title and first paragraph",
			"Use proper markdown: # for H1, ## for H2, **bold** for emphasis",
			"Add bullet points and numbered lists where appropriate")
	}

	if ev.WordCountDeviation < wordCountIssueThreshold {
		increase := int(-ev.WordCountDeviation * float64(ev.WordCountTarget) / 100)
		out = append(out,
			fmt.Sprintf("CRITICAL: Increase content by approximately %d words", increase),
			"Expand medical explanations, add more detail to treatment sections")
	}

	for _, issue := range ev.CriticalIssues {
		switch {
		case strings.Contains(issue, "Α' ενικό"):
			out = append(out, "ELIMINATE ALL first person references immediately")
		case strings.Contains(issue, "Emotional stories"):
			out = append(out, "REMOVE all emotional content and personal stories")
		case strings.Contains(issue, "variability disclaimers"):
			out = append(out, "ADD variability disclaimers to all success rates and outcomes")
		}
	}

	return out
}
