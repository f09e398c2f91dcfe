package domain

// Recommendation - next action after combining AI and pattern scores.
type Recommendation string

const (
	RecommendPublish       Recommendation = "PUBLISH"
	RecommendReview        Recommendation = "REVIEW"
	RecommendRetry         Recommendation = "RETRY"
	RecommendMajorRevision Recommendation = "MAJOR_REVISION"
)

// Describe returns the recommendation with its operator-facing note.
func (r Recommendation) Describe() string {
	switch r {
	case RecommendPublish:
		return "PUBLISH - Article meets all quality standards"
	case RecommendReview:
		return "REVIEW - Good quality but minor improvements recommended"
	case RecommendRetry:
		return "RETRY - Significant improvements needed"
	default:
		return "MAJOR_REVISION - Substantial rewrite required"
	}
}

// CombinedEvaluation merges the AI judge score with pattern validation.
type CombinedEvaluation struct {
	AIScore         int              `json:"ai_score"`
	ValidationScore int              `json:"validation_score"`
	CombinedScore   int              `json:"combined_score"`
	AIPasses        bool             `json:"ai_passes"`
	PatternValid    bool             `json:"pattern_valid"`
	Recommendation  Recommendation   `json:"recommendation"`
	Evaluation      Evaluation       `json:"evaluation"`
	Validation      ValidationResult `json:"validation"`
}

// QuickCheck - cheap pre-flight result, no full scoring pass.
type QuickCheck struct {
	Score     int              `json:"quick_score"`
	WordCount int              `json:"word_count_actual"`
	Deviation float64          `json:"word_count_deviation"`
	Issues    []string         `json:"issues"`
	Warnings  []string         `json:"warnings"`
	Passes    bool             `json:"passes_quick_check"`
	Structure StructureMetrics `json:"structure_metrics"`
}

// StructureMetrics - raw counts reported by the quick check.
type StructureMetrics struct {
	H1Count        int `json:"h1_count"`
	H2Count        int `json:"h2_count"`
	ParagraphCount int `json:"paragraph_count"`
}
