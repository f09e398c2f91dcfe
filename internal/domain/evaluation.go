package domain

// Per-category score ceilings.
const (
	MaxVoiceScore     = 25
	MaxStructureScore = 25
	MaxMedicalScore   = 30
	MaxSEOScore       = 20
	MaxTotalScore     = 100
)

// ScoreBreakdown - per-category quality scores, each bounded by its ceiling.
type ScoreBreakdown struct {
	VoiceConsistency int `json:"voice_consistency"`
	StructureQuality int `json:"structure_quality"`
	MedicalAccuracy  int `json:"medical_accuracy"`
	SEOTechnical     int `json:"seo_technical"`
}

func (b ScoreBreakdown) Total() int {
	return b.VoiceConsistency + b.StructureQuality + b.MedicalAccuracy + b.SEOTechnical
}

// Evaluation - complete quality judgment for one article attempt.
// Created fresh per evaluation call and not mutated afterwards; the two
// derived fields (deviation, pass flag) are computed once by the engine.
type Evaluation struct {
	TotalScore int            `json:"total_score"`
	Breakdown  ScoreBreakdown `json:"score_breakdown"`

	WordCountActual    int     `json:"word_count_actual"`
	WordCountTarget    int     `json:"word_count_target"`
	WordCountDeviation float64 `json:"word_count_deviation_percent"`

	CriticalIssues    []string `json:"critical_issues"`
	Improvements      []string `json:"improvements_needed"`
	PassesQualityGate bool     `json:"passes_quality_gate"`

	RetryCount     int   `json:"retry_count"`
	PreviousScores []int `json:"previous_scores,omitempty"`
}

// DeterminePassStatus applies the quality gate: minimum total score plus a
// word-count-deviation floor. Only articles that are too short fail on
// deviation; there is no upper bound on overage.
func (e *Evaluation) DeterminePassStatus(passThreshold int, wordCountFailThreshold float64) bool {
	e.PassesQualityGate = e.TotalScore >= passThreshold && e.WordCountDeviation > wordCountFailThreshold
	return e.PassesQualityGate
}
