package domain

// FinalStatus - terminal outcome of a retry loop.
type FinalStatus string

const (
	StatusPass FinalStatus = "PASS"
	StatusFail FinalStatus = "FAIL"
)

// ScoreTrend compares the first and last recorded scores.
type ScoreTrend string

const (
	TrendImproving ScoreTrend = "improving"
	TrendDeclining ScoreTrend = "declining"
	TrendStable    ScoreTrend = "stable"
)

// WordCountTrend compares the first and last recorded word counts.
type WordCountTrend string

const (
	WordsIncreasing WordCountTrend = "increasing"
	WordsDecreasing WordCountTrend = "decreasing"
	WordsStable     WordCountTrend = "stable"
)

// RetryAttempt - one row of retry history. Attempt is 1-based.
type RetryAttempt struct {
	Attempt        int      `json:"attempt"`
	Score          int      `json:"score"`
	Passed         bool     `json:"passed"`
	CriticalIssues []string `json:"critical_issues"`
	WordCount      int      `json:"word_count"`
}

// RetryFeedback is handed to the next generation attempt so the
// model knows what to fix.
type RetryFeedback struct {
	Attempt              int            `json:"attempt"`
	PreviousScore        int            `json:"previous_score"`
	Breakdown            ScoreBreakdown `json:"score_breakdown"`
	CriticalIssues       []string       `json:"critical_issues"`
	ImprovementsNeeded   []string       `json:"improvements_needed"`
	WordCountIssue       bool           `json:"word_count_issue"`
	SpecificInstructions []string       `json:"specific_instructions"`
}

// RetryAnalysis summarizes a finished retry history.
type RetryAnalysis struct {
	TotalAttempts    int            `json:"total_attempts"`
	ScoreTrend       ScoreTrend     `json:"score_trend"`
	ScoreMin         int            `json:"score_min"`
	ScoreMax         int            `json:"score_max"`
	MeanScore        float64        `json:"mean_score"`
	PersistentIssues []string       `json:"persistent_issues"`
	WordCountTrend   WordCountTrend `json:"word_count_trend"`
	FinalScore       int            `json:"final_score"`
	Recommendation   string         `json:"recommendation"`
}
