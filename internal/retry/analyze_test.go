package retry

import (
	"reflect"
	"strings"
	"testing"

	"github.com/akoutras/medpress/internal/domain"
)

func TestAnalyzeRetryPattern(t *testing.T) {
	tests := []struct {
		name           string
		history        []domain.RetryAttempt
		wantTrend      domain.ScoreTrend
		wantWordTrend  domain.WordCountTrend
		wantPersistent []string
		wantRecSubstr  string
	}{
		{
			name: "improving run",
			history: []domain.RetryAttempt{
				{Attempt: 1, Score: 60, WordCount: 1500},
				{Attempt: 2, Score: 72, WordCount: 1800},
				{Attempt: 3, Score: 85, WordCount: 2000},
			},
			wantTrend:     domain.TrendImproving,
			wantWordTrend: domain.WordsIncreasing,
			wantRecSubstr: "showing improvement",
		},
		{
			name: "stable with persistent issue",
			history: []domain.RetryAttempt{
				{Attempt: 1, Score: 70, WordCount: 1900, CriticalIssues: []string{"Missing variability disclaimers"}},
				{Attempt: 2, Score: 70, WordCount: 1900, CriticalIssues: []string{"Missing variability disclaimers"}},
			},
			wantTrend:      domain.TrendStable,
			wantWordTrend:  domain.WordsStable,
			wantPersistent: []string{"Missing variability disclaimers"},
			wantRecSubstr:  "persistent issues: Missing variability disclaimers",
		},
		{
			// A two-point gain is still a trend, so the recommendation
			// stays with the current approach even with an open issue.
			name: "small gain counts as improving",
			history: []domain.RetryAttempt{
				{Attempt: 1, Score: 80, WordCount: 1950, CriticalIssues: []string{"Missing variability disclaimers"}},
				{Attempt: 2, Score: 82, WordCount: 1950, CriticalIssues: []string{"Missing variability disclaimers"}},
			},
			wantTrend:      domain.TrendImproving,
			wantWordTrend:  domain.WordsStable,
			wantPersistent: []string{"Missing variability disclaimers"},
			wantRecSubstr:  "Continue with current approach",
		},
		{
			name: "declining run",
			history: []domain.RetryAttempt{
				{Attempt: 1, Score: 75, WordCount: 2000},
				{Attempt: 2, Score: 60, WordCount: 1400},
			},
			wantTrend:     domain.TrendDeclining,
			wantWordTrend: domain.WordsDecreasing,
			wantRecSubstr: "quality declining",
		},
		{
			name: "improving with many persistent issues falls back",
			history: []domain.RetryAttempt{
				{Attempt: 1, Score: 40, WordCount: 1000, CriticalIssues: []string{"a", "b"}},
				{Attempt: 2, Score: 55, WordCount: 1100, CriticalIssues: []string{"a", "b"}},
			},
			wantTrend:      domain.TrendImproving,
			wantWordTrend:  domain.WordsIncreasing,
			wantPersistent: []string{"a", "b"},
			wantRecSubstr:  "Standard retry approach",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeRetryPattern(tt.history)

			if got.TotalAttempts != len(tt.history) {
				t.Errorf("TotalAttempts = %d, want %d", got.TotalAttempts, len(tt.history))
			}
			if got.ScoreTrend != tt.wantTrend {
				t.Errorf("ScoreTrend = %v, want %v", got.ScoreTrend, tt.wantTrend)
			}
			if got.WordCountTrend != tt.wantWordTrend {
				t.Errorf("WordCountTrend = %v, want %v", got.WordCountTrend, tt.wantWordTrend)
			}
			if !reflect.DeepEqual(got.PersistentIssues, tt.wantPersistent) {
				t.Errorf("PersistentIssues = %v, want %v", got.PersistentIssues, tt.wantPersistent)
			}
			if !strings.Contains(got.Recommendation, tt.wantRecSubstr) {
				t.Errorf("Recommendation = %q, want substring %q", got.Recommendation, tt.wantRecSubstr)
			}
			if got.FinalScore != tt.history[len(tt.history)-1].Score {
				t.Errorf("FinalScore = %d, want %d", got.FinalScore, tt.history[len(tt.history)-1].Score)
			}
		})
	}
}

func TestAnalyzeRetryPattern_Statistics(t *testing.T) {
	history := []domain.RetryAttempt{
		{Attempt: 1, Score: 50, WordCount: 1500},
		{Attempt: 2, Score: 70, WordCount: 1800},
		{Attempt: 3, Score: 90, WordCount: 2000},
	}

	got := AnalyzeRetryPattern(history)
	if got.ScoreMin != 50 || got.ScoreMax != 90 {
		t.Errorf("score range = [%d, %d], want [50, 90]", got.ScoreMin, got.ScoreMax)
	}
	if got.MeanScore != 70 {
		t.Errorf("MeanScore = %v, want 70", got.MeanScore)
	}
}

func TestAnalyzeRetryPattern_EmptyHistory(t *testing.T) {
	got := AnalyzeRetryPattern(nil)
	if !reflect.DeepEqual(got, domain.RetryAnalysis{}) {
		t.Errorf("AnalyzeRetryPattern(nil) = %+v, want zero value", got)
	}
}
