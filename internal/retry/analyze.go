package retry

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/akoutras/medpress/internal/domain"
)

// AnalyzeRetryPattern summarizes a finished retry history: score and
// word count trends, issues that recurred across attempts, and a
// terminal recommendation.
func AnalyzeRetryPattern(history []domain.RetryAttempt) domain.RetryAnalysis {
	if len(history) == 0 {
		return domain.RetryAnalysis{}
	}

	scores := make([]float64, len(history))
	minScore, maxScore := history[0].Score, history[0].Score
	for i, attempt := range history {
		scores[i] = float64(attempt.Score)
		minScore = min(minScore, attempt.Score)
		maxScore = max(maxScore, attempt.Score)
	}
	mean, _ := stats.Mean(scores)

	persistent := persistentIssues(history)
	trend := scoreTrend(history[0].Score, history[len(history)-1].Score)

	return domain.RetryAnalysis{
		TotalAttempts:    len(history),
		ScoreTrend:       trend,
		ScoreMin:         minScore,
		ScoreMax:         maxScore,
		MeanScore:        mean,
		PersistentIssues: persistent,
		WordCountTrend:   wordCountTrend(history[0].WordCount, history[len(history)-1].WordCount),
		FinalScore:       history[len(history)-1].Score,
		Recommendation:   recommendation(trend, persistent),
	}
}

// scoreTrend compares first and last attempt only; any movement,
// however small, counts as a trend.
func scoreTrend(first, last int) domain.ScoreTrend {
	switch {
	case last > first:
		return domain.TrendImproving
	case last < first:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

func wordCountTrend(first, last int) domain.WordCountTrend {
	switch {
	case last > first:
		return domain.WordsIncreasing
	case last < first:
		return domain.WordsDecreasing
	default:
		return domain.WordsStable
	}
}

// persistentIssues returns issues seen in more than one attempt, in
// first-appearance order.
func persistentIssues(history []domain.RetryAttempt) []string {
	frequency := make(map[string]int)
	var order []string

	for _, attempt := range history {
		for _, issue := range attempt.CriticalIssues {
			if frequency[issue] == 0 {
				order = append(order, issue)
			}
			frequency[issue]++
		}
	}

	var persistent []string
	for _, issue := range order {
		if frequency[issue] > 1 {
			persistent = append(persistent, issue)
		}
	}
	return persistent
}

func recommendation(trend domain.ScoreTrend, persistent []string) string {
	switch {
	case trend == domain.TrendImproving && len(persistent) <= 1:
		return "Continue with current approach - showing improvement"
	case trend == domain.TrendStable && len(persistent) > 0:
		shown := persistent
		if len(shown) > 2 {
			shown = shown[:2]
		}
		return fmt.Sprintf("Focus on resolving persistent issues: %s", strings.Join(shown, ", "))
	case trend == domain.TrendDeclining:
		return "Consider fundamental approach change - quality declining"
	default:
		return "Standard retry approach - monitor for improvement"
	}
}
