package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/akoutras/medpress/internal/domain"
)

// FormatRunSummary renders a finished run as Telegram HTML.
func FormatRunSummary(run *domain.ArticleRun) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s <b>%s</b>\n\n", statusIcon(run.Status), statusLabel(run.Status)))
	sb.WriteString(fmt.Sprintf("Topic: %s\n", html.EscapeString(run.Topic)))
	sb.WriteString(fmt.Sprintf("Score: <b>%d/100</b>\n", run.FinalScore))
	sb.WriteString(fmt.Sprintf("Attempts: %d\n", run.Attempts))

	if len(run.History) > 1 {
		scores := make([]string, len(run.History))
		for i, att := range run.History {
			scores[i] = fmt.Sprintf("%d", att.Score)
		}
		sb.WriteString(fmt.Sprintf("Score history: %s\n", strings.Join(scores, " → ")))
	}

	if run.Analysis != nil {
		sb.WriteString(fmt.Sprintf("Trend: %s\n", run.Analysis.ScoreTrend))
		if len(run.Analysis.PersistentIssues) > 0 {
			sb.WriteString("\n<b>Persistent issues:</b>\n")
			for _, issue := range run.Analysis.PersistentIssues {
				sb.WriteString(fmt.Sprintf("• %s\n", html.EscapeString(issue)))
			}
		}
		if run.Analysis.Recommendation != "" {
			sb.WriteString(fmt.Sprintf("\n%s\n", html.EscapeString(run.Analysis.Recommendation)))
		}
	}

	if run.ArticleID != "" {
		sb.WriteString(fmt.Sprintf("\nArticle: <code>%s</code>\n", html.EscapeString(run.ArticleID)))
	}

	return sb.String()
}

func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var messages []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			messages = append(messages, text)
			break
		}

		splitPoint := findSafeSplitPoint(text, maxLen)
		if splitPoint <= 0 || splitPoint > len(text) {
			splitPoint = maxLen
		}

		messages = append(messages, text[:splitPoint])
		text = text[splitPoint:]
	}

	return messages
}

func findSafeSplitPoint(text string, maxLen int) int {
	// look for a space or newline without breaking HTML tags
	for i := maxLen - 1; i > maxLen/2; i-- {
		if i >= len(text) {
			continue
		}
		if isInsideHTMLTag(text, i) {
			continue
		}

		if text[i] == '\n' || text[i] == ' ' {
			return i + 1
		}
	}

	// inside a tag, scan forward for its end
	if maxLen < len(text) && isInsideHTMLTag(text, maxLen) {
		for i := maxLen; i < len(text); i++ {
			if text[i] == '>' {
				for j := i + 1; j < len(text) && j < i+50; j++ {
					if text[j] == '\n' || text[j] == ' ' {
						return j + 1
					}
				}
				return i + 1
			}
		}
	}

	for i := maxLen - 1; i > 0; i-- {
		if text[i] == ' ' || text[i] == '\n' {
			return i + 1
		}
	}

	return maxLen
}

func isInsideHTMLTag(text string, pos int) bool {
	if pos >= len(text) || pos < 0 {
		return false
	}
	for i := pos; i >= 0; i-- {
		if text[i] == '>' {
			return false
		}
		if text[i] == '<' {
			return true
		}
	}
	return false
}

func statusIcon(status domain.RunStatus) string {
	switch status {
	case domain.RunPublished:
		return "●"
	case domain.RunNeedsReview:
		return "◐"
	case domain.RunFailed:
		return "○"
	default:
		return "○"
	}
}

func statusLabel(status domain.RunStatus) string {
	switch status {
	case domain.RunPublished:
		return "Article published"
	case domain.RunNeedsReview:
		return "Article needs review"
	case domain.RunFailed:
		return "Generation failed"
	default:
		return "Run finished"
	}
}
