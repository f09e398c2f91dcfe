package domain

import "time"

// RunStatus - terminal state of one article pipeline run.
type RunStatus string

const (
	RunPublished   RunStatus = "published"
	RunNeedsReview RunStatus = "needs_review"
	RunFailed      RunStatus = "failed"
)

func (s RunStatus) IsValid() bool {
	switch s {
	case RunPublished, RunNeedsReview, RunFailed:
		return true
	}
	return false
}

func (s RunStatus) String() string { return string(s) }

// ArticleRun records one full pipeline execution with its retry history.
type ArticleRun struct {
	ID          string
	Topic       string
	Status      RunStatus
	FinalScore  int
	Attempts    int
	History     []RetryAttempt
	Analysis    *RetryAnalysis
	ArticleID   string // empty when nothing was published
	StartedAt   time.Time
	CompletedAt time.Time
}
