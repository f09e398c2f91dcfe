package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/akoutras/medpress/internal/domain"
	"github.com/akoutras/medpress/internal/markdown"
	"github.com/akoutras/medpress/internal/metrics"
	"github.com/akoutras/medpress/internal/repository"
	"github.com/akoutras/medpress/internal/retry"
)

const defaultBatchConcurrency = 3

// RunOptions tweaks a single pipeline run.
type RunOptions struct {
	// ForcePublish publishes a gate-failed article when its score clears
	// the publisher's force threshold.
	ForcePublish bool

	// PriorEvaluation seeds the first generation attempt with feedback
	// from an earlier failed run.
	PriorEvaluation *domain.Evaluation
}

// RunResult bundles everything one pipeline run produced.
type RunResult struct {
	Run      *domain.ArticleRun        `json:"run"`
	Article  *domain.Article           `json:"article,omitempty"`
	Combined domain.CombinedEvaluation `json:"combined_evaluation"`
}

// ArticleEvaluator is the slice of the evaluator the workflow needs:
// the deterministic gate for the retry loop and the combined verdict.
type ArticleEvaluator interface {
	Evaluate(content string, targetWordCount int, topic string, retryCount int) domain.Evaluation
	EvaluateCombined(ctx context.Context, content string, targetWordCount int, topic string, retryCount int) domain.CombinedEvaluation
}

// Workflow drives the full pipeline: research, generate with retries,
// evaluate, archive, notify.
type Workflow struct {
	research  ResearchService
	generator Generator
	evaluator ArticleEvaluator
	publisher *Publisher
	retries   *retry.Handler
	runs      repository.RunRepository
	logger    *zap.Logger
	metrics   *metrics.Metrics

	batchLimit int
	startedAt  time.Time
}

type WorkflowDeps struct {
	Research  ResearchService
	Generator Generator
	Evaluator ArticleEvaluator
	Publisher *Publisher
	Retries   *retry.Handler
	Runs      repository.RunRepository
	Logger    *zap.Logger
	Metrics   *metrics.Metrics

	BatchConcurrency int
}

func NewWorkflow(deps WorkflowDeps) *Workflow {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.BatchConcurrency <= 0 {
		deps.BatchConcurrency = defaultBatchConcurrency
	}
	return &Workflow{
		research:   deps.Research,
		generator:  deps.Generator,
		evaluator:  deps.Evaluator,
		publisher:  deps.Publisher,
		retries:    deps.Retries,
		runs:       deps.Runs,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		batchLimit: deps.BatchConcurrency,
		startedAt:  time.Now(),
	}
}

// Run executes the pipeline for one article request.
func (w *Workflow) Run(ctx context.Context, req domain.GenerationRequest, opts RunOptions) (*RunResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	started := time.Now()

	w.logger.Info("workflow started",
		zap.String("run_id", runID),
		zap.String("topic", req.Topic),
		zap.Int("word_target", req.WordCountTarget),
	)

	// Research failures degrade to generation without sources rather
	// than aborting the run.
	research, err := w.research.Research(ctx, req.Topic)
	if err != nil {
		w.logger.Warn("research failed, generating without sources",
			zap.String("run_id", runID),
			zap.Error(err))
		research = nil
	}

	op := func(ctx context.Context, retryCount int, prev *domain.Evaluation) (*domain.Draft, error) {
		feedback := feedbackFor(retryCount, prev, opts.PriorEvaluation)
		return w.generator.Generate(ctx, req, research, feedback)
	}
	eval := func(ctx context.Context, draft *domain.Draft) (domain.Evaluation, error) {
		return w.evaluator.Evaluate(draft.Content, req.WordCountTarget, req.Topic, draft.Attempt-1), nil
	}

	outcome, err := retry.Execute(ctx, w.retries, op, eval)
	if err != nil {
		run := w.failedRun(runID, req.Topic, started, outcome)
		if archiveErr := w.publisher.Complete(ctx, run); archiveErr != nil {
			w.logger.Error("failed to archive failed run",
				zap.String("run_id", runID),
				zap.Error(archiveErr))
		}
		return nil, err
	}

	combined := w.evaluator.EvaluateCombined(ctx, outcome.Result.Content, req.WordCountTarget, req.Topic, outcome.RetryCount)

	status := w.publisher.Decide(outcome.FinalStatus, combined.CombinedScore, opts.ForcePublish)

	run := &domain.ArticleRun{
		ID:          runID,
		Topic:       req.Topic,
		Status:      status,
		FinalScore:  combined.CombinedScore,
		Attempts:    outcome.RetryCount + 1,
		History:     outcome.History,
		StartedAt:   started,
		CompletedAt: time.Now(),
	}
	if len(outcome.History) > 1 {
		analysis := retry.AnalyzeRetryPattern(outcome.History)
		run.Analysis = &analysis
	}

	var article *domain.Article
	if status == domain.RunPublished {
		article = w.buildArticle(req.Topic, outcome)
		run.ArticleID = article.ID
	}

	if err := w.publisher.Complete(ctx, run); err != nil {
		return nil, err
	}

	w.logger.Info("workflow completed",
		zap.String("run_id", runID),
		zap.String("status", status.String()),
		zap.Int("combined_score", combined.CombinedScore),
		zap.Duration("duration", time.Since(started)),
	)

	return &RunResult{Run: run, Article: article, Combined: combined}, nil
}

// RunBatch processes several requests concurrently. Individual failures
// are collected rather than cancelling sibling runs.
func (w *Workflow) RunBatch(ctx context.Context, reqs []domain.GenerationRequest, opts RunOptions) ([]RunResult, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.batchLimit)

	var mu sync.Mutex
	results := make([]RunResult, 0, len(reqs))

	for _, req := range reqs {
		g.Go(func() error {
			res, err := w.Run(ctx, req, opts)
			if err != nil {
				w.logger.Error("batch run failed",
					zap.String("topic", req.Topic),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			results = append(results, *res)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Run.StartedAt.Before(results[j].Run.StartedAt)
	})
	return results, nil
}

// RetryFailed re-runs an archived run, seeding the first attempt with
// the evaluation recorded for its last attempt.
func (w *Workflow) RetryFailed(ctx context.Context, runID string, req domain.GenerationRequest) (*RunResult, error) {
	prev, err := w.runs.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if prev.Status == domain.RunPublished {
		return nil, domain.ErrRunAlreadyPublished
	}

	if req.Topic == "" {
		req.Topic = prev.Topic
	}

	opts := RunOptions{}
	if last := lastAttempt(prev.History); last != nil {
		opts.PriorEvaluation = &domain.Evaluation{
			TotalScore:      last.Score,
			CriticalIssues:  last.CriticalIssues,
			WordCountActual: last.WordCount,
			WordCountTarget: req.WordCountTarget,
			RetryCount:      last.Attempt - 1,
		}
	}

	w.logger.Info("retrying failed run",
		zap.String("previous_run_id", runID),
		zap.String("topic", req.Topic))

	return w.Run(ctx, req, opts)
}

// Health reports a liveness snapshot for the API.
type Health struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime"`
	Checks map[string]string `json:"checks"`
}

func (w *Workflow) Health(ctx context.Context) Health {
	checks := map[string]string{
		"research":  componentStatus(w.research != nil),
		"generator": componentStatus(w.generator != nil),
		"evaluator": componentStatus(w.evaluator != nil),
		"archive":   componentStatus(w.runs != nil),
	}

	if w.runs != nil {
		if _, err := w.runs.CountByStatus(ctx, domain.RunPublished); err != nil {
			checks["archive"] = "error: " + err.Error()
		}
	}

	status := "ok"
	for _, v := range checks {
		if v != "ok" {
			status = "degraded"
			break
		}
	}

	return Health{
		Status: status,
		Uptime: time.Since(w.startedAt).Round(time.Second).String(),
		Checks: checks,
	}
}

func componentStatus(configured bool) string {
	if configured {
		return "ok"
	}
	return "not configured"
}

// feedbackFor builds retry feedback for one generation attempt. The
// first attempt only carries feedback when a prior run's evaluation
// was injected.
func feedbackFor(retryCount int, prev, prior *domain.Evaluation) *domain.RetryFeedback {
	switch {
	case prev != nil:
		fb := retry.GenerateFeedback(*prev)
		return &fb
	case retryCount == 0 && prior != nil:
		fb := retry.GenerateFeedback(*prior)
		return &fb
	default:
		return nil
	}
}

func (w *Workflow) buildArticle(topic string, outcome *retry.Outcome[*domain.Draft]) *domain.Article {
	article := &domain.Article{
		ID:         uuid.NewString(),
		Topic:      topic,
		Content:    outcome.Result.Content,
		WordCount:  outcome.Result.WordCount,
		Evaluation: &outcome.Evaluation,
		CreatedAt:  time.Now(),
	}

	html, err := markdown.RenderHTML(outcome.Result.Content)
	if err != nil {
		w.logger.Warn("failed to render article HTML", zap.Error(err))
	} else {
		article.HTML = html
	}
	return article
}

func (w *Workflow) failedRun(runID, topic string, started time.Time, outcome *retry.Outcome[*domain.Draft]) *domain.ArticleRun {
	run := &domain.ArticleRun{
		ID:          runID,
		Topic:       topic,
		Status:      domain.RunFailed,
		StartedAt:   started,
		CompletedAt: time.Now(),
	}
	if outcome != nil {
		run.FinalScore = outcome.Evaluation.TotalScore
		run.Attempts = outcome.RetryCount + 1
		run.History = outcome.History
	}
	return run
}

func lastAttempt(history []domain.RetryAttempt) *domain.RetryAttempt {
	if len(history) == 0 {
		return nil
	}
	return &history[len(history)-1]
}
