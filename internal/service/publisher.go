package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/akoutras/medpress/internal/domain"
	"github.com/akoutras/medpress/internal/metrics"
	"github.com/akoutras/medpress/internal/notify"
	"github.com/akoutras/medpress/internal/repository"
)

// DefaultForcePublishThreshold - minimum final score for the explicit
// force-publish override on a failed gate.
const DefaultForcePublishThreshold = 70

// Publisher archives finished runs and notifies the editorial channel.
// Archiving is the source of truth; a notification failure is logged
// but never fails the run.
type Publisher struct {
	runs           repository.RunRepository
	notifier       notify.Notifier
	logger         *zap.Logger
	metrics        *metrics.Metrics
	forceThreshold int
}

type PublisherDeps struct {
	Runs     repository.RunRepository
	Notifier notify.Notifier
	Logger   *zap.Logger
	Metrics  *metrics.Metrics

	// ForcePublishThreshold gates the explicit publish override for runs
	// that failed the quality gate. Zero means the default.
	ForcePublishThreshold int
}

func NewPublisher(deps PublisherDeps) *Publisher {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.ForcePublishThreshold == 0 {
		deps.ForcePublishThreshold = DefaultForcePublishThreshold
	}
	return &Publisher{
		runs:           deps.Runs,
		notifier:       deps.Notifier,
		logger:         deps.Logger,
		metrics:        deps.Metrics,
		forceThreshold: deps.ForcePublishThreshold,
	}
}

// Decide maps a retry outcome to the archived run status. A failed gate
// can still publish when the caller forces it and the score clears the
// force threshold.
func (p *Publisher) Decide(finalStatus domain.FinalStatus, score int, force bool) domain.RunStatus {
	if finalStatus == domain.StatusPass {
		return domain.RunPublished
	}
	if force && score >= p.forceThreshold {
		p.logger.Warn("force-publishing below quality gate",
			zap.Int("score", score),
			zap.Int("threshold", p.forceThreshold))
		return domain.RunPublished
	}
	return domain.RunNeedsReview
}

// Complete archives the run and sends the editorial notification.
func (p *Publisher) Complete(ctx context.Context, run *domain.ArticleRun) error {
	if err := p.runs.Create(ctx, run); err != nil {
		return fmt.Errorf("archive run %s: %w", run.ID, err)
	}

	if p.metrics != nil {
		p.metrics.RecordWorkflowRun(run.Status.String(), run.CompletedAt.Sub(run.StartedAt))
		p.metrics.RecordRetryAttempts(run.Status.String(), run.Attempts)
	}

	p.logger.Info("run archived",
		zap.String("run_id", run.ID),
		zap.String("topic", run.Topic),
		zap.String("status", run.Status.String()),
		zap.Int("final_score", run.FinalScore),
		zap.Int("attempts", run.Attempts),
	)

	if p.notifier != nil {
		if err := p.notifier.RunCompleted(ctx, run); err != nil {
			p.logger.Warn("notification failed",
				zap.String("run_id", run.ID),
				zap.Error(err))
		}
	}

	return nil
}
