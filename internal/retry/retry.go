package retry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/akoutras/medpress/internal/domain"
)

// DefaultMaxRetries is the retry count used when no configuration
// layer supplies one.
const DefaultMaxRetries = 3

// DefaultDelays is the backoff schedule between attempts. The last
// entry repeats for attempts beyond the table.
var DefaultDelays = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

// Sleeper abstracts the backoff delay so loops are testable without
// real waiting.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Operation produces one candidate result. For attempt > 0 the handler
// injects the attempt number and the previous evaluation; this is the
// only feedback channel into the next generation call.
type Operation[T any] func(ctx context.Context, retryCount int, prev *domain.Evaluation) (T, error)

// Evaluator judges one candidate result.
type Evaluator[T any] func(ctx context.Context, result T) (domain.Evaluation, error)

// Outcome is the final word of a retry loop. FinalStatus distinguishes
// a pass from exhaustion; both carry the last attempt's result.
type Outcome[T any] struct {
	Result      T                     `json:"result"`
	Evaluation  domain.Evaluation     `json:"evaluation"`
	RetryCount  int                   `json:"retry_count"`
	History     []domain.RetryAttempt `json:"retry_history"`
	FinalStatus domain.FinalStatus    `json:"final_status"`
}

type Config struct {
	// MaxRetries counts attempts after the first; zero means a single
	// attempt with no retries.
	MaxRetries int
	Delays     []time.Duration
}

// DefaultConfig returns the standard schedule. Callers that read
// configuration from the environment get their defaults there; this
// is for code paths with no config layer.
func DefaultConfig() Config {
	return Config{MaxRetries: DefaultMaxRetries, Delays: DefaultDelays}
}

func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidMaxRetries, c.MaxRetries)
	}
	for _, d := range c.Delays {
		if d <= 0 {
			return fmt.Errorf("%w: %v", domain.ErrInvalidRetryDelays, d)
		}
	}
	return nil
}

// Handler holds the loop configuration. Per-run state (history,
// attempt counter) lives inside Execute, so one handler is safe to
// share across concurrent runs.
type Handler struct {
	maxRetries int
	delays     []time.Duration
	sleeper    Sleeper
	logger     *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Delays) == 0 {
		cfg.Delays = DefaultDelays
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		maxRetries: cfg.MaxRetries,
		delays:     cfg.Delays,
		sleeper:    realSleeper{},
		logger:     logger,
	}, nil
}

// WithSleeper swaps the backoff clock. Tests use this to run loops
// without real delays.
func (h *Handler) WithSleeper(s Sleeper) *Handler {
	h.sleeper = s
	return h
}

func (h *Handler) MaxRetries() int { return h.maxRetries }

// Delay returns the backoff before attempt+1, repeating the last
// schedule entry beyond the table.
func (h *Handler) Delay(attempt int) time.Duration {
	return h.delays[min(attempt, len(h.delays)-1)]
}

// Execute runs op up to MaxRetries+1 times, evaluating each result.
// Generic functions cannot be methods, so the handler is an argument.
//
// Error semantics: op or eval errors on the last attempt propagate
// unchanged; earlier ones consume a retry slot after backoff. A result
// that merely fails the quality gate is never an error.
func Execute[T any](ctx context.Context, h *Handler, op Operation[T], eval Evaluator[T]) (*Outcome[T], error) {
	state := StateAttempting
	history := make([]domain.RetryAttempt, 0, h.maxRetries+1)

	var prev *domain.Evaluation

	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		h.logger.Info("retry attempt",
			zap.Int("attempt", attempt+1),
			zap.Int("of", h.maxRetries+1))

		retryCount := 0
		var prevArg *domain.Evaluation
		if attempt > 0 {
			retryCount = attempt
			prevArg = prev
		}

		result, err := op(ctx, retryCount, prevArg)
		if err != nil {
			if attempt == h.maxRetries {
				state, _ = Transition(state, StateFailed)
				return nil, err
			}
			h.logger.Warn("operation failed, retrying",
				zap.Error(err),
				zap.Int("attempt", attempt+1))
			state, _ = Transition(state, StateAttempting)
			if sleepErr := h.sleeper.Sleep(ctx, h.Delay(attempt)); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}

		if state, err = Transition(state, StateEvaluating); err != nil {
			return nil, err
		}

		evaluation, err := eval(ctx, result)
		if err != nil {
			if attempt == h.maxRetries {
				state, _ = Transition(state, StateFailed)
				return nil, err
			}
			h.logger.Warn("evaluation failed, retrying",
				zap.Error(err),
				zap.Int("attempt", attempt+1))
			state, _ = Transition(state, StateAttempting)
			if sleepErr := h.sleeper.Sleep(ctx, h.Delay(attempt)); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}

		history = append(history, domain.RetryAttempt{
			Attempt:        attempt + 1,
			Score:          evaluation.TotalScore,
			Passed:         evaluation.PassesQualityGate,
			CriticalIssues: append([]string(nil), evaluation.CriticalIssues...),
			WordCount:      evaluation.WordCountActual,
		})

		if evaluation.PassesQualityGate {
			state, _ = Transition(state, StateSucceeded)
			h.logger.Info("quality gate passed",
				zap.Int("attempt", attempt+1),
				zap.Int("score", evaluation.TotalScore))
			return &Outcome[T]{
				Result:      result,
				Evaluation:  evaluation,
				RetryCount:  attempt,
				History:     history,
				FinalStatus: domain.StatusPass,
			}, nil
		}

		if attempt == h.maxRetries {
			state, _ = Transition(state, StateExhausted)
			h.logger.Warn("retries exhausted",
				zap.Int("attempts", h.maxRetries+1),
				zap.Int("final_score", evaluation.TotalScore))
			return &Outcome[T]{
				Result:      result,
				Evaluation:  evaluation,
				RetryCount:  attempt,
				History:     history,
				FinalStatus: domain.StatusFail,
			}, nil
		}

		prev = &evaluation
		if state, err = Transition(state, StateAttempting); err != nil {
			return nil, err
		}

		h.logger.Info("quality gate failed, backing off",
			zap.Int("score", evaluation.TotalScore),
			zap.Duration("delay", h.Delay(attempt)))
		if err := h.sleeper.Sleep(ctx, h.Delay(attempt)); err != nil {
			return nil, err
		}
	}

	// Unreachable: the loop always returns from its last iteration.
	return nil, fmt.Errorf("retry loop ended without outcome")
}

// ShouldRetry reports whether another generation attempt could
// plausibly fix the evaluation. Passing results, catastrophically
// short drafts and structurally broken generations are not retried.
func (h *Handler) ShouldRetry(ev domain.Evaluation) bool {
	if ev.PassesQualityGate {
		return false
	}
	if ev.WordCountDeviation < -50 {
		h.logger.Info("skipping retry, word count critically low",
			zap.Float64("deviation", ev.WordCountDeviation))
		return false
	}
	if len(ev.CriticalIssues) > 3 {
		h.logger.Info("skipping retry, too many critical issues",
			zap.Int("count", len(ev.CriticalIssues)))
		return false
	}
	return true
}
