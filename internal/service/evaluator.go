package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/akoutras/medpress/internal/domain"
	"github.com/akoutras/medpress/internal/llm"
	"github.com/akoutras/medpress/internal/metrics"
	"github.com/akoutras/medpress/internal/quality"
)

const criticSystemPrompt = `You are a strict quality judge for Greek medical articles written for an orthopedic surgeon's blog.

Score the article across four categories:
1. VOICE (0-25): third person only, credentials mentioned once, professional tone
2. STRUCTURE (0-25): logical flow, short paragraphs, clean section transitions
3. MEDICAL ACCURACY (0-30): success rates as ranges, variability mentioned, terms explained
4. SEO/TECHNICAL (0-20): keyword placement, markdown formatting, word count accuracy

Response format (JSON only):
{
  "total_score": 0-100,
  "critical_issues": ["issue1"],
  "improvements_needed": ["improvement1"]
}`

// Relative weights of the AI judge vs deterministic pattern validation
// in the combined score.
const (
	aiScoreWeight         = 0.7
	validationScoreWeight = 0.3
	patternInvalidPenalty = 10
)

// Evaluator combines the deterministic scoring engine, the rule-based
// validator, and an optional LLM judge into one combined verdict. When
// no LLM client is configured (or the judge fails) the engine total
// stands in for the AI score, keeping the pipeline fully offline.
var _ ArticleEvaluator = (*Evaluator)(nil)

type Evaluator struct {
	engine  *quality.Engine
	lex     *quality.Lexicon
	llm     llm.Client
	logger  *zap.Logger
	metrics *metrics.Metrics

	provider string

	mu        sync.RWMutex
	validator *quality.Validator
}

type EvaluatorDeps struct {
	Engine  *quality.Engine
	Rules   domain.RuleSet
	Lexicon *quality.Lexicon

	// LLM is optional; when nil the deterministic engine score is used
	// as the AI score.
	LLM      llm.Client
	Provider string

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func NewEvaluator(deps EvaluatorDeps) (*Evaluator, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Lexicon == nil {
		deps.Lexicon = quality.GreekMedical()
	}
	if deps.Engine == nil {
		cfg := quality.DefaultEngineConfig()
		cfg.Lexicon = deps.Lexicon
		deps.Engine = quality.NewEngine(cfg, deps.Logger)
	}
	if deps.Provider == "" {
		deps.Provider = "openrouter"
	}

	validator, err := quality.NewValidator(deps.Rules, deps.Lexicon, deps.Logger)
	if err != nil {
		return nil, err
	}

	return &Evaluator{
		engine:    deps.Engine,
		lex:       deps.Lexicon,
		llm:       deps.LLM,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		provider:  deps.Provider,
		validator: validator,
	}, nil
}

// SetRules rebuilds the validator from a freshly loaded rule set. Wired
// to the rules watcher so editorial changes take effect without restart.
func (e *Evaluator) SetRules(rules domain.RuleSet) error {
	validator, err := quality.NewValidator(rules, e.lex, e.logger)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordRulesReload(false)
		}
		return err
	}

	e.mu.Lock()
	e.validator = validator
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.RecordRulesReload(true)
	}
	return nil
}

// Evaluate runs the deterministic engine only. This is the path the
// retry loop gates on; it never touches the network.
func (e *Evaluator) Evaluate(content string, targetWordCount int, topic string, retryCount int) domain.Evaluation {
	ev := e.engine.EvaluateArticle(content, targetWordCount, topic, retryCount)
	if e.metrics != nil {
		e.metrics.RecordEvaluation(ev.PassesQualityGate, ev.TotalScore)
	}
	return ev
}

// Validate checks content against the currently loaded rule set.
func (e *Evaluator) Validate(content string) domain.ValidationResult {
	e.mu.RLock()
	v := e.validator
	e.mu.RUnlock()
	return v.ValidateContent(content)
}

// QuickCheck runs the cheap structural pre-flight without full scoring.
func (e *Evaluator) QuickCheck(content string, targetWordCount int) domain.QuickCheck {
	return quality.QuickCheck(content, targetWordCount, e.lex)
}

// EvaluateCombined produces the final verdict: AI score and pattern
// validation merged into one recommendation.
func (e *Evaluator) EvaluateCombined(ctx context.Context, content string, targetWordCount int, topic string, retryCount int) domain.CombinedEvaluation {
	evaluation := e.Evaluate(content, targetWordCount, topic, retryCount)
	validation := e.Validate(content)

	aiScore := evaluation.TotalScore
	if e.llm != nil {
		if judged, ok := e.judgeScore(ctx, content, &evaluation); ok {
			aiScore = judged
		}
	}

	combined := int(aiScoreWeight*float64(aiScore) + validationScoreWeight*float64(validation.ValidationScore))
	if !validation.IsValid {
		combined -= patternInvalidPenalty
	}
	combined = min(max(combined, 0), domain.MaxTotalScore)

	result := domain.CombinedEvaluation{
		AIScore:         aiScore,
		ValidationScore: validation.ValidationScore,
		CombinedScore:   combined,
		AIPasses:        evaluation.PassesQualityGate,
		PatternValid:    validation.IsValid,
		Recommendation:  recommend(evaluation.PassesQualityGate, validation.IsValid, aiScore),
		Evaluation:      evaluation,
		Validation:      validation,
	}

	e.logger.Info("combined evaluation",
		zap.String("topic", topic),
		zap.Int("ai_score", aiScore),
		zap.Int("validation_score", validation.ValidationScore),
		zap.Int("combined_score", combined),
		zap.String("recommendation", string(result.Recommendation)),
	)

	return result
}

// AI score floors for the non-publish recommendations. REVIEW also
// requires a clean pattern validation; a pattern-invalid article can
// do no better than RETRY.
const (
	reviewScoreFloor = 70
	retryScoreFloor  = 60
)

func recommend(aiPasses, patternValid bool, aiScore int) domain.Recommendation {
	switch {
	case aiPasses && patternValid:
		return domain.RecommendPublish
	case aiScore >= reviewScoreFloor && patternValid:
		return domain.RecommendReview
	case aiScore >= retryScoreFloor:
		return domain.RecommendRetry
	default:
		return domain.RecommendMajorRevision
	}
}

// judgeScore asks the LLM judge for a total score. A failed request or
// unparseable answer falls back to the engine score; evaluation stays
// deterministic in that case and issues from the judge are merged in
// when available.
func (e *Evaluator) judgeScore(ctx context.Context, content string, evaluation *domain.Evaluation) (int, bool) {
	response, err := e.llm.Complete(ctx, llm.Prompt{
		System: criticSystemPrompt,
		User:   content,
		Params: llm.JudgeParams,
	})
	if err != nil {
		e.logger.Warn("LLM judge failed, using engine score", zap.Error(err))
		return 0, false
	}

	var parsed struct {
		TotalScore         int      `json:"total_score"`
		CriticalIssues     []string `json:"critical_issues"`
		ImprovementsNeeded []string `json:"improvements_needed"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		e.logger.Warn("failed to parse judge response as JSON",
			zap.Error(err),
			zap.String("response", response),
		)
		return 0, false
	}
	if parsed.TotalScore < 0 || parsed.TotalScore > domain.MaxTotalScore {
		e.logger.Warn("judge score out of range", zap.Int("score", parsed.TotalScore))
		return 0, false
	}

	evaluation.CriticalIssues = append(evaluation.CriticalIssues, parsed.CriticalIssues...)
	evaluation.Improvements = append(evaluation.Improvements, parsed.ImprovementsNeeded...)
	return parsed.TotalScore, true
}

// extractJSON pulls the first balanced JSON object out of an LLM answer
// that may contain prose around it.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return s
	}

	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}
