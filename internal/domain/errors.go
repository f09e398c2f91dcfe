package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

var (
	ErrRuleDefinition  = errors.New("invalid rule definition")
	ErrEmptyRuleID     = errors.New("rule id is required")
	ErrEmptyRuleName   = errors.New("rule name is required")
	ErrInvalidRuleType = errors.New("invalid rule type")
	ErrNegativeWeight  = errors.New("pattern weight must be non-negative")
	ErrNegativePenalty = errors.New("anti-pattern penalty must be non-negative")
)

var (
	ErrEmptyTopic        = errors.New("empty topic")
	ErrTopicTooLong      = errors.New("topic too long")
	ErrInvalidWordTarget = errors.New("target word count must be positive")
	ErrEmptyArticle      = errors.New("empty article text")
)

var (
	ErrRunNotFound         = errors.New("run not found")
	ErrDuplicateRun        = errors.New("run already exists")
	ErrRunAlreadyPublished = errors.New("run already published")
)

var (
	ErrEmptyFactContent = errors.New("empty fact content")
	ErrInvalidEvidence  = errors.New("invalid evidence level")
	ErrInvalidFactURL   = errors.New("invalid fact source url")
	ErrDuplicateFact    = errors.New("fact already exists")
)

var (
	ErrInvalidMaxRetries    = errors.New("max retries must be non-negative")
	ErrInvalidRetryDelays   = errors.New("retry delays must be positive")
	ErrInvalidPassThreshold = errors.New("pass threshold must be between 0 and 100")
)
