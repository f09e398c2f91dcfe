// Package llm defines the completion surface shared by the article
// generator and the quality judge, plus helpers common to the
// chat-completion providers.
package llm

import (
	"context"
	"errors"
)

var (
	ErrAuthFailed    = errors.New("provider rejected API key")
	ErrRequestFailed = errors.New("completion request failed")
	ErrEmptyResponse = errors.New("provider returned no content")
	ErrRateLimit     = errors.New("provider rate limit hit")
)

type Client interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Prompt is one completion call: persona and task split across the
// system/user messages, plus the sampling parameters for this call.
type Prompt struct {
	System string
	User   string
	Params Params
}

// Params tunes sampling per task. Zero values defer to the provider's
// defaults.
type Params struct {
	Temperature float64
	MaxTokens   int
}

// Article generation wants long, mildly creative output; judging wants
// short, near-deterministic output.
var (
	GenerationParams = Params{Temperature: 0.4, MaxTokens: 30000}
	JudgeParams      = Params{Temperature: 0.1, MaxTokens: 3000}
)
