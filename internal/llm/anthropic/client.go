// Package anthropic adapts the Anthropic Messages API to the llm.Client
// interface. It is the default provider for article evaluation, where
// long Greek prompts benefit from the larger context window.
package anthropic

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/akoutras/medpress/internal/llm"
)

const defaultModel = sdk.ModelClaudeSonnet4_20250514

type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int64
}

type Client struct {
	client    sdk.Client
	model     sdk.Model
	maxTokens int64
	logger    *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	model := sdk.Model(cfg.Model)
	if cfg.Model == "" {
		model = defaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 8192
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client:    sdk.NewClient(opts...),
		model:     model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
}

func (c *Client) Complete(ctx context.Context, p llm.Prompt) (string, error) {
	maxTokens := c.maxTokens
	if p.Params.MaxTokens > 0 {
		maxTokens = int64(p.Params.MaxTokens)
	}

	params := sdk.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System: []sdk.TextBlockParam{
			{Text: p.System},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(p.User)),
		},
	}
	if p.Params.Temperature > 0 {
		params.Temperature = sdk.Float(p.Params.Temperature)
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			switch apiErr.StatusCode {
			case 401:
				return "", llm.ErrAuthFailed
			case 429:
				return "", llm.ErrRateLimit
			}
		}
		c.logger.Error("anthropic request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", llm.ErrRequestFailed, err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

var _ llm.Client = (*Client)(nil)
