// Package perplexity implements search.Client on top of the
// Perplexity Sonar API. Each query returns a synthesized answer plus
// the web sources it was grounded on; both are surfaced as results so
// the research stage has citable material.
package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/akoutras/medpress/internal/search"
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.perplexity.ai"
	}
	if cfg.Model == "" {
		cfg.Model = "sonar"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type sonarRequest struct {
	Model               string         `json:"model"`
	Messages            []sonarMessage `json:"messages"`
	Temperature         float64        `json:"temperature"`
	MaxTokens           int            `json:"max_tokens"`
	SearchDomainFilter  []string       `json:"search_domain_filter,omitempty"`
	SearchRecencyFilter string         `json:"search_recency_filter,omitempty"`
}

type sonarMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type sonarResponse struct {
	Choices       []sonarChoice `json:"choices"`
	SearchResults []sonarSource `json:"search_results"`
}

type sonarChoice struct {
	Message sonarMessage `json:"message"`
}

type sonarSource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Date  string `json:"date"`
}

func (c *Client) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	if req.MaxResults == 0 {
		req.MaxResults = 5
	}

	sonarReq := sonarRequest{
		Model: c.model,
		Messages: []sonarMessage{
			{Role: "system", Content: "Summarize current, well-sourced findings for the query. Prefer clinical and academic sources."},
			{Role: "user", Content: req.Query},
		},
		Temperature:         0.3,
		MaxTokens:           2000,
		SearchDomainFilter:  req.Domains,
		SearchRecencyFilter: recency(req.Recency),
	}

	body, err := json.Marshal(sonarReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	start := time.Now()

	var lastErr error
	backoff := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	for attempt := 0; attempt <= len(backoff); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff[attempt-1]):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("do request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var sonarResp sonarResponse
			if err := json.Unmarshal(respBody, &sonarResp); err != nil {
				return nil, fmt.Errorf("unmarshal response: %w", err)
			}

			out := c.toResponse(req, &sonarResp)
			out.Elapsed = time.Since(start)
			if len(out.Results) == 0 {
				return nil, search.ErrNoResults
			}
			return out, nil

		case http.StatusUnauthorized:
			return nil, search.ErrUnauthorized

		case http.StatusTooManyRequests:
			return nil, search.ErrRateLimited

		case http.StatusBadRequest:
			return nil, search.ErrBadQuery

		default:
			if resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("%w: status %d", search.ErrUnavailable, resp.StatusCode)
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", search.ErrUnavailable, lastErr)
	}
	return nil, search.ErrUnavailable
}

func (c *Client) toResponse(req search.Request, resp *sonarResponse) *search.Response {
	var answer string
	if len(resp.Choices) > 0 {
		answer = resp.Choices[0].Message.Content
	}

	sources := resp.SearchResults
	if len(sources) > req.MaxResults {
		sources = sources[:req.MaxResults]
	}

	results := make([]search.Result, 0, len(sources)+1)
	if answer != "" {
		results = append(results, search.Result{
			Title:   "Synthesized answer",
			Snippet: answer,
			Score:   1.0,
		})
	}
	// Sources rank by position in the grounding list.
	for i, src := range sources {
		results = append(results, search.Result{
			Title:     src.Title,
			URL:       src.URL,
			Score:     1.0 - float64(i)*0.1,
			Published: src.Date,
		})
	}

	return &search.Response{
		Query:   req.Query,
		Results: results,
	}
}

// recency drops values the API would reject rather than failing the
// whole query over a filter.
func recency(r string) string {
	switch r {
	case "day", "week", "month", "year":
		return r
	default:
		return ""
	}
}

var _ search.Client = (*Client)(nil)
