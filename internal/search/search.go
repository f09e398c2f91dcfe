// Package search defines the research lookup surface. The shape
// follows answer-engine APIs (one natural language query in, a ranked
// list of grounded findings out) rather than classic keyword search.
package search

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUnauthorized = errors.New("search API key rejected")
	ErrRateLimited  = errors.New("search rate limited")
	ErrBadQuery     = errors.New("search query rejected")
	ErrUnavailable  = errors.New("search backend unavailable")
	ErrNoResults    = errors.New("search returned no results")
)

type Client interface {
	Search(ctx context.Context, req Request) (*Response, error)
}

// Request describes one research lookup.
type Request struct {
	Query      string
	MaxResults int

	// Recency limits results by publication age: day, week, month or
	// year. Empty means no limit.
	Recency string

	// Domains restricts sources to the listed hosts; a leading dash
	// excludes a host instead.
	Domains []string
}

type Response struct {
	Query   string
	Results []Result
	Elapsed time.Duration
}

// Result is one citable finding. Score orders results within a
// response; it is not comparable across queries.
type Result struct {
	Title     string
	URL       string
	Snippet   string
	Score     float64
	Published string
}
