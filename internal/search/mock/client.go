package mock

import (
	"context"
	"sync"
	"time"

	"github.com/akoutras/medpress/internal/search"
)

type Client struct {
	Results []search.Result
	Error   error
	Delay   time.Duration

	CallCount   int
	LastRequest search.Request
	AllRequests []search.Request

	mu sync.Mutex
}

func New() *Client {
	return &Client{}
}

func (c *Client) WithResults(results []search.Result) *Client {
	c.Results = results
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastRequest = req
	c.AllRequests = append(c.AllRequests, req)
	delay := c.Delay
	err := c.Error
	results := c.Results
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, search.ErrNoResults
	}

	return &search.Response{
		Query:   req.Query,
		Results: results,
		Elapsed: 500 * time.Millisecond,
	}, nil
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.LastRequest = search.Request{}
	c.AllRequests = nil
}

var _ search.Client = (*Client)(nil)
