package mock

import (
	"context"
	"strings"
	"time"

	"github.com/akoutras/medpress/internal/llm"
)

type Client struct {
	Response string
	Error    error
	Delay    time.Duration

	CallCount  int
	LastSystem string
	LastPrompt string
	LastParams llm.Params
	AllCalls   []LLMCall
}

type LLMCall struct {
	System string
	Prompt string
	Params llm.Params
}

func New() *Client {
	return &Client{
		Response: "This is a mock completion.",
	}
}

func (c *Client) WithResponse(response string) *Client {
	c.Response = response
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

func (c *Client) Complete(ctx context.Context, p llm.Prompt) (string, error) {
	c.CallCount++
	c.LastSystem = p.System
	c.LastPrompt = p.User
	c.LastParams = p.Params
	c.AllCalls = append(c.AllCalls, LLMCall{System: p.System, Prompt: p.User, Params: p.Params})

	if c.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.Delay):
		}
	}

	if c.Error != nil {
		return "", c.Error
	}

	return c.Response, nil
}

func (c *Client) Reset() {
	c.CallCount = 0
	c.LastSystem = ""
	c.LastPrompt = ""
	c.LastParams = llm.Params{}
	c.AllCalls = nil
}

// HasSystemContaining reports whether any recorded call used a system
// prompt containing the given substring.
func (c *Client) HasSystemContaining(substr string) bool {
	for _, call := range c.AllCalls {
		if strings.Contains(call.System, substr) {
			return true
		}
	}
	return false
}

var _ llm.Client = (*Client)(nil)
