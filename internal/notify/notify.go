// Package notify delivers editorial notifications about finished
// pipeline runs. Delivery is outbound only; nothing listens for
// replies.
package notify

import (
	"context"
	"sync"

	"github.com/akoutras/medpress/internal/domain"
)

type Notifier interface {
	RunCompleted(ctx context.Context, run *domain.ArticleRun) error
}

// Mock records notifications for tests.
type Mock struct {
	Error error

	mu        sync.Mutex
	CallCount int
	LastRun   *domain.ArticleRun
	AllRuns   []*domain.ArticleRun
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) WithError(err error) *Mock {
	m.Error = err
	return m
}

func (m *Mock) RunCompleted(ctx context.Context, run *domain.ArticleRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastRun = run
	m.AllRuns = append(m.AllRuns, run)
	return m.Error
}

var _ Notifier = (*Mock)(nil)
