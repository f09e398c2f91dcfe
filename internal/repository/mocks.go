package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/akoutras/medpress/internal/domain"
)

type MockRunRepository struct {
	mu   sync.RWMutex
	runs map[string]*domain.ArticleRun
}

func NewMockRunRepository() *MockRunRepository {
	return &MockRunRepository{
		runs: make(map[string]*domain.ArticleRun),
	}
}

func (m *MockRunRepository) Create(ctx context.Context, run *domain.ArticleRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; exists {
		return domain.ErrDuplicateRun
	}

	copied := *run
	m.runs[run.ID] = &copied
	return nil
}

func (m *MockRunRepository) GetByID(ctx context.Context, id string) (*domain.ArticleRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, exists := m.runs[id]
	if !exists {
		return nil, domain.ErrRunNotFound
	}
	copied := *run
	return &copied, nil
}

func (m *MockRunRepository) List(ctx context.Context, limit int) ([]domain.ArticleRun, error) {
	return m.list(limit, func(*domain.ArticleRun) bool { return true })
}

func (m *MockRunRepository) ListByStatus(ctx context.Context, status domain.RunStatus, limit int) ([]domain.ArticleRun, error) {
	return m.list(limit, func(r *domain.ArticleRun) bool { return r.Status == status })
}

func (m *MockRunRepository) CountByStatus(ctx context.Context, status domain.RunStatus) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, run := range m.runs {
		if run.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *MockRunRepository) list(limit int, keep func(*domain.ArticleRun) bool) ([]domain.ArticleRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var runs []domain.ArticleRun
	for _, run := range m.runs {
		if keep(run) {
			runs = append(runs, *run)
		}
	}

	// newest first, matching the postgres ordering
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

type MockKnowledgeRepository struct {
	mu    sync.RWMutex
	facts map[string]*domain.Fact
}

func NewMockKnowledgeRepository() *MockKnowledgeRepository {
	return &MockKnowledgeRepository{
		facts: make(map[string]*domain.Fact),
	}
}

func (m *MockKnowledgeRepository) CreateFact(ctx context.Context, fact *domain.Fact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.facts[fact.ID]; exists {
		return domain.ErrDuplicateFact
	}

	copied := *fact
	m.facts[fact.ID] = &copied
	return nil
}

func (m *MockKnowledgeRepository) GetFactsByTopic(ctx context.Context, topic string, limit int) ([]domain.Fact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var facts []domain.Fact
	for _, f := range m.facts {
		if f.Topic == topic {
			facts = append(facts, *f)
		}
	}

	sort.Slice(facts, func(i, j int) bool {
		return facts[i].ExtractedAt.After(facts[j].ExtractedAt)
	})

	if limit > 0 && len(facts) > limit {
		facts = facts[:limit]
	}
	return facts, nil
}

func (m *MockKnowledgeRepository) SearchFacts(ctx context.Context, query string) ([]domain.Fact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(query)
	var facts []domain.Fact
	for _, f := range m.facts {
		if strings.Contains(strings.ToLower(f.Content), needle) {
			facts = append(facts, *f)
		}
	}

	sort.Slice(facts, func(i, j int) bool {
		return facts[i].ExtractedAt.After(facts[j].ExtractedAt)
	})
	return facts, nil
}

var (
	_ RunRepository       = (*MockRunRepository)(nil)
	_ KnowledgeRepository = (*MockKnowledgeRepository)(nil)
)
