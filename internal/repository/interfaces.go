package repository

import (
	"context"

	"github.com/akoutras/medpress/internal/domain"
)

// RunRepository archives completed pipeline runs for auditing and the API.
type RunRepository interface {
	Create(ctx context.Context, run *domain.ArticleRun) error
	GetByID(ctx context.Context, id string) (*domain.ArticleRun, error)
	List(ctx context.Context, limit int) ([]domain.ArticleRun, error)
	ListByStatus(ctx context.Context, status domain.RunStatus, limit int) ([]domain.ArticleRun, error)
	CountByStatus(ctx context.Context, status domain.RunStatus) (int, error)
}

// KnowledgeRepository stores facts gathered during topic research so
// repeated runs on the same topic reuse earlier findings.
type KnowledgeRepository interface {
	CreateFact(ctx context.Context, fact *domain.Fact) error
	GetFactsByTopic(ctx context.Context, topic string, limit int) ([]domain.Fact, error)
	SearchFacts(ctx context.Context, query string) ([]domain.Fact, error)
}
