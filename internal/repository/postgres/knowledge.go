package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/akoutras/medpress/internal/domain"
)

type KnowledgeRepo struct {
	db *DB
}

func NewKnowledgeRepo(db *DB) *KnowledgeRepo {
	return &KnowledgeRepo{db: db}
}

func (r *KnowledgeRepo) CreateFact(ctx context.Context, fact *domain.Fact) error {
	query := `
		INSERT INTO facts (id, topic, content, source_url, evidence, extracted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING extracted_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		fact.ID,
		fact.Topic,
		fact.Content,
		nullString(fact.SourceURL),
		fact.Evidence.String(),
		fact.ExtractedAt,
	).Scan(&fact.ExtractedAt)

	if err != nil {
		if isDuplicateError(err) {
			return domain.ErrDuplicateFact
		}
		return fmt.Errorf("create fact: %w", err)
	}

	return nil
}

func (r *KnowledgeRepo) GetFactsByTopic(ctx context.Context, topic string, limit int) ([]domain.Fact, error) {
	query := `
		SELECT id, topic, content, source_url, evidence, extracted_at
		FROM facts
		WHERE topic = $1
		ORDER BY extracted_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, topic, limit)
	if err != nil {
		return nil, fmt.Errorf("get facts by topic: %w", err)
	}
	defer rows.Close()

	return scanFacts(rows)
}

func (r *KnowledgeRepo) SearchFacts(ctx context.Context, query string) ([]domain.Fact, error) {
	sqlQuery := `
		SELECT id, topic, content, source_url, evidence, extracted_at
		FROM facts
		WHERE to_tsvector('greek', content) @@ plainto_tsquery('greek', $1)
		ORDER BY ts_rank(to_tsvector('greek', content), plainto_tsquery('greek', $1)) DESC
	`

	rows, err := r.db.Pool.Query(ctx, sqlQuery, query)
	if err != nil {
		return nil, fmt.Errorf("search facts: %w", err)
	}
	defer rows.Close()

	return scanFacts(rows)
}

func scanFacts(rows pgx.Rows) ([]domain.Fact, error) {
	var facts []domain.Fact
	for rows.Next() {
		var f domain.Fact
		var sourceURL *string
		var evidence string
		err := rows.Scan(
			&f.ID,
			&f.Topic,
			&f.Content,
			&sourceURL,
			&evidence,
			&f.ExtractedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		if sourceURL != nil {
			f.SourceURL = *sourceURL
		}
		f.Evidence = domain.EvidenceLevel(evidence)
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
