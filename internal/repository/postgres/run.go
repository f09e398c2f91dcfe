package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/akoutras/medpress/internal/domain"
)

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) Create(ctx context.Context, run *domain.ArticleRun) error {
	history, err := json.Marshal(run.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	var analysis []byte
	if run.Analysis != nil {
		analysis, err = json.Marshal(run.Analysis)
		if err != nil {
			return fmt.Errorf("marshal analysis: %w", err)
		}
	}

	query := `
		INSERT INTO article_runs (id, topic, status, final_score, attempts, history, analysis, article_id, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.Pool.Exec(ctx, query,
		run.ID,
		run.Topic,
		run.Status.String(),
		run.FinalScore,
		run.Attempts,
		history,
		analysis,
		nullString(run.ArticleID),
		run.StartedAt,
		run.CompletedAt,
	)

	if err != nil {
		if isDuplicateError(err) {
			return domain.ErrDuplicateRun
		}
		return fmt.Errorf("create run: %w", err)
	}

	return nil
}

func (r *RunRepo) GetByID(ctx context.Context, id string) (*domain.ArticleRun, error) {
	query := `
		SELECT id, topic, status, final_score, attempts, history, analysis, article_id, started_at, completed_at
		FROM article_runs
		WHERE id = $1
	`

	run, err := scanRun(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("get run by id: %w", err)
	}
	return run, nil
}

func (r *RunRepo) List(ctx context.Context, limit int) ([]domain.ArticleRun, error) {
	query := `
		SELECT id, topic, status, final_score, attempts, history, analysis, article_id, started_at, completed_at
		FROM article_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

func (r *RunRepo) ListByStatus(ctx context.Context, status domain.RunStatus, limit int) ([]domain.ArticleRun, error) {
	query := `
		SELECT id, topic, status, final_score, attempts, history, analysis, article_id, started_at, completed_at
		FROM article_runs
		WHERE status = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, status.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs by status: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

func (r *RunRepo) CountByStatus(ctx context.Context, status domain.RunStatus) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM article_runs WHERE status = $1`,
		status.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count runs by status: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.ArticleRun, error) {
	var run domain.ArticleRun
	var status string
	var history []byte
	var analysis []byte
	var articleID *string

	err := row.Scan(
		&run.ID,
		&run.Topic,
		&status,
		&run.FinalScore,
		&run.Attempts,
		&history,
		&analysis,
		&articleID,
		&run.StartedAt,
		&run.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Status = domain.RunStatus(status)
	if articleID != nil {
		run.ArticleID = *articleID
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &run.History); err != nil {
			return nil, fmt.Errorf("unmarshal history: %w", err)
		}
	}
	if len(analysis) > 0 {
		run.Analysis = &domain.RetryAnalysis{}
		if err := json.Unmarshal(analysis, run.Analysis); err != nil {
			return nil, fmt.Errorf("unmarshal analysis: %w", err)
		}
	}

	return &run, nil
}

func scanRuns(rows pgx.Rows) ([]domain.ArticleRun, error) {
	var runs []domain.ArticleRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// isDuplicateError checks if the error is a PostgreSQL unique constraint violation
func isDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
