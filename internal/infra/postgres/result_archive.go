package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quizwise-service/internal/app"
	"quizwise-service/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultArchive stores completed quiz results as JSONB rows.
type ResultArchive struct {
	pool *pgxpool.Pool
}

func NewResultArchive(pool *pgxpool.Pool) *ResultArchive {
	return &ResultArchive{pool: pool}
}

func (a *ResultArchive) SaveResult(ctx context.Context, sessionID string, result domain.QuizResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = a.pool.Exec(ctx,
		`INSERT INTO quiz_results (session_id, data) VALUES ($1, $2::jsonb)`,
		sessionID, string(data))
	if err != nil {
		return fmt.Errorf("archive result: %w", err)
	}
	return nil
}

func (a *ResultArchive) RecentResults(ctx context.Context, limit int) ([]app.ArchivedResult, error) {
	rows, err := a.pool.Query(ctx,
		`SELECT session_id, data, created_at FROM quiz_results ORDER BY created_at DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	results := make([]app.ArchivedResult, 0, limit)
	for rows.Next() {
		var (
			sessionID string
			raw       []byte
			createdAt time.Time
		)
		if err := rows.Scan(&sessionID, &raw, &createdAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		var result domain.QuizResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		results = append(results, app.ArchivedResult{
			SessionID: sessionID,
			Result:    result,
			CreatedAt: createdAt,
		})
	}
	return results, rows.Err()
}
