package postgres

import (
	"context"
	"fmt"

	"github.com/gapa64/async-web-monitoring/internal/domain/result"
)

var _ result.Sink = (*ResultRepo)(nil)

// ResultRepo persists classified results: successes into check_results,
// everything else into check_errors.
type ResultRepo struct{ db *DB }

func NewResultRepo(db *DB) *ResultRepo { return &ResultRepo{db: db} }

const (
	qInsertResult = `
INSERT INTO check_results (url, status_code, ts, elapsed_ms, matched)
VALUES ($1, $2, $3, $4, $5)
RETURNING id;`

	qInsertError = `
INSERT INTO check_errors (url, status_code, ts, elapsed_ms, kind, detail)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id;`
)

func (r *ResultRepo) RecordSuccess(ctx context.Context, res *result.Result) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var id int64
	if err := r.db.Pool.QueryRow(ctx, qInsertResult,
		res.URL, res.StatusCode, res.Timestamp, res.ElapsedMS(), res.Detail,
	).Scan(&id); err != nil {
		return fmt.Errorf("insert check result: %w", translateErr(err))
	}
	return nil
}

func (r *ResultRepo) RecordError(ctx context.Context, res *result.Result) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var id int64
	if err := r.db.Pool.QueryRow(ctx, qInsertError,
		res.URL, res.StatusCode, res.Timestamp, res.ElapsedMS(), string(res.Kind), res.Detail,
	).Scan(&id); err != nil {
		return fmt.Errorf("insert check error: %w", translateErr(err))
	}
	return nil
}
