package mysql

import (
	"context"
	"database/sql"
	"time"

	"review_scraper/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) RecordRun(ctx context.Context, run domain.ScrapeRun) error {
	_, err := r.db.ExecContext(ctx, insertRunSQL,
		run.ID,
		run.TargetURL,
		valStr(run.Strategy),
		run.Count,
		run.Synthetic,
		valStr(run.NavErr),
		run.Duration.Milliseconds(),
		run.CreatedAt.UTC(),
	)
	return err
}

func (r *Repo) ListRuns(ctx context.Context, limit int) ([]domain.ScrapeRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listRunsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ScrapeRun, 0, limit)
	for rows.Next() {
		var (
			run      domain.ScrapeRun
			strategy sql.NullString
			navErr   sql.NullString
			ms       int64
		)
		if err := rows.Scan(&run.ID, &run.TargetURL, &strategy, &run.Count, &run.Synthetic, &navErr, &ms, &run.CreatedAt); err != nil {
			return nil, err
		}
		run.Strategy = strategy.String
		run.NavErr = navErr.String
		run.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, run)
	}
	return out, rows.Err()
}
