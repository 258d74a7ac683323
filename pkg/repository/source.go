package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/pushscope/pkg/domain"
)

// SourceRepository handles feed source operations
type SourceRepository struct {
	db *sqlx.DB
}

// sourceSQL represents a source for SQL operations
type sourceSQL struct {
	ID          int64      `db:"id"`
	URL         string     `db:"url"`
	Title       string     `db:"title"`
	LastFetched *time.Time `db:"last_fetched"`
	NextFetch   *time.Time `db:"next_fetch"`
	ErrorCount  int        `db:"error_count"`
	LastError   string     `db:"last_error"`
	Enabled     bool       `db:"enabled"`
	CreatedAt   time.Time  `db:"created_at"`
}

// NewSourceRepository creates a new source repository
func NewSourceRepository(db *sqlx.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// SyncSources makes the enabled set of sources equal to urls, keeping fetch state of known ones
func (r *SourceRepository) SyncSources(ctx context.Context, urls []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "UPDATE sources SET enabled = 0"); err != nil {
		return fmt.Errorf("disable sources: %w", err)
	}
	for _, u := range urls {
		query := `
			INSERT INTO sources (url, enabled) VALUES (?, 1)
			ON CONFLICT(url) DO UPDATE SET enabled = 1
		`
		if _, err := tx.ExecContext(ctx, query, u); err != nil {
			return fmt.Errorf("upsert source %s: %w", u, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetSources returns all sources ordered by url
func (r *SourceRepository) GetSources(ctx context.Context, enabledOnly bool) ([]domain.Source, error) {
	query := "SELECT * FROM sources"
	if enabledOnly {
		query += " WHERE enabled = 1"
	}
	query += " ORDER BY url"

	var rows []sourceSQL
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("get sources: %w", err)
	}
	res := make([]domain.Source, len(rows))
	for i, s := range rows {
		res[i] = s.toDomain()
	}
	return res, nil
}

// SourcesToFetch returns enabled sources due for fetching at now
func (r *SourceRepository) SourcesToFetch(ctx context.Context, now time.Time, limit int) ([]domain.Source, error) {
	query := `
		SELECT * FROM sources
		WHERE enabled = 1
		AND (next_fetch IS NULL OR next_fetch <= ?)
		ORDER BY next_fetch ASC, url
		LIMIT ?
	`
	var rows []sourceSQL
	if err := r.db.SelectContext(ctx, &rows, query, utc(now), limit); err != nil {
		return nil, fmt.Errorf("get sources to fetch: %w", err)
	}
	res := make([]domain.Source, len(rows))
	for i, s := range rows {
		res[i] = s.toDomain()
	}
	return res, nil
}

// UpdateSourceFetched records a successful fetch and resets the error counter
func (r *SourceRepository) UpdateSourceFetched(ctx context.Context, id int64, title string, fetched, nextFetch time.Time) error {
	return withLockRetry(ctx, "update source fetched", func() error {
		query := `
			UPDATE sources
			SET title = CASE WHEN ? != '' THEN ? ELSE title END,
			    last_fetched = ?,
			    next_fetch = ?,
			    error_count = 0,
			    last_error = ''
			WHERE id = ?
		`
		_, err := r.db.ExecContext(ctx, query, title, title, utc(fetched), utc(nextFetch), id)
		return err
	})
}

// UpdateSourceError records a failed fetch, the source is retried at nextFetch
func (r *SourceRepository) UpdateSourceError(ctx context.Context, id int64, errMsg string, nextFetch time.Time) error {
	return withLockRetry(ctx, "update source error", func() error {
		query := `
			UPDATE sources
			SET error_count = error_count + 1,
			    last_error = ?,
			    next_fetch = ?
			WHERE id = ?
		`
		_, err := r.db.ExecContext(ctx, query, errMsg, utc(nextFetch), id)
		return err
	})
}

func (s *sourceSQL) toDomain() domain.Source {
	return domain.Source{
		ID:          s.ID,
		URL:         s.URL,
		Title:       s.Title,
		LastFetched: s.LastFetched,
		NextFetch:   s.NextFetch,
		ErrorCount:  s.ErrorCount,
		LastError:   s.LastError,
		Enabled:     s.Enabled,
		CreatedAt:   s.CreatedAt,
	}
}
