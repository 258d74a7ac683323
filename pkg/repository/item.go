package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/pushscope/pkg/domain"
)

// ItemRepository handles item-related database operations
type ItemRepository struct {
	db *sqlx.DB
}

// itemSQL represents an item for SQL operations
type itemSQL struct {
	ID              int64      `db:"id"`
	ExternalID      string     `db:"external_id"`
	Text            string     `db:"text"`
	URL             string     `db:"url"`
	AuthorName      string     `db:"author_name"`
	AuthorFollowers int64      `db:"author_followers"`
	AuthorVerified  bool       `db:"author_verified"`
	Likes           int64      `db:"likes"`
	Retweets        int64      `db:"retweets"`
	Replies         int64      `db:"replies"`
	Quotes          int64      `db:"quotes"`
	Lang            string     `db:"lang"`
	HasMedia        bool       `db:"has_media"`
	HasLinks        bool       `db:"has_links"`
	CreatedAt       time.Time  `db:"created_at"`
	IngestedAt      time.Time  `db:"ingested_at"`
	Score           float64    `db:"score"`
	ScoredAt        *time.Time `db:"scored_at"`
	ProcessedAt     *time.Time `db:"processed_at"`
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// CreateItem inserts a new item and sets its ID. Returns false if an item with
// the same external id is already stored, the stored one is left untouched and its
// ID and ProcessedAt are copied into item.
func (r *ItemRepository) CreateItem(ctx context.Context, item *domain.Item) (bool, error) {
	if err := item.Validate(); err != nil {
		return false, err
	}
	if item.IngestedAt.IsZero() {
		item.IngestedAt = time.Now()
	}

	row := toItemSQL(item)
	query := `
		INSERT INTO items (
			external_id, text, url, author_name, author_followers, author_verified,
			likes, retweets, replies, quotes, lang, has_media, has_links,
			created_at, ingested_at, score, scored_at
		) VALUES (
			:external_id, :text, :url, :author_name, :author_followers, :author_verified,
			:likes, :retweets, :replies, :quotes, :lang, :has_media, :has_links,
			:created_at, :ingested_at, :score, :scored_at
		)
		ON CONFLICT(external_id) DO NOTHING
	`
	var created bool
	err := withLockRetry(ctx, "create item", func() error {
		res, err := r.db.NamedExecContext(ctx, query, row)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		item.ID, created = id, true
		return nil
	})
	if err != nil || created {
		return created, err
	}

	var known struct {
		ID          int64      `db:"id"`
		ProcessedAt *time.Time `db:"processed_at"`
	}
	if err := r.db.GetContext(ctx, &known, "SELECT id, processed_at FROM items WHERE external_id = ?", item.ExternalID); err != nil {
		return false, fmt.Errorf("get known item %s: %w", item.ExternalID, err)
	}
	item.ID, item.ProcessedAt = known.ID, known.ProcessedAt
	return false, nil
}

// GetItem retrieves an item by ID
func (r *ItemRepository) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	var row itemSQL
	err := r.db.GetContext(ctx, &row, "SELECT * FROM items WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return row.toDomain(), nil
}

// UpdateItemScore stores a recomputed score, the only mutable part of an item
func (r *ItemRepository) UpdateItemScore(ctx context.Context, id int64, score float64, scoredAt time.Time) error {
	return withLockRetry(ctx, "update item score", func() error {
		_, err := r.db.ExecContext(ctx, "UPDATE items SET score = ?, scored_at = ? WHERE id = ?", score, utc(scoredAt), id)
		return err
	})
}

// MarkProcessed records that the item's attempts are created
func (r *ItemRepository) MarkProcessed(ctx context.Context, id int64, at time.Time) error {
	return withLockRetry(ctx, "mark item processed", func() error {
		_, err := r.db.ExecContext(ctx, "UPDATE items SET processed_at = ? WHERE id = ?", utc(at), id)
		return err
	})
}

// UnprocessedItems returns up to limit items with id above afterID that were stored but
// never processed, ordered by id
func (r *ItemRepository) UnprocessedItems(ctx context.Context, afterID int64, limit int) ([]domain.Item, error) {
	query := `
		SELECT * FROM items
		WHERE processed_at IS NULL AND id > ?
		ORDER BY id
		LIMIT ?
	`
	var rows []itemSQL
	if err := r.db.SelectContext(ctx, &rows, query, afterID, limit); err != nil {
		return nil, fmt.Errorf("get unprocessed items: %w", err)
	}
	res := make([]domain.Item, len(rows))
	for i := range rows {
		res[i] = *rows[i].toDomain()
	}
	return res, nil
}

// RecentItems returns items created after since, newest first
func (r *ItemRepository) RecentItems(ctx context.Context, since time.Time, limit int) ([]domain.Item, error) {
	query := `
		SELECT * FROM items
		WHERE created_at >= ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	var rows []itemSQL
	if err := r.db.SelectContext(ctx, &rows, query, utc(since), limit); err != nil {
		return nil, fmt.Errorf("get recent items: %w", err)
	}
	res := make([]domain.Item, len(rows))
	for i := range rows {
		res[i] = *rows[i].toDomain()
	}
	return res, nil
}

// CountItems returns the number of stored items
func (r *ItemRepository) CountItems(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM items"); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func toItemSQL(item *domain.Item) *itemSQL {
	return &itemSQL{
		ID:              item.ID,
		ExternalID:      item.ExternalID,
		Text:            item.Text,
		URL:             item.URL,
		AuthorName:      item.Author.Name,
		AuthorFollowers: item.Author.Followers,
		AuthorVerified:  item.Author.Verified,
		Likes:           item.Engagement.Likes,
		Retweets:        item.Engagement.Retweets,
		Replies:         item.Engagement.Replies,
		Quotes:          item.Engagement.Quotes,
		Lang:            item.Lang,
		HasMedia:        item.HasMedia,
		HasLinks:        item.HasLinks,
		CreatedAt:       utc(item.CreatedAt),
		IngestedAt:      utc(item.IngestedAt),
		Score:           item.Score,
		ScoredAt:        utcPtr(item.ScoredAt),
		ProcessedAt:     utcPtr(item.ProcessedAt),
	}
}

func (i *itemSQL) toDomain() *domain.Item {
	return &domain.Item{
		ID:          i.ID,
		ExternalID:  i.ExternalID,
		Text:        i.Text,
		URL:         i.URL,
		Author:      domain.Author{Name: i.AuthorName, Followers: i.AuthorFollowers, Verified: i.AuthorVerified},
		Engagement:  domain.Engagement{Likes: i.Likes, Retweets: i.Retweets, Replies: i.Replies, Quotes: i.Quotes},
		Lang:        i.Lang,
		HasMedia:    i.HasMedia,
		HasLinks:    i.HasLinks,
		CreatedAt:   i.CreatedAt,
		IngestedAt:  i.IngestedAt,
		Score:       i.Score,
		ScoredAt:    i.ScoredAt,
		ProcessedAt: i.ProcessedAt,
	}
}
