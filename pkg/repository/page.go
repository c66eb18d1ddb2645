package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/keyscope/pkg/domain"
)

// PageRepository handles the crawled page cache
type PageRepository struct {
	db *sqlx.DB
}

// pageSQL represents a cached page for SQL operations
type pageSQL struct {
	URL         string    `db:"url"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Tags        tagsSQL   `db:"tags"`
	FetchedAt   time.Time `db:"fetched_at"`
}

// tagsSQL is a JSON array of tag strings for SQL operations
type tagsSQL []string

// Value implements driver.Valuer for database storage
func (t tagsSQL) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner for database retrieval
func (t *tagsSQL) Scan(value interface{}) error {
	if value == nil {
		*t = tagsSQL{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		*t = tagsSQL{}
		return nil
	}

	return json.Unmarshal(data, t)
}

// NewPageRepository creates a new page cache repository
func NewPageRepository(database *sqlx.DB) *PageRepository {
	return &PageRepository{db: database}
}

// GetPage returns the cached page, or nil when the URL was never crawled.
// A miss is not an error.
func (r *PageRepository) GetPage(ctx context.Context, pageURL string) (*domain.Page, error) {
	var p pageSQL
	err := r.db.GetContext(ctx, &p,
		"SELECT url, name, description, tags, fetched_at FROM pages WHERE url = ?", pageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}

	return &domain.Page{
		URL:         p.URL,
		Name:        p.Name,
		Description: p.Description,
		Tags:        p.Tags,
		FetchedAt:   p.FetchedAt,
	}, nil
}

// UpsertPage stores or refreshes a crawled page
func (r *PageRepository) UpsertPage(ctx context.Context, page *domain.Page) error {
	fetched := page.FetchedAt
	if fetched.IsZero() {
		fetched = time.Now()
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	return retrier.Do(ctx, func() error {
		query := `
			INSERT INTO pages (url, name, description, tags, fetched_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(url) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				tags = excluded.tags,
				fetched_at = excluded.fetched_at
		`
		_, err := r.db.ExecContext(ctx, query, page.URL, page.Name, page.Description, tagsSQL(page.Tags), fetched)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			return &criticalError{err: fmt.Errorf("upsert page: %w", err)}
		}
		return nil
	}, errCritical)
}

// CountPages returns how many pages are cached
func (r *PageRepository) CountPages(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT count(*) FROM pages"); err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return count, nil
}
