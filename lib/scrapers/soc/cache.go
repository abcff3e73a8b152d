package soc

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PageCache stores fetched page text in sqlite with an expiry. It exists so
// repeated runs against the same term don't hammer the portal; records
// themselves are never persisted, only raw pages.
type PageCache struct {
	db       *sql.DB
	lifetime time.Duration
}

const pageCacheSchema = `
CREATE TABLE IF NOT EXISTS pages (
    url        TEXT PRIMARY KEY,
    contents   TEXT NOT NULL,
    expires_at INTEGER NOT NULL
);
`

var errPageNotCached = errors.New("page not cached")

func NewPageCache(db *sql.DB, lifetime time.Duration) (*PageCache, error) {
	_, err := db.Exec(pageCacheSchema)
	if err != nil {
		return nil, err
	}
	return &PageCache{db: db, lifetime: lifetime}, nil
}

func (c *PageCache) Get(ctx context.Context, pageURL string) (string, error) {
	row := c.db.QueryRowContext(
		ctx,
		`SELECT contents, expires_at FROM pages WHERE url = ?`,
		pageURL,
	)

	var contents string
	var expiresAt int64
	err := row.Scan(&contents, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errPageNotCached
	}
	if err != nil {
		return "", err
	}

	if time.Now().Unix() >= expiresAt {
		_, err = c.db.ExecContext(ctx, `DELETE FROM pages WHERE url = ?`, pageURL)
		if err != nil {
			return "", err
		}
		return "", errPageNotCached
	}
	return contents, nil
}

func (c *PageCache) Set(ctx context.Context, pageURL, contents string) error {
	expiresAt := time.Now().Add(c.lifetime).Unix()
	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO pages (url, contents, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT (url) DO UPDATE SET contents = excluded.contents, expires_at = excluded.expires_at`,
		pageURL, contents, expiresAt,
	)
	return err
}
