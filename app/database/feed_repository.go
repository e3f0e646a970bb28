package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ FeedRepository = (*feedRepository)(nil)

type feedRepository struct {
	db *DB
}

func NewFeedRepository(db *DB) FeedRepository {
	return &feedRepository{db: db}
}

func (r *feedRepository) GetFeed(feedName string) (*Feed, error) {
	row := r.db.QueryRow(`
		SELECT id, name, feed_url, title, description, link, language,
		       last_fetched_at, feed_updated_at, created_at, updated_at
		FROM feeds
		WHERE name = ?
	`, feedName)

	feed, err := scanFeed(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return feed, nil
}

func (r *feedRepository) GetFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`
		SELECT id, name, feed_url, title, description, link, language,
		       last_fetched_at, feed_updated_at, created_at, updated_at
		FROM feeds
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	return feeds, rows.Err()
}

func (r *feedRepository) GetFeedCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM feeds`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count feeds: %w", err)
	}
	return count, nil
}

func (r *feedRepository) UpsertFeed(feedName, feedURL string) error {
	_, err := r.db.Exec(`
		INSERT INTO feeds (name, feed_url)
		VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET
			feed_url = excluded.feed_url,
			updated_at = CURRENT_TIMESTAMP
	`, feedName, feedURL)
	if err != nil {
		return fmt.Errorf("failed to upsert feed: %w", err)
	}
	return nil
}

func (r *feedRepository) UpdateFeedMetadata(feedName, title, description, link, language string, feedUpdatedAt *time.Time, lastFetchedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET title = ?, description = ?, link = ?, language = ?,
		    feed_updated_at = ?, last_fetched_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?
	`, title, description, link, language, feedUpdatedAt, lastFetchedAt, feedName)
	if err != nil {
		return fmt.Errorf("failed to update feed metadata: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeed(row rowScanner) (*Feed, error) {
	var feed Feed
	var lastFetchedAt, feedUpdatedAt sql.NullTime

	err := row.Scan(&feed.ID, &feed.Name, &feed.FeedURL, &feed.Title,
		&feed.Description, &feed.Link, &feed.Language,
		&lastFetchedAt, &feedUpdatedAt, &feed.CreatedAt, &feed.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if lastFetchedAt.Valid {
		feed.LastFetchedAt = &lastFetchedAt.Time
	}
	if feedUpdatedAt.Valid {
		feed.FeedUpdatedAt = &feedUpdatedAt.Time
	}

	return &feed, nil
}
