package database

import (
	"time"
)

// Feed represents a mirrored upstream feed.
type Feed struct {
	ID            int64
	Name          string // Configuration feed identifier derived from filename
	FeedURL       string
	Title         string
	Description   string
	Link          string
	Language      string // Canonicalized BCP 47 tag
	LastFetchedAt *time.Time
	FeedUpdatedAt *time.Time // Feed's own updated timestamp
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Entry represents one mirrored entry. Fields holds the normalized
// payload map exactly as the typeless client produced it.
type Entry struct {
	ID          int64
	FeedName    string
	Name        string // First value of the payload's "name" field
	Fields      map[string][]string
	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
