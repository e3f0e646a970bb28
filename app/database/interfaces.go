package database

import (
	"time"
)

type FeedRepository interface {
	GetFeed(feedName string) (*Feed, error)
	GetFeeds() ([]Feed, error)
	GetFeedCount() (int, error)

	UpsertFeed(feedName, feedURL string) error
	UpdateFeedMetadata(feedName, title, description, link, language string, feedUpdatedAt *time.Time, lastFetchedAt time.Time) error
}

type EntryRepository interface {
	GetEntries(feedName string, limit int) ([]Entry, error)
	GetEntry(feedName, entryName string) (*Entry, error)
	GetEntryCount(feedName string) (int, error)

	UpsertEntry(feedName, entryName string, fields map[string][]string, contentHash string) error
	DeleteEntry(feedName, entryName string) (bool, error)

	CheckUnchanged(feedName, entryName, contentHash string) (bool, error)
}
