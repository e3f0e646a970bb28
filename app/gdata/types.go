package gdata

import (
	"context"
	"fmt"
	"time"
)

// Service is the feed transport consumed by the typeless client. All
// methods perform a single blocking request with no retries.
type Service interface {
	GetEntry(ctx context.Context, entryURL string) (*Entry, error)
	GetFeed(ctx context.Context, feedURL string) (*Feed, error)
	Delete(ctx context.Context, entryURL string) error
}

// Content is an entry's opaque payload: the raw XML blob embedded in the
// Atom content element, preserved byte-for-byte.
type Content struct {
	Type string
	Blob string
}

// Entry is one item of a payload-in-content feed.
type Entry struct {
	ID        string
	Title     string
	UpdatedAt *time.Time
	Content   Content
}

// Metadata describes the outer feed document.
type Metadata struct {
	Title       string
	Description string
	Link        string
	Language    string
	UpdatedAt   *time.Time
}

// Feed is an ordered collection of entries plus feed-level metadata,
// entries in server-returned order.
type Feed struct {
	Metadata Metadata
	Entries  []Entry
}

// ServiceError reports a non-success HTTP response from the feed server.
type ServiceError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error for %s: %s", e.URL, e.Status)
}
