// Package typeless is a schema-agnostic client for payload-in-content
// feeds. Entries are exposed as generic field maps so they can be
// consumed without any knowledge of the feed's schema.
package typeless

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/atomtools/feedmap/app/gdata"
	"github.com/atomtools/feedmap/app/xmlprops"
)

// EntryMap is one entry's payload as field name to ordered values.
// Single-valued fields are one-element lists, never bare scalars; every
// value list is non-empty. The map is caller-owned once returned.
type EntryMap map[string][]string

// Name returns the first value of the entry's "name" field, or "".
func (m EntryMap) Name() string {
	values := m["name"]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Client normalizes fetched entries and forwards deletions. It is
// stateless; concurrent use is safe when the injected Service is.
type Client struct {
	service gdata.Service
	logger  *slog.Logger
}

// NewClient creates the client around the given transport. A nil logger
// falls back to slog.Default.
func NewClient(service gdata.Service, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{service: service, logger: logger}
}

// GetEntry fetches a single payload-in-content entry and returns its
// normalized field map.
func (c *Client) GetEntry(ctx context.Context, entryURL string) (EntryMap, error) {
	entry, err := c.service.GetEntry(ctx, entryURL)
	if err != nil {
		return nil, &ClientError{Op: "fetch entry", URL: entryURL, Err: err}
	}

	entryMap, err := c.NormalizeEntry(entry)
	if err != nil {
		return nil, &ClientError{Op: "normalize entry", URL: entryURL, Err: err}
	}

	return entryMap, nil
}

// GetFeed fetches a feed and returns one normalized map per entry, in
// server-returned order. A normalization failure on any entry aborts the
// whole call; no partial results are returned.
func (c *Client) GetFeed(ctx context.Context, feedURL string) ([]EntryMap, error) {
	feed, err := c.service.GetFeed(ctx, feedURL)
	if err != nil {
		return nil, &ClientError{Op: "fetch feed", URL: feedURL, Err: err}
	}

	entryMaps := make([]EntryMap, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		entryMap, err := c.NormalizeEntry(&entry)
		if err != nil {
			return nil, &ClientError{Op: "normalize feed entry", URL: feedURL, Err: err}
		}
		entryMaps = append(entryMaps, entryMap)
	}

	return entryMaps, nil
}

// DeleteEntry deletes the entry at the given full URL.
func (c *Client) DeleteEntry(ctx context.Context, entryURL string) error {
	if err := c.service.Delete(ctx, entryURL); err != nil {
		return &ClientError{Op: "delete entry", URL: entryURL, Err: err}
	}
	return nil
}

// DeleteEntryByName deletes the entry identified by the "name" field of
// the supplied map, resolved against baseURL. A missing or empty name is
// a contract violation, not a ClientError.
func (c *Client) DeleteEntryByName(ctx context.Context, baseURL string, entry EntryMap) error {
	values, ok := entry["name"]
	if !ok {
		return ErrNameMissing
	}
	if len(values) == 0 || values[0] == "" {
		return ErrNameEmpty
	}

	entryURL := baseURL + "/" + values[0]
	if err := validateURL(entryURL); err != nil {
		return &ClientError{Op: "resolve entry URL", URL: entryURL, Err: err}
	}

	return c.DeleteEntry(ctx, entryURL)
}

// DeleteEntries deletes each entry in order, one request per entry. The
// first failure aborts the remaining deletions.
func (c *Client) DeleteEntries(ctx context.Context, baseURL string, entries []EntryMap) error {
	for _, entry := range entries {
		if err := c.DeleteEntryByName(ctx, baseURL, entry); err != nil {
			return err
		}
	}
	return nil
}

// The mutation surface below is declared but not implemented.

func (c *Client) UpdateEntry(ctx context.Context, entryURL string, entry EntryMap) error {
	return ErrNotImplemented
}

func (c *Client) UpdateEntries(ctx context.Context, feedURL string, entries []EntryMap) error {
	return ErrNotImplemented
}

func (c *Client) InsertEntry(ctx context.Context, feedURL string, entry EntryMap) error {
	return ErrNotImplemented
}

func (c *Client) InsertEntries(ctx context.Context, feedURL string, entries []EntryMap) error {
	return ErrNotImplemented
}

// NormalizeEntry converts an already-fetched entry's payload blob into
// its EntryMap. The raw blob is logged before parsing for diagnostics
// only.
func (c *Client) NormalizeEntry(entry *gdata.Entry) (EntryMap, error) {
	blob := entry.Content.Blob
	c.logger.Info("Normalizing entry payload", "entry", entry.ID, "payload", blob)

	props, err := xmlprops.Parse(blob)
	if err != nil {
		return nil, err
	}

	entryMap := make(EntryMap, len(props))
	for key, value := range props {
		entryMap[key] = value.Strings()
	}

	return entryMap, nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("URL %q is not absolute", rawURL)
	}
	return nil
}
