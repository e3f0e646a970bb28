// Package gdata fetches payload-in-content Atom feeds over HTTP. The
// outer envelope is decoded with encoding/xml so the raw content blob
// survives untouched; feed-level metadata is read with gofeed.
package gdata

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

var _ Service = (*Client)(nil)

type Client struct {
	httpClient *http.Client
	userAgent  string
	feedParser *gofeed.Parser
}

func NewClient(httpClient *http.Client, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
		feedParser: gofeed.NewParser(),
	}
}

// Atom envelope. Content keeps the inner XML verbatim; gofeed rewrites
// content bodies and cannot be used for payload extraction.
type atomContent struct {
	Type string `xml:"type,attr"`
	Blob string `xml:",innerxml"`
}

type atomEntry struct {
	ID      string      `xml:"id"`
	Title   string      `xml:"title"`
	Updated string      `xml:"updated"`
	Content atomContent `xml:"content"`
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

func (c *Client) GetEntry(ctx context.Context, entryURL string) (*Entry, error) {
	data, err := c.fetch(ctx, entryURL)
	if err != nil {
		return nil, err
	}

	var raw atomEntry
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode entry from %s: %w", entryURL, err)
	}

	entry := toEntry(raw)
	return &entry, nil
}

func (c *Client) GetFeed(ctx context.Context, feedURL string) (*Feed, error) {
	data, err := c.fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	var raw atomFeed
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode feed from %s: %w", feedURL, err)
	}

	feed := &Feed{
		Metadata: c.parseMetadata(data, feedURL),
		Entries:  make([]Entry, 0, len(raw.Entries)),
	}
	for _, rawEntry := range raw.Entries {
		feed.Entries = append(feed.Entries, toEntry(rawEntry))
	}

	return feed, nil
}

func (c *Client) Delete(ctx context.Context, entryURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, entryURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", entryURL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
		return nil
	default:
		return &ServiceError{URL: entryURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/atom+xml, application/xml, text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// parseMetadata reads feed-level metadata with gofeed. Metadata is
// informational; a feed whose envelope decoded but confuses gofeed still
// yields its entries.
func (c *Client) parseMetadata(data []byte, feedURL string) Metadata {
	parsed, err := c.feedParser.Parse(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Failed to parse feed metadata", "url", feedURL, "error", err)
		return Metadata{}
	}

	metadata := Metadata{
		Title:       parsed.Title,
		Description: parsed.Description,
		Link:        parsed.Link,
		Language:    parsed.Language,
	}
	if parsed.UpdatedParsed != nil {
		metadata.UpdatedAt = parsed.UpdatedParsed
	}

	return metadata
}

func toEntry(raw atomEntry) Entry {
	entry := Entry{
		ID:    raw.ID,
		Title: raw.Title,
		Content: Content{
			Type: raw.Content.Type,
			Blob: strings.TrimSpace(raw.Content.Blob),
		},
	}
	if updated, err := time.Parse(time.RFC3339, raw.Updated); err == nil {
		entry.UpdatedAt = &updated
	}
	return entry
}
