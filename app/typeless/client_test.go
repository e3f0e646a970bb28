package typeless

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/atomtools/feedmap/app/gdata"
	"github.com/atomtools/feedmap/app/xmlprops"
)

type fakeService struct {
	entries    map[string]*gdata.Entry
	feeds      map[string]*gdata.Feed
	deleted    []string
	failDelete map[string]error
	err        error
}

func (f *fakeService) GetEntry(ctx context.Context, entryURL string) (*gdata.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	entry, ok := f.entries[entryURL]
	if !ok {
		return nil, fmt.Errorf("no entry at %s", entryURL)
	}
	return entry, nil
}

func (f *fakeService) GetFeed(ctx context.Context, feedURL string) (*gdata.Feed, error) {
	if f.err != nil {
		return nil, f.err
	}
	feed, ok := f.feeds[feedURL]
	if !ok {
		return nil, fmt.Errorf("no feed at %s", feedURL)
	}
	return feed, nil
}

func (f *fakeService) Delete(ctx context.Context, entryURL string) error {
	if err, ok := f.failDelete[entryURL]; ok {
		return err
	}
	f.deleted = append(f.deleted, entryURL)
	return nil
}

func newTestClient(service gdata.Service) *Client {
	return NewClient(service, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func payloadEntry(id, blob string) *gdata.Entry {
	return &gdata.Entry{
		ID:      id,
		Content: gdata.Content{Type: "application/xml", Blob: blob},
	}
}

func TestGetEntryScalarFields(t *testing.T) {
	service := &fakeService{entries: map[string]*gdata.Entry{
		"https://example.com/feeds/widgets/widget42": payloadEntry(
			"widget42", `<entity><name>widget42</name><owner>rayc</owner></entity>`),
	}}

	client := newTestClient(service)
	entry, err := client.GetEntry(context.Background(), "https://example.com/feeds/widgets/widget42")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(entry) != 2 {
		t.Fatalf("Expected 2 fields, got: %d", len(entry))
	}
	for key, values := range entry {
		if len(values) != 1 {
			t.Errorf("Expected one value for scalar field '%s', got: %v", key, values)
		}
	}
	if entry.Name() != "widget42" {
		t.Errorf("Expected name 'widget42', got: %s", entry.Name())
	}
}

func TestGetEntryRepeatedFieldOrder(t *testing.T) {
	service := &fakeService{entries: map[string]*gdata.Entry{
		"https://example.com/feeds/widgets/widget42": payloadEntry(
			"widget42", `<entity><tag>alpha</tag><tag>beta</tag><tag>gamma</tag></entity>`),
	}}

	client := newTestClient(service)
	entry, err := client.GetEntry(context.Background(), "https://example.com/feeds/widgets/widget42")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{"alpha", "beta", "gamma"}
	got := entry["tag"]
	if len(got) != len(expected) {
		t.Fatalf("Expected %d values, got: %d", len(expected), len(got))
	}
	for i, want := range expected {
		if got[i] != want {
			t.Errorf("Expected value %d to be '%s', got: '%s'", i, want, got[i])
		}
	}
}

func TestGetFeedOrderAndCount(t *testing.T) {
	service := &fakeService{feeds: map[string]*gdata.Feed{
		"https://example.com/feeds/widgets": {Entries: []gdata.Entry{
			*payloadEntry("e1", `<entity><name>first</name></entity>`),
			*payloadEntry("e2", `<entity><name>second</name></entity>`),
			*payloadEntry("e3", `<entity><name>third</name></entity>`),
		}},
	}}

	client := newTestClient(service)
	entries, err := client.GetFeed(context.Background(), "https://example.com/feeds/widgets")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("Expected 3 entry maps, got: %d", len(entries))
	}

	expected := []string{"first", "second", "third"}
	for i, want := range expected {
		if entries[i].Name() != want {
			t.Errorf("Expected entry %d to be '%s', got: '%s'", i, want, entries[i].Name())
		}
	}
}

func TestGetEntryMalformedPayload(t *testing.T) {
	service := &fakeService{entries: map[string]*gdata.Entry{
		"https://example.com/feeds/widgets/bad": payloadEntry("bad", `<entity><name>oops</entity>`),
	}}

	client := newTestClient(service)
	_, err := client.GetEntry(context.Background(), "https://example.com/feeds/widgets/bad")
	if err == nil {
		t.Fatal("Expected error for malformed payload, got nil")
	}

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("Expected *ClientError, got: %T", err)
	}
	var parseErr *xmlprops.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected wrapped *xmlprops.ParseError, got: %v", err)
	}
}

func TestGetEntryTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	service := &fakeService{err: cause}

	client := newTestClient(service)
	_, err := client.GetEntry(context.Background(), "https://example.com/feeds/widgets/widget42")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("Expected *ClientError, got: %T", err)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected ClientError to wrap the transport cause")
	}
}

func TestGetFeedAbortsOnBadEntry(t *testing.T) {
	service := &fakeService{feeds: map[string]*gdata.Feed{
		"https://example.com/feeds/widgets": {Entries: []gdata.Entry{
			*payloadEntry("e1", `<entity><name>first</name></entity>`),
			*payloadEntry("e2", `<entity><broken>`),
			*payloadEntry("e3", `<entity><name>third</name></entity>`),
		}},
	}}

	client := newTestClient(service)
	entries, err := client.GetFeed(context.Background(), "https://example.com/feeds/widgets")
	if err == nil {
		t.Fatal("Expected error for feed with malformed entry, got nil")
	}
	if entries != nil {
		t.Errorf("Expected no partial results, got: %v", entries)
	}
}

func TestDeleteEntryByName(t *testing.T) {
	service := &fakeService{}
	client := newTestClient(service)

	entry := EntryMap{"name": {"widget42"}}
	err := client.DeleteEntryByName(context.Background(), "https://example.com/feeds/widgets", entry)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(service.deleted) != 1 {
		t.Fatalf("Expected one delete request, got: %d", len(service.deleted))
	}
	if service.deleted[0] != "https://example.com/feeds/widgets/widget42" {
		t.Errorf("Expected delete against widget42 URL, got: %s", service.deleted[0])
	}
}

func TestDeleteEntryByNameMissing(t *testing.T) {
	service := &fakeService{}
	client := newTestClient(service)

	err := client.DeleteEntryByName(context.Background(), "https://example.com/feeds/widgets",
		EntryMap{"owner": {"rayc"}})
	if !errors.Is(err, ErrNameMissing) {
		t.Fatalf("Expected ErrNameMissing, got: %v", err)
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		t.Error("Contract violation must not be reported as a ClientError")
	}
	if len(service.deleted) != 0 {
		t.Errorf("Expected no delete requests, got: %v", service.deleted)
	}
}

func TestDeleteEntryByNameEmpty(t *testing.T) {
	client := newTestClient(&fakeService{})

	cases := []EntryMap{
		{"name": {}},
		{"name": {""}},
	}
	for _, entry := range cases {
		err := client.DeleteEntryByName(context.Background(), "https://example.com/feeds/widgets", entry)
		if !errors.Is(err, ErrNameEmpty) {
			t.Errorf("Expected ErrNameEmpty for %v, got: %v", entry, err)
		}
	}
}

func TestDeleteEntryByNameMalformedBase(t *testing.T) {
	client := newTestClient(&fakeService{})

	err := client.DeleteEntryByName(context.Background(), "no-scheme-here",
		EntryMap{"name": {"widget42"}})
	if err == nil {
		t.Fatal("Expected error for malformed base URL, got nil")
	}

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Errorf("Expected *ClientError for malformed URL, got: %T", err)
	}
}

func TestDeleteEntriesAbortsOnFirstFailure(t *testing.T) {
	service := &fakeService{failDelete: map[string]error{
		"https://example.com/feeds/widgets/e2": errors.New("boom"),
	}}
	client := newTestClient(service)

	entries := []EntryMap{
		{"name": {"e1"}},
		{"name": {"e2"}},
		{"name": {"e3"}},
	}
	err := client.DeleteEntries(context.Background(), "https://example.com/feeds/widgets", entries)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if len(service.deleted) != 1 {
		t.Fatalf("Expected exactly one completed delete, got: %v", service.deleted)
	}
	if service.deleted[0] != "https://example.com/feeds/widgets/e1" {
		t.Errorf("Expected e1 to be deleted before the failure, got: %s", service.deleted[0])
	}
}

func TestMutationSurfaceNotImplemented(t *testing.T) {
	client := newTestClient(&fakeService{})
	ctx := context.Background()
	entry := EntryMap{"name": {"widget42"}}

	ops := map[string]error{
		"UpdateEntry":   client.UpdateEntry(ctx, "https://example.com/feeds/widgets/widget42", entry),
		"UpdateEntries": client.UpdateEntries(ctx, "https://example.com/feeds/widgets", []EntryMap{entry}),
		"InsertEntry":   client.InsertEntry(ctx, "https://example.com/feeds/widgets", entry),
		"InsertEntries": client.InsertEntries(ctx, "https://example.com/feeds/widgets", []EntryMap{entry}),
	}
	for name, err := range ops {
		if !errors.Is(err, ErrNotImplemented) {
			t.Errorf("Expected %s to return ErrNotImplemented, got: %v", name, err)
		}
	}
}
