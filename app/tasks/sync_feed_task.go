package tasks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/atomtools/feedmap/app/database"
	"github.com/atomtools/feedmap/app/feed"
	"github.com/atomtools/feedmap/app/gdata"
	"github.com/atomtools/feedmap/app/typeless"
)

type SyncFeedTask struct {
	Task
	FeedConfig *feed.Config
	service    gdata.Service
	client     *typeless.Client
	feedRepo   database.FeedRepository
	entryRepo  database.EntryRepository
}

func NewSyncFeedTask(feedName string, feedConfig *feed.Config, service gdata.Service, client *typeless.Client, feedRepo database.FeedRepository, entryRepo database.EntryRepository) *SyncFeedTask {
	return &SyncFeedTask{
		Task:       NewTask(TaskTypeSyncFeed, feedName),
		FeedConfig: feedConfig,
		service:    service,
		client:     client,
		feedRepo:   feedRepo,
		entryRepo:  entryRepo,
	}
}

func (t *SyncFeedTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.FeedConfig.Settings.Enabled {
		slog.Debug("Feed disabled, skipping", "feed", t.FeedName)
		return nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(t.FeedConfig.Settings.Timeout)*time.Second)
	defer cancel()

	remoteFeed, err := t.service.GetFeed(timeoutCtx, t.FeedConfig.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	entries := remoteFeed.Entries
	if max := t.FeedConfig.Settings.MaxEntries; max > 0 && len(entries) > max {
		entries = entries[:max]
	}

	storedCount := 0
	unchangedCount := 0
	unnamedCount := 0

	for _, entry := range entries {
		entryMap, err := t.client.NormalizeEntry(&entry)
		if err != nil {
			return fmt.Errorf("failed to normalize entry %s: %w", entry.ID, err)
		}

		name := entryMap.Name()
		if name == "" {
			// The local store keys entries by name; nothing to mirror.
			slog.Warn("Entry payload has no 'name' field, skipping", "feed", t.FeedName, "entry", entry.ID)
			unnamedCount++
			continue
		}

		hash := contentHash(entryMap)
		unchanged, err := t.entryRepo.CheckUnchanged(t.FeedName, name, hash)
		if err != nil {
			return fmt.Errorf("failed to check entry for changes: %w", err)
		}
		if unchanged {
			unchangedCount++
			continue
		}

		if err := t.entryRepo.UpsertEntry(t.FeedName, name, entryMap, hash); err != nil {
			return fmt.Errorf("failed to upsert entry: %w", err)
		}
		storedCount++
	}

	if err := t.storeFeedMetadata(remoteFeed.Metadata); err != nil {
		return fmt.Errorf("failed to store feed metadata: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncFeed",
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"total", len(entries),
		"stored", storedCount,
		"unchanged", unchangedCount,
		"unnamed", unnamedCount)

	return nil
}

func (t *SyncFeedTask) storeFeedMetadata(metadata gdata.Metadata) error {
	now := time.Now().UTC()
	language := feed.NormalizeLanguage(metadata.Language)

	return t.feedRepo.UpdateFeedMetadata(t.FeedName, metadata.Title,
		metadata.Description, metadata.Link, language, metadata.UpdatedAt, now)
}

// contentHash fingerprints a normalized entry map for change detection.
// json.Marshal sorts map keys, so the serialization is canonical.
func contentHash(fields typeless.EntryMap) string {
	data, _ := json.Marshal(fields)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
