package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/atomtools/feedmap/app/database"
	"github.com/atomtools/feedmap/app/feed"
	"github.com/atomtools/feedmap/app/gdata"
	"github.com/atomtools/feedmap/app/tasks"
	"github.com/atomtools/feedmap/app/typeless"
	"github.com/gin-gonic/gin"
)

func NewHandler(configCache *feed.ConfigCache, feedRepo database.FeedRepository,
	entryRepo database.EntryRepository, service gdata.Service,
	client *typeless.Client, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		feedRepo:    feedRepo,
		entryRepo:   entryRepo,
		configCache: configCache,
		service:     service,
		client:      client,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	feedConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Feed configuration not found", "feed", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return
	}

	storedFeed, err := h.feedRepo.GetFeed(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "feed", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if storedFeed == nil {
		slog.Error("Feed not found in database", "feed", name)
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not synced yet"})
		return
	}

	entries, err := h.entryRepo.GetEntries(name, feedConfig.Settings.MaxEntries)
	if err != nil {
		slog.Error("Database error", "operation", "get_entries", "feed", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	entryMaps := make([]map[string][]string, 0, len(entries))
	for _, entry := range entries {
		entryMaps = append(entryMaps, entry.Fields)
	}

	response := gin.H{
		"feed": gin.H{
			"name":        storedFeed.Name,
			"title":       storedFeed.Title,
			"description": storedFeed.Description,
			"link":        storedFeed.Link,
			"language":    storedFeed.Language,
		},
		"entries": entryMaps,
		"total":   len(entryMaps),
	}

	if storedFeed.LastFetchedAt != nil {
		response["last_fetched_at"] = storedFeed.LastFetchedAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetEntry(c *gin.Context) {
	name := c.Param("name")
	entryName := c.Param("entry")
	if name == "" || entryName == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	entry, err := h.entryRepo.GetEntry(name, entryName)
	if err != nil {
		slog.Error("Database error", "operation", "get_entry", "feed", name, "entry", entryName, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	c.JSON(http.StatusOK, entry.Fields)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	stats := map[string]interface{}{
		"loaded_configurations": len(configs),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		stats["feeds"] = feedCount
	}

	perFeed := make(map[string]int, len(configs))
	totalEntries := 0
	for _, feedConfig := range configs {
		if entryCount, err := h.entryRepo.GetEntryCount(feedConfig.Name); err == nil {
			perFeed[feedConfig.Name] = entryCount
			totalEntries += entryCount
		}
	}
	stats["entries"] = totalEntries
	stats["entries_per_feed"] = perFeed

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	feeds := make([]map[string]interface{}, 0, len(configs))

	for _, feedConfig := range configs {
		feedInfo := map[string]interface{}{
			"name":             feedConfig.Name,
			"url":              feedConfig.URL,
			"delete_base_url":  feedConfig.DeleteBaseURL,
			"title":            "",
			"enabled":          feedConfig.Settings.Enabled,
			"max_entries":      feedConfig.Settings.MaxEntries,
			"refresh_interval": (time.Duration(feedConfig.Settings.RefreshInterval) * time.Second).String(),
		}

		if storedFeed, err := h.feedRepo.GetFeed(feedConfig.Name); err == nil && storedFeed != nil {
			feedInfo["title"] = storedFeed.Title
			feedInfo["last_fetched_at"] = storedFeed.LastFetchedAt
			feedInfo["updated_at"] = storedFeed.UpdatedAt
		}

		if entryCount, err := h.entryRepo.GetEntryCount(feedConfig.Name); err == nil {
			feedInfo["entry_count"] = entryCount
		}

		feeds = append(feeds, feedInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"feeds": feeds,
		"total": len(feeds),
	})
}

// APIGetFeedLive fetches and normalizes the upstream feed directly,
// bypassing the local store.
func (h *Handler) APIGetFeedLive(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed name parameter"})
		return
	}

	feedConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Feed configuration not found", "feed", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return
	}

	entryMaps, err := h.client.GetFeed(c.Request.Context(), feedConfig.URL)
	if err != nil {
		slog.Error("Live fetch failed", "feed", name, "url", feedConfig.URL, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to fetch upstream feed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feed":    name,
		"url":     feedConfig.URL,
		"entries": entryMaps,
		"total":   len(entryMaps),
	})
}

func (h *Handler) APISyncFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed name parameter"})
		return
	}

	feedConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "feed", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return
	}

	syncFeedTask := tasks.NewSyncFeedTask(name, feedConfig, h.service, h.client, h.feedRepo, h.entryRepo)
	err = h.scheduler.EnqueueTask(syncFeedTask)
	if err != nil {
		slog.Error("Error enqueueing sync task", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Sync task enqueued successfully",
		"feed": gin.H{
			"name": name,
			"url":  feedConfig.URL,
		},
		"task": gin.H{
			"id":   syncFeedTask.ID,
			"type": syncFeedTask.Type,
		},
	})
}

// APIDeleteEntry deletes an entry upstream and removes the local copy.
// The upstream delete uses the entry's own name field, so a stored entry
// with a missing or empty name is reported as a conflict.
func (h *Handler) APIDeleteEntry(c *gin.Context) {
	name := c.Param("name")
	entryName := c.Param("entry")
	if name == "" || entryName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed or entry name parameter"})
		return
	}

	feedConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Feed configuration not found", "feed", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return
	}

	entry, err := h.entryRepo.GetEntry(name, entryName)
	if err != nil {
		slog.Error("Database error", "operation", "get_entry", "feed", name, "entry", entryName, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	err = h.client.DeleteEntryByName(c.Request.Context(), feedConfig.DeleteBaseURL, typeless.EntryMap(entry.Fields))
	if err != nil {
		if errors.Is(err, typeless.ErrNameMissing) || errors.Is(err, typeless.ErrNameEmpty) {
			slog.Error("Stored entry has no usable name", "feed", name, "entry", entryName, "error", err)
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Entry has no usable name field",
				"details": err.Error(),
			})
			return
		}
		slog.Error("Upstream delete failed", "feed", name, "entry", entryName, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to delete entry upstream",
			"details": err.Error(),
		})
		return
	}

	removed, err := h.entryRepo.DeleteEntry(name, entryName)
	if err != nil {
		slog.Error("Database error", "operation", "delete_entry", "feed", name, "entry", entryName, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"feed":    name,
		"entry":   entryName,
		"removed": removed,
	})
}
