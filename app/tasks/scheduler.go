package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/atomtools/feedmap/app/cfg"
	"github.com/atomtools/feedmap/app/database"
	"github.com/atomtools/feedmap/app/feed"
	"github.com/atomtools/feedmap/app/gdata"
	"github.com/atomtools/feedmap/app/typeless"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	feedRepo    database.FeedRepository
	entryRepo   database.EntryRepository
	configCache *feed.ConfigCache
	service     gdata.Service
	client      *typeless.Client
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(configCache *feed.ConfigCache, feedRepo database.FeedRepository,
	entryRepo database.EntryRepository, service gdata.Service, client *typeless.Client) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		feedRepo:    feedRepo,
		entryRepo:   entryRepo,
		configCache: configCache,
		service:     service,
		client:      client,
		interval:    time.Duration(cfg.SyncInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()

}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	feedConfigs := s.configCache.GetConfigs()
	if len(feedConfigs) == 0 {
		slog.Debug("No feed configurations found")
		return
	}

	slog.Debug("Processing feed configurations", "count", len(feedConfigs))

	for _, feedConfig := range feedConfigs {
		registerTask := NewRegisterFeedTask(feedConfig.Name, feedConfig, s.feedRepo)
		if err := s.EnqueueTask(registerTask); err != nil {
			slog.Warn("Failed to enqueue RegisterFeedTask", "feed", feedConfig.Name, "error", err)
			continue
		}

		if !feedConfig.Settings.Enabled {
			slog.Debug("Feed disabled, skipping SyncFeedTask", "feed", feedConfig.Name)
			continue
		}

		syncTask := NewSyncFeedTask(feedConfig.Name, feedConfig, s.service, s.client, s.feedRepo, s.entryRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncFeedTask", "feed", feedConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	feedConfigs := s.configCache.GetEnabledConfigs()
	if len(feedConfigs) == 0 {
		slog.Debug("No enabled feed configurations found")
		return
	}

	slog.Debug("Checking enabled feeds for refresh", "count", len(feedConfigs))

	for _, feedConfig := range feedConfigs {
		feedRecord, err := s.feedRepo.GetFeed(feedConfig.Name)
		if err != nil {
			slog.Warn("Failed to get feed from database, skipping", "feed", feedConfig.Name, "error", err)
			continue
		}
		if feedRecord == nil {
			slog.Warn("Feed not found in database, skipping", "feed", feedConfig.Name)
			continue
		}

		if !s.isDue(feedRecord.LastFetchedAt, feedConfig.Settings.RefreshInterval) {
			slog.Debug("Feed not due for refresh yet", "feed", feedConfig.Name, "last_fetched_at", feedRecord.LastFetchedAt)
			continue
		}

		syncTask := NewSyncFeedTask(feedConfig.Name, feedConfig, s.service, s.client, s.feedRepo, s.entryRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncFeedTask", "feed", feedConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) isDue(lastFetchedAt *time.Time, refreshInterval int) bool {
	if lastFetchedAt == nil {
		return true
	}
	return time.Since(*lastFetchedAt) >= time.Duration(refreshInterval)*time.Second
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

// executeTask runs a task once. Failures are logged and not retried; a
// failed sync is picked up again on the next refresh tick.
func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Worker task execution failed",
			"worker_id", workerID,
			"type", string(task.GetType()),
			"id", task.GetID(),
			"feed", task.GetFeedName(),
			"error", err)
	}
}
