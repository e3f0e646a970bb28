package tasks

import (
	"context"
	"time"
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetFeedName() string
	Start()
	GetDuration() time.Duration
}

// TaskSchedulerInterface defines the interface for task scheduling
// operations. Used by the main application and the API to manage
// background mirror syncs.
// Example usage:
//
//	scheduler := NewScheduler(configCache, feedRepo, entryRepo, service, client)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewSyncFeedTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
