package api

import (
	"github.com/atomtools/feedmap/app/database"
	"github.com/atomtools/feedmap/app/feed"
	"github.com/atomtools/feedmap/app/gdata"
	"github.com/atomtools/feedmap/app/tasks"
	"github.com/atomtools/feedmap/app/typeless"
)

type Handler struct {
	feedRepo    database.FeedRepository
	entryRepo   database.EntryRepository
	configCache *feed.ConfigCache
	service     gdata.Service
	client      *typeless.Client
	scheduler   tasks.TaskSchedulerInterface
}
