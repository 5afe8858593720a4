package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/spota/spota-server/app/catalog"
	"github.com/spota/spota-server/app/cfg"
	"github.com/spota/spota-server/app/events"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	configCache    *events.ConfigCache
	catalog        *catalog.Catalog
	openDataClient *events.Client
	rssClient      *events.RSSClient
	extractor      *events.DetailExtractor
	httpClient     *http.Client
	userAgent      string
	interval       time.Duration
	workerCount    int
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	taskQueue      chan TaskInterface

	// nextRun tracks per-source due times; sources have no database
	// record, so scheduling state is in-memory only.
	nextRunMu sync.Mutex
	nextRun   map[string]time.Time
}

func NewScheduler(configCache *events.ConfigCache, cat *catalog.Catalog,
	openDataClient *events.Client, rssClient *events.RSSClient,
	extractor *events.DetailExtractor, httpClient *http.Client) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		configCache:    configCache,
		catalog:        cat,
		openDataClient: openDataClient,
		rssClient:      rssClient,
		extractor:      extractor,
		httpClient:     httpClient,
		userAgent:      cfg.UserAgent,
		interval:       time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:    cfg.WorkerCount,
		ctx:            ctx,
		cancel:         cancel,
		taskQueue:      make(chan TaskInterface, 300),
		nextRun:        make(map[string]time.Time),
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
	// The queue is closed after shutdown; never attempt a send then.
	if s.ctx.Err() != nil {
		return s.ctx.Err()
	}

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
	sourceConfigs := s.configCache.GetEnabledConfigs()
	if len(sourceConfigs) == 0 {
		slog.Debug("No enabled source configurations found")
		return
	}

	slog.Debug("Processing source configurations", "count", len(sourceConfigs))

	for _, sourceConfig := range sourceConfigs {
		refreshTask := NewRefreshSourceTask(sourceConfig.Name, sourceConfig,
			s.openDataClient, s.rssClient, s.catalog)
		if err := s.EnqueueTask(refreshTask); err != nil {
			slog.Warn("Failed to enqueue RefreshSourceTask", "source", sourceConfig.Name, "error", err)
			continue
		}
		s.scheduleNextRun(sourceConfig)
	}
}

func (s *Scheduler) enqueueTasks() {
	sourceConfigs := s.configCache.GetEnabledConfigs()
	if len(sourceConfigs) == 0 {
		slog.Debug("No enabled source configurations found")
		return
	}

	now := time.Now().UTC()

	for _, sourceConfig := range sourceConfigs {
		if !s.isDue(sourceConfig.Name, now) {
			slog.Debug("Source not due for refresh yet", "source", sourceConfig.Name)
		} else {
			refreshTask := NewRefreshSourceTask(sourceConfig.Name, sourceConfig,
				s.openDataClient, s.rssClient, s.catalog)
			if err := s.EnqueueTask(refreshTask); err != nil {
				slog.Warn("Failed to enqueue RefreshSourceTask", "source", sourceConfig.Name, "error", err)
				continue
			}
			s.scheduleNextRun(sourceConfig)
		}

		if sourceConfig.Settings.ExtractDetails {
			extractTask := NewExtractDetailsTask(sourceConfig.Name, sourceConfig,
				s.httpClient, s.extractor, s.catalog, s.userAgent)
			if err := s.EnqueueTask(extractTask); err != nil {
				slog.Warn("Failed to enqueue ExtractDetailsTask", "source", sourceConfig.Name, "error", err)
			}
		}
	}
}

func (s *Scheduler) isDue(sourceName string, now time.Time) bool {
	s.nextRunMu.Lock()
	defer s.nextRunMu.Unlock()

	next, ok := s.nextRun[sourceName]
	return !ok || !next.After(now)
}

func (s *Scheduler) scheduleNextRun(sourceConfig *events.SourceConfig) {
	s.nextRunMu.Lock()
	defer s.nextRunMu.Unlock()

	s.nextRun[sourceConfig.Name] = time.Now().UTC().Add(sourceConfig.Settings.GetRefreshInterval())
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

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			// The retry goroutine joins the WaitGroup so Stop drains it
			// before closing the queue.
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()

				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				case <-time.After(retryDelay):
				}

				if retryErr := s.EnqueueTask(task); retryErr != nil {
					slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
