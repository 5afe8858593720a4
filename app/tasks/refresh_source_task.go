package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spota/spota-server/app/catalog"
	"github.com/spota/spota-server/app/events"
	"github.com/spota/spota-server/app/metrics"
)

type RefreshSourceTask struct {
	Task
	SourceConfig   *events.SourceConfig
	openDataClient *events.Client
	rssClient      *events.RSSClient
	catalog        *catalog.Catalog
}

func NewRefreshSourceTask(sourceName string, sourceConfig *events.SourceConfig,
	openDataClient *events.Client, rssClient *events.RSSClient,
	cat *catalog.Catalog) *RefreshSourceTask {
	return &RefreshSourceTask{
		Task:           NewTask(TaskTypeRefreshSource, sourceName),
		SourceConfig:   sourceConfig,
		openDataClient: openDataClient,
		rssClient:      rssClient,
		catalog:        cat,
	}
}

func (t *RefreshSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	gen := t.catalog.Begin(t.SourceName)

	started := time.Now()
	result := t.fetch(ctx)
	metrics.FetchDuration.WithLabelValues(t.SourceName).Observe(time.Since(started).Seconds())
	metrics.FetchesTotal.WithLabelValues(t.SourceName, string(result.Status)).Inc()

	if result.Degraded() {
		// Keep the last good snapshot when one exists; the placeholder
		// is only ever shown before the first successful fetch.
		if _, ok := t.catalog.SourceEvents(t.SourceName); !ok {
			t.catalog.Commit(t.SourceName, gen, result)
		}
		return fmt.Errorf("source fetch degraded: %s", t.SourceName)
	}

	if !t.catalog.Commit(t.SourceName, gen, result) {
		slog.Debug("Refresh superseded by a newer one, result discarded",
			"source", t.SourceName, "generation", gen)
		return nil
	}

	metrics.EventsNormalized.WithLabelValues(t.SourceName).Add(float64(len(result.Events)))

	slog.Info("Task completed",
		"type", "RefreshSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"events", len(result.Events))

	return nil
}

func (t *RefreshSourceTask) fetch(ctx context.Context) events.Result {
	switch t.SourceConfig.Kind {
	case events.SourceKindRSS:
		return t.rssClient.Fetch(ctx, t.SourceConfig.URL, t.SourceName, t.SourceConfig.Settings.Limit)
	default:
		return t.openDataClient.FetchFrom(ctx, t.SourceConfig.URL, t.SourceName, events.FetchOptions{
			Limit:    t.SourceConfig.Settings.Limit,
			FreeOnly: t.SourceConfig.Settings.FreeOnly,
			Category: t.SourceConfig.Settings.Category,
		})
	}
}
