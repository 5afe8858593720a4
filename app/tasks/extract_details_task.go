package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/spota/spota-server/app/catalog"
	"github.com/spota/spota-server/app/events"
	"github.com/spota/spota-server/app/metrics"
)

// maxExtractionsPerRun bounds how many event pages one task execution
// fetches, so a large snapshot cannot monopolize a worker.
const maxExtractionsPerRun = 5

type ExtractDetailsTask struct {
	Task
	SourceConfig *events.SourceConfig
	httpClient   *http.Client
	extractor    *events.DetailExtractor
	catalog      *catalog.Catalog
	userAgent    string
}

func NewExtractDetailsTask(sourceName string, sourceConfig *events.SourceConfig,
	httpClient *http.Client, extractor *events.DetailExtractor,
	cat *catalog.Catalog, userAgent string) *ExtractDetailsTask {
	return &ExtractDetailsTask{
		Task:         NewTask(TaskTypeExtractDetails, sourceName),
		SourceConfig: sourceConfig,
		httpClient:   httpClient,
		extractor:    extractor,
		catalog:      cat,
		userAgent:    userAgent,
	}
}

func (t *ExtractDetailsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	snapshot, ok := t.catalog.SourceEvents(t.SourceName)
	if !ok {
		slog.Debug("No snapshot for source yet, skipping extraction", "source", t.SourceName)
		return nil
	}

	extracted := 0
	failed := 0

	for _, event := range snapshot {
		if extracted >= maxExtractionsPerRun {
			break
		}
		// Only events whose description fell back to the default and that
		// carry a page URL are worth a round-trip.
		if event.Description != events.LabelDefaultDescription || event.URL == "" {
			continue
		}

		description, err := t.extractPage(ctx, event.URL)
		if err != nil {
			slog.Debug("Detail extraction failed", "source", t.SourceName, "event", event.ID, "error", err)
			metrics.ExtractionsTotal.WithLabelValues("failed").Inc()
			failed++
			continue
		}

		if t.catalog.UpdateDescription(event.ID, description) {
			metrics.ExtractionsTotal.WithLabelValues("success").Inc()
			extracted++
		}
	}

	if extracted > 0 || failed > 0 {
		slog.Info("Task completed",
			"type", "ExtractDetails",
			"source", t.SourceName,
			"duration", t.GetDuration(),
			"extracted", extracted,
			"failed", failed)
	}

	return nil
}

func (t *ExtractDetailsTask) extractPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return t.extractor.Run(data)
}
