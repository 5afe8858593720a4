package events

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSClient adapts RSS/Atom event calendars into the normalization
// pipeline: feed items are mapped onto RawRecord and then normalized with
// the same rules as OpenData records, so downstream consumers see one
// uniform Event shape regardless of source kind.
type RSSClient struct {
	parser     *gofeed.Parser
	normalizer *Normalizer
}

func NewRSSClient(httpClient *http.Client, normalizer *Normalizer, userAgent string) *RSSClient {
	parser := gofeed.NewParser()
	parser.Client = httpClient
	parser.UserAgent = userAgent

	return &RSSClient{
		parser:     parser,
		normalizer: normalizer,
	}
}

// Fetch retrieves and normalizes a feed. The fallback policy matches the
// OpenData client: any failure degrades to the placeholder list.
func (c *RSSClient) Fetch(ctx context.Context, feedURL, sourceName string, limit int) Result {
	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		slog.Warn("RSS fetch degraded to placeholder", "source", sourceName, "error", err)
		return Result{Status: StatusDegraded, Events: c.normalizer.Placeholder()}
	}

	items := feed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	records := make([]RawRecord, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		records = append(records, c.recordFromItem(item))
	}

	return Result{Status: StatusOK, Events: c.normalizer.Run(records, sourceName)}
}

func (c *RSSClient) recordFromItem(item *gofeed.Item) RawRecord {
	record := RawRecord{
		ID:          item.GUID,
		Title:       item.Title,
		Description: item.Description,
		LeadText:    item.Content,
		URL:         item.Link,
		Tags:        strings.Join(item.Categories, " "),
	}

	if record.ID == "" {
		record.ID = item.Link
	}

	if item.PublishedParsed != nil {
		record.DateStart = item.PublishedParsed.Format(time.RFC3339)
	}

	if item.Image != nil {
		record.CoverURL = item.Image.URL
	}
	if record.CoverURL == "" && len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		if strings.HasPrefix(item.Enclosures[0].Type, "image/") {
			record.CoverURL = item.Enclosures[0].URL
		}
	}

	return record
}
