package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

const searchLimit = 20

// Client fetches raw records from an OpenData explore endpoint and runs
// them through the normalization pipeline.
//
// Fetch and Search never return errors: any network failure, non-2xx
// response, or malformed body degrades into a fallback Result so callers
// can consume the pipeline unconditionally. Callers detect degraded
// service by inspecting Result.Status.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	normalizer   *Normalizer
	userAgent    string
	defaultLimit int
}

func NewClient(baseURL string, httpClient *http.Client, normalizer *Normalizer,
	userAgent string, defaultLimit int) *Client {
	return &Client{
		baseURL:      baseURL,
		httpClient:   httpClient,
		normalizer:   normalizer,
		userAgent:    userAgent,
		defaultLimit: defaultLimit,
	}
}

// Fetch retrieves events from the default endpoint. On any failure it
// returns a StatusDegraded Result holding the single-element placeholder
// list instead of an error.
func (c *Client) Fetch(ctx context.Context, opts FetchOptions) Result {
	return c.FetchFrom(ctx, c.baseURL, "paris", opts)
}

// FetchFrom retrieves events from a specific endpoint, labeling synthesized
// ids with the given source label. Same fallback policy as Fetch.
func (c *Client) FetchFrom(ctx context.Context, baseURL, sourceLabel string, opts FetchOptions) Result {
	limit := opts.Limit
	if limit <= 0 {
		limit = c.defaultLimit
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	if opts.SearchTerm != "" {
		params.Set("search", opts.SearchTerm)
	}

	if where := buildWhereClause(opts); where != "" {
		params.Set("where", where)
	}

	records, err := c.fetchRecords(ctx, baseURL, params)
	if err != nil {
		slog.Warn("Event fetch degraded to placeholder", "source", sourceLabel, "error", err)
		return Result{Status: StatusDegraded, Events: c.normalizer.Placeholder()}
	}

	if len(records) > limit {
		records = records[:limit]
	}

	return Result{Status: StatusOK, Events: c.normalizer.Run(records, sourceLabel)}
}

// Search retrieves events matching a free-text query. On any failure it
// returns a StatusEmpty Result with no events, never the placeholder.
func (c *Client) Search(ctx context.Context, query string) Result {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(searchLimit))
	params.Set("search", query)

	records, err := c.fetchRecords(ctx, c.baseURL, params)
	if err != nil {
		slog.Warn("Event search failed", "query", query, "error", err)
		return Result{Status: StatusEmpty, Events: []Event{}}
	}

	return Result{Status: StatusOK, Events: c.normalizer.Run(records, "search")}
}

func (c *Client) fetchRecords(ctx context.Context, baseURL string, params url.Values) ([]RawRecord, error) {
	requestURL := baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope recordsResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if envelope.Results == nil {
		return nil, fmt.Errorf("unexpected response shape: missing results array")
	}

	return envelope.Results, nil
}

// buildWhereClause assembles the explore API's where-expression for the
// free-price and category filters.
func buildWhereClause(opts FetchOptions) string {
	var clauses []string

	if opts.FreeOnly {
		clauses = append(clauses, `price_type="gratuit"`)
	}

	if opts.Category != "" {
		clauses = append(clauses, fmt.Sprintf(`qfap_tags LIKE "%%%s%%"`, opts.Category))
	}

	switch len(clauses) {
	case 0:
		return ""
	case 1:
		return clauses[0]
	default:
		return clauses[0] + " AND " + clauses[1]
	}
}
